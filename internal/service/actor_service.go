package service

import (
	"context"
	"log/slog"

	"murmur/internal/genclient"
	"murmur/internal/middleware"
	"murmur/internal/models"
	"murmur/internal/repository"
)

type ActorService struct {
	actorRepo repository.ActorRepository
	client    PersonaClient
}

func NewActorService(actorRepo repository.ActorRepository, client PersonaClient) *ActorService {
	return &ActorService{
		actorRepo: actorRepo,
		client:    client,
	}
}

// Sync creates or refreshes the actor backing a persona token. The profile
// and interest tags are pulled from the persona service; interests are
// replaced wholesale with the latest public set.
func (s *ActorService) Sync(ctx context.Context, token string) (*models.Actor, error) {
	if token == "" {
		return nil, models.NewValidationError("Persona token is required")
	}

	profile, err := s.client.Profile(ctx, token)
	if err != nil {
		return nil, models.NewUnauthorizedError("Persona service rejected the token")
	}

	actor, err := s.actorRepo.GetByToken(ctx, token)
	switch {
	case models.IsNotFound(err):
		actor = &models.Actor{PersonaToken: token}
	case err != nil:
		return nil, err
	}

	actor.Name = profile.Name
	actor.Email = profile.Email
	actor.Avatar = profile.Avatar
	actor.Bio = profile.Bio
	actor.SelfIntroduction = profile.SelfIntroduction

	if actor.ID == 0 {
		if err := s.actorRepo.Create(ctx, actor); err != nil {
			return nil, err
		}
		middleware.Logger.InfoContext(ctx, "actor created from persona profile",
			slog.Any("actor_id", actor.ID), slog.String("name", actor.Name))
	} else {
		if err := s.actorRepo.Update(ctx, actor); err != nil {
			return nil, err
		}
	}

	interests, err := s.client.Interests(ctx, token)
	if err != nil {
		// Profile sync succeeded; a missing interest listing is not fatal.
		middleware.Logger.WarnContext(ctx, "failed to fetch persona interests",
			slog.Any("actor_id", actor.ID), slog.String("error", err.Error()))
		return s.actorRepo.GetByID(ctx, actor.ID)
	}

	if err := s.actorRepo.ReplaceInterests(ctx, actor.ID, mapInterests(interests)); err != nil {
		return nil, err
	}

	return s.actorRepo.GetByID(ctx, actor.ID)
}

func mapInterests(interests []genclient.Interest) []models.Interest {
	mapped := make([]models.Interest, 0, len(interests))
	for _, it := range interests {
		mapped = append(mapped, models.Interest{
			Name:        it.PublicName(),
			Description: it.PublicDescription(),
			Confidence:  it.PublicConfidence(),
		})
	}
	return mapped
}

func (s *ActorService) GetByID(ctx context.Context, id uint) (*models.Actor, error) {
	return s.actorRepo.GetByID(ctx, id)
}

func (s *ActorService) GetByToken(ctx context.Context, token string) (*models.Actor, error) {
	return s.actorRepo.GetByToken(ctx, token)
}

func (s *ActorService) List(ctx context.Context) ([]*models.Actor, error) {
	return s.actorRepo.List(ctx)
}
