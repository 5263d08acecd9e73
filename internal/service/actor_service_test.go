package service

import (
	"context"
	"errors"
	"testing"

	"murmur/internal/genclient"
	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorService_Sync_CreatesOnFirstSight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.profileFn = func(_ context.Context, token string) (*genclient.Profile, error) {
		return &genclient.Profile{Name: "Mira", Email: "mira@example.com", Bio: "hi"}, nil
	}
	persona.interestsFn = func(_ context.Context, _ string) ([]genclient.Interest, error) {
		return []genclient.Interest{
			{NamePublic: "hiking", ConfidencePublic: "high", HasPublicContent: true},
		}, nil
	}

	var created *models.Actor
	var replaced []models.Interest
	actorRepo := noopActorRepo()
	actorRepo.getByTokenFn = func(_ context.Context, token string) (*models.Actor, error) {
		return nil, models.NewNotFoundError("Actor", "persona token")
	}
	actorRepo.createFn = func(_ context.Context, actor *models.Actor) error {
		actor.ID = 10
		created = actor
		return nil
	}
	actorRepo.replaceInterestsFn = func(_ context.Context, _ uint, interests []models.Interest) error {
		replaced = interests
		return nil
	}

	svc := NewActorService(actorRepo, persona)

	_, err := svc.Sync(ctx, "tok-123")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Mira", created.Name)
	assert.Equal(t, "tok-123", created.PersonaToken)
	require.Len(t, replaced, 1)
	assert.Equal(t, "hiking", replaced[0].Name)
	assert.Equal(t, "high", replaced[0].Confidence)
}

func TestActorService_Sync_RefreshesExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.profileFn = func(_ context.Context, _ string) (*genclient.Profile, error) {
		return &genclient.Profile{Name: "New Name"}, nil
	}

	updateCalls := 0
	actorRepo := noopActorRepo()
	actorRepo.getByTokenFn = func(_ context.Context, token string) (*models.Actor, error) {
		return &models.Actor{ID: 4, Name: "Old Name", PersonaToken: token}, nil
	}
	actorRepo.updateFn = func(_ context.Context, actor *models.Actor) error {
		updateCalls++
		assert.Equal(t, "New Name", actor.Name)
		return nil
	}

	svc := NewActorService(actorRepo, persona)

	_, err := svc.Sync(ctx, "tok-456")
	require.NoError(t, err)
	assert.Equal(t, 1, updateCalls)
}

func TestActorService_Sync_RejectedToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.profileFn = func(_ context.Context, _ string) (*genclient.Profile, error) {
		return nil, errors.New("401 from persona service")
	}

	svc := NewActorService(noopActorRepo(), persona)

	_, err := svc.Sync(ctx, "bad-token")
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

func TestActorService_Sync_EmptyToken(t *testing.T) {
	t.Parallel()

	svc := NewActorService(noopActorRepo(), noopPersona())
	_, err := svc.Sync(context.Background(), "")
	assertValidationError(t, err)
}

func TestActorService_Sync_InterestFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	persona := noopPersona()
	persona.interestsFn = func(_ context.Context, _ string) ([]genclient.Interest, error) {
		return nil, errors.New("interest endpoint down")
	}

	replaceCalls := 0
	actorRepo := noopActorRepo()
	actorRepo.getByTokenFn = func(_ context.Context, token string) (*models.Actor, error) {
		return &models.Actor{ID: 4, PersonaToken: token}, nil
	}
	actorRepo.replaceInterestsFn = func(_ context.Context, _ uint, _ []models.Interest) error {
		replaceCalls++
		return nil
	}

	svc := NewActorService(actorRepo, persona)

	actor, err := svc.Sync(ctx, "tok-789")
	require.NoError(t, err)
	assert.NotNil(t, actor)
	assert.Zero(t, replaceCalls)
}
