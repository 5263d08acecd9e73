// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"murmur/internal/models"

	"gorm.io/gorm"
)

// ActorRepository defines the interface for actor data operations
type ActorRepository interface {
	Create(ctx context.Context, actor *models.Actor) error
	GetByID(ctx context.Context, id uint) (*models.Actor, error)
	GetByToken(ctx context.Context, token string) (*models.Actor, error)
	List(ctx context.Context) ([]*models.Actor, error)
	ListExcluding(ctx context.Context, excludeID uint) ([]*models.Actor, error)
	Update(ctx context.Context, actor *models.Actor) error
	ReplaceInterests(ctx context.Context, actorID uint, interests []models.Interest) error
}

type actorRepository struct {
	db *gorm.DB
}

// NewActorRepository creates a new actor repository
func NewActorRepository(db *gorm.DB) ActorRepository {
	return &actorRepository{db: db}
}

func (r *actorRepository) Create(ctx context.Context, actor *models.Actor) error {
	return r.db.WithContext(ctx).Create(actor).Error
}

func (r *actorRepository) GetByID(ctx context.Context, id uint) (*models.Actor, error) {
	var actor models.Actor
	err := r.db.WithContext(ctx).Preload("Interests").First(&actor, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Actor", id)
	}
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *actorRepository) GetByToken(ctx context.Context, token string) (*models.Actor, error) {
	var actor models.Actor
	err := r.db.WithContext(ctx).Preload("Interests").Where("persona_token = ?", token).First(&actor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Actor", "persona token")
	}
	if err != nil {
		return nil, err
	}
	return &actor, nil
}

func (r *actorRepository) List(ctx context.Context) ([]*models.Actor, error) {
	var actors []*models.Actor
	err := r.db.WithContext(ctx).Preload("Interests").Order("id ASC").Find(&actors).Error
	return actors, err
}

func (r *actorRepository) ListExcluding(ctx context.Context, excludeID uint) ([]*models.Actor, error) {
	var actors []*models.Actor
	err := r.db.WithContext(ctx).
		Preload("Interests").
		Where("id <> ?", excludeID).
		Order("id ASC").
		Find(&actors).Error
	return actors, err
}

func (r *actorRepository) Update(ctx context.Context, actor *models.Actor) error {
	return r.db.WithContext(ctx).Save(actor).Error
}

// ReplaceInterests swaps the actor's interest tags wholesale, matching the
// persona service's latest public set.
func (r *actorRepository) ReplaceInterests(ctx context.Context, actorID uint, interests []models.Interest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("actor_id = ?", actorID).Delete(&models.Interest{}).Error; err != nil {
			return err
		}
		for i := range interests {
			interests[i].ActorID = actorID
		}
		if len(interests) == 0 {
			return nil
		}
		return tx.Create(&interests).Error
	})
}
