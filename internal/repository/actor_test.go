package repository

import (
	"context"
	"testing"

	"murmur/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorRepository_GetByToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActorRepository(db)
	ctx := context.Background()

	actor := createTestActor(t, db, "mira")

	t.Run("Found", func(t *testing.T) {
		got, err := repo.GetByToken(ctx, actor.PersonaToken)
		require.NoError(t, err)
		assert.Equal(t, actor.ID, got.ID)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := repo.GetByToken(ctx, "no-such-token")
		assert.True(t, models.IsNotFound(err))
	})
}

func TestActorRepository_ListExcluding(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActorRepository(db)
	ctx := context.Background()

	a := createTestActor(t, db, "a")
	createTestActor(t, db, "b")
	createTestActor(t, db, "c")

	actors, err := repo.ListExcluding(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, actors, 2)
	for _, actor := range actors {
		assert.NotEqual(t, a.ID, actor.ID)
	}
}

func TestActorRepository_ReplaceInterests(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActorRepository(db)
	ctx := context.Background()

	actor := createTestActor(t, db, "tess")

	err := repo.ReplaceInterests(ctx, actor.ID, []models.Interest{
		{Name: "hiking", Confidence: "high"},
		{Name: "jazz", Confidence: "medium"},
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, actor.ID)
	require.NoError(t, err)
	require.Len(t, got.Interests, 2)

	t.Run("ReplacementDropsOldTags", func(t *testing.T) {
		err := repo.ReplaceInterests(ctx, actor.ID, []models.Interest{
			{Name: "pottery", Confidence: "high"},
		})
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, actor.ID)
		require.NoError(t, err)
		require.Len(t, got.Interests, 1)
		assert.Equal(t, "pottery", got.Interests[0].Name)
	})

	t.Run("EmptySetClears", func(t *testing.T) {
		err := repo.ReplaceInterests(ctx, actor.ID, nil)
		require.NoError(t, err)

		got, err := repo.GetByID(ctx, actor.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Interests)
	})
}
