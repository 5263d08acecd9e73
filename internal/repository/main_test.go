package repository

import (
	"testing"

	"murmur/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Actor{},
		&models.Interest{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestActor(t *testing.T, db *gorm.DB, name string) *models.Actor {
	t.Helper()
	actor := &models.Actor{
		Name:         name,
		Email:        name + "@example.com",
		PersonaToken: "token-" + name,
	}
	if err := db.Create(actor).Error; err != nil {
		t.Fatalf("Failed to create actor: %v", err)
	}
	return actor
}

func createTestPost(t *testing.T, db *gorm.DB, actorID uint, content string) *models.Post {
	t.Helper()
	post := &models.Post{ActorID: actorID, Content: content}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}
