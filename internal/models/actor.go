// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Actor represents a simulated persona in the Murmur application.
// An actor is created the first time its persona token authenticates and is
// refreshed whenever the persona service reports updated attributes.
type Actor struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	Email            string `json:"email"`
	Avatar           string `json:"avatar"`
	Bio              string `gorm:"type:text" json:"bio"`
	SelfIntroduction string `gorm:"type:text" json:"self_introduction"`
	// PersonaToken is the opaque credential used to authenticate to the
	// external persona service. It is never issued locally.
	PersonaToken string         `gorm:"unique;not null" json:"-"`
	Interests    []Interest     `gorm:"foreignKey:ActorID" json:"interests,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Interest is a public interest tag attached to an actor, mirrored from the
// persona service on each profile sync.
type Interest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     uint      `gorm:"not null;index" json:"actor_id"`
	Name        string    `gorm:"size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Confidence  string    `gorm:"size:20" json:"confidence"`
	UpdatedAt   time.Time `json:"updated_at"`
}
