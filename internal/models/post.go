package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Murmur feed.
//
// LikeCount and CommentCount are persisted denormalized counters. Every
// mutating operation (like, unlike, comment, reply) updates them inside the
// same transaction as the engagement row, so they equal the true row counts
// at every observation point. A startup reconciliation pass corrects any
// drift left behind by partial failures or migrations.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ActorID      uint           `gorm:"not null;index" json:"actor_id"`
	Actor        Actor          `gorm:"foreignKey:ActorID" json:"actor"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	Topic        string         `json:"topic,omitempty"`
	AIGenerated  bool           `gorm:"not null;default:false" json:"ai_generated"`
	LikeCount    int            `gorm:"not null;default:0" json:"like_count"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
