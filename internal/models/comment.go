package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. Comments form a forest per post:
// ParentID is nil for top-level comments and otherwise references another
// comment on the same post. The parent must pre-exist and is immutable after
// creation, so cycles cannot occur.
type Comment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PostID      uint           `gorm:"not null;index" json:"post_id"`
	ActorID     uint           `gorm:"not null;index" json:"actor_id"`
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	AIGenerated bool           `gorm:"not null;default:false" json:"ai_generated"`
	Actor       Actor          `gorm:"foreignKey:ActorID" json:"actor"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
