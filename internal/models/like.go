package models

import "time"

// Like represents an actor's like on a post.
// The combination of PostID and ActorID must be unique; the storage-layer
// constraint is what makes concurrent duplicate likes a benign no-op.
// Likes are hard-deleted on unlike.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_actor" json:"post_id"`
	ActorID   uint      `gorm:"not null;uniqueIndex:idx_post_actor" json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}
