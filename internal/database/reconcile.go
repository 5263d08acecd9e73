package database

import (
	"context"
	"log/slog"

	"murmur/internal/middleware"
	"murmur/internal/models"

	"gorm.io/gorm"
)

// ReconcileCommentCounts recomputes every post's comment_count from the
// comment table and corrects drift. The immediate per-transaction increment
// is the authoritative strategy; this pass is the self-healing defense
// against skew left behind by partial failures or migrations. It runs once
// at startup and logs each correction. Returns the number of corrected posts.
func ReconcileCommentCounts(ctx context.Context, db *gorm.DB) (int, error) {
	type row struct {
		ID           uint
		CommentCount int
	}

	var posts []row
	if err := db.WithContext(ctx).Model(&models.Post{}).Select("id", "comment_count").Find(&posts).Error; err != nil {
		return 0, err
	}

	corrected := 0
	for _, p := range posts {
		var actual int64
		if err := db.WithContext(ctx).
			Model(&models.Comment{}).
			Where("post_id = ?", p.ID).
			Count(&actual).Error; err != nil {
			return corrected, err
		}
		if int(actual) == p.CommentCount {
			continue
		}

		if err := db.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ?", p.ID).
			UpdateColumn("comment_count", actual).Error; err != nil {
			return corrected, err
		}
		corrected++
		middleware.CounterCorrections.Inc()
		middleware.Logger.WarnContext(ctx, "corrected comment count drift",
			slog.Any("post_id", p.ID),
			slog.Int("stored", p.CommentCount),
			slog.Int64("actual", actual),
		)
	}

	if corrected > 0 {
		middleware.Logger.InfoContext(ctx, "comment count reconciliation completed",
			slog.Int("corrected", corrected),
			slog.Int("posts", len(posts)),
		)
	}
	return corrected, nil
}
