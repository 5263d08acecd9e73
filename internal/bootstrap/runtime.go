// Package bootstrap wires shared runtime dependencies for the cmd binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"murmur/internal/cache"
	"murmur/internal/config"
	"murmur/internal/database"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ReconcileCounters runs the startup pass that recomputes denormalized
	// comment counts from the comment table.
	ReconcileCounters bool
}

// InitRuntime connects to DB and Redis and optionally reconciles counters.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.ReconcileCounters {
		corrected, err := database.ReconcileCommentCounts(context.Background(), db)
		if err != nil {
			return nil, nil, fmt.Errorf("comment count reconciliation failed: %w", err)
		}
		if corrected > 0 {
			log.Printf("Reconciled comment counts on %d posts", corrected)
		}
	}

	return db, r, nil
}
