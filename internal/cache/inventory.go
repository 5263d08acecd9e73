package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ActorKeyPrefix = "actor:%d"
	PostKeyPrefix  = "post:%d"
	RecentPostsKey = "posts:recent"
)

const (
	ActorTTL       = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	RecentPostsTTL = time.Minute
)

func ActorKey(actorID uint) string {
	return fmt.Sprintf(ActorKeyPrefix, actorID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateRecentPosts drops the recent-posts listing; called whenever a
// post is created so scheduler cycles and the feed see fresh snapshots.
func InvalidateRecentPosts(ctx context.Context) {
	Invalidate(ctx, RecentPostsKey)
}
