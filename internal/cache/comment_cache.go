package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"blog-comment-api/internal/dto"
)

// CommentPageCache caches viewer-independent comment pages in redis. The
// viewer's is_liked overlay happens after the cache, so entries can be
// shared across readers.
type CommentPageCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCommentPageCache creates a page cache. A zero ttl falls back to one
// minute; invalidation on writes keeps entries fresh before that.
func NewCommentPageCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CommentPageCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CommentPageCache{client: client, ttl: ttl, logger: logger}
}

func pageKey(articleID int64, q *dto.ListCommentsQuery) string {
	return fmt.Sprintf("comments:%d:p%d:l%d:%s:%s", articleID, q.Page, q.Limit, q.Sort, q.Order)
}

func articlePattern(articleID int64) string {
	return fmt.Sprintf("comments:%d:*", articleID)
}

// GetPage returns the cached page, if present.
func (c *CommentPageCache) GetPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery) (*dto.ListCommentsResponse, bool) {
	data, err := c.client.Get(ctx, pageKey(articleID, q)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Comment page cache read failed",
				zap.Int64("article_id", articleID),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var page dto.ListCommentsResponse
	if err := json.Unmarshal(data, &page); err != nil {
		c.logger.Warn("Dropping corrupt comment page cache entry",
			zap.Int64("article_id", articleID),
			zap.Error(err),
		)
		c.client.Del(ctx, pageKey(articleID, q))
		return nil, false
	}
	return &page, true
}

// SetPage stores a page. Serialization happens here, synchronously, so the
// caller may mutate the page afterwards without contaminating the cache.
func (c *CommentPageCache) SetPage(ctx context.Context, articleID int64, q *dto.ListCommentsQuery, page *dto.ListCommentsResponse) {
	data, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn("Failed to serialize comment page",
			zap.Int64("article_id", articleID),
			zap.Error(err),
		)
		return
	}
	if err := c.client.Set(ctx, pageKey(articleID, q), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Comment page cache write failed",
			zap.Int64("article_id", articleID),
			zap.Error(err),
		)
	}
}

// InvalidateArticle drops every cached page for one article. Called after
// any mutation so listings never serve stale thread state past the write.
func (c *CommentPageCache) InvalidateArticle(ctx context.Context, articleID int64) {
	iter := c.client.Scan(ctx, 0, articlePattern(articleID), 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Comment page cache scan failed",
			zap.Int64("article_id", articleID),
			zap.Error(err),
		)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Comment page cache invalidation failed",
			zap.Int64("article_id", articleID),
			zap.Error(err),
		)
	}
}
