package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cse-hub/crs-api/internal/models"
)

type courseFinder interface {
	FindByID(ctx context.Context, id models.CourseID) (*models.Course, error)
}

// CacheObserver receives cache hit/miss timings.
type CacheObserver interface {
	RecordCacheOperation(hit bool, duration time.Duration)
	ObserveCacheWrite(duration time.Duration)
}

// CourseCache is a redis read-through cache in front of course lookups.
// Writes to a course must go through Invalidate.
type CourseCache struct {
	finder   courseFinder
	client   *redis.Client
	ttl      time.Duration
	observer CacheObserver
	logger   *zap.Logger
}

// NewCourseCache constructs the cache. observer may be nil.
func NewCourseCache(finder courseFinder, client *redis.Client, ttl time.Duration, observer CacheObserver, logger *zap.Logger) *CourseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseCache{finder: finder, client: client, ttl: ttl, observer: observer, logger: logger}
}

func courseCacheKey(id models.CourseID) string {
	return fmt.Sprintf("course:%s:%s", id.Code, id.Term)
}

// FindByID returns the cached course, falling back to the underlying finder
// on a miss. Cache failures degrade to the finder; they are logged, never
// surfaced.
func (c *CourseCache) FindByID(ctx context.Context, id models.CourseID) (*models.Course, error) {
	key := courseCacheKey(id)

	start := time.Now()
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var course models.Course
		if jsonErr := json.Unmarshal(raw, &course); jsonErr == nil {
			c.record(true, time.Since(start))
			return &course, nil
		}
		// stale or corrupt entry, drop it
		_ = c.client.Del(ctx, key).Err()
	} else if err != redis.Nil {
		c.logger.Warn("course cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	c.record(false, time.Since(start))

	course, err := c.finder.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if encoded, jsonErr := json.Marshal(course); jsonErr == nil {
		writeStart := time.Now()
		if setErr := c.client.Set(ctx, key, encoded, c.ttl).Err(); setErr != nil {
			c.logger.Warn("course cache write failed", zap.String("key", key), zap.Error(setErr))
		} else if c.observer != nil {
			c.observer.ObserveCacheWrite(time.Since(writeStart))
		}
	}

	return course, nil
}

// Invalidate drops the cached course after a mutation.
func (c *CourseCache) Invalidate(ctx context.Context, id models.CourseID) {
	if err := c.client.Del(ctx, courseCacheKey(id)).Err(); err != nil {
		c.logger.Warn("course cache invalidation failed", zap.String("key", courseCacheKey(id)), zap.Error(err))
	}
}

func (c *CourseCache) record(hit bool, duration time.Duration) {
	if c.observer != nil {
		c.observer.RecordCacheOperation(hit, duration)
	}
}
