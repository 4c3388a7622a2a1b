// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// CachingTaskRepository decorates a TaskRepository with Redis caching of the
// per-owner statistics counts. It implements the decorator pattern,
// transparently adding caching without modifying the underlying repository.
// Any mutation by an owner invalidates that owner's cached counts.
type CachingTaskRepository struct {
	inner     usecase.TaskRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.TaskRepository = (*CachingTaskRepository)(nil)

// NewCachingTaskRepository decorates a TaskRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "taskstats".
func NewCachingTaskRepository(rdb *redis.Client, ttl time.Duration, inner usecase.TaskRepository, namespace string) *CachingTaskRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "taskstats"
	}
	return &CachingTaskRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// statsKey generates the cache key for an owner's statistics counts.
func (c *CachingTaskRepository) statsKey(ownerID uint) string {
	return fmt.Sprintf("%s:%d", c.namespace, ownerID)
}

// invalidate drops the cached counts for an owner. Best effort: cache
// failures never fail the request.
func (c *CachingTaskRepository) invalidate(ctx context.Context, ownerID uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, c.statsKey(ownerID)).Err()
}

// Create persists a task and invalidates the owner's cached statistics.
func (c *CachingTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if err := c.inner.Create(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.OwnerID)
	return nil
}

// Save persists task changes and invalidates the owner's cached statistics.
func (c *CachingTaskRepository) Save(ctx context.Context, task *entity.Task) error {
	if err := c.inner.Save(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.OwnerID)
	return nil
}

// Delete removes a task and invalidates the owner's cached statistics.
func (c *CachingTaskRepository) Delete(ctx context.Context, task *entity.Task) error {
	if err := c.inner.Delete(ctx, task); err != nil {
		return err
	}
	c.invalidate(ctx, task.OwnerID)
	return nil
}

// FindByID delegates to the underlying repository.
func (c *CachingTaskRepository) FindByID(ctx context.Context, id uint) (*entity.Task, error) {
	return c.inner.FindByID(ctx, id)
}

// FindAllByUser delegates to the underlying repository.
func (c *CachingTaskRepository) FindAllByUser(ctx context.Context, ownerID uint, filter usecase.TaskFilter) ([]entity.Task, error) {
	return c.inner.FindAllByUser(ctx, ownerID, filter)
}

// ExistsDuplicate delegates to the underlying repository.
func (c *CachingTaskRepository) ExistsDuplicate(ctx context.Context, ownerID uint, title string, dueDate *time.Time, excludeID uint) (bool, error) {
	return c.inner.ExistsDuplicate(ctx, ownerID, title, dueDate, excludeID)
}

// CountStatistics retrieves the owner's counts, checking cache first then
// falling back to the database.
// The overdue count depends on now, so a cached entry is at most ttl stale.
func (c *CachingTaskRepository) CountStatistics(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.CountStatistics(ctx, ownerID, now)
	}

	key := c.statsKey(ownerID)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out usecase.StatisticsCounts
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.CountStatistics(ctx, ownerID, now)
	if err != nil {
		return usecase.StatisticsCounts{}, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}
