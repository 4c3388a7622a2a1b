// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	taskadapters "task_backend/internal/feature/tasks/adapters"
	"task_backend/internal/feature/tasks/usecase"
	"task_backend/internal/platform/cache"
)

// statsCacheTTL bounds how stale cached statistics counts may be.
const statsCacheTTL = 5 * time.Minute

// NewTaskRepository creates a TaskRepository implementation.
// If Redis is available, the GORM repository is wrapped with a caching
// decorator for statistics. Otherwise, the plain repository is returned.
func NewTaskRepository(rdb *redis.Client, db *gorm.DB) usecase.TaskRepository {
	repo := taskadapters.NewTaskRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingTaskRepository(rdb, statsCacheTTL, repo, "taskstats")
}
