package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// mockTaskRepository はテスト用のTaskRepositoryモック実装です。
type mockTaskRepository struct {
	createFn          func(ctx context.Context, task *entity.Task) error
	saveFn            func(ctx context.Context, task *entity.Task) error
	deleteFn          func(ctx context.Context, task *entity.Task) error
	countStatisticsFn func(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error)
}

func (m *mockTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) FindByID(ctx context.Context, id uint) (*entity.Task, error) {
	return nil, usecase.ErrTaskNotFound
}

func (m *mockTaskRepository) FindAllByUser(ctx context.Context, ownerID uint, filter usecase.TaskFilter) ([]entity.Task, error) {
	return nil, nil
}

func (m *mockTaskRepository) Save(ctx context.Context, task *entity.Task) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) Delete(ctx context.Context, task *entity.Task) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) ExistsDuplicate(ctx context.Context, ownerID uint, title string, dueDate *time.Time, excludeID uint) (bool, error) {
	return false, nil
}

func (m *mockTaskRepository) CountStatistics(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error) {
	if m.countStatisticsFn != nil {
		return m.countStatisticsFn(ctx, ownerID, now)
	}
	return usecase.StatisticsCounts{}, nil
}

// TestNewCachingTaskRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingTaskRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			ttl:               0,
			namespace:         "",
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "taskstats",
		},
		{
			name:              "negative ttl uses default",
			ttl:               -1 * time.Minute,
			namespace:         "",
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "taskstats",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingTaskRepository(nil, tt.ttl, &mockTaskRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCountStatistics_NilRedis はRedis未設定時にキャッシュを素通りすることを検証します。
func TestCountStatistics_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockTaskRepository{
		countStatisticsFn: func(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error) {
			return usecase.StatisticsCounts{Total: 3, Completed: 1, Overdue: 1}, nil
		},
	}
	repo := NewCachingTaskRepository(nil, time.Minute, inner, "taskstats")

	counts, err := repo.CountStatistics(context.Background(), 5, time.Now())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts.Total != 3 {
		t.Errorf("expected total 3, got %d", counts.Total)
	}
}

// TestCountStatistics_CacheMissThenHit はキャッシュミス時にDBへフォールバックし、結果が保存されることを検証します。
func TestCountStatistics_CacheMissThenHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	expected := usecase.StatisticsCounts{Total: 3, Completed: 1, Overdue: 1}
	payload, _ := json.Marshal(expected)

	dbCalls := 0
	inner := &mockTaskRepository{
		countStatisticsFn: func(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error) {
			dbCalls++
			return expected, nil
		},
	}
	repo := NewCachingTaskRepository(rdb, time.Minute, inner, "taskstats")

	// 1回目: ミス → DB → キャッシュ保存
	mock.ExpectGet("taskstats:5").RedisNil()
	mock.ExpectSet("taskstats:5", payload, time.Minute).SetVal("OK")
	// 2回目: ヒット → DBは呼ばれない
	mock.ExpectGet("taskstats:5").SetVal(string(payload))

	for i := 0; i < 2; i++ {
		counts, err := repo.CountStatistics(context.Background(), 5, time.Now())
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i+1, err)
		}
		if counts != expected {
			t.Errorf("unexpected counts on call %d: %+v", i+1, counts)
		}
	}

	if dbCalls != 1 {
		t.Errorf("expected 1 database call, got %d", dbCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestCountStatistics_CorruptedEntry は壊れたキャッシュエントリが削除されDBへフォールバックすることを検証します。
func TestCountStatistics_CorruptedEntry(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	expected := usecase.StatisticsCounts{Total: 2}
	payload, _ := json.Marshal(expected)

	inner := &mockTaskRepository{
		countStatisticsFn: func(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error) {
			return expected, nil
		},
	}
	repo := NewCachingTaskRepository(rdb, time.Minute, inner, "taskstats")

	mock.ExpectGet("taskstats:5").SetVal("{not json")
	mock.ExpectDel("taskstats:5").SetVal(1)
	mock.ExpectSet("taskstats:5", payload, time.Minute).SetVal("OK")

	counts, err := repo.CountStatistics(context.Background(), 5, time.Now())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts != expected {
		t.Errorf("unexpected counts: %+v", counts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet redis expectations: %v", err)
	}
}

// TestMutations_InvalidateOwnerKey は各ミューテーションがオーナーのキャッシュキーを無効化することを検証します。
func TestMutations_InvalidateOwnerKey(t *testing.T) {
	t.Parallel()

	task := &entity.Task{ID: 1, Title: "buy milk", OwnerID: 5}

	tests := []struct {
		name   string
		mutate func(repo *CachingTaskRepository) error
	}{
		{"create", func(repo *CachingTaskRepository) error { return repo.Create(context.Background(), task) }},
		{"save", func(repo *CachingTaskRepository) error { return repo.Save(context.Background(), task) }},
		{"delete", func(repo *CachingTaskRepository) error { return repo.Delete(context.Background(), task) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rdb, mock := redismock.NewClientMock()
			repo := NewCachingTaskRepository(rdb, time.Minute, &mockTaskRepository{}, "taskstats")

			mock.ExpectDel("taskstats:5").SetVal(1)

			if err := tt.mutate(repo); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("cache key not invalidated: %v", err)
			}
		})
	}
}

// TestMutations_InnerFailureSkipsInvalidation はDB書き込み失敗時にキャッシュ無効化が行われないことを検証します。
func TestMutations_InnerFailureSkipsInvalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	expectedErr := errors.New("insert failed")
	inner := &mockTaskRepository{
		createFn: func(ctx context.Context, task *entity.Task) error {
			return expectedErr
		},
	}
	repo := NewCachingTaskRepository(rdb, time.Minute, inner, "taskstats")

	err := repo.Create(context.Background(), &entity.Task{OwnerID: 5})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected inner error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no redis calls expected: %v", err)
	}
}
