// Package usecase はtasksフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"time"

	"task_backend/internal/feature/tasks/domain/entity"
)

// TaskFilter is the typed query predicate translated by the repository
// into its native query form. All set fields combine with logical AND.
type TaskFilter struct {
	// IsDone narrows by completion state when non-nil.
	IsDone *bool
	// DueDateFrom narrows to tasks due on or after this time.
	DueDateFrom *time.Time
	// DueDateTo narrows to tasks due on or before this time.
	DueDateTo *time.Time
	// DueBefore narrows to tasks due strictly before this time.
	DueBefore *time.Time
	// Search matches tasks whose title or description contains the term.
	Search string
	// SortByDueDate orders results by due date ascending only, instead of
	// the default listing order (incomplete first, due date asc, newest first).
	SortByDueDate bool
}

// StatisticsCounts are the raw per-owner counts computed by the repository.
type StatisticsCounts struct {
	Total     int64
	Completed int64
	Overdue   int64
}

// Statistics is the derived per-owner statistics view.
type Statistics struct {
	Total          int64   `json:"total"`
	Completed      int64   `json:"completed"`
	Pending        int64   `json:"pending"`
	Overdue        int64   `json:"overdue"`
	CompletionRate float64 `json:"completionRate"`
}

// TaskRepository はタスクエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type TaskRepository interface {
	// Create は新しいタスクをストレージに永続化します。
	// (owner, title, due date)のユニーク制約違反時はErrDuplicateTaskを返します。
	Create(ctx context.Context, task *entity.Task) error

	// FindByID はIDでタスクを取得します。所有権チェックは行いません。
	FindByID(ctx context.Context, id uint) (*entity.Task, error)

	// FindAllByUser は指定ユーザーのタスクをフィルタに従って取得します。
	FindAllByUser(ctx context.Context, ownerID uint, filter TaskFilter) ([]entity.Task, error)

	// Save は既存タスクの変更を永続化します。
	Save(ctx context.Context, task *entity.Task) error

	// Delete はタスクを削除します。
	Delete(ctx context.Context, task *entity.Task) error

	// ExistsDuplicate は同一オーナー・タイトル・期日のタスクが既に存在するかを返します。
	// excludeIDが0以外の場合、そのIDのタスクは対象外になります（更新時の自分自身の除外用）。
	ExistsDuplicate(ctx context.Context, ownerID uint, title string, dueDate *time.Time, excludeID uint) (bool, error)

	// CountStatistics は統計用のカウント（総数・完了数・期限切れ数）を計算します。
	CountStatistics(ctx context.Context, ownerID uint, now time.Time) (StatisticsCounts, error)
}

// CreateTaskInput holds the fields for creating a task.
// DueDate is the raw YYYY-MM-DD string; empty means no due date.
type CreateTaskInput struct {
	Title       string
	Description string
	IsDone      bool
	DueDate     string
}

// UpdateTaskInput holds the partial fields for updating a task.
// A nil field keeps the current value. For DueDate, a pointer to the empty
// string clears the due date; any other value is reparsed like create.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	IsDone      *bool
	DueDate     *string
}

// TaskUsecase はタスクのビジネスロジックを実装します。
// すべての操作は認証済みの呼び出し元（ownerID）にスコープされます。
type TaskUsecase struct {
	tasks TaskRepository
}

// NewTaskUsecase はTaskUsecaseの新しいインスタンスを生成します。
func NewTaskUsecase(tasks TaskRepository) *TaskUsecase {
	return &TaskUsecase{tasks: tasks}
}

// ParseDueDate converts a YYYY-MM-DD string into a date-only value anchored
// at midnight UTC. An empty string yields nil (no due date).
func ParseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(entity.DueDateLayout, s, time.UTC)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	return &t, nil
}

// Create は指定オーナーの新しいタスクを作成します。
// 重複の事前チェックを行いますが、最終的な保証はストアのユニーク制約が行います。
func (u *TaskUsecase) Create(ctx context.Context, ownerID uint, in CreateTaskInput) (*entity.Task, error) {
	dueDate, err := ParseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	// NULLの期日はストアのユニーク制約で衝突しないため、期日ありの場合のみ事前チェック
	if dueDate != nil {
		exists, err := u.tasks.ExistsDuplicate(ctx, ownerID, in.Title, dueDate, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate: %w", err)
		}
		if exists {
			return nil, ErrDuplicateTask
		}
	}

	task := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		IsDone:      in.IsDone,
		DueDate:     dueDate,
		OwnerID:     ownerID,
	}
	if err := u.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// FindAllByUser は呼び出し元のタスクをフィルタに従って一覧します。
func (u *TaskUsecase) FindAllByUser(ctx context.Context, ownerID uint, filter TaskFilter) ([]entity.Task, error) {
	return u.tasks.FindAllByUser(ctx, ownerID, filter)
}

// FindOne は所有権チェック付きでタスクを取得します。
// タスクが存在しない場合はErrTaskNotFound、
// 呼び出し元がオーナーでない場合はErrNotTaskOwnerを返します。
func (u *TaskUsecase) FindOne(ctx context.Context, id, ownerID uint) (*entity.Task, error) {
	task, err := u.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.OwnerID != ownerID {
		return nil, ErrNotTaskOwner
	}
	return task, nil
}

// Update はタスクを部分更新します。省略されたフィールドは現在の値を保持します。
// 所有権・存在チェックの失敗はFindOneからそのまま伝播します。
func (u *TaskUsecase) Update(ctx context.Context, id, ownerID uint, in UpdateTaskInput) (*entity.Task, error) {
	task, err := u.FindOne(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	title := task.Title
	if in.Title != nil {
		title = *in.Title
	}
	dueDate := task.DueDate
	if in.DueDate != nil {
		// 空文字列は期日のクリア、それ以外はcreateと同じ方法で再解析
		dueDate, err = ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
	}

	// タイトルまたは期日が変わる場合のみ重複を事前チェック
	if dueDate != nil && (title != task.Title || !equalDueDates(dueDate, task.DueDate)) {
		exists, err := u.tasks.ExistsDuplicate(ctx, ownerID, title, dueDate, task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check duplicate: %w", err)
		}
		if exists {
			return nil, ErrDuplicateTask
		}
	}

	task.Title = title
	task.DueDate = dueDate
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.IsDone != nil {
		task.IsDone = *in.IsDone
	}

	if err := u.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ToggleComplete は所有権チェック付きでタスクの完了フラグを反転します。
func (u *TaskUsecase) ToggleComplete(ctx context.Context, id, ownerID uint) (*entity.Task, error) {
	task, err := u.FindOne(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	task.IsDone = !task.IsDone
	if err := u.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Remove は所有権チェック付きでタスクを削除し、削除前のレコードを返します。
func (u *TaskUsecase) Remove(ctx context.Context, id, ownerID uint) (*entity.Task, error) {
	task, err := u.FindOne(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := u.tasks.Delete(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetStatistics は呼び出し元のタスク統計を計算します。
// completionRateはタスクが0件のとき0になります（ゼロ除算の回避）。
func (u *TaskUsecase) GetStatistics(ctx context.Context, ownerID uint) (Statistics, error) {
	counts, err := u.tasks.CountStatistics(ctx, ownerID, time.Now().UTC())
	if err != nil {
		return Statistics{}, err
	}

	stats := Statistics{
		Total:     counts.Total,
		Completed: counts.Completed,
		Pending:   counts.Total - counts.Completed,
		Overdue:   counts.Overdue,
	}
	if counts.Total > 0 {
		stats.CompletionRate = float64(counts.Completed) / float64(counts.Total) * 100
	}
	return stats, nil
}

// GetUpcomingTasks は期日が[now, now+days]にある未完了タスクを期日昇順で返します。
// daysに上限は設けていません。負数は0に丸められます。
func (u *TaskUsecase) GetUpcomingTasks(ctx context.Context, ownerID uint, days int) ([]entity.Task, error) {
	if days < 0 {
		days = 0
	}
	now := time.Now().UTC()
	end := now.AddDate(0, 0, days)
	done := false
	return u.tasks.FindAllByUser(ctx, ownerID, TaskFilter{
		IsDone:        &done,
		DueDateFrom:   &now,
		DueDateTo:     &end,
		SortByDueDate: true,
	})
}

// GetOverdueTasks は期日を過ぎた未完了タスクを期日昇順で返します。
func (u *TaskUsecase) GetOverdueTasks(ctx context.Context, ownerID uint) ([]entity.Task, error) {
	now := time.Now().UTC()
	done := false
	return u.tasks.FindAllByUser(ctx, ownerID, TaskFilter{
		IsDone:        &done,
		DueBefore:     &now,
		SortByDueDate: true,
	})
}

// equalDueDates は2つの期日ポインタが同じ日付を指すかを返します。
func equalDueDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
