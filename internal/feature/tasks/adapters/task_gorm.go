// Package adapters はtasksフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"task_backend/internal/feature/tasks/domain/entity"
	"task_backend/internal/feature/tasks/usecase"
)

// taskGorm はTaskRepositoryインターフェースのGORM実装です。
// TaskFilterをGORMのクエリチェーンに変換します。
type taskGorm struct {
	db *gorm.DB
}

var _ usecase.TaskRepository = (*taskGorm)(nil)

// NewTaskRepository は指定されたgorm.DB接続でtaskGormリポジトリの新しいインスタンスを生成します。
func NewTaskRepository(db *gorm.DB) *taskGorm {
	return &taskGorm{db: db}
}

// Create はタスクをデータベースに追加します。
// (owner, title, due date)のユニーク制約違反時はusecase.ErrDuplicateTaskを返します。
func (r *taskGorm) Create(ctx context.Context, task *entity.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrDuplicateTask
		}
		return err
	}
	return nil
}

// FindByID はIDでタスクを取得します。所有権チェックは呼び出し側の責務です。
// タスクが存在しない場合、usecase.ErrTaskNotFoundを返します。
func (r *taskGorm) FindByID(ctx context.Context, id uint) (*entity.Task, error) {
	var task entity.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindAllByUser は指定ユーザーのタスクをフィルタに従って取得します。
// デフォルトの並び順は未完了が先、期日昇順、作成日時降順です。
func (r *taskGorm) FindAllByUser(ctx context.Context, ownerID uint, f usecase.TaskFilter) ([]entity.Task, error) {
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)

	if f.IsDone != nil {
		q = q.Where("is_done = ?", *f.IsDone)
	}
	if f.DueDateFrom != nil {
		q = q.Where("due_date >= ?", *f.DueDateFrom)
	}
	if f.DueDateTo != nil {
		q = q.Where("due_date <= ?", *f.DueDateTo)
	}
	if f.DueBefore != nil {
		q = q.Where("due_date < ?", *f.DueBefore)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", term, term)
	}

	if f.SortByDueDate {
		q = q.Order("due_date ASC")
	} else {
		q = q.Order("is_done ASC").Order("due_date ASC").Order("created_at DESC")
	}

	var tasks []entity.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save は既存タスクの変更を永続化します。
// ユニーク制約違反時はusecase.ErrDuplicateTaskを返します。
func (r *taskGorm) Save(ctx context.Context, task *entity.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.ErrDuplicateTask
		}
		return err
	}
	return nil
}

// Delete はタスクを削除します。
func (r *taskGorm) Delete(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Delete(task).Error
}

// ExistsDuplicate は同一オーナー・タイトル・期日のタスクが既に存在するかを返します。
func (r *taskGorm) ExistsDuplicate(ctx context.Context, ownerID uint, title string, dueDate *time.Time, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("owner_id = ? AND title = ?", ownerID, title)

	if dueDate != nil {
		q = q.Where("due_date = ?", *dueDate)
	} else {
		q = q.Where("due_date IS NULL")
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountStatistics は統計用のカウントを計算します。
// overdueは期日がnowより前の未完了タスクの数です。
func (r *taskGorm) CountStatistics(ctx context.Context, ownerID uint, now time.Time) (usecase.StatisticsCounts, error) {
	var counts usecase.StatisticsCounts

	if err := r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("owner_id = ?", ownerID).
		Count(&counts.Total).Error; err != nil {
		return usecase.StatisticsCounts{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("owner_id = ? AND is_done = ?", ownerID, true).
		Count(&counts.Completed).Error; err != nil {
		return usecase.StatisticsCounts{}, err
	}

	if err := r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("owner_id = ? AND is_done = ? AND due_date < ?", ownerID, false, now).
		Count(&counts.Overdue).Error; err != nil {
		return usecase.StatisticsCounts{}, err
	}

	return counts, nil
}
