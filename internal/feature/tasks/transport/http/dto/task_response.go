package dto

import (
	"time"

	userentity "task_backend/internal/feature/auth/domain/entity"
	"task_backend/internal/feature/tasks/domain/entity"
)

// OwnerResp is the minimal owner projection embedded in task responses.
// It never carries the password digest.
type OwnerResp struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
}

// TaskResp is the outward representation of a task.
// DueDate is serialized as a YYYY-MM-DD string, or null when unset.
type TaskResp struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsDone      bool      `json:"isDone"`
	DueDate     *string   `json:"dueDate"`
	Owner       OwnerResp `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ErrorResp is the generic error envelope returned by the API.
type ErrorResp struct {
	Error string `json:"error"`
}

// NewTaskResp builds a TaskResp joining the task with its owner projection.
func NewTaskResp(t *entity.Task, owner *userentity.User) TaskResp {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.Format(entity.DueDateLayout)
		due = &s
	}
	return TaskResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsDone:      t.IsDone,
		DueDate:     due,
		Owner: OwnerResp{
			ID:        owner.ID,
			FirstName: owner.FirstName,
			LastName:  owner.LastName,
			Username:  owner.Username,
			Email:     owner.Email,
		},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// NewTaskListResp builds a list of task responses sharing one owner.
func NewTaskListResp(tasks []entity.Task, owner *userentity.User) []TaskResp {
	out := make([]TaskResp, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResp(&tasks[i], owner))
	}
	return out
}
