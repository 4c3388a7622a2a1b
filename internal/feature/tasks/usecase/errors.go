// Package usecase implements the business logic for the tasks feature.
package usecase

import "errors"

var (
	// ErrTaskNotFound is returned when no task exists with the requested ID.
	ErrTaskNotFound = errors.New("task not found")

	// ErrNotTaskOwner is returned when the caller is not the owner of the task.
	ErrNotTaskOwner = errors.New("task belongs to another user")

	// ErrDuplicateTask is returned when a mutation would violate the
	// (owner, title, due date) uniqueness constraint.
	ErrDuplicateTask = errors.New("a task with this title and due date already exists")

	// ErrInvalidDueDate is returned when a due date string is not a valid YYYY-MM-DD date.
	ErrInvalidDueDate = errors.New("due date must be in YYYY-MM-DD format")
)
