// Package entity defines the domain entities for the tasks feature.
package entity

import "time"

// DueDateLayout is the wire format for due dates. Due dates are calendar
// dates without a time component, anchored at midnight UTC.
const DueDateLayout = "2006-01-02"

// Task represents a single task owned by exactly one user.
// The tuple (OwnerID, Title, DueDate) is unique: a user cannot have two
// tasks with the same title and due date.
type Task struct {
	// ID is the unique identifier for the task.
	ID uint `gorm:"primaryKey"`

	// Title is the short description of the task.
	Title string `gorm:"size:40;not null;uniqueIndex:uniq_owner_title_due"`

	// Description is an optional longer text.
	Description string `gorm:"size:300"`

	// IsDone reports whether the task is completed.
	IsDone bool `gorm:"not null;default:false"`

	// DueDate is the optional calendar date the task is due,
	// stored at midnight UTC. Nil means no due date.
	DueDate *time.Time `gorm:"uniqueIndex:uniq_owner_title_due"`

	// OwnerID references the owning user. Ownership is immutable after creation.
	OwnerID uint `gorm:"not null;index;uniqueIndex:uniq_owner_title_due"`

	// CreatedAt is the timestamp when the task was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the task was last updated.
	UpdatedAt time.Time
}
