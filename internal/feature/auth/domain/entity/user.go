// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User represents a registered account.
// Email and Username are each globally unique.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// FirstName is the user's given name.
	FirstName string `gorm:"size:50;not null"`

	// LastName is the user's family name.
	LastName string `gorm:"size:50;not null"`

	// Email is the user's email address used for authentication.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Username is the public handle chosen at registration.
	Username string `gorm:"uniqueIndex;size:30;not null"`

	// Password is the bcrypt digest of the user's password.
	// It must never be serialized into a response body.
	Password string `gorm:"size:255;not null"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time
}
