package dto

import (
	"time"

	"task_backend/internal/feature/auth/domain/entity"
)

// UserResp is the outward projection of a user.
// The password digest is intentionally absent.
type UserResp struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResp builds a UserResp from a user entity, stripping the digest.
func NewUserResp(u *entity.User) UserResp {
	return UserResp{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
