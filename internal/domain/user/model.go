package user

import "time"

// User is an account holder. PasswordHash never leaves the process.
type User struct {
	ID           uint      `json:"-"`
	PublicID     string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterParams carries the fields needed to create an account.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// UpdateParams carries optional profile changes; nil fields are untouched.
type UpdateParams struct {
	Username *string
	Email    *string
	Password *string
}
