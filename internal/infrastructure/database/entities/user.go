package entities

import (
	"time"

	"chat-server/internal/domain/user"
)

// User represents the database schema for accounts
type User struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID     string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Username     string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(128);uniqueIndex;not null"`
	PasswordHash string `gorm:"type:varchar(128);not null"`
}

// TableName specifies the table name for User.
func (User) TableName() string {
	return "users"
}

// EtoD converts database entity to domain model
func (u *User) EtoD() *user.User {
	return &user.User{
		ID:           u.ID,
		PublicID:     u.PublicID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// NewSchemaUser creates a database entity from domain model
func NewSchemaUser(u *user.User) *User {
	return &User{
		ID:           u.ID,
		PublicID:     u.PublicID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
