package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names carried in the JWT and stored on the user row.
const (
	RoleUser   = "USER"
	RoleEditor = "EDITOR"
	RoleAdmin  = "ADMIN"
)

// User is a back-office account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:64" json:"name"`
	Role         string    `gorm:"size:16;not null;default:USER" json:"role"`
	Bio          string    `gorm:"type:text" json:"bio"`
	Avatar       string    `gorm:"size:512" json:"avatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate fills the default role when none was given.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleEditor, RoleAdmin:
		return true
	}
	return false
}
