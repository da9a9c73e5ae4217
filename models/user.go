package models

import (
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// User is an account holder: either a management admin or a laundry client
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	FirstName    string    `gorm:"size:30" json:"first_name"`
	LastName     string    `gorm:"size:150" json:"last_name"`
	Email        string    `gorm:"size:254" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:'client'" json:"role"` // "admin" or "client"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// FullName returns first and last name separated by a space
func (u User) FullName() string {
	return FormatFullName(u.FirstName, u.LastName)
}

// IsAdmin reports whether the user may use the management API
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FormatFullName joins the non-empty name parts with a space
func FormatFullName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
