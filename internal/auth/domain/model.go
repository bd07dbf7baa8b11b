// Package domain contains core types for the auth service.
package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin   = "Admin"
	RoleTrainer = "Trainer"
)

// ParseRole maps a case-insensitive role name to its canonical form.
func ParseRole(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "admin":
		return RoleAdmin, true
	case "trainer":
		return RoleTrainer, true
	default:
		return "", false
	}
}

// User is a staff account that signs in to the dashboard.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"column:name;not null" json:"name"`
	Email        string       `gorm:"column:email;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	Role         string       `gorm:"column:role;not null" json:"role"`
	CreatedAt    time.Time    `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt    time.Time    `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
