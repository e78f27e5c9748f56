// Package models contains the GORM data models for the application
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns a collection of links
// PasswordHash is opaque to the rest of the system (bcrypt)
// Deactivating a user does not remove their links or click history
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex:uk_users_uuid;not null" json:"uuid"`
	Username     string    `gorm:"size:50;not null;uniqueIndex:uk_users_username" json:"username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:uk_users_email" json:"email"`
	FullName     *string   `gorm:"size:100" json:"full_name,omitempty"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	IsActive     *bool     `gorm:"default:true;index:idx_users_is_active" json:"is_active"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for User
func (User) TableName() string { return "users" }

// UserFilter provides filter fields for repository queries
type UserFilter struct {
	ID            *uint
	Username      *string
	Email         *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
