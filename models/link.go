package models

import "time"

// Link represents one entry on a user's public page
// ClickCount is a denormalized running counter incremented on each tracked
// redirect; it is a separate derived fact from the click_events rows and the
// two are not guaranteed to stay consistent with each other
type Link struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"index:idx_links_user_id;not null" json:"user_id"`
	Title        string  `gorm:"size:100;not null;index:idx_links_title" json:"title"`
	URL          string  `gorm:"size:2000;not null" json:"url"`
	Description  *string `gorm:"size:500" json:"description,omitempty"`
	Icon         *string `gorm:"size:50" json:"icon,omitempty"`
	IsActive     *bool   `gorm:"default:true" json:"is_active"`
	DisplayOrder int     `gorm:"default:0" json:"display_order"`
	ClickCount   int64   `gorm:"default:0" json:"click_count"`

	CreatedAt time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_links_created_at" json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName returns the table name for Link
func (Link) TableName() string { return "links" }

// LinkFilter provides filter fields for repository queries
type LinkFilter struct {
	ID            *uint
	UserID        *uint
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
