package models

import "time"

// Device type classification derived from the user-agent string
const (
	DeviceTypeMobile  = "mobile"
	DeviceTypeTablet  = "tablet"
	DeviceTypeDesktop = "desktop"
	DeviceTypeUnknown = "unknown"
)

// BrowserUnknown is recorded when the browser family cannot be parsed
const BrowserUnknown = "unknown"

// ClickEvent represents a single tracked visit through a link
// Rows are append-only: created exactly once per tracked click, never
// updated or deleted by the normal flow
// IPAddress is sized for IPv6, Country is a 2-letter ISO code
type ClickEvent struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	LinkID     uint    `gorm:"index:idx_click_events_link_id;not null" json:"link_id"`
	IPAddress  *string `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  *string `gorm:"size:500" json:"user_agent,omitempty"`
	Referer    *string `gorm:"size:500" json:"referer,omitempty"`
	Country    *string `gorm:"size:2;index:idx_click_events_country" json:"country,omitempty"`
	DeviceType *string `gorm:"size:20" json:"device_type,omitempty"`
	Browser    *string `gorm:"size:50" json:"browser,omitempty"`

	ClickedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_click_events_clicked_at" json:"clicked_at"`
}

// TableName returns the table name for ClickEvent
func (ClickEvent) TableName() string { return "click_events" }

// ClickEventFilter provides filter fields for repository queries
// LinkIDs restricts to a user's link set; HasCountry/HasIP select only
// rows where the optional column is populated
type ClickEventFilter struct {
	LinkID        *uint
	LinkIDs       []uint
	HasCountry    bool
	HasIP         bool
	HasDevice     bool
	ClickedAfter  *time.Time
	ClickedBefore *time.Time
}

// DailyCount is one point of a sparse per-date click series
type DailyCount struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

// DeviceCount is a per-device-type aggregate row
type DeviceCount struct {
	DeviceType string `json:"device_type"`
	Count      int64  `json:"count"`
}

// CountryCount is a per-country aggregate row with distinct-IP visitors
type CountryCount struct {
	Country        string `json:"country"`
	Clicks         int64  `json:"clicks"`
	UniqueVisitors int64  `json:"unique_visitors"`
}
