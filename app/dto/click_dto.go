package dto

// TrackClickRequest carries optional click context; absent fields degrade
// to unknown/absent enrichment results
type TrackClickRequest struct {
	Referer *string `json:"referer,omitempty" validate:"omitempty,max=500"`
}

// ClickEventDTO echoes the recorded click event back to the caller
type ClickEventDTO struct {
	ID         uint    `json:"id"`
	LinkID     uint    `json:"link_id"`
	Country    *string `json:"country,omitempty"`
	DeviceType *string `json:"device_type,omitempty"`
	Browser    *string `json:"browser,omitempty"`
	ClickedAt  string  `json:"clicked_at"`
}

// WeeklyJobReport reports one weekly summary run's outcome counts
type WeeklyJobReport struct {
	Sent    int `json:"sent"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`
}
