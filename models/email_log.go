package models

import "time"

// Email types recorded in the send log
const (
	EmailTypeWelcome          = "welcome"
	EmailTypePasswordReset    = "password_reset"
	EmailTypeAnalyticsSummary = "analytics_summary"
)

// EmailLog is an append-only audit record with one row per send attempt,
// successful or not
// AnalyticsPeriodStart/End are populated only for analytics_summary rows
// and drive the scheduler's duplicate suppression
type EmailLog struct {
	ID             uint    `gorm:"primaryKey" json:"id"`
	UserID         uint    `gorm:"index:idx_email_logs_user_id;not null" json:"user_id"`
	EmailType      string  `gorm:"size:30;not null;index:idx_email_logs_email_type" json:"email_type"`
	RecipientEmail string  `gorm:"size:255;not null;index:idx_email_logs_recipient" json:"recipient_email"`
	Subject        string  `gorm:"size:255;not null" json:"subject"`
	Success        bool    `gorm:"default:true" json:"success"`
	ErrorMessage   *string `gorm:"type:text" json:"error_message,omitempty"`

	AnalyticsPeriodStart *time.Time `json:"analytics_period_start,omitempty"`
	AnalyticsPeriodEnd   *time.Time `json:"analytics_period_end,omitempty"`

	SentAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_email_logs_sent_at" json:"sent_at"`
}

// TableName returns the table name for EmailLog
func (EmailLog) TableName() string { return "email_logs" }

// EmailLogFilter provides filter fields for repository queries
type EmailLogFilter struct {
	UserID           *uint
	EmailType        *string
	Success          *bool
	SentAfter        *time.Time
	SentBefore       *time.Time
	PeriodStartAfter *time.Time
}
