// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/biotap/biotap/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ListActiveUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	Deactivate(ctx context.Context, userID uint) error
}

// LinkRepository defines operations for links
type LinkRepository interface {
	Repository[models.Link, models.LinkFilter]
	ListByUser(ctx context.Context, userID uint) ([]*models.Link, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]*models.Link, error)
	IncrementClickCount(ctx context.Context, linkID uint) error
	Update(ctx context.Context, link *models.Link) error
	Delete(ctx context.Context, linkID uint) error
}

// ClickEventRepository defines operations for the append-only click ledger,
// including the windowed aggregations the analytics flow is built on
type ClickEventRepository interface {
	Repository[models.ClickEvent, models.ClickEventFilter]
	CountDistinctIPs(ctx context.Context, linkIDs []uint, from time.Time) (int64, error)
	DailyCounts(ctx context.Context, linkIDs []uint, from, to time.Time, onlyGeoTagged bool) ([]models.DailyCount, error)
	DeviceCounts(ctx context.Context, linkIDs []uint, from time.Time) ([]models.DeviceCount, error)
	CountryCounts(ctx context.Context, linkIDs []uint, from time.Time) ([]models.CountryCount, error)
}

// EmailLogRepository defines operations for the email send log
type EmailLogRepository interface {
	Repository[models.EmailLog, models.EmailLogFilter]
	HasSuccessfulSummarySince(ctx context.Context, userID uint, periodStart time.Time) (bool, error)
	ListSummariesSince(ctx context.Context, since time.Time) ([]*models.EmailLog, error)
}
