package repository

import (
	"context"
	"errors"
	"time"

	"github.com/biotap/biotap/models"
	"gorm.io/gorm"
)

// EmailLogRepositoryImpl implements EmailLogRepository
type EmailLogRepositoryImpl struct {
	*BaseRepository[models.EmailLog, models.EmailLogFilter]
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &EmailLogRepositoryImpl{BaseRepository: NewBaseRepository[models.EmailLog, models.EmailLogFilter](db)}
}

func (r *EmailLogRepositoryImpl) ByID(ctx context.Context, id uint) (*models.EmailLog, error) {
	db := r.getDB(ctx)
	var row models.EmailLog
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// HasSuccessfulSummarySince reports whether a successful analytics_summary
// was already recorded for the user with a period starting on/after the
// given time. This is the scheduler's best-effort duplicate check; it is a
// log scan, not an atomic reservation.
func (r *EmailLogRepositoryImpl) HasSuccessfulSummarySince(ctx context.Context, userID uint, periodStart time.Time) (bool, error) {
	success := true
	summary := models.EmailTypeAnalyticsSummary
	filter := models.EmailLogFilter{
		UserID:           &userID,
		EmailType:        &summary,
		Success:          &success,
		PeriodStartAfter: &periodStart,
	}
	return r.Exists(ctx, filter)
}

// ListSummariesSince returns all analytics_summary attempts (successful or
// not) sent after the cutoff, for operator-facing stats.
func (r *EmailLogRepositoryImpl) ListSummariesSince(ctx context.Context, since time.Time) ([]*models.EmailLog, error) {
	summary := models.EmailTypeAnalyticsSummary
	filter := models.EmailLogFilter{
		EmailType: &summary,
		SentAfter: &since,
	}
	return r.ByFilter(ctx, filter, "sent_at ASC", 0, 0)
}

func (r *EmailLogRepositoryImpl) applyFilter(db *gorm.DB, f models.EmailLogFilter) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.EmailType != nil {
		db = db.Where("email_type = ?", *f.EmailType)
	}
	if f.Success != nil {
		db = db.Where("success = ?", *f.Success)
	}
	if f.SentAfter != nil {
		db = db.Where("sent_at >= ?", *f.SentAfter)
	}
	if f.SentBefore != nil {
		db = db.Where("sent_at < ?", *f.SentBefore)
	}
	if f.PeriodStartAfter != nil {
		db = db.Where("analytics_period_start >= ?", *f.PeriodStartAfter)
	}
	return db
}

func (r *EmailLogRepositoryImpl) ByFilter(ctx context.Context, filter models.EmailLogFilter, orderBy string, limit, offset int) ([]*models.EmailLog, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EmailLog{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.EmailLog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *EmailLogRepositoryImpl) Count(ctx context.Context, filter models.EmailLogFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.EmailLog{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EmailLogRepositoryImpl) Exists(ctx context.Context, filter models.EmailLogFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
