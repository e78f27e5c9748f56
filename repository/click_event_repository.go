package repository

import (
	"context"
	"errors"
	"time"

	"github.com/biotap/biotap/models"
	"gorm.io/gorm"
)

// ClickEventRepositoryImpl implements ClickEventRepository
// The ledger is append-only: there are no update or delete operations here
type ClickEventRepositoryImpl struct {
	*BaseRepository[models.ClickEvent, models.ClickEventFilter]
}

func NewClickEventRepository(db *gorm.DB) ClickEventRepository {
	return &ClickEventRepositoryImpl{BaseRepository: NewBaseRepository[models.ClickEvent, models.ClickEventFilter](db)}
}

func (r *ClickEventRepositoryImpl) ByID(ctx context.Context, id uint) (*models.ClickEvent, error) {
	db := r.getDB(ctx)
	var row models.ClickEvent
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ClickEventRepositoryImpl) applyFilter(db *gorm.DB, f models.ClickEventFilter) *gorm.DB {
	if f.LinkID != nil {
		db = db.Where("link_id = ?", *f.LinkID)
	}
	if len(f.LinkIDs) > 0 {
		db = db.Where("link_id IN ?", f.LinkIDs)
	}
	if f.HasCountry {
		db = db.Where("country IS NOT NULL")
	}
	if f.HasIP {
		db = db.Where("ip_address IS NOT NULL")
	}
	if f.HasDevice {
		db = db.Where("device_type IS NOT NULL")
	}
	if f.ClickedAfter != nil {
		db = db.Where("clicked_at >= ?", *f.ClickedAfter)
	}
	if f.ClickedBefore != nil {
		db = db.Where("clicked_at < ?", *f.ClickedBefore)
	}
	return db
}

func (r *ClickEventRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickEventFilter, orderBy string, limit, offset int) ([]*models.ClickEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.ClickEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ClickEventRepositoryImpl) Count(ctx context.Context, filter models.ClickEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.ClickEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ClickEventRepositoryImpl) Exists(ctx context.Context, filter models.ClickEventFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// CountDistinctIPs counts distinct non-null IP addresses in the window.
// Clicks without an IP are excluded from this count only.
func (r *ClickEventRepositoryImpl) CountDistinctIPs(ctx context.Context, linkIDs []uint, from time.Time) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.ClickEvent{}).
		Where("link_id IN ?", linkIDs).
		Where("clicked_at >= ?", from).
		Where("ip_address IS NOT NULL").
		Distinct("ip_address").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DailyCounts groups in-window clicks by UTC calendar date, ascending.
// Dates with zero clicks produce no row (sparse series).
func (r *ClickEventRepositoryImpl) DailyCounts(ctx context.Context, linkIDs []uint, from, to time.Time, onlyGeoTagged bool) ([]models.DailyCount, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ClickEvent{}).
		Select("to_char(DATE(clicked_at), 'YYYY-MM-DD') AS date, COUNT(id) AS clicks").
		Where("link_id IN ?", linkIDs).
		Where("clicked_at >= ?", from).
		Where("clicked_at <= ?", to)
	if onlyGeoTagged {
		query = query.Where("country IS NOT NULL")
	}
	var rows []models.DailyCount
	err := query.
		Group("DATE(clicked_at)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// DeviceCounts groups in-window clicks by device type, skipping rows where
// the device type was never recorded.
func (r *ClickEventRepositoryImpl) DeviceCounts(ctx context.Context, linkIDs []uint, from time.Time) ([]models.DeviceCount, error) {
	db := r.getDB(ctx)
	var rows []models.DeviceCount
	err := db.Model(&models.ClickEvent{}).
		Select("device_type, COUNT(id) AS count").
		Where("link_id IN ?", linkIDs).
		Where("clicked_at >= ?", from).
		Where("device_type IS NOT NULL").
		Group("device_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountryCounts groups in-window clicks by country with distinct-IP visitor
// counts, most-clicked countries first. Null-country rows are excluded.
func (r *ClickEventRepositoryImpl) CountryCounts(ctx context.Context, linkIDs []uint, from time.Time) ([]models.CountryCount, error) {
	db := r.getDB(ctx)
	var rows []models.CountryCount
	err := db.Model(&models.ClickEvent{}).
		Select("country, COUNT(id) AS clicks, COUNT(DISTINCT ip_address) AS unique_visitors").
		Where("link_id IN ?", linkIDs).
		Where("clicked_at >= ?", from).
		Where("country IS NOT NULL").
		Group("country").
		Order("clicks DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
