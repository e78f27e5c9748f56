package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/biotap/biotap/models"
	"github.com/biotap/biotap/utils"
	"gorm.io/gorm"
)

// LinkRepositoryImpl implements LinkRepository
type LinkRepositoryImpl struct {
	*BaseRepository[models.Link, models.LinkFilter]
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &LinkRepositoryImpl{BaseRepository: NewBaseRepository[models.Link, models.LinkFilter](db)}
}

func (r *LinkRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Link, error) {
	db := r.getDB(ctx)
	var row models.Link
	if err := db.Last(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *LinkRepositoryImpl) ListByUser(ctx context.Context, userID uint) ([]*models.Link, error) {
	return r.ByFilter(ctx, models.LinkFilter{UserID: &userID}, "display_order ASC, created_at DESC", 0, 0)
}

func (r *LinkRepositoryImpl) ListActiveByUser(ctx context.Context, userID uint) ([]*models.Link, error) {
	active := true
	filter := models.LinkFilter{UserID: &userID, IsActive: &active}
	return r.ByFilter(ctx, filter, "display_order ASC, created_at DESC", 0, 0)
}

// IncrementClickCount bumps the denormalized counter on a tracked redirect.
// This is intentionally a separate write path from the click_events insert.
func (r *LinkRepositoryImpl) IncrementClickCount(ctx context.Context, linkID uint) error {
	db := r.getDB(ctx)
	result := db.Model(&models.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]any{
			"click_count": gorm.Expr("click_count + 1"),
			"updated_at":  utils.UTCNow(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to increment click count for link %d: %w", linkID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LinkRepositoryImpl) Update(ctx context.Context, link *models.Link) error {
	db := r.getDB(ctx)
	if err := db.Save(link).Error; err != nil {
		return fmt.Errorf("failed to update link %d: %w", link.ID, err)
	}
	return nil
}

func (r *LinkRepositoryImpl) Delete(ctx context.Context, linkID uint) error {
	db := r.getDB(ctx)
	result := db.Delete(&models.Link{}, linkID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete link %d: %w", linkID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *LinkRepositoryImpl) applyFilter(db *gorm.DB, f models.LinkFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.IsActive != nil {
		db = db.Where("is_active = ?", *f.IsActive)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *LinkRepositoryImpl) ByFilter(ctx context.Context, filter models.LinkFilter, orderBy string, limit, offset int) ([]*models.Link, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Link
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *LinkRepositoryImpl) Count(ctx context.Context, filter models.LinkFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Link{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *LinkRepositoryImpl) Exists(ctx context.Context, filter models.LinkFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
