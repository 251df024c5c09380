package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// QuotationRepository persists quotations with optimistic locking.
type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// FindAll lists quotations under the caller's scope.
func (r *QuotationRepository) FindAll(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Quotation, int64, error) {
	var items []entity.Quotation
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&entity.Quotation{}), scope, userID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if requirementID := filters["requirement_id"]; requirementID != "" {
		query = query.Where("requirement_id = ?", requirementID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads one quotation.
func (r *QuotationRepository) FindByID(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	var q entity.Quotation
	err := scoped(r.db.WithContext(ctx), scope, userID).
		Where("id = ?", id).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &q, nil
}

// Create persists a quotation.
func (r *QuotationRepository) Create(ctx context.Context, q *entity.Quotation) error {
	return r.db.WithContext(ctx).Create(q).Error
}

// UpdateVersioned saves a quotation only if the caller still holds the
// current version; the stored version is bumped atomically. A stale read
// fails with ErrVersionConflict instead of last-write-wins.
func (r *QuotationRepository) UpdateVersioned(ctx context.Context, q *entity.Quotation) error {
	currentVersion := q.Version
	q.Version = currentVersion + 1

	res := r.db.WithContext(ctx).
		Model(&entity.Quotation{}).
		Where("id = ? AND version = ?", q.ID, currentVersion).
		Updates(map[string]interface{}{
			"snapshot":     q.Snapshot,
			"total_amount": q.TotalAmount,
			"status":       q.Status,
			"pdf_path":     q.PDFPath,
			"version":      q.Version,
		})
	if res.Error != nil {
		q.Version = currentVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		q.Version = currentVersion
		return apperr.ErrVersionConflict
	}
	return nil
}
