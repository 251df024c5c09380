package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// ReportRepository persists reports.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// FindAll lists reports under the caller's scope.
func (r *ReportRepository) FindAll(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Report, int64, error) {
	var items []entity.Report
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&entity.Report{}), scope, userID)

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

// FindByID loads one report.
func (r *ReportRepository) FindByID(ctx context.Context, scope access.Scope, userID, id string) (*entity.Report, error) {
	var report entity.Report
	err := scoped(r.db.WithContext(ctx), scope, userID).
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &report, nil
}

// Create persists a report.
func (r *ReportRepository) Create(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

// Update saves a report.
func (r *ReportRepository) Update(ctx context.Context, report *entity.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

// UpdateFields applies a partial column update to one report.
func (r *ReportRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.Report{}).Where("id = ?", id).Updates(fields).Error
}
