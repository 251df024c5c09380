package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// STWRepository persists pre-survey work items.
type STWRepository struct {
	db *gorm.DB
}

func NewSTWRepository(db *gorm.DB) *STWRepository {
	return &STWRepository{db: db}
}

// FindAll lists STWs under the caller's scope.
func (r *STWRepository) FindAll(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.STW, int64, error) {
	var items []entity.STW
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&entity.STW{}), scope, userID)

	if customerID := filters["customer_id"]; customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("uprn LIKE ? OR rbno LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Defects").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads one STW with defects.
func (r *STWRepository) FindByID(ctx context.Context, scope access.Scope, userID, id string) (*entity.STW, error) {
	var stw entity.STW
	err := scoped(r.db.WithContext(ctx), scope, userID).
		Preload("Defects").
		Where("id = ?", id).
		First(&stw).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &stw, nil
}

// Create persists an STW with its defects.
func (r *STWRepository) Create(ctx context.Context, stw *entity.STW) error {
	return r.db.WithContext(ctx).Create(stw).Error
}

// Update saves an STW.
func (r *STWRepository) Update(ctx context.Context, stw *entity.STW) error {
	return r.db.WithContext(ctx).Save(stw).Error
}

// UPRNOrRBNOExists checks identifier uniqueness inside the pre-survey table.
func (r *STWRepository) UPRNOrRBNOExists(ctx context.Context, uprn, rbno, excludeID string) (bool, bool, error) {
	var uprnCount, rbnoCount int64

	q := r.db.WithContext(ctx).Model(&entity.STW{})
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	if err := q.Session(&gorm.Session{}).Where("uprn = ?", uprn).Count(&uprnCount).Error; err != nil {
		return false, false, err
	}
	if err := q.Session(&gorm.Session{}).Where("rbno = ?", rbno).Count(&rbnoCount).Error; err != nil {
		return false, false, err
	}
	return uprnCount > 0, rbnoCount > 0, nil
}
