package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// RequirementRepository persists requirements and their defects.
type RequirementRepository struct {
	db *gorm.DB
}

func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// FindAll lists requirements under the caller's scope.
func (r *RequirementRepository) FindAll(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Requirement, int64, error) {
	var items []entity.Requirement
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&entity.Requirement{}), scope, userID)

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
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
		Preload("Customer").
		Preload("Defects").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads one requirement with defects and images. A row outside the
// caller's scope reads the same as a missing row.
func (r *RequirementRepository) FindByID(ctx context.Context, scope access.Scope, userID, id string) (*entity.Requirement, error) {
	var req entity.Requirement
	err := scoped(r.db.WithContext(ctx), scope, userID).
		Preload("Customer").
		Preload("Customer.BillingAddress").
		Preload("Defects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Images").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &req, nil
}

// UPRNOrRBNOExists reports whether any requirement already carries either
// identifier, excluding excludeID when updating in place.
func (r *RequirementRepository) UPRNOrRBNOExists(ctx context.Context, uprn, rbno, excludeID string) (bool, bool, error) {
	var uprnCount, rbnoCount int64

	q := r.db.WithContext(ctx).Model(&entity.Requirement{})
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

// Create persists a requirement (and any attached defects).
func (r *RequirementRepository) Create(ctx context.Context, req *entity.Requirement) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// Update saves a requirement.
func (r *RequirementRepository) Update(ctx context.Context, req *entity.Requirement) error {
	return r.db.WithContext(ctx).Save(req).Error
}

// Delete removes a requirement with its defects and images.
func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("requirement_id = ?", id).Delete(&entity.RequirementDefect{}).Error; err != nil {
			return err
		}
		if err := tx.Where("requirement_id = ?", id).Delete(&entity.RequirementImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Requirement{}).Error
	})
}

// FindDefectByID loads one defect.
func (r *RequirementRepository) FindDefectByID(ctx context.Context, id string) (*entity.RequirementDefect, error) {
	var defect entity.RequirementDefect
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&defect).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &defect, nil
}

// FindDefectsByIDs loads a defect subset belonging to one requirement.
func (r *RequirementRepository) FindDefectsByIDs(ctx context.Context, requirementID string, ids []string) ([]entity.RequirementDefect, error) {
	var defects []entity.RequirementDefect
	err := r.db.WithContext(ctx).
		Where("requirement_id = ? AND id IN ?", requirementID, ids).
		Find(&defects).Error
	return defects, err
}

// CreateDefect persists one defect.
func (r *RequirementRepository) CreateDefect(ctx context.Context, defect *entity.RequirementDefect) error {
	return r.db.WithContext(ctx).Create(defect).Error
}

// UpdateDefect saves one defect.
func (r *RequirementRepository) UpdateDefect(ctx context.Context, defect *entity.RequirementDefect) error {
	return r.db.WithContext(ctx).Save(defect).Error
}

// AddImage attaches a site image to a requirement.
func (r *RequirementRepository) AddImage(ctx context.Context, img *entity.RequirementImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}
