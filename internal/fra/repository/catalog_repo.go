package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// CatalogRepository persists SOR rate-catalog items. Catalog rows are not
// owner-scoped; the catalog is shared reference data.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindAll lists catalog items.
func (r *CatalogRepository) FindAll(ctx context.Context, page, pageSize int, search string) ([]entity.RateCatalogItem, int64, error) {
	var items []entity.RateCatalogItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.RateCatalogItem{})
	if search != "" {
		query = query.Where("code LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("code ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads one catalog item.
func (r *CatalogRepository) FindByID(ctx context.Context, id string) (*entity.RateCatalogItem, error) {
	var item entity.RateCatalogItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &item, nil
}

// FindByIDs loads a catalog subset keyed by id.
func (r *CatalogRepository) FindByIDs(ctx context.Context, ids []string) (map[string]entity.RateCatalogItem, error) {
	var items []entity.RateCatalogItem
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]entity.RateCatalogItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	return byID, nil
}

// Create persists a catalog item.
func (r *CatalogRepository) Create(ctx context.Context, item *entity.RateCatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update saves a catalog item.
func (r *CatalogRepository) Update(ctx context.Context, item *entity.RateCatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
