package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// PORepository persists purchase orders and their line items.
type PORepository struct {
	db *gorm.DB
}

func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindAll lists purchase orders under the caller's scope.
func (r *PORepository) FindAll(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	var orders []entity.PurchaseOrder
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&entity.PurchaseOrder{}), scope, userID)

	if vendorID := filters["vendor_id"]; vendorID != "" {
		query = query.Where("vendor_id = ?", vendorID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("po_code LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Vendor").
		Preload("Location").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// FindByID loads one purchase order with items.
func (r *PORepository) FindByID(ctx context.Context, scope access.Scope, userID, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := scoped(r.db.WithContext(ctx), scope, userID).
		Preload("Vendor").
		Preload("Location").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &po, nil
}

// Create persists a purchase order with its items.
func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// Update saves the order header only; items carry their own versions.
func (r *PORepository) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Items", "Vendor", "Location").Save(po).Error
}

// FindItemByID loads one order line.
func (r *PORepository) FindItemByID(ctx context.Context, itemID string) (*entity.PurchaseOrderItem, error) {
	var item entity.PurchaseOrderItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItemVersioned saves an order line with an optimistic version check.
// A stale version fails with ErrVersionConflict instead of overwriting.
func (r *PORepository) UpdateItemVersioned(ctx context.Context, item *entity.PurchaseOrderItem) error {
	prev := item.Version
	item.Version = prev + 1

	res := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrderItem{}).
		Where("id = ? AND version = ?", item.ID, prev).
		Updates(map[string]interface{}{
			"item_name":   item.ItemName,
			"description": item.Description,
			"quantity":    item.Quantity,
			"unit":        item.Unit,
			"unit_price":  item.UnitPrice,
			"total_price": item.TotalPrice,
			"version":     item.Version,
		})
	if res.Error != nil {
		item.Version = prev
		return res.Error
	}
	if res.RowsAffected == 0 {
		item.Version = prev
		return apperr.ErrVersionConflict
	}
	return nil
}

// GenerateCode produces the next order code PO-{year}-{seq}.
func (r *PORepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("PO-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrder{}).
		Select("COALESCE(MAX(po_code), '')").
		Where("po_code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "PO-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("PO-%s-%04d", year, seq), nil
}
