package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// VendorRepository persists vendors.
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// FindAll lists vendors.
func (r *VendorRepository) FindAll(ctx context.Context, page, pageSize int, search string) ([]entity.Vendor, int64, error) {
	var vendors []entity.Vendor
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Vendor{})
	if search != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&vendors).Error

	return vendors, total, err
}

// FindByID loads one vendor.
func (r *VendorRepository) FindByID(ctx context.Context, id string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &vendor, nil
}

// Create persists a vendor.
func (r *VendorRepository) Create(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

// Update saves a vendor.
func (r *VendorRepository) Update(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

// LocationRepository persists inventory locations.
type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// FindAll lists inventory locations.
func (r *LocationRepository) FindAll(ctx context.Context, page, pageSize int, search string) ([]entity.InventoryLocation, int64, error) {
	var locations []entity.InventoryLocation
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryLocation{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&locations).Error

	return locations, total, err
}

// FindByID loads one location.
func (r *LocationRepository) FindByID(ctx context.Context, id string) (*entity.InventoryLocation, error) {
	var location entity.InventoryLocation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &location, nil
}

// Create persists a location.
func (r *LocationRepository) Create(ctx context.Context, location *entity.InventoryLocation) error {
	return r.db.WithContext(ctx).Create(location).Error
}

// Update saves a location.
func (r *LocationRepository) Update(ctx context.Context, location *entity.InventoryLocation) error {
	return r.db.WithContext(ctx).Save(location).Error
}
