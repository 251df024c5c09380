package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// CustomerRepository persists customers and their billing addresses.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// FindAll lists customers.
func (r *CustomerRepository) FindAll(ctx context.Context, page, pageSize int, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if search != "" {
		query = query.Where("name LIKE ? OR company_name LIKE ? OR email LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("BillingAddress").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&customers).Error

	return customers, total, err
}

// FindByID loads one customer with its billing address.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).
		Preload("BillingAddress").
		Where("id = ?", id).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &customer, nil
}

// Create persists a customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

// Update saves a customer.
func (r *CustomerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// SaveBillingAddress creates or replaces the customer's billing address.
func (r *CustomerRepository) SaveBillingAddress(ctx context.Context, addr *entity.BillingAddress) error {
	var existing entity.BillingAddress
	err := r.db.WithContext(ctx).Where("customer_id = ?", addr.CustomerID).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.WithContext(ctx).Create(addr).Error
		}
		return err
	}
	addr.ID = existing.ID
	addr.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(addr).Error
}
