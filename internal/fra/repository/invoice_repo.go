package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// InvoiceRepository persists invoices with optimistic locking.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// FindAll lists invoices under the caller's scope.
func (r *InvoiceRepository) FindAll(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Invoice, int64, error) {
	var items []entity.Invoice
	var total int64

	query := scoped(r.db.WithContext(ctx).Model(&entity.Invoice{}), scope, userID)

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

// FindByID loads one invoice.
func (r *InvoiceRepository) FindByID(ctx context.Context, scope access.Scope, userID, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := scoped(r.db.WithContext(ctx), scope, userID).
		Where("id = ?", id).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &inv, nil
}

// Create persists an invoice.
func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// UpdateVersioned saves an invoice under an optimistic version check.
func (r *InvoiceRepository) UpdateVersioned(ctx context.Context, inv *entity.Invoice) error {
	currentVersion := inv.Version
	inv.Version = currentVersion + 1

	res := r.db.WithContext(ctx).
		Model(&entity.Invoice{}).
		Where("id = ? AND version = ?", inv.ID, currentVersion).
		Updates(map[string]interface{}{
			"snapshot":         inv.Snapshot,
			"billing_snapshot": inv.BillingSnapshot,
			"total_amount":     inv.TotalAmount,
			"status":           inv.Status,
			"pdf_path":         inv.PDFPath,
			"content_hash":     inv.ContentHash,
			"submitted_at":     inv.SubmittedAt,
			"version":          inv.Version,
		})
	if res.Error != nil {
		inv.Version = currentVersion
		return res.Error
	}
	if res.RowsAffected == 0 {
		inv.Version = currentVersion
		return apperr.ErrVersionConflict
	}
	return nil
}
