package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// ReceiptRepository reads the receiving ledger. Writes go through the
// service's transaction so the over-receipt guard and the insert are atomic.
type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// FindEventsByPO lists receiving events for an order, newest first.
func (r *ReceiptRepository) FindEventsByPO(ctx context.Context, poID string) ([]entity.PurchaseOrderInvoice, error) {
	var events []entity.PurchaseOrderInvoice
	err := r.db.WithContext(ctx).
		Preload("Rows").
		Where("po_id = ?", poID).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}

// FindEventByID loads one receiving event with its rows.
func (r *ReceiptRepository) FindEventByID(ctx context.Context, id string) (*entity.PurchaseOrderInvoice, error) {
	var event entity.PurchaseOrderInvoice
	err := r.db.WithContext(ctx).
		Preload("Rows").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFoundOrForbidden
		}
		return nil, err
	}
	return &event, nil
}

// InvoiceNumberExists checks global uniqueness of a vendor invoice number.
func (r *ReceiptRepository) InvoiceNumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrderInvoice{}).
		Where("invoice_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

// SumReceivedForItem totals all ledger rows for an order line, excluding one
// row when excludeRowID is set. With an exclusion it yields the
// "received before this entry" figure for that row.
func (r *ReceiptRepository) SumReceivedForItem(ctx context.Context, itemID, excludeRowID string) (decimal.Decimal, error) {
	q := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrderReceivedInventory{}).
		Where("po_item_id = ?", itemID)
	if excludeRowID != "" {
		q = q.Where("id <> ?", excludeRowID)
	}

	var total decimal.NullDecimal
	err := q.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
