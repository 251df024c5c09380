package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/procurement/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// ReceiptService maintains the receiving ledger: one event per vendor
// invoice, one row per received order line. The over-receipt guard and the
// insert run in a single transaction so concurrent receipts cannot slip past
// the cap together.
type ReceiptService struct {
	receiptRepo *repository.ReceiptRepository
	poRepo      *repository.PORepository
	db          *gorm.DB

	// allowOverrideByPolicy gates the per-request over-receipt override.
	// With it disabled the override flag is ignored and the cap always
	// applies.
	allowOverrideByPolicy bool
	logger                *zap.Logger
}

func NewReceiptService(receiptRepo *repository.ReceiptRepository, poRepo *repository.PORepository, db *gorm.DB, allowOverrideByPolicy bool, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		receiptRepo:           receiptRepo,
		poRepo:                poRepo,
		db:                    db,
		allowOverrideByPolicy: allowOverrideByPolicy,
		logger:                logger,
	}
}

// AddReceiptRequest records one receiving event against an order.
type AddReceiptRequest struct {
	InvoiceNumber string            `json:"invoice_number" binding:"required"`
	ReceivedAt    *time.Time        `json:"received_at"`
	Notes         string            `json:"notes"`
	Rows          []AddReceiptRow   `json:"rows" binding:"required,min=1"`
	AllowOver     bool              `json:"allow_over_receipt"`
}

type AddReceiptRow struct {
	POItemID string          `json:"po_item_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// AddReceipt creates one receiving event with its ledger rows. For each row
// the prior cumulative plus the new quantity must not exceed the ordered
// quantity; the override flag lifts the cap only when policy enables it.
func (s *ReceiptService) AddReceipt(ctx context.Context, scope access.Scope, userID, poID string, req *AddReceiptRequest) (*entity.PurchaseOrderInvoice, error) {
	po, err := s.poRepo.FindByID(ctx, scope, userID, poID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusApproved {
		return nil, apperr.NewValidation("status", "only an approved order can receive stock")
	}

	if strings.TrimSpace(req.InvoiceNumber) == "" {
		return nil, apperr.NewValidation("invoice_number", "invoice number is required")
	}

	itemsByID := make(map[string]entity.PurchaseOrderItem, len(po.Items))
	for _, item := range po.Items {
		itemsByID[item.ID] = item
	}
	for i, row := range req.Rows {
		if _, ok := itemsByID[row.POItemID]; !ok {
			return nil, apperr.NewValidation(
				fmt.Sprintf("rows[%d].po_item_id", i), "line does not belong to this order")
		}
		if !row.Quantity.IsPositive() {
			return nil, apperr.NewValidation(
				fmt.Sprintf("rows[%d].quantity", i), "quantity must be positive")
		}
	}

	overIgnored := req.AllowOver && !s.allowOverrideByPolicy
	allowOver := req.AllowOver && s.allowOverrideByPolicy

	event := &entity.PurchaseOrderInvoice{
		ID:            uuid.New().String()[:32],
		POID:          poID,
		InvoiceNumber: req.InvoiceNumber,
		ReceivedAt:    req.ReceivedAt,
		Notes:         req.Notes,
		CreatedBy:     userID,
	}
	for _, row := range req.Rows {
		event.Rows = append(event.Rows, entity.PurchaseOrderReceivedInventory{
			ID:        uuid.New().String()[:32],
			InvoiceID: event.ID,
			POItemID:  row.POItemID,
			Quantity:  row.Quantity,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.PurchaseOrderInvoice{}).
			Where("invoice_number = ?", req.InvoiceNumber).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.NewValidation("invoice_number", "invoice number already used")
		}

		if !allowOver {
			for _, row := range event.Rows {
				var prior decimal.NullDecimal
				err := tx.Model(&entity.PurchaseOrderReceivedInventory{}).
					Where("po_item_id = ?", row.POItemID).
					Select("COALESCE(SUM(quantity), 0)").
					Scan(&prior).Error
				if err != nil {
					return err
				}
				cumulative := row.Quantity
				if prior.Valid {
					cumulative = cumulative.Add(prior.Decimal)
				}
				if cumulative.GreaterThan(itemsByID[row.POItemID].Quantity) {
					return fmt.Errorf("%w: line %s would reach %s of %s ordered",
						apperr.ErrOverReceipt, row.POItemID,
						cumulative.StringFixed(2),
						itemsByID[row.POItemID].Quantity.StringFixed(2))
				}
			}
		}

		return tx.Create(event).Error
	})
	if err != nil {
		return nil, err
	}

	if overIgnored {
		s.logger.Warn("Over-receipt override requested but disabled by policy",
			zap.String("po_id", poID),
			zap.String("invoice_number", req.InvoiceNumber),
		)
	}
	s.logger.Info("Recorded receiving event",
		zap.String("po_id", poID),
		zap.String("invoice_number", req.InvoiceNumber),
		zap.Int("rows", len(event.Rows)),
		zap.Bool("over_receipt_allowed", allowOver),
	)

	return event, nil
}

// ListEvents returns the receiving events for an order.
func (s *ReceiptService) ListEvents(ctx context.Context, scope access.Scope, userID, poID string) ([]entity.PurchaseOrderInvoice, error) {
	if _, err := s.poRepo.FindByID(ctx, scope, userID, poID); err != nil {
		return nil, err
	}
	return s.receiptRepo.FindEventsByPO(ctx, poID)
}

// ReceiptRowView is one ledger row with its cumulative context: everything
// received for the line before this entry, this entry, and the running
// total after it.
type ReceiptRowView struct {
	RowID          string          `json:"row_id"`
	POItemID       string          `json:"po_item_id"`
	ReceivedBefore decimal.Decimal `json:"received_before"`
	ThisEntry      decimal.Decimal `json:"this_entry"`
	RunningTotal   decimal.Decimal `json:"running_total"`
	OrderedQty     decimal.Decimal `json:"ordered_qty"`
}

// EventWithTotals loads one receiving event and computes the cumulative view
// per row: the sum of all other ledger rows for the same line plus the
// current entry.
func (s *ReceiptService) EventWithTotals(ctx context.Context, scope access.Scope, userID, eventID string) (*entity.PurchaseOrderInvoice, []ReceiptRowView, error) {
	event, err := s.receiptRepo.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	po, err := s.poRepo.FindByID(ctx, scope, userID, event.POID)
	if err != nil {
		return nil, nil, err
	}
	orderedByItem := make(map[string]decimal.Decimal, len(po.Items))
	for _, item := range po.Items {
		orderedByItem[item.ID] = item.Quantity
	}

	views := make([]ReceiptRowView, 0, len(event.Rows))
	for _, row := range event.Rows {
		before, err := s.receiptRepo.SumReceivedForItem(ctx, row.POItemID, row.ID)
		if err != nil {
			return nil, nil, err
		}
		views = append(views, ReceiptRowView{
			RowID:          row.ID,
			POItemID:       row.POItemID,
			ReceivedBefore: before,
			ThisEntry:      row.Quantity,
			RunningTotal:   before.Add(row.Quantity),
			OrderedQty:     orderedByItem[row.POItemID],
		})
	}

	return event, views, nil
}
