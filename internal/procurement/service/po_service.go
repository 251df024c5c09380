package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/procurement/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// POService owns the purchase order lifecycle up to receiving.
type POService struct {
	poRepo       *repository.PORepository
	vendorRepo   *repository.VendorRepository
	locationRepo *repository.LocationRepository
}

func NewPOService(poRepo *repository.PORepository, vendorRepo *repository.VendorRepository, locationRepo *repository.LocationRepository) *POService {
	return &POService{poRepo: poRepo, vendorRepo: vendorRepo, locationRepo: locationRepo}
}

type CreatePORequest struct {
	VendorID   string         `json:"vendor_id" binding:"required"`
	LocationID string         `json:"location_id" binding:"required"`
	Notes      string         `json:"notes"`
	Items      []CreatePOItem `json:"items" binding:"required,min=1"`
}

type CreatePOItem struct {
	ItemName    string          `json:"item_name" binding:"required"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (s *POService) List(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, scope, userID, page, pageSize, filters)
}

func (s *POService) Get(ctx context.Context, scope access.Scope, userID, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, scope, userID, id)
}

// Create persists a purchase order with its lines. Row totals are computed
// server-side from unit price and quantity.
func (s *POService) Create(ctx context.Context, userID string, req *CreatePORequest) (*entity.PurchaseOrder, error) {
	if _, err := s.vendorRepo.FindByID(ctx, req.VendorID); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.FindByID(ctx, req.LocationID); err != nil {
		return nil, err
	}

	code, err := s.poRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order code: %w", err)
	}

	po := &entity.PurchaseOrder{
		ID:         uuid.New().String()[:32],
		POCode:     code,
		VendorID:   req.VendorID,
		LocationID: req.LocationID,
		Status:     entity.POStatusPending,
		Notes:      req.Notes,
		CreatedBy:  userID,
	}

	total := decimal.Zero
	for i, item := range req.Items {
		if !item.Quantity.IsPositive() {
			return nil, apperr.NewValidation(fmt.Sprintf("items[%d].quantity", i), "quantity must be positive")
		}
		unit := item.Unit
		if unit == "" {
			unit = "each"
		}
		rowTotal := item.UnitPrice.Mul(item.Quantity)
		total = total.Add(rowTotal)
		po.Items = append(po.Items, entity.PurchaseOrderItem{
			ID:          uuid.New().String()[:32],
			POID:        po.ID,
			ItemName:    item.ItemName,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        unit,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  rowTotal,
			Version:     1,
			SortOrder:   i + 1,
		})
	}
	po.TotalAmount = total

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// ChangeStatus moves an order along its transition table. Approval records
// who approved and when.
func (s *POService) ChangeStatus(ctx context.Context, scope access.Scope, userID, id, newStatus string) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}

	if !entity.POCanTransition(po.Status, newStatus) {
		return nil, fmt.Errorf("%w: purchase order %s -> %s", apperr.ErrIllegalTransition, po.Status, newStatus)
	}

	po.Status = newStatus
	if newStatus == entity.POStatusApproved {
		now := time.Now()
		po.ApprovedBy = &userID
		po.ApprovedAt = &now
	}

	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// UpdatePOItemRequest edits one order line under its optimistic version.
type UpdatePOItemRequest struct {
	ItemName    *string          `json:"item_name"`
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Unit        *string          `json:"unit"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Version     int              `json:"version" binding:"required"`
}

// UpdateItem edits an order line. Lines are only editable while the order is
// still pending; quantity edits on a partially received line cannot drop
// below what was already received, which the next receipt guard enforces
// naturally.
func (s *POService) UpdateItem(ctx context.Context, scope access.Scope, userID, poID, itemID string, req *UpdatePOItemRequest) (*entity.PurchaseOrderItem, error) {
	po, err := s.poRepo.FindByID(ctx, scope, userID, poID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusPending {
		return nil, apperr.NewValidation("status", "only a pending order can be edited")
	}

	item, err := s.poRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.POID != poID {
		return nil, apperr.ErrNotFoundOrForbidden
	}
	if item.Version != req.Version {
		return nil, apperr.ErrVersionConflict
	}

	if req.ItemName != nil {
		item.ItemName = *req.ItemName
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Quantity != nil {
		if !req.Quantity.IsPositive() {
			return nil, apperr.NewValidation("quantity", "quantity must be positive")
		}
		item.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	item.TotalPrice = item.UnitPrice.Mul(item.Quantity)

	if err := s.poRepo.UpdateItemVersioned(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
