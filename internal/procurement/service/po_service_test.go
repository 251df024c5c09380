package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

func TestPOCreateComputesTotalsServerSide(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)

	po, err := deps.po.Create(context.Background(), testUserID, &CreatePORequest{
		VendorID:   "vendor-001",
		LocationID: "loc-001",
		Items: []CreatePOItem{
			{ItemName: "Fire door closer", Quantity: decimal.RequireFromString("10"), UnitPrice: decimal.RequireFromString("35.00")},
			{ItemName: "Smoke seal pack", Quantity: decimal.RequireFromString("4"), UnitPrice: decimal.RequireFromString("12.50")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if po.Status != entity.POStatusPending {
		t.Errorf("Expected pending, got %s", po.Status)
	}
	if !strings.HasPrefix(po.POCode, "PO-") {
		t.Errorf("Expected generated order code, got %s", po.POCode)
	}
	// 10*35.00 + 4*12.50
	if po.TotalAmount.StringFixed(2) != "400.00" {
		t.Errorf("Expected total 400.00, got %s", po.TotalAmount.StringFixed(2))
	}
	if len(po.Items) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(po.Items))
	}
	if po.Items[0].TotalPrice.StringFixed(2) != "350.00" {
		t.Errorf("Expected line total 350.00, got %s", po.Items[0].TotalPrice.StringFixed(2))
	}
	if po.Items[0].Version != 1 {
		t.Errorf("Expected line version 1, got %d", po.Items[0].Version)
	}
}

func TestPOCreateRejectsUnknownVendor(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)

	_, err := deps.po.Create(context.Background(), testUserID, &CreatePORequest{
		VendorID:   "vendor-missing",
		LocationID: "loc-001",
		Items: []CreatePOItem{
			{ItemName: "Fire door closer", Quantity: decimal.RequireFromString("1")},
		},
	})
	if !errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("Expected ErrNotFoundOrForbidden, got %v", err)
	}
}

func TestPOStatusFlow(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po := createApprovedPO(t, deps, "10")
	if po.ApprovedBy == nil || *po.ApprovedBy != testUserID {
		t.Errorf("Expected approver recorded, got %v", po.ApprovedBy)
	}
	if po.ApprovedAt == nil {
		t.Error("Expected approval timestamp")
	}

	// Approved is terminal.
	_, err := deps.po.ChangeStatus(ctx, access.ScopeAll, testUserID, po.ID, entity.POStatusPending)
	if !errors.Is(err, apperr.ErrIllegalTransition) {
		t.Fatalf("Expected ErrIllegalTransition out of approved, got %v", err)
	}
}

func TestPOItemUpdateVersioning(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po, err := deps.po.Create(ctx, testUserID, &CreatePORequest{
		VendorID:   "vendor-001",
		LocationID: "loc-001",
		Items: []CreatePOItem{
			{ItemName: "Fire door closer", Quantity: decimal.RequireFromString("10"), UnitPrice: decimal.RequireFromString("35.00")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	itemID := po.Items[0].ID

	qty := decimal.RequireFromString("8")
	updated, err := deps.po.UpdateItem(ctx, access.ScopeAll, testUserID, po.ID, itemID,
		&UpdatePOItemRequest{Quantity: &qty, Version: 1})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("Expected version 2, got %d", updated.Version)
	}
	if updated.TotalPrice.StringFixed(2) != "280.00" {
		t.Errorf("Expected recomputed line total 280.00, got %s", updated.TotalPrice.StringFixed(2))
	}

	// A stale version loses.
	_, err = deps.po.UpdateItem(ctx, access.ScopeAll, testUserID, po.ID, itemID,
		&UpdatePOItemRequest{Quantity: &qty, Version: 1})
	if !errors.Is(err, apperr.ErrVersionConflict) {
		t.Fatalf("Expected ErrVersionConflict, got %v", err)
	}
}

func TestPOItemUpdateOnlyWhilePending(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)

	po := createApprovedPO(t, deps, "10")
	qty := decimal.RequireFromString("5")
	_, err := deps.po.UpdateItem(context.Background(), access.ScopeAll, testUserID, po.ID, po.Items[0].ID,
		&UpdatePOItemRequest{Quantity: &qty, Version: 1})
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error editing an approved order, got %v", err)
	}
}

func TestPOCodesAreSequential(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	items := []CreatePOItem{
		{ItemName: "Fire door closer", Quantity: decimal.RequireFromString("1")},
	}
	first, err := deps.po.Create(ctx, testUserID, &CreatePORequest{VendorID: "vendor-001", LocationID: "loc-001", Items: items})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := deps.po.Create(ctx, testUserID, &CreatePORequest{VendorID: "vendor-001", LocationID: "loc-001", Items: items})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.POCode == second.POCode {
		t.Errorf("Expected distinct order codes, got %s twice", first.POCode)
	}
}
