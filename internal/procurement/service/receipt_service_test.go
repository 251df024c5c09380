package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

func receiptRow(itemID, quantity string) AddReceiptRow {
	return AddReceiptRow{POItemID: itemID, Quantity: decimal.RequireFromString(quantity)}
}

func TestReceiptRequiresApprovedOrder(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po, err := deps.po.Create(ctx, testUserID, &CreatePORequest{
		VendorID:   "vendor-001",
		LocationID: "loc-001",
		Items: []CreatePOItem{
			{ItemName: "Fire door closer", Quantity: decimal.RequireFromString("10")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(po.Items[0].ID, "5")},
	})
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error for pending order, got %v", err)
	}
}

func TestReceiptCumulativeCap(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po := createApprovedPO(t, deps, "10")
	itemID := po.Items[0].ID

	// 6 received, 4 remaining.
	if _, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(itemID, "6")},
	}); err != nil {
		t.Fatalf("First receipt failed: %v", err)
	}

	// 6 + 5 > 10 is rejected.
	_, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-002",
		Rows:          []AddReceiptRow{receiptRow(itemID, "5")},
	})
	if !errors.Is(err, apperr.ErrOverReceipt) {
		t.Fatalf("Expected ErrOverReceipt, got %v", err)
	}

	// The failed event left no ledger rows behind.
	var rows int64
	deps.db.Model(&entity.PurchaseOrderReceivedInventory{}).Where("po_item_id = ?", itemID).Count(&rows)
	if rows != 1 {
		t.Errorf("Expected 1 ledger row after rejected receipt, got %d", rows)
	}

	// Receiving exactly the remainder is fine.
	if _, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-003",
		Rows:          []AddReceiptRow{receiptRow(itemID, "4")},
	}); err != nil {
		t.Fatalf("Receipt of remainder failed: %v", err)
	}
}

func TestReceiptOverrideIgnoredWhenPolicyDisabled(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po := createApprovedPO(t, deps, "10")

	_, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(po.Items[0].ID, "12")},
		AllowOver:     true,
	})
	if !errors.Is(err, apperr.ErrOverReceipt) {
		t.Fatalf("Expected cap enforced despite override flag, got %v", err)
	}
}

func TestReceiptOverrideHonoredWhenPolicyEnabled(t *testing.T) {
	deps := newTestServices(t, true)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po := createApprovedPO(t, deps, "10")

	event, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(po.Items[0].ID, "12")},
		AllowOver:     true,
	})
	if err != nil {
		t.Fatalf("Expected override honored, got %v", err)
	}
	if len(event.Rows) != 1 {
		t.Fatalf("Expected 1 ledger row, got %d", len(event.Rows))
	}

	// Without the flag the cap still applies even when policy permits
	// overrides.
	_, err = deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-002",
		Rows:          []AddReceiptRow{receiptRow(po.Items[0].ID, "1")},
	})
	if !errors.Is(err, apperr.ErrOverReceipt) {
		t.Fatalf("Expected ErrOverReceipt without the flag, got %v", err)
	}
}

func TestReceiptInvoiceNumberUnique(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po := createApprovedPO(t, deps, "10")
	itemID := po.Items[0].ID

	if _, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(itemID, "2")},
	}); err != nil {
		t.Fatalf("First receipt failed: %v", err)
	}

	_, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(itemID, "2")},
	})
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error for reused invoice number, got %v", err)
	}
}

func TestReceiptRowsMustBelongToOrder(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	first := createApprovedPO(t, deps, "10")
	second := createApprovedPO(t, deps, "10")

	_, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, first.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		Rows:          []AddReceiptRow{receiptRow(second.Items[0].ID, "2")},
	})
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error for foreign line, got %v", err)
	}
}

func TestReceiptEventWithCumulativeTotals(t *testing.T) {
	deps := newTestServices(t, false)
	seedVendorAndLocation(t, deps.db)
	ctx := context.Background()

	po := createApprovedPO(t, deps, "10")
	itemID := po.Items[0].ID
	received := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

	if _, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-001",
		ReceivedAt:    &received,
		Rows:          []AddReceiptRow{receiptRow(itemID, "3")},
	}); err != nil {
		t.Fatalf("First receipt failed: %v", err)
	}
	second, err := deps.receipt.AddReceipt(ctx, access.ScopeAll, testUserID, po.ID, &AddReceiptRequest{
		InvoiceNumber: "INV-002",
		Rows:          []AddReceiptRow{receiptRow(itemID, "4")},
	})
	if err != nil {
		t.Fatalf("Second receipt failed: %v", err)
	}

	event, views, err := deps.receipt.EventWithTotals(ctx, access.ScopeAll, testUserID, second.ID)
	if err != nil {
		t.Fatalf("EventWithTotals failed: %v", err)
	}
	if event.InvoiceNumber != "INV-002" {
		t.Errorf("Expected INV-002, got %s", event.InvoiceNumber)
	}
	if len(views) != 1 {
		t.Fatalf("Expected 1 row view, got %d", len(views))
	}
	view := views[0]
	if view.ReceivedBefore.StringFixed(2) != "3.00" {
		t.Errorf("Expected received-before 3.00, got %s", view.ReceivedBefore.StringFixed(2))
	}
	if view.ThisEntry.StringFixed(2) != "4.00" {
		t.Errorf("Expected this-entry 4.00, got %s", view.ThisEntry.StringFixed(2))
	}
	if view.RunningTotal.StringFixed(2) != "7.00" {
		t.Errorf("Expected running total 7.00, got %s", view.RunningTotal.StringFixed(2))
	}
	if view.OrderedQty.StringFixed(2) != "10.00" {
		t.Errorf("Expected ordered 10.00, got %s", view.OrderedQty.StringFixed(2))
	}

	events, err := deps.receipt.ListEvents(ctx, access.ScopeAll, testUserID, po.ID)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(events))
	}
}
