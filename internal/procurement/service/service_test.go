package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/procurement/repository"
	"github.com/emberwatch/emberwatch/internal/testutil"
)

const testUserID = "test-user-001"

type testDeps struct {
	db      *gorm.DB
	repos   *repository.Repositories
	vendor  *VendorService
	po      *POService
	receipt *ReceiptService
}

// newTestServices wires the procurement services. allowOverride mirrors the
// policy switch gating per-request over-receipt overrides.
func newTestServices(t *testing.T, allowOverride bool) *testDeps {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	logger := zap.NewNop()

	return &testDeps{
		db:      db,
		repos:   repos,
		vendor:  NewVendorService(repos.Vendor, repos.Location),
		po:      NewPOService(repos.PO, repos.Vendor, repos.Location),
		receipt: NewReceiptService(repos.Receipt, repos.PO, db, allowOverride, logger),
	}
}

func seedVendorAndLocation(t *testing.T, db *gorm.DB) {
	t.Helper()
	vendor := &entity.Vendor{
		ID:        "vendor-001",
		Name:      "FireSupply Ltd",
		Email:     "sales@firesupply.test",
		CreatedBy: testUserID,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("Failed to seed vendor: %v", err)
	}
	location := &entity.InventoryLocation{
		ID:        "loc-001",
		Name:      "Central Warehouse",
		CreatedBy: testUserID,
	}
	if err := db.Create(location).Error; err != nil {
		t.Fatalf("Failed to seed location: %v", err)
	}
}

// createApprovedPO creates an order with one line of the given quantity and
// walks it to approved.
func createApprovedPO(t *testing.T, deps *testDeps, quantity string) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()

	po, err := deps.po.Create(ctx, testUserID, &CreatePORequest{
		VendorID:   "vendor-001",
		LocationID: "loc-001",
		Items: []CreatePOItem{
			{
				ItemName:  "Fire door closer",
				Quantity:  decimal.RequireFromString(quantity),
				UnitPrice: decimal.RequireFromString("35.00"),
			},
		},
	})
	if err != nil {
		t.Fatalf("PO create failed: %v", err)
	}
	if _, err := deps.po.ChangeStatus(ctx, access.ScopeAll, testUserID, po.ID, entity.POStatusSentForApproval); err != nil {
		t.Fatalf("PO send for approval failed: %v", err)
	}
	approved, err := deps.po.ChangeStatus(ctx, access.ScopeAll, testUserID, po.ID, entity.POStatusApproved)
	if err != nil {
		t.Fatalf("PO approve failed: %v", err)
	}
	return approved
}
