package handler

import (
	"net/http"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/middleware"
	"github.com/emberwatch/emberwatch/internal/procurement/repository"
	"github.com/emberwatch/emberwatch/internal/procurement/service"
	"github.com/emberwatch/emberwatch/internal/testutil"
)

func setupProcurementTest(t *testing.T, allowOverride bool) *testutil.TestEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	svc := &service.Services{
		Vendor:  service.NewVendorService(repos.Vendor, repos.Location),
		PO:      service.NewPOService(repos.PO, repos.Vendor, repos.Location),
		Receipt: service.NewReceiptService(repos.Receipt, repos.PO, db, allowOverride, zap.NewNop()),
	}
	h := NewHandlers(svc)
	resolver := access.NewResolver(db, nil)

	api := testutil.AuthGroup(router, "/api/v1")

	vendors := api.Group("/vendors")
	vendors.POST("", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionCreate), h.Vendor.CreateVendor)

	locations := api.Group("/locations")
	locations.POST("", middleware.RequireScope(resolver, access.ModuleVendor, access.ActionCreate), h.Vendor.CreateLocation)

	orders := api.Group("/purchase-orders")
	orders.POST("", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionCreate), h.PO.Create)
	orders.GET("/:id", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionView), h.PO.Get)
	orders.PUT("/:id/status", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionApprove), h.PO.ChangeStatus)
	orders.POST("/:id/receipts", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionUpdate), h.PO.AddReceipt)
	orders.GET("/:id/receipts", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionList), h.PO.ListReceipts)

	receipts := api.Group("/receipts")
	receipts.GET("/:id", middleware.RequireScope(resolver, access.ModulePurchaseOrder, access.ActionView), h.PO.GetReceipt)

	return &testutil.TestEnv{DB: db, Router: router, T: t}
}

func grantAdmin(t *testing.T, db *gorm.DB) string {
	t.Helper()
	testutil.SeedTestUser(t, db, "test-user-001", "Test Admin", "admin@test.com", "admin")
	testutil.GrantAll(t, db, "admin", "all")
	return testutil.DefaultTestToken()
}

func TestPurchaseOrderReceiptFlow(t *testing.T) {
	env := setupProcurementTest(t, false)
	token := grantAdmin(t, env.DB)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/vendors", map[string]interface{}{
		"name": "FireSupply Ltd",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Vendor create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	vendorID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/locations", map[string]interface{}{
		"name": "Central Warehouse",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Location create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	locationID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders", map[string]interface{}{
		"vendor_id":   vendorID,
		"location_id": locationID,
		"items": []map[string]interface{}{
			{"item_name": "Fire door closer", "quantity": "10", "unit_price": "35.00"},
		},
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("PO create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	poData := testutil.ParseResponse(w)["data"].(map[string]interface{})
	poID := poData["id"].(string)
	items := poData["items"].([]interface{})
	itemID := items[0].(map[string]interface{})["id"].(string)

	for _, status := range []string{"sent_for_approval", "approved"} {
		w = testutil.DoRequest(env.Router, "PUT", "/api/v1/purchase-orders/"+poID+"/status",
			map[string]interface{}{"status": status}, token)
		if w.Code != http.StatusOK {
			t.Fatalf("PO status %s: expected 200, got %d: %s", status, w.Code, w.Body.String())
		}
	}

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/receipts",
		map[string]interface{}{
			"invoice_number": "INV-9001",
			"rows": []map[string]interface{}{
				{"po_item_id": itemID, "quantity": "6"},
			},
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Receipt: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	eventID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// Over-receipt is a 422.
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/receipts",
		map[string]interface{}{
			"invoice_number": "INV-9002",
			"rows": []map[string]interface{}{
				{"po_item_id": itemID, "quantity": "5"},
			},
		}, token)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Over-receipt: expected 422, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/receipts/"+eventID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Get receipt: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	rows := data["rows"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row view, got %d", len(rows))
	}
	row := rows[0].(map[string]interface{})
	if row["running_total"] != "6" && row["running_total"] != "6.00" {
		t.Errorf("Expected running total 6, got %v", row["running_total"])
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/purchase-orders/"+poID+"/receipts", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("List receipts: expected 200, got %d", w.Code)
	}
}
