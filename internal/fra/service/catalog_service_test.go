package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

func TestCatalogCreateDefaultsAndValidation(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()

	item, err := deps.svc.Catalog.Create(ctx, &SaveCatalogItemRequest{
		Code:  "SOR-001",
		Price: decimal.RequireFromString("42.50"),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if item.Unit != "each" {
		t.Errorf("Expected default unit each, got %s", item.Unit)
	}
	if !item.Active {
		t.Error("Expected new item active")
	}

	_, err = deps.svc.Catalog.Create(ctx, &SaveCatalogItemRequest{
		Code:  "SOR-002",
		Price: decimal.RequireFromString("-1.00"),
	})
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error for negative price, got %v", err)
	}
}

func TestCatalogUpdate(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCatalogItem(t, deps.db, "cat-001", "SOR-001", "42.50")

	inactive := false
	updated, err := deps.svc.Catalog.Update(ctx, "cat-001", &SaveCatalogItemRequest{
		Code:   "SOR-001",
		Price:  decimal.RequireFromString("55.00"),
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Price.StringFixed(2) != "55.00" {
		t.Errorf("Expected price 55.00, got %s", updated.Price.StringFixed(2))
	}
	if updated.Active {
		t.Error("Expected item deactivated")
	}
}

func TestCustomerBillingAddressUpsert(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")

	addr, err := deps.svc.Customer.SaveBillingAddress(ctx, "cust-001", &SaveBillingAddressRequest{
		Address:  "12 Harbour Road",
		City:     "Bristol",
		PostCode: "BS1 4QA",
	})
	if err != nil {
		t.Fatalf("SaveBillingAddress failed: %v", err)
	}
	if addr.CustomerID != "cust-001" {
		t.Errorf("Expected customer link, got %s", addr.CustomerID)
	}

	// A second save replaces the record; the customer keeps one address.
	if _, err := deps.svc.Customer.SaveBillingAddress(ctx, "cust-001", &SaveBillingAddressRequest{
		Address:  "99 New Street",
		City:     "Bristol",
		PostCode: "BS2 9XX",
	}); err != nil {
		t.Fatalf("Second SaveBillingAddress failed: %v", err)
	}

	customer, err := deps.svc.Customer.Get(ctx, "cust-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if customer.BillingAddress == nil {
		t.Fatal("Expected billing address on customer")
	}
	if customer.BillingAddress.PostCode != "BS2 9XX" {
		t.Errorf("Expected replaced address, got %s", customer.BillingAddress.PostCode)
	}

	_, err = deps.svc.Customer.SaveBillingAddress(ctx, "cust-001", &SaveBillingAddressRequest{
		Address: "  ", City: "Bristol", PostCode: "",
	})
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error for blank fields, got %v", err)
	}
}
