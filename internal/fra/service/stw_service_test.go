package service

import (
	"context"
	"testing"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

func TestSTWCreateWithDefects(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")

	stw, err := deps.svc.STW.Create(ctx, testUserID, &CreateSTWRequest{
		CustomerID: "cust-001",
		UPRN:       "UP-6001",
		RBNO:       "RB-6001",
		Defects: []STWDefectRequest{
			{Action: "Replace door closer"},
			{Action: "Fit smoke seals", Description: "Third floor lobby"},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(stw.Defects) != 2 {
		t.Fatalf("Expected 2 defects, got %d", len(stw.Defects))
	}

	loaded, err := deps.svc.STW.Get(ctx, access.ScopeAll, testUserID, stw.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(loaded.Defects) != 2 {
		t.Errorf("Expected defects persisted, got %d", len(loaded.Defects))
	}
}

func TestSTWCreateRejectsDuplicateIdentifiers(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedSTW(t, deps.db, "stw-001", "cust-001", "UP-6002", "RB-6002")

	_, err := deps.svc.STW.Create(ctx, testUserID, &CreateSTWRequest{
		CustomerID: "cust-001",
		UPRN:       "UP-6002",
		RBNO:       "RB-9999",
	})
	ve, ok := apperr.AsValidation(err)
	if !ok {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if _, found := ve.Fields["uprn"]; !found {
		t.Errorf("Expected uprn field error, got %v", ve.Fields)
	}
}

func TestSTWIdentifiersIndependentOfRequirements(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	// The same UPRN/RBNO pair on a requirement does not block an STW; the
	// clash is only checked at conversion time.
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-6003", "RB-6003")

	if _, err := deps.svc.STW.Create(ctx, testUserID, &CreateSTWRequest{
		CustomerID: "cust-001",
		UPRN:       "UP-6003",
		RBNO:       "RB-6003",
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestSTWUpdateLinksJob(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedSTW(t, deps.db, "stw-001", "cust-001", "UP-6004", "RB-6004")

	jobID := "job-001"
	updated, err := deps.svc.STW.Update(ctx, access.ScopeAll, testUserID, "stw-001",
		&UpdateSTWRequest{JobID: &jobID})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.JobID == nil || *updated.JobID != "job-001" {
		t.Fatalf("Expected job link, got %v", updated.JobID)
	}
}
