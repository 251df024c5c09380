package service

import (
	"context"
	"errors"
	"testing"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

func TestRequirementCreateRejectsDuplicateIdentifiers(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")

	first, err := deps.svc.Requirement.Create(ctx, testUserID, &CreateRequirementRequest{
		CustomerID: "cust-001",
		UPRN:       "UP-1001",
		RBNO:       "RB-1001",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.Status != entity.RequirementStatusActive {
		t.Errorf("Expected status active, got %s", first.Status)
	}

	// Same UPRN, different RBNO.
	_, err = deps.svc.Requirement.Create(ctx, testUserID, &CreateRequirementRequest{
		CustomerID: "cust-001",
		UPRN:       "UP-1001",
		RBNO:       "RB-1002",
	})
	ve, ok := apperr.AsValidation(err)
	if !ok {
		t.Fatalf("Expected validation error for duplicate UPRN, got %v", err)
	}
	if _, found := ve.Fields["uprn"]; !found {
		t.Errorf("Expected uprn field error, got %v", ve.Fields)
	}

	// Same RBNO, different UPRN.
	_, err = deps.svc.Requirement.Create(ctx, testUserID, &CreateRequirementRequest{
		CustomerID: "cust-001",
		UPRN:       "UP-1002",
		RBNO:       "RB-1001",
	})
	ve, ok = apperr.AsValidation(err)
	if !ok {
		t.Fatalf("Expected validation error for duplicate RBNO, got %v", err)
	}
	if _, found := ve.Fields["rbno"]; !found {
		t.Errorf("Expected rbno field error, got %v", ve.Fields)
	}
}

func TestRequirementCreateValidatesRequiredFields(t *testing.T) {
	deps := newTestServices(t)

	_, err := deps.svc.Requirement.Create(context.Background(), testUserID, &CreateRequirementRequest{
		CustomerID: "",
		UPRN:       "  ",
		RBNO:       "",
	})
	ve, ok := apperr.AsValidation(err)
	if !ok {
		t.Fatalf("Expected validation error, got %v", err)
	}
	for _, field := range []string{"customer_id", "uprn", "rbno"} {
		if _, found := ve.Fields[field]; !found {
			t.Errorf("Expected %s field error, got %v", field, ve.Fields)
		}
	}
}

func TestRequirementAssignSurveyorsAdvancesStatus(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-2001", "RB-2001")

	surveyor := "surveyor-001"
	updated, err := deps.svc.Requirement.AssignSurveyors(ctx, access.ScopeAll, testUserID, "req-001",
		&AssignSurveyorsRequest{SurveyorID: &surveyor})
	if err != nil {
		t.Fatalf("AssignSurveyors failed: %v", err)
	}
	if updated.Status != entity.RequirementStatusToSurveyor {
		t.Errorf("Expected to-surveyor after first assignment, got %s", updated.Status)
	}

	qs := "qs-001"
	updated, err = deps.svc.Requirement.AssignSurveyors(ctx, access.ScopeAll, testUserID, "req-001",
		&AssignSurveyorsRequest{QuantitySurveyorID: &qs})
	if err != nil {
		t.Fatalf("AssignSurveyors failed: %v", err)
	}
	if updated.Status != entity.RequirementStatusAssigned {
		t.Errorf("Expected assigned-to-surveyor after both assignments, got %s", updated.Status)
	}
}

func TestRequirementAssignBothSurveyorsAtOnce(t *testing.T) {
	deps := newTestServices(t)
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-2002", "RB-2002")

	surveyor, qs := "surveyor-001", "qs-001"
	updated, err := deps.svc.Requirement.AssignSurveyors(context.Background(), access.ScopeAll, testUserID, "req-001",
		&AssignSurveyorsRequest{SurveyorID: &surveyor, QuantitySurveyorID: &qs})
	if err != nil {
		t.Fatalf("AssignSurveyors failed: %v", err)
	}
	if updated.Status != entity.RequirementStatusAssigned {
		t.Errorf("Expected assigned-to-surveyor, got %s", updated.Status)
	}
}

func TestRequirementChangeStatusRejectsIllegalTransition(t *testing.T) {
	deps := newTestServices(t)
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-2003", "RB-2003")

	// active -> assigned-to-surveyor skips to-surveyor.
	_, err := deps.svc.Requirement.ChangeStatus(context.Background(), access.ScopeAll, testUserID,
		"req-001", entity.RequirementStatusAssigned)
	if !errors.Is(err, apperr.ErrIllegalTransition) {
		t.Fatalf("Expected ErrIllegalTransition, got %v", err)
	}
}

func TestRequirementScopeSelfHidesOtherUsersRecords(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-2004", "RB-2004")

	_, err := deps.svc.Requirement.Get(ctx, access.ScopeSelf, "someone-else", "req-001")
	if !errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("Expected ErrNotFoundOrForbidden for out-of-scope read, got %v", err)
	}

	// The owner still sees it.
	if _, err := deps.svc.Requirement.Get(ctx, access.ScopeSelf, testUserID, "req-001"); err != nil {
		t.Fatalf("Owner read failed: %v", err)
	}
}

func TestDefectStatusTransitions(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-3001", "RB-3001")

	defect, err := deps.svc.Requirement.AddDefect(ctx, access.ScopeAll, testUserID, "req-001",
		&CreateDefectRequest{Action: "Replace fire door closer"})
	if err != nil {
		t.Fatalf("AddDefect failed: %v", err)
	}
	if defect.Status != entity.DefectStatusPending {
		t.Fatalf("Expected pending, got %s", defect.Status)
	}

	// pending -> executed is a legal shortcut.
	executed := entity.DefectStatusExecuted
	updated, err := deps.svc.Requirement.UpdateDefect(ctx, access.ScopeAll, testUserID, "req-001", defect.ID,
		&UpdateDefectRequest{Status: &executed})
	if err != nil {
		t.Fatalf("UpdateDefect failed: %v", err)
	}
	if updated.Status != entity.DefectStatusExecuted {
		t.Errorf("Expected executed, got %s", updated.Status)
	}

	// Backward moves are never legal.
	pending := entity.DefectStatusPending
	_, err = deps.svc.Requirement.UpdateDefect(ctx, access.ScopeAll, testUserID, "req-001", defect.ID,
		&UpdateDefectRequest{Status: &pending})
	if !errors.Is(err, apperr.ErrIllegalTransition) {
		t.Fatalf("Expected ErrIllegalTransition for backward move, got %v", err)
	}
}

func TestDefectMustBelongToRequirement(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-3002", "RB-3002")
	seedRequirement(t, deps.db, "req-002", "cust-001", "UP-3003", "RB-3003")
	seedDefect(t, deps.db, "def-001", "req-001", "Fit intumescent strips")

	desc := "updated"
	_, err := deps.svc.Requirement.UpdateDefect(ctx, access.ScopeAll, testUserID, "req-002", "def-001",
		&UpdateDefectRequest{Description: &desc})
	if !errors.Is(err, apperr.ErrNotFoundOrForbidden) {
		t.Fatalf("Expected ErrNotFoundOrForbidden for cross-requirement defect, got %v", err)
	}
}
