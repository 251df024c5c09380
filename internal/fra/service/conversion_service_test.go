package service

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

func seedSTW(t *testing.T, db *gorm.DB, id, customerID, uprn, rbno string, defects ...entity.STWDefect) *entity.STW {
	t.Helper()
	stw := &entity.STW{
		ID:          id,
		CustomerID:  customerID,
		UPRN:        uprn,
		RBNO:        rbno,
		Description: "Pre-survey work item",
		Action:      "Survey and remediate",
		CreatedBy:   testUserID,
	}
	if err := db.Create(stw).Error; err != nil {
		t.Fatalf("Failed to seed STW: %v", err)
	}
	for i := range defects {
		defects[i].STWID = id
		if err := db.Create(&defects[i]).Error; err != nil {
			t.Fatalf("Failed to seed STW defect: %v", err)
		}
	}
	return stw
}

func TestConvertSTWCreatesRequirementAndRemovesSTW(t *testing.T) {
	deps := newTestServices(t)
	ctx := context.Background()
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedSTW(t, deps.db, "stw-001", "cust-001", "UP-5001", "RB-5001",
		entity.STWDefect{ID: "stwd-001", Action: "Replace door closer", Description: "Ground floor"},
		entity.STWDefect{ID: "stwd-002", Action: "Seal riser penetrations"},
	)

	requirement, err := deps.svc.Conversion.Convert(ctx, access.ScopeAll, testUserID, "stw-001")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if requirement.UPRN != "UP-5001" || requirement.RBNO != "RB-5001" {
		t.Errorf("Identifiers not carried over: %s / %s", requirement.UPRN, requirement.RBNO)
	}
	if requirement.Status != entity.RequirementStatusActive {
		t.Errorf("Expected active, got %s", requirement.Status)
	}
	if len(requirement.Defects) != 2 {
		t.Fatalf("Expected 2 defects, got %d", len(requirement.Defects))
	}
	for _, d := range requirement.Defects {
		if d.Status != entity.DefectStatusPending {
			t.Errorf("Expected converted defect pending, got %s", d.Status)
		}
	}

	// The STW and its defects are gone.
	var stwCount, stwDefectCount int64
	deps.db.Model(&entity.STW{}).Where("id = ?", "stw-001").Count(&stwCount)
	deps.db.Model(&entity.STWDefect{}).Where("stw_id = ?", "stw-001").Count(&stwDefectCount)
	if stwCount != 0 || stwDefectCount != 0 {
		t.Errorf("Expected STW removed, got %d STWs and %d defects", stwCount, stwDefectCount)
	}
}

func TestConvertSTWBlockedByLinkedJob(t *testing.T) {
	deps := newTestServices(t)
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	stw := seedSTW(t, deps.db, "stw-001", "cust-001", "UP-5002", "RB-5002")
	jobID := "job-001"
	deps.db.Model(stw).Update("job_id", jobID)

	_, err := deps.svc.Conversion.Convert(context.Background(), access.ScopeAll, testUserID, "stw-001")
	if !errors.Is(err, apperr.ErrConversionBlocked) {
		t.Fatalf("Expected ErrConversionBlocked, got %v", err)
	}
}

func TestConvertSTWRejectsDuplicateRequirementIdentifiers(t *testing.T) {
	deps := newTestServices(t)
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedRequirement(t, deps.db, "req-001", "cust-001", "UP-5003", "RB-5003")
	seedSTW(t, deps.db, "stw-001", "cust-001", "UP-5003", "RB-9999")

	_, err := deps.svc.Conversion.Convert(context.Background(), access.ScopeAll, testUserID, "stw-001")
	ve, ok := apperr.AsValidation(err)
	if !ok {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if _, found := ve.Fields["uprn"]; !found {
		t.Errorf("Expected uprn field error, got %v", ve.Fields)
	}

	// Nothing changed.
	var stwCount int64
	deps.db.Model(&entity.STW{}).Where("id = ?", "stw-001").Count(&stwCount)
	if stwCount != 1 {
		t.Errorf("Expected STW untouched after failed conversion")
	}
}

func TestConvertSTWIsAllOrNothing(t *testing.T) {
	deps := newTestServices(t)
	seedCustomer(t, deps.db, "cust-001", "Acme Housing", "acme@test.com")
	seedSTW(t, deps.db, "stw-001", "cust-001", "UP-5004", "RB-5004",
		entity.STWDefect{ID: "stwd-001", Action: "Replace door closer"},
		entity.STWDefect{ID: "stwd-002", Action: "   "},
	)

	_, err := deps.svc.Conversion.Convert(context.Background(), access.ScopeAll, testUserID, "stw-001")
	if _, ok := apperr.AsValidation(err); !ok {
		t.Fatalf("Expected validation error for blank defect action, got %v", err)
	}

	// One bad defect aborts the whole conversion: the STW is intact and no
	// requirement was created.
	var stwCount, stwDefectCount, reqCount int64
	deps.db.Model(&entity.STW{}).Where("id = ?", "stw-001").Count(&stwCount)
	deps.db.Model(&entity.STWDefect{}).Where("stw_id = ?", "stw-001").Count(&stwDefectCount)
	deps.db.Model(&entity.Requirement{}).Where("uprn = ?", "UP-5004").Count(&reqCount)
	if stwCount != 1 || stwDefectCount != 2 {
		t.Errorf("Expected STW intact, got %d STWs and %d defects", stwCount, stwDefectCount)
	}
	if reqCount != 0 {
		t.Errorf("Expected no requirement created, got %d", reqCount)
	}
}
