package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/testutil"
)

const testUserID = "test-user-001"

// testDeps bundles the service set with its in-memory collaborators so
// tests can assert on uploads, deletions and notifications.
type testDeps struct {
	db       *gorm.DB
	store    *testutil.MemStore
	renderer *testutil.StubRenderer
	notifier *testutil.StubNotifier
	svc      *Services
}

func newTestServices(t *testing.T) *testDeps {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := testutil.NewMemStore()
	renderer := &testutil.StubRenderer{}
	notifier := &testutil.StubNotifier{}

	repos := repository.NewRepositories(db)
	svc := NewServices(repos, db, store, renderer, notifier, zap.NewNop())

	return &testDeps{
		db:       db,
		store:    store,
		renderer: renderer,
		notifier: notifier,
		svc:      svc,
	}
}

func seedCustomer(t *testing.T, db *gorm.DB, id, name, email string) *entity.Customer {
	t.Helper()
	customer := &entity.Customer{
		ID:        id,
		Name:      name,
		Email:     email,
		CreatedBy: testUserID,
	}
	if err := db.Create(customer).Error; err != nil {
		t.Fatalf("Failed to seed customer: %v", err)
	}
	return customer
}

func seedBillingAddress(t *testing.T, db *gorm.DB, customerID string) *entity.BillingAddress {
	t.Helper()
	addr := &entity.BillingAddress{
		ID:         "billing-" + customerID,
		CustomerID: customerID,
		Attention:  "Accounts Payable",
		Address:    "12 Harbour Road",
		City:       "Bristol",
		PostCode:   "BS1 4QA",
		Country:    "United Kingdom",
	}
	if err := db.Create(addr).Error; err != nil {
		t.Fatalf("Failed to seed billing address: %v", err)
	}
	return addr
}

func seedRequirement(t *testing.T, db *gorm.DB, id, customerID, uprn, rbno string) *entity.Requirement {
	t.Helper()
	requirement := &entity.Requirement{
		ID:         id,
		CustomerID: customerID,
		UPRN:       uprn,
		RBNO:       rbno,
		Status:     entity.RequirementStatusActive,
		CreatedBy:  testUserID,
	}
	if err := db.Create(requirement).Error; err != nil {
		t.Fatalf("Failed to seed requirement: %v", err)
	}
	return requirement
}

func seedDefect(t *testing.T, db *gorm.DB, id, requirementID, action string) *entity.RequirementDefect {
	t.Helper()
	defect := &entity.RequirementDefect{
		ID:            id,
		RequirementID: requirementID,
		Action:        action,
		Status:        entity.DefectStatusPending,
		CreatedBy:     testUserID,
	}
	if err := db.Create(defect).Error; err != nil {
		t.Fatalf("Failed to seed defect: %v", err)
	}
	return defect
}

func seedCatalogItem(t *testing.T, db *gorm.DB, id, code, price string) *entity.RateCatalogItem {
	t.Helper()
	item := &entity.RateCatalogItem{
		ID:          id,
		Code:        code,
		Description: "Catalog item " + code,
		Unit:        "each",
		Price:       decimal.RequireFromString(price),
		Active:      true,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to seed catalog item: %v", err)
	}
	return item
}

func assignSurveyors(t *testing.T, db *gorm.DB, requirementID, surveyorID, qsID string) {
	t.Helper()
	err := db.Model(&entity.Requirement{}).
		Where("id = ?", requirementID).
		Updates(map[string]interface{}{
			"surveyor_id":          surveyorID,
			"quantity_surveyor_id": qsID,
			"status":               entity.RequirementStatusAssigned,
		}).Error
	if err != nil {
		t.Fatalf("Failed to assign surveyors: %v", err)
	}
}
