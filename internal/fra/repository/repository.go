package repository

import (
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
)

// Repositories is the FRA repository set.
type Repositories struct {
	Requirement *RequirementRepository
	STW         *STWRepository
	Report      *ReportRepository
	Quotation   *QuotationRepository
	Invoice     *InvoiceRepository
	Catalog     *CatalogRepository
	Customer    *CustomerRepository
}

// NewRepositories wires the FRA repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Requirement: NewRequirementRepository(db),
		STW:         NewSTWRepository(db),
		Report:      NewReportRepository(db),
		Quotation:   NewQuotationRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Catalog:     NewCatalogRepository(db),
		Customer:    NewCustomerRepository(db),
	}
}

// scoped applies the resolved data-visibility scope as a mandatory query
// filter. Every list/detail query goes through it; a caller with "self"
// scope can only ever see rows it created.
func scoped(q *gorm.DB, scope access.Scope, userID string) *gorm.DB {
	if scope == access.ScopeSelf {
		return q.Where("created_by = ?", userID)
	}
	return q
}
