package repository

import (
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
)

// Repositories is the procurement repository set.
type Repositories struct {
	Vendor   *VendorRepository
	Location *LocationRepository
	PO       *PORepository
	Receipt  *ReceiptRepository
}

// NewRepositories wires the procurement repository set.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Vendor:   NewVendorRepository(db),
		Location: NewLocationRepository(db),
		PO:       NewPORepository(db),
		Receipt:  NewReceiptRepository(db),
	}
}

// scoped applies the resolved data-visibility scope as a mandatory filter.
func scoped(q *gorm.DB, scope access.Scope, userID string) *gorm.DB {
	if scope == access.ScopeSelf {
		return q.Where("created_by = ?", userID)
	}
	return q
}
