package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/config"
	"github.com/emberwatch/emberwatch/internal/procurement/repository"
)

// Services is the procurement service set.
type Services struct {
	Vendor  *VendorService
	PO      *POService
	Receipt *ReceiptService
}

// NewServices wires the procurement service set. db is needed directly by
// the receipt service for its guarded transaction.
func NewServices(repos *repository.Repositories, db *gorm.DB, cfg *config.Config, logger *zap.Logger) *Services {
	return &Services{
		Vendor:  NewVendorService(repos.Vendor, repos.Location),
		PO:      NewPOService(repos.PO, repos.Vendor, repos.Location),
		Receipt: NewReceiptService(repos.Receipt, repos.PO, db, cfg.Policy.AllowOverReceiptOverride, logger),
	}
}
