package service

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/mailer"
	"github.com/emberwatch/emberwatch/internal/shared/render"
	"github.com/emberwatch/emberwatch/internal/shared/storage"
)

// Services is the FRA service set.
type Services struct {
	Requirement *RequirementService
	STW         *STWService
	Conversion  *ConversionService
	Report      *ReportService
	Quotation   *QuotationService
	Invoice     *InvoiceService
	Catalog     *CatalogService
	Customer    *CustomerService
}

// NewServices wires the FRA service set. db is needed directly by the
// conversion service for its multi-entity transaction.
func NewServices(
	repos *repository.Repositories,
	db *gorm.DB,
	store storage.ArtifactStore,
	renderer render.Renderer,
	notifier mailer.Notifier,
	logger *zap.Logger,
) *Services {
	return &Services{
		Requirement: NewRequirementService(repos.Requirement, logger),
		STW:         NewSTWService(repos.STW),
		Conversion:  NewConversionService(repos.STW, repos.Requirement, db, logger),
		Report:      NewReportService(repos.Report, repos.Requirement, store, renderer, notifier, logger),
		Quotation:   NewQuotationService(repos.Quotation, repos.Report, repos.Requirement, repos.Catalog, store, renderer, notifier, logger),
		Invoice:     NewInvoiceService(repos.Invoice, repos.Quotation, repos.Requirement, repos.Customer, store, renderer, logger),
		Catalog:     NewCatalogService(repos.Catalog),
		Customer:    NewCustomerService(repos.Customer),
	}
}
