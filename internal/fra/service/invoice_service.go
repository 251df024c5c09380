package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
	"github.com/emberwatch/emberwatch/internal/shared/render"
	"github.com/emberwatch/emberwatch/internal/shared/storage"
)

// InvoiceService derives immutable invoice snapshots from approved
// quotations. The billing address is copied into the invoice at issue time;
// later customer edits never touch issued documents.
type InvoiceService struct {
	invRepo      *repository.InvoiceRepository
	quotRepo     *repository.QuotationRepository
	reqRepo      *repository.RequirementRepository
	customerRepo *repository.CustomerRepository
	store        storage.ArtifactStore
	renderer     render.Renderer
	logger       *zap.Logger
}

func NewInvoiceService(
	invRepo *repository.InvoiceRepository,
	quotRepo *repository.QuotationRepository,
	reqRepo *repository.RequirementRepository,
	customerRepo *repository.CustomerRepository,
	store storage.ArtifactStore,
	renderer render.Renderer,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invRepo:      invRepo,
		quotRepo:     quotRepo,
		reqRepo:      reqRepo,
		customerRepo: customerRepo,
		store:        store,
		renderer:     renderer,
		logger:       logger,
	}
}

// CreateInvoiceRequest drafts an invoice from an approved quotation.
type CreateInvoiceRequest struct {
	QuotationID string `json:"quotation_id" binding:"required"`
}

// List returns invoices visible to the caller.
func (s *InvoiceService) List(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Invoice, int64, error) {
	return s.invRepo.FindAll(ctx, scope, userID, page, pageSize, filters)
}

// Get returns one invoice in the caller's scope.
func (s *InvoiceService) Get(ctx context.Context, scope access.Scope, userID, id string) (*entity.Invoice, error) {
	return s.invRepo.FindByID(ctx, scope, userID, id)
}

// Create drafts an invoice from an approved (to-commence) quotation. The
// customer must have a billing address on file.
func (s *InvoiceService) Create(ctx context.Context, scope access.Scope, userID string, req *CreateInvoiceRequest) (*entity.Invoice, error) {
	quotation, err := s.quotRepo.FindByID(ctx, scope, userID, req.QuotationID)
	if err != nil {
		return nil, err
	}
	if quotation.Status != entity.QuotationStatusToCommence {
		return nil, apperr.NewValidation("quotation_id", "only an approved quotation can be invoiced")
	}

	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, quotation.RequirementID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByID(ctx, requirement.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer.BillingAddress == nil {
		return nil, apperr.ErrMissingBillingInfo
	}

	lines, err := invoiceLinesFromQuotation(ctx, s.reqRepo, requirement, quotation)
	if err != nil {
		return nil, err
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode lines: %w", err)
	}

	invoice := &entity.Invoice{
		ID:            uuid.New().String()[:32],
		RequirementID: quotation.RequirementID,
		ReportID:      quotation.ReportID,
		QuotationID:   quotation.ID,
		Snapshot:      linesJSON,
		TotalAmount:   quotation.TotalAmount,
		Status:        entity.InvoiceStatusDraft,
		Version:       1,
		CreatedBy:     userID,
	}

	if err := s.invRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ChangeStatus moves an invoice along its transition table. Entering
// submitted or sent_to_customer issues the document: billing snapshot,
// render, upload, submission timestamp. Identical rendered content
// short-circuits on the stored hash instead of uploading again.
func (s *InvoiceService) ChangeStatus(ctx context.Context, scope access.Scope, userID, id, newStatus string) (*entity.Invoice, error) {
	invoice, err := s.invRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if !entity.InvoiceCanTransition(invoice.Status, newStatus) {
		return nil, fmt.Errorf("%w: invoice %s -> %s", apperr.ErrIllegalTransition, invoice.Status, newStatus)
	}

	invoice.Status = newStatus

	if newStatus == entity.InvoiceStatusSubmitted || newStatus == entity.InvoiceStatusSentToCustomer {
		if err := s.issue(ctx, scope, userID, invoice); err != nil {
			return nil, err
		}
	}

	if err := s.invRepo.UpdateVersioned(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// invoiceContext feeds the invoice template. It carries only the stable
// business content so identical documents hash identically across saves.
type invoiceContext struct {
	InvoiceID   string
	Requirement *entity.Requirement
	Billing     entity.InvoiceBilling
	Lines       []entity.InvoiceLine
	TotalAmount decimal.Decimal
}

// issue freezes the billing snapshot and generates the invoice document.
func (s *InvoiceService) issue(ctx context.Context, scope access.Scope, userID string, invoice *entity.Invoice) error {
	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, invoice.RequirementID)
	if err != nil {
		return err
	}

	customer, err := s.customerRepo.FindByID(ctx, requirement.CustomerID)
	if err != nil {
		return err
	}
	if customer.BillingAddress == nil {
		return apperr.ErrMissingBillingInfo
	}

	// The snapshot is only taken once; an issued invoice keeps the address
	// it was issued with.
	var billing entity.InvoiceBilling
	if len(invoice.BillingSnapshot) > 0 {
		if err := json.Unmarshal(invoice.BillingSnapshot, &billing); err != nil {
			return fmt.Errorf("decode billing snapshot: %w", err)
		}
	} else {
		addr := customer.BillingAddress
		billing = entity.InvoiceBilling{
			CompanyName: customer.CompanyName,
			Attention:   addr.Attention,
			Address:     addr.Address,
			City:        addr.City,
			County:      addr.County,
			PostCode:    addr.PostCode,
			Country:     addr.Country,
			Phone:       addr.Phone,
			Email:       addr.Email,
		}
		billingJSON, err := json.Marshal(billing)
		if err != nil {
			return fmt.Errorf("encode billing snapshot: %w", err)
		}
		invoice.BillingSnapshot = billingJSON
	}

	var lines []entity.InvoiceLine
	if err := json.Unmarshal(invoice.Snapshot, &lines); err != nil {
		return fmt.Errorf("decode lines: %w", err)
	}

	pdfBytes, err := s.renderer.Render("invoice.tmpl", invoiceContext{
		InvoiceID:   invoice.ID,
		Requirement: requirement,
		Billing:     billing,
		Lines:       lines,
		TotalAmount: invoice.TotalAmount,
	})
	if err != nil {
		return apperr.External("render", err)
	}

	sum := sha256.Sum256(pdfBytes)
	hash := hex.EncodeToString(sum[:])

	now := time.Now()
	if invoice.SubmittedAt == nil {
		invoice.SubmittedAt = &now
	}

	// Re-saving with unchanged content keeps the existing artifact.
	if hash == invoice.ContentHash && invoice.PDFPath != "" {
		return nil
	}

	key := fmt.Sprintf("invoices/%s/%s-%s.pdf",
		now.Format("2006/01/02"), invoice.ID, uuid.New().String()[:8])
	if _, err := s.store.Upload(ctx, key, pdfBytes, "application/pdf"); err != nil {
		return apperr.External("upload", err)
	}

	priorKey := invoice.PDFPath
	invoice.PDFPath = key
	invoice.ContentHash = hash

	if priorKey != "" && priorKey != key {
		if err := s.store.Delete(ctx, priorKey); err != nil {
			s.logger.Warn("Failed to delete superseded invoice artifact",
				zap.String("key", priorKey), zap.Error(err))
		}
	}

	return nil
}

// invoiceLinesFromQuotation flattens the quotation snapshot into invoice
// line items, preserving the priced values frozen there.
func invoiceLinesFromQuotation(ctx context.Context, reqRepo *repository.RequirementRepository, requirement *entity.Requirement, quotation *entity.Quotation) ([]entity.InvoiceLine, error) {
	var snapshot entity.QuotationSnapshot
	if err := json.Unmarshal(quotation.Snapshot, &snapshot); err != nil {
		return nil, fmt.Errorf("decode quotation snapshot: %w", err)
	}

	defects, err := reqRepo.FindDefectsByIDs(ctx, requirement.ID, snapshot.DefectList)
	if err != nil {
		return nil, fmt.Errorf("load defects: %w", err)
	}
	actionByID := make(map[string]string, len(defects))
	for _, d := range defects {
		actionByID[d.ID] = d.Action
	}

	var lines []entity.InvoiceLine
	for _, defectID := range snapshot.DefectList {
		slots := snapshot.DefectRateValues[defectID]
		slotKeys := make([]string, 0, len(slots))
		for slot := range slots {
			slotKeys = append(slotKeys, slot)
		}
		sort.Strings(slotKeys)
		for _, slot := range slotKeys {
			sel := slots[slot]
			lines = append(lines, entity.InvoiceLine{
				DefectID:     defectID,
				DefectAction: actionByID[defectID],
				CatalogID:    sel.CatalogID,
				CatalogCode:  sel.CatalogSnapshot.Code,
				UnitPrice:    sel.Price,
				Quantity:     sel.Quantity,
				TotalPrice:   sel.TotalPrice,
			})
		}
	}
	return lines, nil
}
