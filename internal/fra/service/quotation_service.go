package service

import (
	"context"
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
	"github.com/emberwatch/emberwatch/internal/shared/mailer"
	"github.com/emberwatch/emberwatch/internal/shared/render"
	"github.com/emberwatch/emberwatch/internal/shared/storage"
)

// QuotationService prices defect subsets against the rate catalog and
// drives the quotation status flow. All prices are derived server-side from
// the catalog at save time; caller-supplied prices are checked, never
// trusted.
type QuotationService struct {
	quotRepo    *repository.QuotationRepository
	reportRepo  *repository.ReportRepository
	reqRepo     *repository.RequirementRepository
	catalogRepo *repository.CatalogRepository
	store       storage.ArtifactStore
	renderer    render.Renderer
	notifier    mailer.Notifier
	logger      *zap.Logger
}

func NewQuotationService(
	quotRepo *repository.QuotationRepository,
	reportRepo *repository.ReportRepository,
	reqRepo *repository.RequirementRepository,
	catalogRepo *repository.CatalogRepository,
	store storage.ArtifactStore,
	renderer render.Renderer,
	notifier mailer.Notifier,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotRepo:    quotRepo,
		reportRepo:  reportRepo,
		reqRepo:     reqRepo,
		catalogRepo: catalogRepo,
		store:       store,
		renderer:    renderer,
		notifier:    notifier,
		logger:      logger,
	}
}

// RateSelectionInput is one catalog selection slot supplied by the caller.
// Price and TotalPrice are optional; when present they must match the
// server-side recomputation or the save rejects.
type RateSelectionInput struct {
	CatalogID  string           `json:"catalogId" binding:"required"`
	Quantity   decimal.Decimal  `json:"quantity" binding:"required"`
	Price      *decimal.Decimal `json:"price"`
	TotalPrice *decimal.Decimal `json:"totalPrice"`
}

// SaveQuotationRequest carries the full priced structure; every save
// recomputes and overwrites the snapshot wholesale.
type SaveQuotationRequest struct {
	RequirementID    string                                   `json:"requirement_id"`
	ReportID         string                                   `json:"report_id"`
	DefectRateValues map[string]map[string]RateSelectionInput `json:"defectRateValues" binding:"required"`
	Version          int                                      `json:"version"`
}

// List returns quotations visible to the caller.
func (s *QuotationService) List(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Quotation, int64, error) {
	return s.quotRepo.FindAll(ctx, scope, userID, page, pageSize, filters)
}

// Get returns one quotation in the caller's scope.
func (s *QuotationService) Get(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	return s.quotRepo.FindByID(ctx, scope, userID, id)
}

// Create drafts a quotation from a submitted report.
func (s *QuotationService) Create(ctx context.Context, scope access.Scope, userID string, req *SaveQuotationRequest) (*entity.Quotation, error) {
	report, err := s.reportRepo.FindByID(ctx, scope, userID, req.ReportID)
	if err != nil {
		return nil, err
	}
	if report.Status != entity.ReportStatusSubmit {
		return nil, apperr.NewValidation("report_id", "quotations can only be drafted from a submitted report")
	}
	if report.RequirementID != req.RequirementID {
		return nil, apperr.NewValidation("requirement_id", "report does not belong to this requirement")
	}

	snapshot, total, err := s.price(ctx, report, req.DefectRateValues)
	if err != nil {
		return nil, err
	}

	snapJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	quotation := &entity.Quotation{
		ID:            uuid.New().String()[:32],
		RequirementID: req.RequirementID,
		ReportID:      req.ReportID,
		Snapshot:      snapJSON,
		TotalAmount:   total,
		Status:        entity.QuotationStatusDraft,
		Version:       1,
		CreatedBy:     userID,
	}

	if err := s.quotRepo.Create(ctx, quotation); err != nil {
		return nil, err
	}
	return quotation, nil
}

// Save overwrites the priced structure of a draft quotation under the
// caller's version; a stale version fails with ErrVersionConflict.
func (s *QuotationService) Save(ctx context.Context, scope access.Scope, userID, id string, req *SaveQuotationRequest) (*entity.Quotation, error) {
	quotation, err := s.quotRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status != entity.QuotationStatusDraft {
		return nil, apperr.NewValidation("status", "only draft quotations can be repriced")
	}
	if req.Version != 0 && req.Version != quotation.Version {
		return nil, apperr.ErrVersionConflict
	}

	report, err := s.reportRepo.FindByID(ctx, scope, userID, quotation.ReportID)
	if err != nil {
		return nil, err
	}

	snapshot, total, err := s.price(ctx, report, req.DefectRateValues)
	if err != nil {
		return nil, err
	}
	snapJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	quotation.Snapshot = snapJSON
	quotation.TotalAmount = total

	if err := s.quotRepo.UpdateVersioned(ctx, quotation); err != nil {
		return nil, err
	}
	return quotation, nil
}

// price recomputes the whole priced structure from the authoritative
// catalog. Defects must come from the report's selected subset.
func (s *QuotationService) price(ctx context.Context, report *entity.Report, input map[string]map[string]RateSelectionInput) (*entity.QuotationSnapshot, decimal.Decimal, error) {
	var reportDefects []string
	if err := json.Unmarshal(report.DefectIDs, &reportDefects); err != nil {
		return nil, decimal.Zero, fmt.Errorf("decode report defects: %w", err)
	}
	inReport := make(map[string]bool, len(reportDefects))
	for _, id := range reportDefects {
		inReport[id] = true
	}

	var catalogIDs []string
	for defectID, slots := range input {
		if !inReport[defectID] {
			return nil, decimal.Zero, apperr.NewValidation("defectRateValues",
				fmt.Sprintf("defect %s is not part of the report", defectID))
		}
		for _, sel := range slots {
			catalogIDs = append(catalogIDs, sel.CatalogID)
		}
	}
	if len(catalogIDs) == 0 {
		return nil, decimal.Zero, apperr.NewValidation("defectRateValues", "at least one rate selection is required")
	}

	catalog, err := s.catalogRepo.FindByIDs(ctx, catalogIDs)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("load catalog: %w", err)
	}

	snapshot := &entity.QuotationSnapshot{
		Status:           entity.QuotationStatusDraft,
		DefectRateValues: make(map[string]map[string]entity.RateSelection, len(input)),
	}
	total := decimal.Zero

	// Defect order follows the report's selection so the snapshot and the
	// rendered document come out the same for the same input.
	for _, defectID := range reportDefects {
		slots, ok := input[defectID]
		if !ok {
			continue
		}
		priced := make(map[string]entity.RateSelection, len(slots))
		slotKeys := make([]string, 0, len(slots))
		for slot := range slots {
			slotKeys = append(slotKeys, slot)
		}
		sort.Strings(slotKeys)
		for _, slot := range slotKeys {
			sel := slots[slot]
			item, ok := catalog[sel.CatalogID]
			if !ok {
				return nil, decimal.Zero, apperr.NewValidation("defectRateValues",
					fmt.Sprintf("catalog item %s does not exist", sel.CatalogID))
			}
			if sel.Quantity.LessThanOrEqual(decimal.Zero) {
				return nil, decimal.Zero, apperr.NewValidation("defectRateValues", "quantity must be positive")
			}

			lineTotal := item.Price.Mul(sel.Quantity)

			// The catalog is the price authority; a caller-supplied price
			// that disagrees is a tampering attempt or a stale client.
			if sel.Price != nil && !sel.Price.Equal(item.Price) {
				return nil, decimal.Zero, apperr.NewValidation("defectRateValues",
					fmt.Sprintf("price for catalog item %s does not match the current rate", sel.CatalogID))
			}
			if sel.TotalPrice != nil && !sel.TotalPrice.Equal(lineTotal) {
				return nil, decimal.Zero, apperr.NewValidation("defectRateValues",
					fmt.Sprintf("total for catalog item %s does not match price * quantity", sel.CatalogID))
			}

			priced[slot] = entity.RateSelection{
				CatalogID:  item.ID,
				Price:      item.Price,
				Quantity:   sel.Quantity,
				TotalPrice: lineTotal,
				CatalogSnapshot: entity.CatalogSnapshot{
					Code:        item.Code,
					Description: item.Description,
					Unit:        item.Unit,
					Price:       item.Price,
				},
			}
			total = total.Add(lineTotal)
		}
		snapshot.DefectRateValues[defectID] = priced
		snapshot.DefectList = append(snapshot.DefectList, defectID)
	}

	return snapshot, total, nil
}

// quotationLine is one row of the quotation document.
type quotationLine struct {
	DefectAction string
	CatalogCode  string
	UnitPrice    decimal.Decimal
	Quantity     decimal.Decimal
	TotalPrice   decimal.Decimal
}

type quotationContext struct {
	Quotation    *entity.Quotation
	Requirement  *entity.Requirement
	CustomerName string
	Lines        []quotationLine
	TotalAmount  decimal.Decimal
}

// Submit moves a quotation draft -> quoted and generates its document. A
// regeneration uses a fresh storage key and removes the superseded artifact.
func (s *QuotationService) Submit(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	quotation, err := s.quotRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if !entity.QuotationCanTransition(quotation.Status, entity.QuotationStatusQuoted) {
		return nil, fmt.Errorf("%w: quotation %s -> %s", apperr.ErrIllegalTransition, quotation.Status, entity.QuotationStatusQuoted)
	}

	return s.generateDocument(ctx, scope, userID, quotation, entity.QuotationStatusQuoted)
}

// Regenerate re-renders the document of an already-quoted quotation without
// a status change, versioning out the old artifact.
func (s *QuotationService) Regenerate(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	quotation, err := s.quotRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if quotation.Status == entity.QuotationStatusDraft {
		return nil, apperr.NewValidation("status", "submit the quotation first")
	}
	return s.generateDocument(ctx, scope, userID, quotation, quotation.Status)
}

func (s *QuotationService) generateDocument(ctx context.Context, scope access.Scope, userID string, quotation *entity.Quotation, newStatus string) (*entity.Quotation, error) {
	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, quotation.RequirementID)
	if err != nil {
		return nil, err
	}

	renderCtx, err := s.buildRenderContext(ctx, quotation, requirement)
	if err != nil {
		return nil, err
	}

	pdfBytes, err := s.renderer.Render("quotation.tmpl", renderCtx)
	if err != nil {
		return nil, apperr.External("render", err)
	}

	priorKey := quotation.PDFPath
	key := fmt.Sprintf("quotations/%s/%s-%s.pdf",
		time.Now().Format("2006/01/02"), quotation.ID, uuid.New().String()[:8])

	if _, err := s.store.Upload(ctx, key, pdfBytes, "application/pdf"); err != nil {
		return nil, apperr.External("upload", err)
	}

	quotation.Status = newStatus
	quotation.PDFPath = key
	if err := s.quotRepo.UpdateVersioned(ctx, quotation); err != nil {
		// The record did not change; remove the orphaned upload.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("Failed to remove orphaned quotation artifact",
				zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	// The superseded artifact is deleted rather than leaked.
	if priorKey != "" && priorKey != key {
		if err := s.store.Delete(ctx, priorKey); err != nil {
			s.logger.Warn("Failed to delete superseded quotation artifact",
				zap.String("key", priorKey), zap.Error(err))
		}
	}

	return quotation, nil
}

func (s *QuotationService) buildRenderContext(ctx context.Context, quotation *entity.Quotation, requirement *entity.Requirement) (*quotationContext, error) {
	var snapshot entity.QuotationSnapshot
	if err := json.Unmarshal(quotation.Snapshot, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	defects, err := s.reqRepo.FindDefectsByIDs(ctx, requirement.ID, snapshot.DefectList)
	if err != nil {
		return nil, fmt.Errorf("load defects: %w", err)
	}
	actionByID := make(map[string]string, len(defects))
	for _, d := range defects {
		actionByID[d.ID] = d.Action
	}

	var lines []quotationLine
	for _, defectID := range snapshot.DefectList {
		slots := snapshot.DefectRateValues[defectID]
		slotKeys := make([]string, 0, len(slots))
		for slot := range slots {
			slotKeys = append(slotKeys, slot)
		}
		sort.Strings(slotKeys)
		for _, slot := range slotKeys {
			sel := slots[slot]
			lines = append(lines, quotationLine{
				DefectAction: actionByID[defectID],
				CatalogCode:  sel.CatalogSnapshot.Code,
				UnitPrice:    sel.Price,
				Quantity:     sel.Quantity,
				TotalPrice:   sel.TotalPrice,
			})
		}
	}

	customerName := ""
	if requirement.Customer != nil {
		customerName = requirement.Customer.Name
	}

	return &quotationContext{
		Quotation:    quotation,
		Requirement:  requirement,
		CustomerName: customerName,
		Lines:        lines,
		TotalAmount:  quotation.TotalAmount,
	}, nil
}

// SendForApproval moves quoted -> awaiting-approval and emails the customer
// a time-limited link to the document. Mail failure is logged and ignored;
// the transition stands.
func (s *QuotationService) SendForApproval(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	quotation, err := s.quotRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if !entity.QuotationCanTransition(quotation.Status, entity.QuotationStatusAwaitingApproval) {
		return nil, fmt.Errorf("%w: quotation %s -> %s", apperr.ErrIllegalTransition, quotation.Status, entity.QuotationStatusAwaitingApproval)
	}
	if quotation.PDFPath == "" {
		return nil, apperr.NewValidation("pdf_path", "quotation document has not been generated")
	}

	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, quotation.RequirementID)
	if err != nil {
		return nil, err
	}

	quotation.Status = entity.QuotationStatusAwaitingApproval
	if err := s.quotRepo.UpdateVersioned(ctx, quotation); err != nil {
		return nil, err
	}

	link, err := s.store.Presign(ctx, quotation.PDFPath, storage.DefaultPresignTTL)
	if err != nil {
		s.logger.Warn("Failed to presign quotation link",
			zap.String("quotation_id", quotation.ID), zap.Error(err))
		return quotation, nil
	}

	if requirement.Customer != nil && requirement.Customer.Email != "" {
		if err := s.notifier.Send(ctx, mailer.Message{
			To:            requirement.Customer.Email,
			Subject:       "Quotation awaiting your approval",
			Template:      "quotation-approval",
			AttachmentURL: link,
			Context: map[string]string{
				"customer_name": requirement.Customer.Name,
				"uprn":          requirement.UPRN,
				"total":         quotation.TotalAmount.StringFixed(2),
			},
		}); err != nil {
			s.logger.Warn("Quotation approval mail failed",
				zap.String("quotation_id", quotation.ID), zap.Error(err))
		}
	}

	return quotation, nil
}

// Approve moves awaiting-approval -> to-commence.
func (s *QuotationService) Approve(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	return s.decide(ctx, scope, userID, id, entity.QuotationStatusToCommence)
}

// Reject moves awaiting-approval -> rejected.
func (s *QuotationService) Reject(ctx context.Context, scope access.Scope, userID, id string) (*entity.Quotation, error) {
	return s.decide(ctx, scope, userID, id, entity.QuotationStatusRejected)
}

func (s *QuotationService) decide(ctx context.Context, scope access.Scope, userID, id, newStatus string) (*entity.Quotation, error) {
	quotation, err := s.quotRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if !entity.QuotationCanTransition(quotation.Status, newStatus) {
		return nil, fmt.Errorf("%w: quotation %s -> %s", apperr.ErrIllegalTransition, quotation.Status, newStatus)
	}

	quotation.Status = newStatus
	if err := s.quotRepo.UpdateVersioned(ctx, quotation); err != nil {
		return nil, err
	}
	return quotation, nil
}
