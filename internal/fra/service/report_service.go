package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
	"github.com/emberwatch/emberwatch/internal/shared/mailer"
	"github.com/emberwatch/emberwatch/internal/shared/render"
	"github.com/emberwatch/emberwatch/internal/shared/storage"
)

// ReportService owns the report lifecycle. Submission renders the report
// document, uploads it and notifies the customer.
type ReportService struct {
	reportRepo *repository.ReportRepository
	reqRepo    *repository.RequirementRepository
	store      storage.ArtifactStore
	renderer   render.Renderer
	notifier   mailer.Notifier
	logger     *zap.Logger
}

func NewReportService(
	reportRepo *repository.ReportRepository,
	reqRepo *repository.RequirementRepository,
	store storage.ArtifactStore,
	renderer render.Renderer,
	notifier mailer.Notifier,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		reqRepo:    reqRepo,
		store:      store,
		renderer:   renderer,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateReportRequest creates a report over a defect subset.
type CreateReportRequest struct {
	RequirementID string   `json:"requirement_id" binding:"required"`
	DefectIDs     []string `json:"defect_ids" binding:"required"`
	SignaturePath string   `json:"signature_path"`
}

// List returns reports visible to the caller.
func (s *ReportService) List(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Report, int64, error) {
	return s.reportRepo.FindAll(ctx, scope, userID, page, pageSize, filters)
}

// Get returns one report in the caller's scope.
func (s *ReportService) Get(ctx context.Context, scope access.Scope, userID, id string) (*entity.Report, error) {
	return s.reportRepo.FindByID(ctx, scope, userID, id)
}

// Create builds a draft report over a subset of the requirement's defects.
// Every selected defect must belong to the requirement.
func (s *ReportService) Create(ctx context.Context, scope access.Scope, userID string, req *CreateReportRequest) (*entity.Report, error) {
	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, req.RequirementID)
	if err != nil {
		return nil, err
	}

	if len(req.DefectIDs) == 0 {
		return nil, apperr.NewValidation("defect_ids", "select at least one defect")
	}

	defects, err := s.reqRepo.FindDefectsByIDs(ctx, requirement.ID, req.DefectIDs)
	if err != nil {
		return nil, fmt.Errorf("load defects: %w", err)
	}
	if len(defects) != len(req.DefectIDs) {
		return nil, apperr.NewValidation("defect_ids", "one or more defects do not belong to this requirement")
	}

	idsJSON, err := json.Marshal(req.DefectIDs)
	if err != nil {
		return nil, fmt.Errorf("encode defect ids: %w", err)
	}

	report := &entity.Report{
		ID:            uuid.New().String()[:32],
		RequirementID: requirement.ID,
		DefectIDs:     idsJSON,
		Status:        entity.ReportStatusDraft,
		SignaturePath: req.SignaturePath,
		CreatedBy:     userID,
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// UpdateReportRequest carries a partial draft-report update.
type UpdateReportRequest struct {
	DefectIDs     []string `json:"defect_ids"`
	SignaturePath *string  `json:"signature_path"`
}

// Update edits a draft report. Submitted reports are immutable.
func (s *ReportService) Update(ctx context.Context, scope access.Scope, userID, id string, req *UpdateReportRequest) (*entity.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if report.Status == entity.ReportStatusSubmit {
		return nil, apperr.NewValidation("status", "a submitted report cannot be edited")
	}

	if req.DefectIDs != nil {
		defects, err := s.reqRepo.FindDefectsByIDs(ctx, report.RequirementID, req.DefectIDs)
		if err != nil {
			return nil, fmt.Errorf("load defects: %w", err)
		}
		if len(defects) != len(req.DefectIDs) {
			return nil, apperr.NewValidation("defect_ids", "one or more defects do not belong to this requirement")
		}
		idsJSON, err := json.Marshal(req.DefectIDs)
		if err != nil {
			return nil, fmt.Errorf("encode defect ids: %w", err)
		}
		report.DefectIDs = idsJSON
	}
	if req.SignaturePath != nil {
		report.SignaturePath = *req.SignaturePath
	}

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// reportContext is the rendering context for the report template.
type reportContext struct {
	Requirement   *entity.Requirement
	CustomerName  string
	Defects       []entity.RequirementDefect
	Images        []entity.RequirementImage
	SignaturePath string
}

// Submit moves a report draft -> submit. The status change commits first;
// the artifact upload follows, and an upload failure compensates by
// reverting the status so no submitted report ever points at a missing
// document. The customer notification only goes out when the requirement
// has both a surveyor and a quantity surveyor assigned, and its failure is
// never fatal.
func (s *ReportService) Submit(ctx context.Context, scope access.Scope, userID, id string) (*entity.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}
	if !entity.ReportCanTransition(report.Status, entity.ReportStatusSubmit) {
		return nil, fmt.Errorf("%w: report %s -> %s", apperr.ErrIllegalTransition, report.Status, entity.ReportStatusSubmit)
	}

	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, report.RequirementID)
	if err != nil {
		return nil, err
	}

	var defectIDs []string
	if err := json.Unmarshal(report.DefectIDs, &defectIDs); err != nil {
		return nil, fmt.Errorf("decode defect ids: %w", err)
	}
	defects, err := s.reqRepo.FindDefectsByIDs(ctx, requirement.ID, defectIDs)
	if err != nil {
		return nil, fmt.Errorf("load defects: %w", err)
	}

	customerName := ""
	customerEmail := ""
	if requirement.Customer != nil {
		customerName = requirement.Customer.Name
		customerEmail = requirement.Customer.Email
	}

	pdfBytes, err := s.renderer.Render("report.tmpl", reportContext{
		Requirement:   requirement,
		CustomerName:  customerName,
		Defects:       defects,
		Images:        requirement.Images,
		SignaturePath: report.SignaturePath,
	})
	if err != nil {
		return nil, apperr.External("render", err)
	}

	// Commit the transition, then upload.
	if err := s.reportRepo.UpdateFields(ctx, report.ID, map[string]interface{}{
		"status": entity.ReportStatusSubmit,
	}); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("reports/%s/%s-%s.pdf",
		time.Now().Format("2006/01/02"), report.ID, uuid.New().String()[:8])

	if _, err := s.store.Upload(ctx, key, pdfBytes, "application/pdf"); err != nil {
		s.compensateSubmit(ctx, report.ID)
		return nil, apperr.External("upload", err)
	}

	if err := s.reportRepo.UpdateFields(ctx, report.ID, map[string]interface{}{
		"pdf_path": key,
	}); err != nil {
		s.compensateSubmit(ctx, report.ID)
		return nil, err
	}

	report.Status = entity.ReportStatusSubmit
	report.PDFPath = key

	if requirement.SurveyorID != nil && requirement.QuantitySurveyorID != nil && customerEmail != "" {
		if err := s.notifier.Send(ctx, mailer.Message{
			To:       customerEmail,
			Subject:  "Fire Risk Assessment report available",
			Template: "report-submitted",
			Context: map[string]string{
				"customer_name": customerName,
				"uprn":          requirement.UPRN,
				"rbno":          requirement.RBNO,
			},
		}); err != nil {
			// Notification failure never blocks submission.
			s.logger.Warn("Report notification failed",
				zap.String("report_id", report.ID), zap.Error(err))
		}
	}

	return report, nil
}

func (s *ReportService) compensateSubmit(ctx context.Context, reportID string) {
	if err := s.reportRepo.UpdateFields(ctx, reportID, map[string]interface{}{
		"status":   entity.ReportStatusDraft,
		"pdf_path": "",
	}); err != nil {
		s.logger.Error("Failed to revert report submission",
			zap.String("report_id", reportID), zap.Error(err))
	}
}
