package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// RequirementService owns the requirement and defect lifecycles.
type RequirementService struct {
	reqRepo *repository.RequirementRepository
	logger  *zap.Logger
}

func NewRequirementService(reqRepo *repository.RequirementRepository, logger *zap.Logger) *RequirementService {
	return &RequirementService{reqRepo: reqRepo, logger: logger}
}

// CreateRequirementRequest is the requirement creation contract. The STW
// converter validates against the same contract.
type CreateRequirementRequest struct {
	CustomerID  string `json:"customer_id" binding:"required"`
	UPRN        string `json:"uprn" binding:"required"`
	RBNO        string `json:"rbno" binding:"required"`
	Description string `json:"description"`
	Action      string `json:"action"`
}

// Validate applies the field rules shared by direct creation and STW
// conversion.
func (req *CreateRequirementRequest) Validate() *apperr.ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(req.CustomerID) == "" {
		fields["customer_id"] = "customer is required"
	}
	if strings.TrimSpace(req.UPRN) == "" {
		fields["uprn"] = "UPRN is required"
	}
	if strings.TrimSpace(req.RBNO) == "" {
		fields["rbno"] = "RBNO is required"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// List returns requirements visible to the caller.
func (s *RequirementService) List(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.Requirement, int64, error) {
	return s.reqRepo.FindAll(ctx, scope, userID, page, pageSize, filters)
}

// Get returns one requirement in the caller's scope.
func (s *RequirementService) Get(ctx context.Context, scope access.Scope, userID, id string) (*entity.Requirement, error) {
	return s.reqRepo.FindByID(ctx, scope, userID, id)
}

// Create validates and persists a new requirement. UPRN and RBNO must be
// unique across all requirements.
func (s *RequirementService) Create(ctx context.Context, userID string, req *CreateRequirementRequest) (*entity.Requirement, error) {
	if ve := req.Validate(); ve != nil {
		return nil, ve
	}

	uprnTaken, rbnoTaken, err := s.reqRepo.UPRNOrRBNOExists(ctx, req.UPRN, req.RBNO, "")
	if err != nil {
		return nil, fmt.Errorf("check identifiers: %w", err)
	}
	if uprnTaken || rbnoTaken {
		fields := map[string]string{}
		if uprnTaken {
			fields["uprn"] = "UPRN already in use"
		}
		if rbnoTaken {
			fields["rbno"] = "RBNO already in use"
		}
		return nil, &apperr.ValidationError{Fields: fields}
	}

	requirement := &entity.Requirement{
		ID:          uuid.New().String()[:32],
		CustomerID:  req.CustomerID,
		UPRN:        req.UPRN,
		RBNO:        req.RBNO,
		Description: req.Description,
		Action:      req.Action,
		Status:      entity.RequirementStatusActive,
		CreatedBy:   userID,
	}

	if err := s.reqRepo.Create(ctx, requirement); err != nil {
		return nil, err
	}
	return requirement, nil
}

// UpdateRequirementRequest carries a partial requirement update.
type UpdateRequirementRequest struct {
	Description *string `json:"description"`
	Action      *string `json:"action"`
}

// Update applies a partial update to a requirement in the caller's scope.
func (s *RequirementService) Update(ctx context.Context, scope access.Scope, userID, id string, req *UpdateRequirementRequest) (*entity.Requirement, error) {
	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		requirement.Description = *req.Description
	}
	if req.Action != nil {
		requirement.Action = *req.Action
	}

	if err := s.reqRepo.Update(ctx, requirement); err != nil {
		return nil, err
	}
	return requirement, nil
}

// ChangeStatus moves a requirement along its transition table.
func (s *RequirementService) ChangeStatus(ctx context.Context, scope access.Scope, userID, id, newStatus string) (*entity.Requirement, error) {
	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}

	if !entity.RequirementCanTransition(requirement.Status, newStatus) {
		return nil, fmt.Errorf("%w: requirement %s -> %s", apperr.ErrIllegalTransition, requirement.Status, newStatus)
	}

	requirement.Status = newStatus
	if err := s.reqRepo.Update(ctx, requirement); err != nil {
		return nil, err
	}
	return requirement, nil
}

// AssignSurveyorsRequest assigns the survey pair to a requirement.
type AssignSurveyorsRequest struct {
	SurveyorID         *string `json:"surveyor_id"`
	QuantitySurveyorID *string `json:"quantity_surveyor_id"`
}

// AssignSurveyors records surveyor assignments and advances the status:
// first assignment moves active -> to-surveyor, both set moves on to
// assigned-to-surveyor.
func (s *RequirementService) AssignSurveyors(ctx context.Context, scope access.Scope, userID, id string, req *AssignSurveyorsRequest) (*entity.Requirement, error) {
	requirement, err := s.reqRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}

	if req.SurveyorID != nil {
		requirement.SurveyorID = req.SurveyorID
	}
	if req.QuantitySurveyorID != nil {
		requirement.QuantitySurveyorID = req.QuantitySurveyorID
	}

	if requirement.Status == entity.RequirementStatusActive &&
		(requirement.SurveyorID != nil || requirement.QuantitySurveyorID != nil) {
		requirement.Status = entity.RequirementStatusToSurveyor
	}
	if requirement.Status == entity.RequirementStatusToSurveyor &&
		requirement.SurveyorID != nil && requirement.QuantitySurveyorID != nil {
		requirement.Status = entity.RequirementStatusAssigned
	}

	if err := s.reqRepo.Update(ctx, requirement); err != nil {
		return nil, err
	}
	return requirement, nil
}

// CreateDefectRequest adds a defect to a requirement.
type CreateDefectRequest struct {
	Action        string `json:"action" binding:"required"`
	Description   string `json:"description"`
	Rectification string `json:"rectification"`
}

// AddDefect attaches a new defect to a requirement in the caller's scope.
func (s *RequirementService) AddDefect(ctx context.Context, scope access.Scope, userID, requirementID string, req *CreateDefectRequest) (*entity.RequirementDefect, error) {
	if _, err := s.reqRepo.FindByID(ctx, scope, userID, requirementID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Action) == "" {
		return nil, apperr.NewValidation("action", "action is required")
	}

	defect := &entity.RequirementDefect{
		ID:            uuid.New().String()[:32],
		RequirementID: requirementID,
		Action:        req.Action,
		Description:   req.Description,
		Rectification: req.Rectification,
		Status:        entity.DefectStatusPending,
		CreatedBy:     userID,
	}

	if err := s.reqRepo.CreateDefect(ctx, defect); err != nil {
		return nil, err
	}
	return defect, nil
}

// UpdateDefectRequest carries a partial defect update. Status changes go
// through the transition table; backward moves are rejected.
type UpdateDefectRequest struct {
	Action        *string `json:"action"`
	Description   *string `json:"description"`
	Rectification *string `json:"rectification"`
	Status        *string `json:"status"`
}

// UpdateDefect updates a defect belonging to a requirement the caller can see.
func (s *RequirementService) UpdateDefect(ctx context.Context, scope access.Scope, userID, requirementID, defectID string, req *UpdateDefectRequest) (*entity.RequirementDefect, error) {
	if _, err := s.reqRepo.FindByID(ctx, scope, userID, requirementID); err != nil {
		return nil, err
	}

	defect, err := s.reqRepo.FindDefectByID(ctx, defectID)
	if err != nil {
		return nil, err
	}
	if defect.RequirementID != requirementID {
		return nil, apperr.ErrNotFoundOrForbidden
	}

	if req.Action != nil {
		defect.Action = *req.Action
	}
	if req.Description != nil {
		defect.Description = *req.Description
	}
	if req.Rectification != nil {
		defect.Rectification = *req.Rectification
	}
	if req.Status != nil && *req.Status != defect.Status {
		if !entity.DefectCanTransition(defect.Status, *req.Status) {
			return nil, fmt.Errorf("%w: defect %s -> %s", apperr.ErrIllegalTransition, defect.Status, *req.Status)
		}
		defect.Status = *req.Status
	}

	if err := s.reqRepo.UpdateDefect(ctx, defect); err != nil {
		return nil, err
	}
	return defect, nil
}
