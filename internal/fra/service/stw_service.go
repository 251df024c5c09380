package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// STWService manages pre-survey work items before conversion.
type STWService struct {
	stwRepo *repository.STWRepository
}

func NewSTWService(stwRepo *repository.STWRepository) *STWService {
	return &STWService{stwRepo: stwRepo}
}

type CreateSTWRequest struct {
	CustomerID  string             `json:"customer_id" binding:"required"`
	UPRN        string             `json:"uprn" binding:"required"`
	RBNO        string             `json:"rbno" binding:"required"`
	Description string             `json:"description"`
	Action      string             `json:"action"`
	Defects     []STWDefectRequest `json:"defects"`
}

type STWDefectRequest struct {
	Action        string `json:"action" binding:"required"`
	Description   string `json:"description"`
	Rectification string `json:"rectification"`
}

func (s *STWService) List(ctx context.Context, scope access.Scope, userID string, page, pageSize int, filters map[string]string) ([]entity.STW, int64, error) {
	return s.stwRepo.FindAll(ctx, scope, userID, page, pageSize, filters)
}

func (s *STWService) Get(ctx context.Context, scope access.Scope, userID, id string) (*entity.STW, error) {
	return s.stwRepo.FindByID(ctx, scope, userID, id)
}

// Create persists an STW and its defects. UPRN/RBNO are unique within the
// pre-survey table only; the requirement table is checked at conversion time.
func (s *STWService) Create(ctx context.Context, userID string, req *CreateSTWRequest) (*entity.STW, error) {
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
		return nil, &apperr.ValidationError{Fields: fields}
	}

	uprnTaken, rbnoTaken, err := s.stwRepo.UPRNOrRBNOExists(ctx, req.UPRN, req.RBNO, "")
	if err != nil {
		return nil, err
	}
	if uprnTaken {
		fields["uprn"] = "UPRN already in use"
	}
	if rbnoTaken {
		fields["rbno"] = "RBNO already in use"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	stw := &entity.STW{
		ID:          uuid.New().String()[:32],
		CustomerID:  req.CustomerID,
		UPRN:        req.UPRN,
		RBNO:        req.RBNO,
		Description: req.Description,
		Action:      req.Action,
		CreatedBy:   userID,
	}
	for _, d := range req.Defects {
		if strings.TrimSpace(d.Action) == "" {
			return nil, apperr.NewValidation("defects", "defect action is required")
		}
		stw.Defects = append(stw.Defects, entity.STWDefect{
			ID:            uuid.New().String()[:32],
			STWID:         stw.ID,
			Action:        d.Action,
			Description:   d.Description,
			Rectification: d.Rectification,
		})
	}

	if err := s.stwRepo.Create(ctx, stw); err != nil {
		return nil, err
	}
	return stw, nil
}

type UpdateSTWRequest struct {
	Description *string `json:"description"`
	Action      *string `json:"action"`
	JobID       *string `json:"job_id"`
}

// Update applies a partial update. Setting JobID links the STW to scheduled
// work and permanently blocks conversion.
func (s *STWService) Update(ctx context.Context, scope access.Scope, userID, id string, req *UpdateSTWRequest) (*entity.STW, error) {
	stw, err := s.stwRepo.FindByID(ctx, scope, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		stw.Description = *req.Description
	}
	if req.Action != nil {
		stw.Action = *req.Action
	}
	if req.JobID != nil {
		stw.JobID = req.JobID
	}

	if err := s.stwRepo.Update(ctx, stw); err != nil {
		return nil, err
	}
	return stw, nil
}
