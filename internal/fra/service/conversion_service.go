package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/emberwatch/emberwatch/internal/access"
	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// ConversionService turns a pre-survey work item (STW) into a full
// requirement with defects. The whole conversion is one transaction: either
// the requirement and every mapped defect exist and the STW is gone, or
// nothing changed.
type ConversionService struct {
	stwRepo *repository.STWRepository
	reqRepo *repository.RequirementRepository
	db      *gorm.DB
	logger  *zap.Logger
}

func NewConversionService(stwRepo *repository.STWRepository, reqRepo *repository.RequirementRepository, db *gorm.DB, logger *zap.Logger) *ConversionService {
	return &ConversionService{stwRepo: stwRepo, reqRepo: reqRepo, db: db, logger: logger}
}

// Convert performs the STW -> requirement conversion for the caller.
func (s *ConversionService) Convert(ctx context.Context, scope access.Scope, userID, stwID string) (*entity.Requirement, error) {
	stw, err := s.stwRepo.FindByID(ctx, scope, userID, stwID)
	if err != nil {
		return nil, err
	}

	if stw.JobID != nil && *stw.JobID != "" {
		return nil, apperr.ErrConversionBlocked
	}

	// Validate against the requirement creation contract before touching
	// anything.
	createReq := &CreateRequirementRequest{
		CustomerID:  stw.CustomerID,
		UPRN:        stw.UPRN,
		RBNO:        stw.RBNO,
		Description: stw.Description,
		Action:      stw.Action,
	}
	if ve := createReq.Validate(); ve != nil {
		return nil, ve
	}

	uprnTaken, rbnoTaken, err := s.reqRepo.UPRNOrRBNOExists(ctx, stw.UPRN, stw.RBNO, "")
	if err != nil {
		return nil, fmt.Errorf("check identifiers: %w", err)
	}
	if uprnTaken || rbnoTaken {
		fields := map[string]string{}
		if uprnTaken {
			fields["uprn"] = "UPRN already in use by a requirement"
		}
		if rbnoTaken {
			fields["rbno"] = "RBNO already in use by a requirement"
		}
		return nil, &apperr.ValidationError{Fields: fields}
	}

	// Validate the whole defect batch up front; one bad defect aborts the
	// conversion before anything is written.
	for i, d := range stw.Defects {
		if strings.TrimSpace(d.Action) == "" {
			return nil, apperr.NewValidation(
				fmt.Sprintf("defects[%d].action", i), "action is required")
		}
	}

	requirement := &entity.Requirement{
		ID:          uuid.New().String()[:32],
		CustomerID:  stw.CustomerID,
		UPRN:        stw.UPRN,
		RBNO:        stw.RBNO,
		Description: stw.Description,
		Action:      stw.Action,
		Status:      entity.RequirementStatusActive,
		CreatedBy:   stw.CreatedBy,
	}
	for _, d := range stw.Defects {
		requirement.Defects = append(requirement.Defects, entity.RequirementDefect{
			ID:            uuid.New().String()[:32],
			RequirementID: requirement.ID,
			Action:        d.Action,
			Description:   d.Description,
			Rectification: d.Rectification,
			Status:        entity.DefectStatusPending,
			CreatedBy:     stw.CreatedBy,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(requirement).Error; err != nil {
			return fmt.Errorf("create requirement: %w", err)
		}
		if err := tx.Where("stw_id = ?", stw.ID).Delete(&entity.STWDefect{}).Error; err != nil {
			return fmt.Errorf("delete stw defects: %w", err)
		}
		if err := tx.Where("id = ?", stw.ID).Delete(&entity.STW{}).Error; err != nil {
			return fmt.Errorf("delete stw: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Converted STW to requirement",
		zap.String("stw_id", stw.ID),
		zap.String("requirement_id", requirement.ID),
		zap.Int("defects", len(requirement.Defects)),
	)

	return requirement, nil
}
