package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// CatalogService manages the SOR rate catalog.
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
}

func NewCatalogService(catalogRepo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

type SaveCatalogItemRequest struct {
	Code        string          `json:"code" binding:"required"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Active      *bool           `json:"active"`
}

func (s *CatalogService) List(ctx context.Context, page, pageSize int, search string) ([]entity.RateCatalogItem, int64, error) {
	return s.catalogRepo.FindAll(ctx, page, pageSize, search)
}

func (s *CatalogService) Get(ctx context.Context, id string) (*entity.RateCatalogItem, error) {
	return s.catalogRepo.FindByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, req *SaveCatalogItemRequest) (*entity.RateCatalogItem, error) {
	if req.Price.IsNegative() {
		return nil, apperr.NewValidation("price", "price must not be negative")
	}

	item := &entity.RateCatalogItem{
		ID:          uuid.New().String()[:32],
		Code:        req.Code,
		Description: req.Description,
		Unit:        req.Unit,
		Price:       req.Price,
		Active:      true,
	}
	if item.Unit == "" {
		item.Unit = "each"
	}
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.catalogRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update changes a catalog row. Existing quotation snapshots keep the prices
// they were saved with; only future saves see the new values.
func (s *CatalogService) Update(ctx context.Context, id string, req *SaveCatalogItemRequest) (*entity.RateCatalogItem, error) {
	if req.Price.IsNegative() {
		return nil, apperr.NewValidation("price", "price must not be negative")
	}

	item, err := s.catalogRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Code = req.Code
	item.Description = req.Description
	if req.Unit != "" {
		item.Unit = req.Unit
	}
	item.Price = req.Price
	if req.Active != nil {
		item.Active = *req.Active
	}

	if err := s.catalogRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
