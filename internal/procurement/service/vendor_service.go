package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/emberwatch/emberwatch/internal/procurement/entity"
	"github.com/emberwatch/emberwatch/internal/procurement/repository"
)

// VendorService manages vendors and inventory locations.
type VendorService struct {
	vendorRepo   *repository.VendorRepository
	locationRepo *repository.LocationRepository
}

func NewVendorService(vendorRepo *repository.VendorRepository, locationRepo *repository.LocationRepository) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, locationRepo: locationRepo}
}

type SaveVendorRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	TaxNumber   string `json:"tax_number"`
	ContactName string `json:"contact_name"`
	Active      *bool  `json:"active"`
}

func (s *VendorService) ListVendors(ctx context.Context, page, pageSize int, search string) ([]entity.Vendor, int64, error) {
	return s.vendorRepo.FindAll(ctx, page, pageSize, search)
}

func (s *VendorService) GetVendor(ctx context.Context, id string) (*entity.Vendor, error) {
	return s.vendorRepo.FindByID(ctx, id)
}

func (s *VendorService) CreateVendor(ctx context.Context, userID string, req *SaveVendorRequest) (*entity.Vendor, error) {
	vendor := &entity.Vendor{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		TaxNumber:   req.TaxNumber,
		ContactName: req.ContactName,
		Active:      true,
		CreatedBy:   userID,
	}
	if req.Active != nil {
		vendor.Active = *req.Active
	}

	if err := s.vendorRepo.Create(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) UpdateVendor(ctx context.Context, id string, req *SaveVendorRequest) (*entity.Vendor, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vendor.Name = req.Name
	vendor.Email = req.Email
	vendor.Phone = req.Phone
	vendor.Address = req.Address
	vendor.TaxNumber = req.TaxNumber
	vendor.ContactName = req.ContactName
	if req.Active != nil {
		vendor.Active = *req.Active
	}

	if err := s.vendorRepo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

type SaveLocationRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (s *VendorService) ListLocations(ctx context.Context, page, pageSize int, search string) ([]entity.InventoryLocation, int64, error) {
	return s.locationRepo.FindAll(ctx, page, pageSize, search)
}

func (s *VendorService) GetLocation(ctx context.Context, id string) (*entity.InventoryLocation, error) {
	return s.locationRepo.FindByID(ctx, id)
}

func (s *VendorService) CreateLocation(ctx context.Context, userID string, req *SaveLocationRequest) (*entity.InventoryLocation, error) {
	location := &entity.InventoryLocation{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Active:      true,
		CreatedBy:   userID,
	}
	if req.Active != nil {
		location.Active = *req.Active
	}

	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *VendorService) UpdateLocation(ctx context.Context, id string, req *SaveLocationRequest) (*entity.InventoryLocation, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	location.Name = req.Name
	location.Address = req.Address
	location.Description = req.Description
	if req.Active != nil {
		location.Active = *req.Active
	}

	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}
