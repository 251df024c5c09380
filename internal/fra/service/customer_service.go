package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/emberwatch/emberwatch/internal/fra/entity"
	"github.com/emberwatch/emberwatch/internal/fra/repository"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// CustomerService manages customers and their live billing records.
type CustomerService struct {
	customerRepo *repository.CustomerRepository
}

func NewCustomerService(customerRepo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

type SaveCustomerRequest struct {
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) ([]entity.Customer, int64, error) {
	return s.customerRepo.FindAll(ctx, page, pageSize, search)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*entity.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

func (s *CustomerService) Create(ctx context.Context, userID string, req *SaveCustomerRequest) (*entity.Customer, error) {
	customer := &entity.Customer{
		ID:          uuid.New().String()[:32],
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Phone:       req.Phone,
		CreatedBy:   userID,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id string, req *SaveCustomerRequest) (*entity.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	customer.Name = req.Name
	customer.CompanyName = req.CompanyName
	customer.Email = req.Email
	customer.Phone = req.Phone

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

type SaveBillingAddressRequest struct {
	Attention string `json:"attention"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	County    string `json:"county"`
	PostCode  string `json:"post_code" binding:"required"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// SaveBillingAddress creates or replaces a customer's billing address. Edits
// here affect future invoices only; issued billing snapshots are frozen.
func (s *CustomerService) SaveBillingAddress(ctx context.Context, customerID string, req *SaveBillingAddressRequest) (*entity.BillingAddress, error) {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Address) == "" || strings.TrimSpace(req.PostCode) == "" {
		fields := map[string]string{}
		if strings.TrimSpace(req.Address) == "" {
			fields["address"] = "address is required"
		}
		if strings.TrimSpace(req.PostCode) == "" {
			fields["post_code"] = "post code is required"
		}
		return nil, &apperr.ValidationError{Fields: fields}
	}

	addr := &entity.BillingAddress{
		ID:         uuid.New().String()[:32],
		CustomerID: customerID,
		Attention:  req.Attention,
		Address:    req.Address,
		City:       req.City,
		County:     req.County,
		PostCode:   req.PostCode,
		Country:    req.Country,
		Phone:      req.Phone,
		Email:      req.Email,
	}

	if err := s.customerRepo.SaveBillingAddress(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}
