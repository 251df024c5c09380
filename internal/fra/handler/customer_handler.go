package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
)

// CustomerHandler exposes customers and billing addresses.
type CustomerHandler struct {
	svc *service.CustomerService
}

func NewCustomerHandler(svc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{svc: svc}
}

// List GET /api/v1/customers
func (h *CustomerHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// Create POST /api/v1/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var req service.SaveCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, customer)
}

// Update PUT /api/v1/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var req service.SaveCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, customer)
}

// SaveBillingAddress PUT /api/v1/customers/:id/billing-address
func (h *CustomerHandler) SaveBillingAddress(c *gin.Context) {
	var req service.SaveBillingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	addr, err := h.svc.SaveBillingAddress(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, addr)
}
