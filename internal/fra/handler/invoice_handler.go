package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/middleware"
)

// InvoiceHandler exposes invoice drafting and issuing.
type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"requirement_id": c.Query("requirement_id"),
		"status":         c.Query("status"),
	}

	items, total, err := h.svc.List(c.Request.Context(), middleware.GetScope(c), GetUserID(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoice, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, invoice)
}

// Create POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	invoice, err := h.svc.Create(c.Request.Context(), middleware.GetScope(c), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, invoice)
}

// ChangeStatus PUT /api/v1/invoices/:id/status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	invoice, err := h.svc.ChangeStatus(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, invoice)
}
