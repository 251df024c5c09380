package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/middleware"
)

// QuotationHandler exposes quotation drafting, pricing and the approval
// flow.
type QuotationHandler struct {
	svc *service.QuotationService
}

func NewQuotationHandler(svc *service.QuotationService) *QuotationHandler {
	return &QuotationHandler{svc: svc}
}

// List GET /api/v1/quotations
func (h *QuotationHandler) List(c *gin.Context) {
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

// Get GET /api/v1/quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	quotation, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}

// Create POST /api/v1/quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	var req service.SaveQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	quotation, err := h.svc.Create(c.Request.Context(), middleware.GetScope(c), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, quotation)
}

// Save PUT /api/v1/quotations/:id
func (h *QuotationHandler) Save(c *gin.Context) {
	var req service.SaveQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	quotation, err := h.svc.Save(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}

// Submit POST /api/v1/quotations/:id/submit
func (h *QuotationHandler) Submit(c *gin.Context) {
	quotation, err := h.svc.Submit(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}

// Regenerate POST /api/v1/quotations/:id/regenerate
func (h *QuotationHandler) Regenerate(c *gin.Context) {
	quotation, err := h.svc.Regenerate(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}

// SendForApproval POST /api/v1/quotations/:id/send-for-approval
func (h *QuotationHandler) SendForApproval(c *gin.Context) {
	quotation, err := h.svc.SendForApproval(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}

// Approve POST /api/v1/quotations/:id/approve
func (h *QuotationHandler) Approve(c *gin.Context) {
	quotation, err := h.svc.Approve(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}

// Reject POST /api/v1/quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	quotation, err := h.svc.Reject(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quotation)
}
