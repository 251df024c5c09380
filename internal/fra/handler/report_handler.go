package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/middleware"
)

// ReportHandler exposes the report lifecycle.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// List GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
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

// Get GET /api/v1/reports/:id
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, report)
}

// Create POST /api/v1/reports
func (h *ReportHandler) Create(c *gin.Context) {
	var req service.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := h.svc.Create(c.Request.Context(), middleware.GetScope(c), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, report)
}

// Update PUT /api/v1/reports/:id
func (h *ReportHandler) Update(c *gin.Context) {
	var req service.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := h.svc.Update(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, report)
}

// Submit POST /api/v1/reports/:id/submit
func (h *ReportHandler) Submit(c *gin.Context) {
	report, err := h.svc.Submit(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, report)
}
