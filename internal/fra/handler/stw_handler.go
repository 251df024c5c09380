package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/middleware"
)

// STWHandler exposes pre-survey work items.
type STWHandler struct {
	svc *service.STWService
}

func NewSTWHandler(svc *service.STWService) *STWHandler {
	return &STWHandler{svc: svc}
}

// List GET /api/v1/stws
func (h *STWHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"customer_id": c.Query("customer_id"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), middleware.GetScope(c), GetUserID(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/stws/:id
func (h *STWHandler) Get(c *gin.Context) {
	stw, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stw)
}

// Create POST /api/v1/stws
func (h *STWHandler) Create(c *gin.Context) {
	var req service.CreateSTWRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	stw, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, stw)
}

// Update PUT /api/v1/stws/:id
func (h *STWHandler) Update(c *gin.Context) {
	var req service.UpdateSTWRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	stw, err := h.svc.Update(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, stw)
}
