package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
)

// CatalogHandler exposes the SOR rate catalog.
type CatalogHandler struct {
	svc *service.CatalogService
}

func NewCatalogHandler(svc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// List GET /api/v1/catalog
func (h *CatalogHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/catalog/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Create POST /api/v1/catalog
func (h *CatalogHandler) Create(c *gin.Context) {
	var req service.SaveCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// Update PUT /api/v1/catalog/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	var req service.SaveCatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}
