package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/procurement/service"
)

// VendorHandler exposes vendors and inventory locations.
type VendorHandler struct {
	svc *service.VendorService
}

func NewVendorHandler(svc *service.VendorService) *VendorHandler {
	return &VendorHandler{svc: svc}
}

// ListVendors GET /api/v1/vendors
func (h *VendorHandler) ListVendors(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListVendors(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// GetVendor GET /api/v1/vendors/:id
func (h *VendorHandler) GetVendor(c *gin.Context) {
	vendor, err := h.svc.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, vendor)
}

// CreateVendor POST /api/v1/vendors
func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req service.SaveVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	vendor, err := h.svc.CreateVendor(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, vendor)
}

// UpdateVendor PUT /api/v1/vendors/:id
func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var req service.SaveVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	vendor, err := h.svc.UpdateVendor(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, vendor)
}

// ListLocations GET /api/v1/locations
func (h *VendorHandler) ListLocations(c *gin.Context) {
	page, pageSize := GetPagination(c)

	items, total, err := h.svc.ListLocations(c.Request.Context(), page, pageSize, c.Query("search"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// GetLocation GET /api/v1/locations/:id
func (h *VendorHandler) GetLocation(c *gin.Context) {
	location, err := h.svc.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, location)
}

// CreateLocation POST /api/v1/locations
func (h *VendorHandler) CreateLocation(c *gin.Context) {
	var req service.SaveLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	location, err := h.svc.CreateLocation(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, location)
}

// UpdateLocation PUT /api/v1/locations/:id
func (h *VendorHandler) UpdateLocation(c *gin.Context) {
	var req service.SaveLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	location, err := h.svc.UpdateLocation(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, location)
}
