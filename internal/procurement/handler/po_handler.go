package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/middleware"
	"github.com/emberwatch/emberwatch/internal/procurement/service"
)

// POHandler exposes purchase orders and the receiving ledger.
type POHandler struct {
	svc     *service.POService
	receipt *service.ReceiptService
}

func NewPOHandler(svc *service.POService, receipt *service.ReceiptService) *POHandler {
	return &POHandler{svc: svc, receipt: receipt}
}

// List GET /api/v1/purchase-orders
func (h *POHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"vendor_id": c.Query("vendor_id"),
		"status":    c.Query("status"),
		"search":    c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), middleware.GetScope(c), GetUserID(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, ListResponse{Items: items, Pagination: NewPagination(page, pageSize, total)})
}

// Get GET /api/v1/purchase-orders/:id
func (h *POHandler) Get(c *gin.Context) {
	po, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, po)
}

// Create POST /api/v1/purchase-orders
func (h *POHandler) Create(c *gin.Context) {
	var req service.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	po, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, po)
}

// ChangeStatus PUT /api/v1/purchase-orders/:id/status
func (h *POHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	po, err := h.svc.ChangeStatus(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, po)
}

// UpdateItem PUT /api/v1/purchase-orders/:id/items/:itemId
func (h *POHandler) UpdateItem(c *gin.Context) {
	var req service.UpdatePOItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), c.Param("itemId"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// AddReceipt POST /api/v1/purchase-orders/:id/receipts
func (h *POHandler) AddReceipt(c *gin.Context) {
	var req service.AddReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	event, err := h.receipt.AddReceipt(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, event)
}

// ListReceipts GET /api/v1/purchase-orders/:id/receipts
func (h *POHandler) ListReceipts(c *gin.Context) {
	events, err := h.receipt.ListEvents(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": events})
}

// GetReceipt GET /api/v1/receipts/:id
func (h *POHandler) GetReceipt(c *gin.Context) {
	event, rows, err := h.receipt.EventWithTotals(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"event": event, "rows": rows})
}
