package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/procurement/service"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// Handlers is the procurement handler set.
type Handlers struct {
	Vendor *VendorHandler
	PO     *POHandler
}

// NewHandlers wires the procurement handler set.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Vendor: NewVendorHandler(svc.Vendor),
		PO:     NewPOHandler(svc.PO, svc.Receipt),
	}
}

// Envelope helpers, kept in step with the FRA domain.

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: "success", Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: "success", Message: "created", Data: data})
}

func Fail(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Status: "error", Message: message, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message, nil)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message, nil)
}

// HandleError maps domain errors onto the envelope.
func HandleError(c *gin.Context, err error) {
	if ve, ok := apperr.AsValidation(err); ok {
		Fail(c, http.StatusBadRequest, "validation failed", ve.Fields)
		return
	}

	switch {
	case errors.Is(err, apperr.ErrNotFoundOrForbidden):
		NotFound(c, "not found")
	case errors.Is(err, apperr.ErrUnauthorized):
		Fail(c, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, apperr.ErrVersionConflict):
		Fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, apperr.ErrIllegalTransition),
		errors.Is(err, apperr.ErrOverReceipt):
		Fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
