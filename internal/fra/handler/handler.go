package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/shared/apperr"
)

// Handlers is the FRA handler set.
type Handlers struct {
	Requirement *RequirementHandler
	STW         *STWHandler
	Report      *ReportHandler
	Quotation   *QuotationHandler
	Invoice     *InvoiceHandler
	Catalog     *CatalogHandler
	Customer    *CustomerHandler
}

// NewHandlers wires the FRA handler set.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Requirement: NewRequirementHandler(svc.Requirement, svc.Conversion),
		STW:         NewSTWHandler(svc.STW),
		Report:      NewReportHandler(svc.Report),
		Quotation:   NewQuotationHandler(svc.Quotation),
		Invoice:     NewInvoiceHandler(svc.Invoice),
		Catalog:     NewCatalogHandler(svc.Catalog),
		Customer:    NewCustomerHandler(svc.Customer),
	}
}

// Response is the uniform envelope.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps paginated list payloads.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination carries page metadata.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination computes page metadata.
func NewPagination(page, pageSize int, total int64) *Pagination {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Status: "success", Message: "success", Data: data})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Status: "success", Message: "created", Data: data})
}

// Fail writes an error envelope with the given HTTP status.
func Fail(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Status: "error", Message: message, Data: data})
}

// BadRequest writes a 400 error envelope.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message, nil)
}

// NotFound writes a 404 error envelope.
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message, nil)
}

// InternalError writes a 500 error envelope.
func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, message, nil)
}

// HandleError maps domain errors onto the envelope. A denied caller and a
// missing row produce the same 404 so detail routes leak no existence
// information.
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
		errors.Is(err, apperr.ErrConversionBlocked),
		errors.Is(err, apperr.ErrMissingBillingInfo),
		errors.Is(err, apperr.ErrOverReceipt):
		Fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case apperr.IsExternal(err):
		Fail(c, http.StatusBadGateway, err.Error(), nil)
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID reads the authenticated caller id from context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page/page_size query params with bounds.
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
