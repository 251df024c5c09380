package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/emberwatch/emberwatch/internal/fra/service"
	"github.com/emberwatch/emberwatch/internal/middleware"
)

// RequirementHandler exposes the requirement lifecycle, defects and the
// STW conversion endpoint.
type RequirementHandler struct {
	svc        *service.RequirementService
	conversion *service.ConversionService
}

func NewRequirementHandler(svc *service.RequirementService, conversion *service.ConversionService) *RequirementHandler {
	return &RequirementHandler{svc: svc, conversion: conversion}
}

// List GET /api/v1/requirements
func (h *RequirementHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":      c.Query("status"),
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

// Get GET /api/v1/requirements/:id
func (h *RequirementHandler) Get(c *gin.Context) {
	requirement, err := h.svc.Get(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, requirement)
}

// Create POST /api/v1/requirements
func (h *RequirementHandler) Create(c *gin.Context) {
	var req service.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requirement, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, requirement)
}

// Update PUT /api/v1/requirements/:id
func (h *RequirementHandler) Update(c *gin.Context) {
	var req service.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requirement, err := h.svc.Update(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, requirement)
}

// ChangeStatus PUT /api/v1/requirements/:id/status
func (h *RequirementHandler) ChangeStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requirement, err := h.svc.ChangeStatus(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, requirement)
}

// AssignSurveyors PUT /api/v1/requirements/:id/surveyors
func (h *RequirementHandler) AssignSurveyors(c *gin.Context) {
	var req service.AssignSurveyorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	requirement, err := h.svc.AssignSurveyors(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, requirement)
}

// AddDefect POST /api/v1/requirements/:id/defects
func (h *RequirementHandler) AddDefect(c *gin.Context) {
	var req service.CreateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	defect, err := h.svc.AddDefect(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, defect)
}

// UpdateDefect PUT /api/v1/requirements/:id/defects/:defectId
func (h *RequirementHandler) UpdateDefect(c *gin.Context) {
	var req service.UpdateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	defect, err := h.svc.UpdateDefect(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"), c.Param("defectId"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, defect)
}

// ConvertSTW POST /api/v1/stws/:id/convert
func (h *RequirementHandler) ConvertSTW(c *gin.Context) {
	requirement, err := h.conversion.Convert(c.Request.Context(), middleware.GetScope(c), GetUserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, requirement)
}
