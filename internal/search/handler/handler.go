package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opsdesk_backend/internal/search/service"
	"opsdesk_backend/internal/search/transport"
	"opsdesk_backend/platform/httpkit"
	"opsdesk_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Execute)
	rg.POST("/corrections", h.ApplyCorrection)
	rg.GET("/departments/:department/patterns", h.DepartmentPatterns)
}

func (h *Handler) Execute(c *gin.Context) {
	var req transport.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Execute(c.Request.Context(), identity.UserID(), req.Input)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ApplyCorrection(c *gin.Context) {
	var req transport.CorrectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ApplyCorrection(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) DepartmentPatterns(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	list, err := h.svc.DepartmentPatterns(c.Request.Context(), c.Param("department"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, list)
}
