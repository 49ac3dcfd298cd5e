package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"addressfill_backend/internal/forms/service"
	"addressfill_backend/internal/forms/sse"
	"addressfill_backend/internal/forms/transport"
	"addressfill_backend/platform/apperr"
	"addressfill_backend/platform/httpkit"
	"addressfill_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for form sessions
type Handler struct {
	svc    *service.Service
	stream *sse.Service
	val    *validator.Validator
}

// New creates a new forms handler
func New(svc *service.Service, stream *sse.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, stream: stream, val: val}
}

// RegisterRoutes registers the form session routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/fields", h.EditField)
	rg.GET("/:id/events", h.Events)
	rg.POST("/:id/decision", h.Decide)
	rg.DELETE("/:id", h.Close)
}

func parseFormID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "malformed form id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/v1/forms
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.CreateForm(req)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}

	httpkit.Created(c, result)
}

// Get handles GET /api/v1/forms/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}

	result, err := h.svc.GetForm(id)
	if err != nil {
		httpkit.DomainError(c, err)
		return
	}

	httpkit.OK(c, result)
}

// EditField handles POST /api/v1/forms/:id/fields
func (h *Handler) EditField(c *gin.Context) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}

	var req transport.EditFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.EditField(id, req); err != nil {
		httpkit.DomainError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "accepted"})
}

// Events handles GET /api/v1/forms/:id/events (SSE)
func (h *Handler) Events(c *gin.Context) {
	h.stream.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil || !h.svc.Exists(id) {
			return uuid.Nil, false
		}
		return id, true
	})(c)
}

// Decide handles POST /api/v1/forms/:id/decision
func (h *Handler) Decide(c *gin.Context) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}

	var req transport.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	if req.Accept == nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "accept is required")
		return
	}

	if err := h.svc.Decide(id, req.PromptID, *req.Accept); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			httpkit.Error(c, http.StatusNotFound, "prompt not found or expired", nil)
			return
		}
		httpkit.DomainError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "recorded"})
}

// Close handles DELETE /api/v1/forms/:id
func (h *Handler) Close(c *gin.Context) {
	id, ok := parseFormID(c)
	if !ok {
		return
	}

	if err := h.svc.CloseForm(id); err != nil {
		httpkit.DomainError(c, err)
		return
	}

	httpkit.OK(c, gin.H{"status": "closed"})
}
