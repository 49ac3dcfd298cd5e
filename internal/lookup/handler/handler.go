package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"addressfill_backend/platform/httpkit"
	"addressfill_backend/platform/normalize"
	"addressfill_backend/platform/validator"
)

// Service resolves a normalized postal code and house number.
type Service interface {
	Lookup(ctx context.Context, postcode, houseNumber string) (map[string]string, error)
}

// AddressQuery is the query string for a direct address lookup.
type AddressQuery struct {
	Postcode string `form:"postcode" validate:"required,nl_postcode"`
	Number   string `form:"number" validate:"required,min=1,max=10"`
}

// AddressResponse is the lookup result. Found is false when the address
// does not exist; that is not an error.
type AddressResponse struct {
	Found   bool              `json:"found"`
	Address map[string]string `json:"address,omitempty"`
}

// Handler exposes the lookup service over HTTP, bypassing form sessions.
type Handler struct {
	svc Service
	val *validator.Validator
}

// New creates a new lookup handler
func New(svc Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the address lookup routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
}

// Get handles GET /api/v1/address
func (h *Handler) Get(c *gin.Context) {
	var q AddressQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	fields, err := h.svc.Lookup(c.Request.Context(), normalize.Postcode(q.Postcode), q.Number)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "address lookup failed", nil)
		return
	}

	httpkit.OK(c, AddressResponse{Found: len(fields) > 0, Address: fields})
}
