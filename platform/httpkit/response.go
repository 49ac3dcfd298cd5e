package httpkit

import (
	"net/http"

	"addressfill_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// OK writes a 200 response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}

// Error writes an error response with the given status.
func Error(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// DomainError maps an apperr kind to its HTTP status and writes the response.
func DomainError(c *gin.Context, err error) {
	if e, ok := err.(*apperr.Error); ok {
		Error(c, e.HTTPStatus(), e.Message, nil)
		return
	}
	Error(c, http.StatusInternalServerError, "internal error", nil)
}
