// Package response defines the JSON envelope every handler replies with.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inquiryos/inquiry-os/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error   APIError `json:"error"`
	TraceID string   `json:"trace_id,omitempty"`
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Error maps apierr.Kind to the HTTP status taxonomy from SPEC_FULL.md §7.
// Any non-*apierr.Error is treated as Internal/500.
func Error(c *gin.Context, err error) {
	var apiErr *apierr.Error
	status := http.StatusInternalServerError
	code := "internal_error"
	if errors.As(err, &apiErr) {
		status = apiErr.Status
		code = apiErr.Code
	}
	c.JSON(status, ErrorEnvelope{
		Error:   APIError{Message: err.Error(), Code: code},
		TraceID: c.GetString("trace_id"),
	})
}

// ValidationError always surfaces as 422, matching POST /research-runs's
// request-body validation contract.
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{
		Error:   APIError{Message: err.Error(), Code: "validation_error"},
		TraceID: c.GetString("trace_id"),
	})
}
