package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/impairment-ledger/internal/api_gateway/middleware"
	"github.com/impairment-ledger/internal/domain/impairment"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts go out as JSON numbers, e.g. {"posted":false,"total":0}
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrorResponse represents an error in API responses
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// PaginatedResponse represents a page of items in API responses
type PaginatedResponse struct {
	Data interface{} `json:"data"`
	Meta MetaInfo    `json:"meta"`
}

// MetaInfo represents metadata in a response
type MetaInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// NewPaginatedResponse creates a new paginated response
func NewPaginatedResponse(data interface{}, page, perPage, totalItems int) *PaginatedResponse {
	totalPages := totalItems / perPage
	if totalItems%perPage > 0 {
		totalPages++
	}

	return &PaginatedResponse{
		Data: data,
		Meta: MetaInfo{
			Page:       page,
			PerPage:    perPage,
			TotalPages: totalPages,
			TotalItems: totalItems,
		},
	}
}

// RespondOK sends a 200 OK response with the operation's result as the body
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondWithPaginatedData sends a JSON response with paginated data
func RespondWithPaginatedData(c *gin.Context, data interface{}, page, perPage, totalItems int) {
	c.JSON(http.StatusOK, NewPaginatedResponse(data, page, perPage, totalItems))
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:         message,
		Code:          code,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "VALIDATION_FAILED", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
}

// RespondWithDomainError maps an engine error onto its HTTP status and code
func RespondWithDomainError(c *gin.Context, logger *slog.Logger, err error) {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, impairment.ErrNotAuthenticated):
		RespondWithError(c, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
	case errors.Is(err, impairment.ErrTenantNotFound):
		RespondWithError(c, http.StatusForbidden, "TENANT_NOT_FOUND", err.Error())
	case errors.As(err, &validationErrs):
		RespondBadRequest(c, formatValidationErrors(validationErrs))
	case errors.Is(err, impairment.ErrValidation{}):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, impairment.ErrAlreadyPosted{}):
		RespondWithError(c, http.StatusConflict, "ALREADY_POSTED", err.Error())
	case errors.Is(err, impairment.ErrPostInProgress{}):
		RespondWithError(c, http.StatusConflict, "POST_IN_PROGRESS", err.Error())
	case errors.Is(err, impairment.ErrPeriodLocked{}):
		RespondWithError(c, http.StatusLocked, "PERIOD_LOCKED", err.Error())
	case errors.Is(err, impairment.ErrCalculationNotFound{}):
		RespondWithError(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, impairment.ErrAccountResolution{}):
		logger.Error("Account resolution failed", "error", err)
		RespondWithError(c, http.StatusInternalServerError, "ACCOUNT_RESOLUTION_FAILED", err.Error())
	default:
		logger.Error("Request failed", "error", err)
		RespondInternalError(c)
	}
}

// formatValidationErrors renders validator failures as "field: rule" pairs
func formatValidationErrors(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
