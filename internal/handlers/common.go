package handlers

import (
	"errors"
	"net/http"

	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/api/responses"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sendError is a helper function that combines logging and error response
// It logs the error with the given message and sends a JSON error response
func sendError(c *gin.Context, statusCode int, message string, err error) {
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", statusCode),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error(message, fields...)
	} else {
		logger.Debug(message, fields...)
	}
	c.JSON(statusCode, responses.ErrorResponse{Error: message})
}

// handleServiceError maps domain errors to HTTP status codes
func handleServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validation *business.ValidationError
	switch {
	case errors.As(err, &validation):
		logger.Debug("Request rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{Error: validation.Message, Field: validation.Field})
	case errors.Is(err, business.ErrCurrencyCodeInvalid), errors.Is(err, business.ErrUnsupportedDeposit):
		sendError(c, http.StatusBadRequest, err.Error(), err)
	case business.IsAuthorizationError(err):
		sendError(c, http.StatusForbidden, "Forbidden", err)
	case errors.Is(err, business.ErrStablecoinNotFound), errors.Is(err, business.ErrOperationNotFound):
		sendError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, business.ErrStablecoinExists),
		errors.Is(err, business.ErrCancelNotAllowed),
		errors.Is(err, business.ErrStaleOperation),
		errors.Is(err, business.ErrInvalidTransition):
		sendError(c, http.StatusConflict, conflictMessage(err), err)
	case errors.Is(err, business.ErrTrustLineMissing):
		sendError(c, http.StatusUnprocessableEntity, business.ErrTrustLineMissing.Error(), err)
	case business.IsLedgerSubmissionError(err):
		sendError(c, http.StatusBadGateway, "Ledger submission failed", err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func conflictMessage(err error) string {
	for _, sentinel := range []error{business.ErrStablecoinExists, business.ErrCancelNotAllowed, business.ErrStaleOperation} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return business.ErrInvalidTransition.Error()
}

// parseUUIDParam reads a uuid path parameter, answering 400 when malformed
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid "+name+" format", err)
		return uuid.Nil, false
	}
	return id, true
}

// sendSuccess is a helper function that sends a success response
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// sendSuccessMessage is a helper function that sends a success message
func sendSuccessMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, responses.SuccessResponse{Message: message})
}

// sendList is a helper function that sends a list response
func sendList(c *gin.Context, items interface{}) {
	c.JSON(http.StatusOK, responses.ListResponse{
		Object: "list",
		Data:   items,
	})
}
