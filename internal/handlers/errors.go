package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// errorResponse is the body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// errorCodes names the domain errors clients can act on. Order matters: more specific first.
var errorCodes = []struct {
	err  error
	code string
}{
	{apperrors.ErrImbalancedEntry, "IMBALANCED_ENTRY"},
	{apperrors.ErrEmptyEntry, "EMPTY_ENTRY"},
	{apperrors.ErrUnmappedCategory, "UNMAPPED_CATEGORY"},
	{apperrors.ErrInvalidStatement, "INVALID_STATEMENT"},
	{apperrors.ErrInvalidAccount, "INVALID_ACCOUNT"},
	{apperrors.ErrAlreadyPosted, "ALREADY_POSTED"},
	{apperrors.ErrInvalidTransition, "INVALID_TRANSITION"},
	{apperrors.ErrImmutableEntry, "IMMUTABLE_ENTRY"},
	{apperrors.ErrAccess, "ACCESS_DENIED"},
	{apperrors.ErrDuplicate, "DUPLICATE"},
	{apperrors.ErrValidation, "VALIDATION"},
	{apperrors.ErrNotFound, "NOT_FOUND"},
	{apperrors.ErrConflict, "CONFLICT"},
}

func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAccess):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError logs err and writes the matching status. Server errors hide their cause.
func respondWithError(c *gin.Context, logger *slog.Logger, err error, action string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Failed to "+action, slog.String("error", err.Error()))
		c.JSON(status, errorResponse{Error: "Failed to " + action})
		return
	}
	logger.Warn("Request rejected while trying to "+action, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, errorResponse{Error: err.Error(), Code: errorCode(err)})
}

func respondBadRequest(c *gin.Context, logger *slog.Logger, err error, what string) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid " + what + ": " + err.Error(), Code: "VALIDATION"})
}
