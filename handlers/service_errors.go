package handlers

import (
	"net/http"

	"github.com/hustlehub/authgate/services"
	"github.com/hustlehub/authgate/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to the failure envelope. Only the
// domain error's client message is ever written.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := services.GetErrorMessage(err)
	var status int

	switch {
	case services.IsNotFoundError(err):
		status = http.StatusNotFound
	case services.IsValidationError(err):
		status = http.StatusBadRequest
	case services.IsUnauthorizedError(err):
		status = http.StatusUnauthorized
	case services.IsForbiddenError(err):
		status = http.StatusForbidden
	case services.IsRateLimitError(err):
		status = http.StatusTooManyRequests
	case services.IsConflictError(err):
		status = http.StatusConflict
	case services.IsExternalError(err):
		status = http.StatusBadGateway
	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		status = http.StatusInternalServerError
		message = "An internal error occurred"
	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		status = http.StatusInternalServerError
		message = "An unexpected error occurred"
	}

	if message == "" {
		message = http.StatusText(status)
	}

	logger.Debug("handled service error",
		zap.String("type", string(services.GetErrorType(err))),
		zap.Int("status", status),
		zap.Error(err))

	if err := utils.WriteError(w, status, message); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// HandleValidationError handles validation errors from request parsing.
// Anything that is not a *utils.ValidationError is a server fault.
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if !utils.IsValidationError(err) {
		logger.Error("request validation could not run", zap.Error(err))
		_ = utils.WriteError(w, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	logger.Debug("request validation failed", zap.Any("fields", utils.GetValidationFields(err)))
	if err := utils.WriteBadRequest(w, err.Error()); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}
