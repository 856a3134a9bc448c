package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/apperr"
)

// ErrorResponse is the common error payload for all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindInvalidInput:      http.StatusBadRequest,
	apperr.KindUnsupportedFormat: http.StatusBadRequest,
	apperr.KindNotAuthorized:     http.StatusForbidden,
	apperr.KindNotFound:          http.StatusNotFound,
	apperr.KindConflict:          http.StatusConflict,
	apperr.KindTooManyAttempts:   http.StatusTooManyRequests,
}

var kindCode = map[apperr.Kind]string{
	apperr.KindInvalidInput:      "INVALID_INPUT",
	apperr.KindUnsupportedFormat: "UNSUPPORTED_FORMAT",
	apperr.KindNotAuthorized:     "NOT_AUTHORIZED",
	apperr.KindNotFound:          "NOT_FOUND",
	apperr.KindConflict:          "CONFLICT",
	apperr.KindTooManyAttempts:   "TOO_MANY_ATTEMPTS",
	apperr.KindServiceError:      "SERVICE_ERROR",
	apperr.KindLowConfidence:     "LOW_CONFIDENCE",
}

// respondError maps a service error onto an HTTP status and common error
// payload. Unclassified errors are logged and reported as a generic 500 so
// internals never leak to clients.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status, ok := kindStatus[appErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		c.JSON(status, ErrorResponse{
			Error:   appErr.Message,
			Code:    kindCode[appErr.Kind],
			Message: appErr.Message,
		})
		return
	}

	logger.WithError(err).Error("Unhandled error")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal server error",
		Code:    "INTERNAL_ERROR",
		Message: "Something went wrong. Please try again later.",
	})
}
