package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/middleware"
	"github.com/uniride/campus-pool-backend/internal/services"
	"github.com/uniride/campus-pool-backend/internal/utils"
	"github.com/uniride/campus-pool-backend/pkg/docai"
)

// maxDocumentSize caps uploaded document size at 10MB.
const maxDocumentSize = 10 << 20

// VerificationHandler handles document upload and the verification flow.
type VerificationHandler struct {
	verification *services.VerificationService
	rateLimit    *services.RateLimitService
	audit        *services.AuditService
	logger       *logrus.Logger
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verification *services.VerificationService, rateLimit *services.RateLimitService, audit *services.AuditService, logger *logrus.Logger) *VerificationHandler {
	return &VerificationHandler{
		verification: verification,
		rateLimit:    rateLimit,
		audit:        audit,
		logger:       logger,
	}
}

// SubmitID verifies a Student ID upload.
// POST /api/v1/verification/id
func (h *VerificationHandler) SubmitID(c *gin.Context) {
	h.submit(c, docai.DocumentID)
}

// SubmitLicense verifies a Driving License upload.
// POST /api/v1/verification/license
func (h *VerificationHandler) SubmitLicense(c *gin.Context) {
	h.submit(c, docai.DocumentLicense)
}

// SkipLicense completes verification as a passenger without a license.
// POST /api/v1/verification/skip-license
func (h *VerificationHandler) SkipLicense(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	user, err := h.verification.SkipLicense(c.Request.Context(), userCtx.UserID, utils.GetRealIP(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Status reports the caller's position in the verification flow.
// GET /api/v1/verification
func (h *VerificationHandler) Status(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	status, err := h.verification.Status(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *VerificationHandler) submit(c *gin.Context, docType docai.DocumentType) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	ipAddress := utils.GetRealIP(c)
	userAgent := utils.GetUserAgent(c)

	// Rate limits run before the file is even read, so abusive clients
	// cost as little as possible.
	if err := h.rateLimit.CheckUploadRateLimit(userCtx.UserID, ipAddress); err != nil {
		var rateLimitErr *services.RateLimitError
		if errors.As(err, &rateLimitErr) {
			if auditErr := h.audit.LogRateLimitViolation(&userCtx.UserID, ipAddress, rateLimitErr.Type, rateLimitErr.RetryAfter); auditErr != nil {
				h.logger.WithError(auditErr).Warn("Failed to audit rate limit violation")
			}
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       rateLimitErr.Message,
				"code":        "RATE_LIMITED",
				"retry_after": rateLimitErr.RetryAfter,
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "document file is required",
			Code:  "MISSING_DOCUMENT",
		})
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "document exceeds the 10MB size limit",
			Code:  "DOCUMENT_TOO_LARGE",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	var outcome *services.SubmitOutcome
	if docType == docai.DocumentID {
		outcome, err = h.verification.SubmitStudentID(c.Request.Context(), userCtx.UserID, document, mimeType, ipAddress, userAgent)
	} else {
		outcome, err = h.verification.SubmitLicense(c.Request.Context(), userCtx.UserID, document, mimeType, ipAddress, userAgent)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	// A rejected document is a normal outcome, not an error: the client
	// shows the reason and lets the user retry.
	c.JSON(http.StatusOK, outcome)
}
