package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/utils"
)

// AuditService writes security-relevant events to the audit_logs table.
// Audit failures are reported to the caller but must never abort the
// operation being audited.
type AuditService struct {
	db     database.DB
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, logger *logrus.Logger) *AuditService {
	return &AuditService{
		db:     db,
		logger: logger,
	}
}

// AuditEvent represents one auditable action.
type AuditEvent struct {
	UserID     *uuid.UUID
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogRegistration records a new account creation.
func (s *AuditService) LogRegistration(userID uuid.UUID, name, college, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "user_registered",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"name":    name,
			"college": college,
		},
	})
}

// LogVerificationAttempt records a document submission and its outcome.
func (s *AuditService) LogVerificationAttempt(userID uuid.UUID, documentType string, success bool, confidence float64, reason, ipAddress, userAgent string) error {
	details := map[string]interface{}{
		"document_type": documentType,
		"success":       success,
		"confidence":    confidence,
	}
	if reason != "" {
		details["reason"] = reason
	}
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "verification_attempt",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogVerificationOptOut records a user skipping the license stage.
func (s *AuditService) LogVerificationOptOut(userID uuid.UUID, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "verification_opt_out",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
	})
}

// LogRidePosted records a new ride offer.
func (s *AuditService) LogRidePosted(userID, rideID uuid.UUID, vehicleType, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "ride_posted",
		EntityType: "ride",
		EntityID:   &rideID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"vehicle_type": vehicleType,
		},
	})
}

// LogRateLimitViolation records a rejected upload due to rate limiting.
func (s *AuditService) LogRateLimitViolation(userID *uuid.UUID, ipAddress, limitType string, retryAfter time.Time) error {
	return s.logEvent(AuditEvent{
		UserID:    userID,
		Action:    "rate_limit_violation",
		IPAddress: ipAddress,
		Details: map[string]interface{}{
			"limit_type":  limitType,
			"retry_after": retryAfter.Format(time.RFC3339),
		},
	})
}

func (s *AuditService) logEvent(event AuditEvent) error {
	if event.Details == nil {
		event.Details = map[string]interface{}{}
	}
	if event.UserAgent != "" {
		event.Details["device_info"] = utils.ParseUserAgent(event.UserAgent)
	}

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.Exec(query,
		event.UserID,
		event.Action,
		nullIfEmpty(event.EntityType),
		event.EntityID,
		nullIfEmpty(event.IPAddress),
		nullIfEmpty(event.UserAgent),
		string(detailsJSON),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"action":  event.Action,
		"user_id": event.UserID,
	}).Debug("Audit event recorded")

	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
