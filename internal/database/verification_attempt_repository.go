package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uniride/campus-pool-backend/internal/models"
)

// VerificationAttemptRepository records document verification attempts.
// The rows back both the per-stage retry cap and upload rate limiting.
type VerificationAttemptRepository struct {
	db DB
}

// NewVerificationAttemptRepository creates a new verification attempt repository
func NewVerificationAttemptRepository(db DB) *VerificationAttemptRepository {
	return &VerificationAttemptRepository{
		db: db,
	}
}

// RecordAttempt stores one analyzer round-trip
func (r *VerificationAttemptRepository) RecordAttempt(attempt *models.VerificationAttempt) error {
	query := `
		INSERT INTO verification_attempts (
			user_id, document_type, success, confidence,
			reason, ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		attempt.UserID,
		attempt.DocumentType,
		attempt.Success,
		attempt.Confidence,
		attempt.Reason,
		attempt.IPAddress,
		attempt.UserAgent,
		attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record verification attempt: %w", err)
	}

	return nil
}

// CountFailedAttempts returns how many failed uploads a user has made for
// one document type. Successful attempts do not count against the cap.
func (r *VerificationAttemptRepository) CountFailedAttempts(userID uuid.UUID, documentType string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM verification_attempts
		WHERE user_id = $1 AND document_type = $2 AND success = false
	`

	var count int
	if err := r.db.QueryRow(query, userID, documentType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count verification attempts: %w", err)
	}

	return count, nil
}

// CountUserAttemptsSince returns how many uploads a user has made in the
// given window, regardless of outcome.
func (r *VerificationAttemptRepository) CountUserAttemptsSince(userID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM verification_attempts
		WHERE user_id = $1 AND created_at > $2
	`

	var count int
	if err := r.db.QueryRow(query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count user attempts: %w", err)
	}

	return count, nil
}

// CountIPAttemptsSince returns how many uploads came from one IP address in
// the given window.
func (r *VerificationAttemptRepository) CountIPAttemptsSince(ip string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM verification_attempts
		WHERE ip_address = $1 AND created_at > $2
	`

	var count int
	if err := r.db.QueryRow(query, ip, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count IP attempts: %w", err)
	}

	return count, nil
}
