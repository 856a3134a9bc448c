package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/apperr"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/pkg/docai"
)

const (
	// DefaultConfidenceThreshold is the minimum analyzer confidence for a
	// valid judgement to be accepted. The threshold lives here, not in the
	// analyzer client, so it can be tuned and tested independently of the
	// network call.
	DefaultConfidenceThreshold = 0.6

	// DefaultMaxAttempts caps failed uploads per verification stage.
	DefaultMaxAttempts = 5
)

// VerificationService drives the two-stage document flow:
// awaiting_id -> awaiting_license -> complete. The complete state has two
// sub-outcomes: Driver (license passed) and PassengerOnly (explicit opt-out).
//
// isVerified is monotone: once the ID stage passes it is never unset, and a
// failed license upload never touches it.
type VerificationService struct {
	analyzer    docai.DocumentAnalyzer
	users       *database.UserRepository
	attempts    *database.VerificationAttemptRepository
	audit       *AuditService
	logger      *logrus.Logger
	threshold   float64
	maxAttempts int

	// inFlight serializes uploads per user: one document in flight at a time.
	inFlight sync.Map
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	analyzer docai.DocumentAnalyzer,
	users *database.UserRepository,
	attempts *database.VerificationAttemptRepository,
	audit *AuditService,
	logger *logrus.Logger,
	threshold float64,
	maxAttempts int,
) *VerificationService {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &VerificationService{
		analyzer:    analyzer,
		users:       users,
		attempts:    attempts,
		audit:       audit,
		logger:      logger,
		threshold:   threshold,
		maxAttempts: maxAttempts,
	}
}

// SubmitOutcome is the result of one document submission. A rejected
// submission is not an error: the state is unchanged and the user may retry.
type SubmitOutcome struct {
	Accepted          bool                     `json:"accepted"`
	State             models.VerificationState `json:"state"`
	IsVerified        bool                     `json:"is_verified"`
	IsDriver          bool                     `json:"is_driver"`
	Confidence        float64                  `json:"confidence"`
	Reason            string                   `json:"reason,omitempty"`
	AttemptsRemaining int                      `json:"attempts_remaining"`
}

// VerificationStatus describes where a user currently is in the flow.
type VerificationStatus struct {
	State             models.VerificationState `json:"state"`
	IsVerified        bool                     `json:"is_verified"`
	IsDriver          bool                     `json:"is_driver"`
	AttemptsRemaining int                      `json:"attempts_remaining"`
}

// SubmitStudentID judges a Student ID upload for a user in awaiting_id.
// On acceptance the user advances to awaiting_license.
func (s *VerificationService) SubmitStudentID(ctx context.Context, userID uuid.UUID, document []byte, mimeType, ipAddress, userAgent string) (*SubmitOutcome, error) {
	return s.submit(ctx, userID, docai.DocumentID, document, mimeType, ipAddress, userAgent)
}

// SubmitLicense judges a Driving License upload for a user in
// awaiting_license. On acceptance the user completes as a driver.
func (s *VerificationService) SubmitLicense(ctx context.Context, userID uuid.UUID, document []byte, mimeType, ipAddress, userAgent string) (*SubmitOutcome, error) {
	return s.submit(ctx, userID, docai.DocumentLicense, document, mimeType, ipAddress, userAgent)
}

// SkipLicense completes a user in awaiting_license as a passenger without
// calling the analyzer. The user keeps isVerified=true and isDriver stays
// false.
func (s *VerificationService) SkipLicense(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string) (*models.User, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	if user.VerificationState != models.StateAwaitingLicense {
		return nil, apperr.New(apperr.KindInvalidInput, "you are not at the license verification step")
	}

	if err := s.users.CompleteVerification(userID, false); err != nil {
		return nil, fmt.Errorf("failed to complete verification: %w", err)
	}

	if err := s.audit.LogVerificationOptOut(userID, ipAddress, userAgent); err != nil {
		s.logger.WithError(err).Warn("Failed to audit verification opt-out")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
	}).Info("User completed verification as passenger")

	return s.getUser(userID)
}

// Status reports a user's verification state and remaining attempts for the
// current stage.
func (s *VerificationService) Status(userID uuid.UUID) (*VerificationStatus, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	remaining := 0
	if docType, ok := stageDocument(user.VerificationState); ok {
		remaining, err = s.attemptsRemaining(userID, docType)
		if err != nil {
			return nil, err
		}
	}

	return &VerificationStatus{
		State:             user.VerificationState,
		IsVerified:        user.IsVerified,
		IsDriver:          user.IsDriver,
		AttemptsRemaining: remaining,
	}, nil
}

func (s *VerificationService) submit(ctx context.Context, userID uuid.UUID, docType docai.DocumentType, document []byte, mimeType, ipAddress, userAgent string) (*SubmitOutcome, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	wantState, _ := documentStage(docType)
	if user.VerificationState != wantState {
		switch docType {
		case docai.DocumentID:
			return nil, apperr.New(apperr.KindInvalidInput, "you are not at the student ID verification step")
		default:
			return nil, apperr.New(apperr.KindInvalidInput, "you are not at the license verification step")
		}
	}

	// One upload in flight per user; a second concurrent submit is rejected.
	if _, loaded := s.inFlight.LoadOrStore(userID, struct{}{}); loaded {
		return nil, apperr.New(apperr.KindConflict, "another document upload is already being verified")
	}
	defer s.inFlight.Delete(userID)

	remaining, err := s.attemptsRemaining(userID, docType)
	if err != nil {
		return nil, err
	}
	if remaining <= 0 {
		return nil, apperr.New(apperr.KindTooManyAttempts, "too many failed verification attempts for this document")
	}

	req := docai.VerifyRequest{
		Document:     document,
		MIMEType:     mimeType,
		ExpectedType: docType,
	}
	if docType == docai.DocumentID {
		req.ExpectedCollege = user.College
	}

	result, err := s.analyzer.Verify(ctx, req)
	if err != nil {
		// Local pre-flight rejection: nothing was sent, nothing changes,
		// and the attempt does not count against the cap.
		return nil, apperr.Wrap(apperr.KindUnsupportedFormat, "Please upload a valid image (JPG, PNG) or a PDF file.", err)
	}

	accepted := result.IsValid && result.Confidence > s.threshold

	s.recordAttempt(user, docType, accepted, result, ipAddress, userAgent)

	if !accepted {
		reason := result.Reason
		if reason == "" {
			reason = fallbackReason(docType, user.College)
		}

		s.logger.WithFields(logrus.Fields{
			"user_id":       userID,
			"document_type": docType,
			"confidence":    result.Confidence,
		}).Info("Document verification rejected")

		return &SubmitOutcome{
			Accepted:          false,
			State:             user.VerificationState,
			IsVerified:        user.IsVerified,
			IsDriver:          user.IsDriver,
			Confidence:        result.Confidence,
			Reason:            reason,
			AttemptsRemaining: remaining - 1,
		}, nil
	}

	switch docType {
	case docai.DocumentID:
		if err := s.users.MarkIDVerified(userID); err != nil {
			return nil, fmt.Errorf("failed to advance verification state: %w", err)
		}
		s.logger.WithField("user_id", userID).Info("Student ID verified")
		return &SubmitOutcome{
			Accepted:          true,
			State:             models.StateAwaitingLicense,
			IsVerified:        true,
			IsDriver:          user.IsDriver,
			Confidence:        result.Confidence,
			AttemptsRemaining: s.maxAttempts,
		}, nil

	default:
		if err := s.users.CompleteVerification(userID, true); err != nil {
			return nil, fmt.Errorf("failed to complete verification: %w", err)
		}
		s.logger.WithField("user_id", userID).Info("License verified, user completed as driver")
		return &SubmitOutcome{
			Accepted:   true,
			State:      models.StateComplete,
			IsVerified: true,
			IsDriver:   true,
			Confidence: result.Confidence,
		}, nil
	}
}

func (s *VerificationService) getUser(userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func (s *VerificationService) attemptsRemaining(userID uuid.UUID, docType docai.DocumentType) (int, error) {
	failed, err := s.attempts.CountFailedAttempts(userID, string(docType))
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}

	remaining := s.maxAttempts - failed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *VerificationService) recordAttempt(user *models.User, docType docai.DocumentType, accepted bool, result docai.VerificationResult, ipAddress, userAgent string) {
	attempt := &models.VerificationAttempt{
		UserID:       user.ID,
		DocumentType: string(docType),
		Success:      accepted,
		Confidence:   result.Confidence,
		CreatedAt:    time.Now(),
	}
	if result.Reason != "" {
		attempt.Reason = models.NullString{NullString: sql.NullString{String: result.Reason, Valid: true}}
	}
	if ipAddress != "" {
		attempt.IPAddress = models.NullString{NullString: sql.NullString{String: ipAddress, Valid: true}}
	}
	if userAgent != "" {
		attempt.UserAgent = models.NullString{NullString: sql.NullString{String: userAgent, Valid: true}}
	}

	if err := s.attempts.RecordAttempt(attempt); err != nil {
		s.logger.WithError(err).Warn("Failed to record verification attempt")
	}

	if err := s.audit.LogVerificationAttempt(user.ID, string(docType), accepted, result.Confidence, result.Reason, ipAddress, userAgent); err != nil {
		s.logger.WithError(err).Warn("Failed to audit verification attempt")
	}
}

// fallbackReason is shown when the analyzer rejects a document without
// giving a reason of its own.
func fallbackReason(docType docai.DocumentType, college string) string {
	if docType == docai.DocumentID {
		return fmt.Sprintf("The ID card does not seem to match %s. Please ensure you uploaded the correct card.", college)
	}
	return "We couldn't verify this document clearly. Please ensure the text is legible."
}

// documentStage maps a document type to the state that accepts it.
func documentStage(docType docai.DocumentType) (models.VerificationState, bool) {
	switch docType {
	case docai.DocumentID:
		return models.StateAwaitingID, true
	case docai.DocumentLicense:
		return models.StateAwaitingLicense, true
	}
	return "", false
}

// stageDocument maps a state to the document it is waiting for.
func stageDocument(state models.VerificationState) (docai.DocumentType, bool) {
	switch state {
	case models.StateAwaitingID:
		return docai.DocumentID, true
	case models.StateAwaitingLicense:
		return docai.DocumentLicense, true
	}
	return "", false
}
