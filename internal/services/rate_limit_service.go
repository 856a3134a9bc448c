package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uniride/campus-pool-backend/internal/config"
	"github.com/uniride/campus-pool-backend/internal/database"
)

// RateLimitService throttles document uploads per user and per source IP.
// Counts come from the verification_attempts table so limits survive
// restarts and apply across instances.
type RateLimitService struct {
	attempts *database.VerificationAttemptRepository
	cfg      config.RateLimitConfig
}

// NewRateLimitService creates a new rate limiting service
func NewRateLimitService(attempts *database.VerificationAttemptRepository, cfg config.RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		attempts: attempts,
		cfg:      cfg,
	}
}

// RateLimitError indicates that a rate limit has been exceeded
type RateLimitError struct {
	Message    string
	RetryAfter time.Time
	Type       string // "user" or "ip"
}

func (e *RateLimitError) Error() string {
	return e.Message
}

// CheckUploadRateLimit returns a RateLimitError when the user or IP has
// exceeded its upload budget for the current window.
func (s *RateLimitService) CheckUploadRateLimit(userID uuid.UUID, ipAddress string) error {
	now := time.Now()

	count, err := s.attempts.CountUserAttemptsSince(userID, now.Add(-s.cfg.UserWindow))
	if err != nil {
		return fmt.Errorf("failed to check user upload rate: %w", err)
	}
	if count >= s.cfg.MaxUserUploads {
		return &RateLimitError{
			Message:    "Too many document uploads. Please wait before trying again.",
			RetryAfter: now.Add(s.cfg.UserWindow),
			Type:       "user",
		}
	}

	if ipAddress != "" {
		count, err = s.attempts.CountIPAttemptsSince(ipAddress, now.Add(-s.cfg.IPWindow))
		if err != nil {
			return fmt.Errorf("failed to check IP upload rate: %w", err)
		}
		if count >= s.cfg.MaxIPUploads {
			return &RateLimitError{
				Message:    "Too many document uploads from this network. Please wait before trying again.",
				RetryAfter: now.Add(s.cfg.IPWindow),
				Type:       "ip",
			}
		}
	}

	return nil
}
