package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered community member.
//
// Name and College are supplied at registration; College anchors the ID
// verification and is immutable afterwards. IsVerified flips to true exactly
// once, when the Student ID stage passes, and IsDriver only becomes true
// through a passed License verification.
type User struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	Name              string            `json:"name" db:"name"`
	College           string            `json:"college" db:"college"`
	Gender            Gender            `json:"gender" db:"gender"`
	IsVerified        bool              `json:"is_verified" db:"is_verified"`
	IsDriver          bool              `json:"is_driver" db:"is_driver"`
	VerificationState VerificationState `json:"verification_state" db:"verification_state"`
	VehiclePreference NullString        `json:"vehicle_preference,omitempty" db:"vehicle_preference"`
	AvatarURL         string            `json:"avatar_url" db:"avatar_url"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// VerificationAttempt is one document upload judged by the analyzer. Attempts
// are recorded for every analyzer round-trip, successful or not; they back
// both the per-stage retry cap and upload rate limiting.
type VerificationAttempt struct {
	ID           int64      `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	DocumentType string     `json:"document_type" db:"document_type"`
	Success      bool       `json:"success" db:"success"`
	Confidence   float64    `json:"confidence" db:"confidence"`
	Reason       NullString `json:"reason,omitempty" db:"reason"`
	IPAddress    NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent    NullString `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
