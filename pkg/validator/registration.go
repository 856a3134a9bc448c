package validator

import (
	"errors"
	"strings"

	"github.com/uniride/campus-pool-backend/internal/models"
)

var (
	ErrEmptyName      = errors.New("name is required")
	ErrNameTooLong    = errors.New("name must not exceed 100 characters")
	ErrEmptyCollege   = errors.New("college is required")
	ErrCollegeTooLong = errors.New("college must not exceed 200 characters")
	ErrInvalidGender  = errors.New("gender must be one of: Male, Female, Other")
)

const (
	maxNameLength    = 100
	maxCollegeLength = 200
)

// RegistrationValidator checks registration input before an account is
// created. Name and college are whitespace-trimmed; gender must be one of
// the declared values since the safety filter depends on exact matches.
type RegistrationValidator struct{}

// NewRegistrationValidator creates a new registration validator
func NewRegistrationValidator() *RegistrationValidator {
	return &RegistrationValidator{}
}

// ValidateName checks and sanitizes a display name.
func (v *RegistrationValidator) ValidateName(name string) (string, error) {
	name = Sanitize(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if len(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

// ValidateCollege checks and sanitizes a college name.
func (v *RegistrationValidator) ValidateCollege(college string) (string, error) {
	college = Sanitize(college)
	if college == "" {
		return "", ErrEmptyCollege
	}
	if len(college) > maxCollegeLength {
		return "", ErrCollegeTooLong
	}
	return college, nil
}

// ValidateGender checks that a gender value is one of the declared ones.
func (v *RegistrationValidator) ValidateGender(gender models.Gender) error {
	if !gender.Valid() {
		return ErrInvalidGender
	}
	return nil
}

// Sanitize collapses runs of whitespace into single spaces and trims the
// ends.
func Sanitize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
