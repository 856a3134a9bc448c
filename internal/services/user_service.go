package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/apperr"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/pkg/validator"
)

// UserService handles account creation and profile updates. Gender and
// college are fixed at registration: gender backs the safety filter and
// college backs ID verification, so neither has an update path.
type UserService struct {
	users     *database.UserRepository
	validator *validator.RegistrationValidator
	audit     *AuditService
	logger    *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(users *database.UserRepository, v *validator.RegistrationValidator, audit *AuditService, logger *logrus.Logger) *UserService {
	return &UserService{
		users:     users,
		validator: v,
		audit:     audit,
		logger:    logger,
	}
}

// Register creates a new, unverified account in the awaiting_id state.
func (s *UserService) Register(name, college string, gender models.Gender, ipAddress, userAgent string) (*models.User, error) {
	name, err := s.validator.ValidateName(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err.Error(), err)
	}

	college, err = s.validator.ValidateCollege(college)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err.Error(), err)
	}

	if err := s.validator.ValidateGender(gender); err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err.Error(), err)
	}

	user, err := s.users.CreateUser(name, college, gender)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.audit.LogRegistration(user.ID, user.Name, user.College, ipAddress, userAgent); err != nil {
		s.logger.WithError(err).Warn("Failed to audit registration")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"college": user.College,
	}).Info("User registered")

	return user, nil
}

// GetProfile returns a user by ID.
func (s *UserService) GetProfile(userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// UpdateName changes a user's display name.
func (s *UserService) UpdateName(userID uuid.UUID, name string) (*models.User, error) {
	name, err := s.validator.ValidateName(name)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInvalidInput, err.Error(), err)
	}

	if err := s.users.UpdateName(userID, name); err != nil {
		return nil, fmt.Errorf("failed to update name: %w", err)
	}

	return s.GetProfile(userID)
}

// UpdateVehiclePreference sets which vehicle type a user prefers to see
// by default in listings.
func (s *UserService) UpdateVehiclePreference(userID uuid.UUID, preference models.VehicleType) (*models.User, error) {
	if !preference.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("invalid vehicle type: %s", preference))
	}

	if err := s.users.UpdateVehiclePreference(userID, preference); err != nil {
		return nil, fmt.Errorf("failed to update vehicle preference: %w", err)
	}

	return s.GetProfile(userID)
}
