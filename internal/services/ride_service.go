package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/apperr"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/models"
)

const (
	// MaxCarSeats is the largest offer a car driver may post.
	MaxCarSeats = 6
	// BikeSeats is the only seat count a bike offer can have.
	BikeSeats = 1
)

// RideService validates and posts ride offers and produces the gender-safe
// listings each user is allowed to see.
type RideService struct {
	rides  *database.RideRepository
	audit  *AuditService
	logger *logrus.Logger
}

// NewRideService creates a new ride service
func NewRideService(rides *database.RideRepository, audit *AuditService, logger *logrus.Logger) *RideService {
	return &RideService{
		rides:  rides,
		audit:  audit,
		logger: logger,
	}
}

// CreateRide validates a draft against the posting rules and persists the
// resulting ride stamped with the driver's identity snapshot.
//
// Only verified drivers may post. A bike always offers exactly one seat no
// matter what the draft says; a car offers between 1 and 6. The destination
// defaults to the driver's college and the title to "<name>'s Ride".
func (s *RideService) CreateRide(driver *models.User, draft models.RideDraft, ipAddress, userAgent string) (*models.Ride, error) {
	if !driver.IsVerified || !driver.IsDriver {
		return nil, apperr.New(apperr.KindNotAuthorized, "only verified drivers can post rides")
	}

	if !draft.VehicleType.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("invalid vehicle type: %s", draft.VehicleType))
	}

	if draft.Origin == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "origin is required")
	}
	if draft.DepartureTime == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "departure time is required")
	}
	if draft.PricePerSeat < 0 {
		return nil, apperr.New(apperr.KindInvalidInput, "price per seat cannot be negative")
	}

	seats := draft.AvailableSeats
	switch draft.VehicleType {
	case models.VehicleBike:
		seats = BikeSeats
	case models.VehicleCar:
		if seats < 1 || seats > MaxCarSeats {
			return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("available seats must be between 1 and %d", MaxCarSeats))
		}
	}

	title := draft.Title
	if title == "" {
		title = fmt.Sprintf("%s's Ride", driver.Name)
	}

	destination := draft.Destination
	if destination == "" {
		destination = driver.College
	}

	ride := &models.Ride{
		ID:             uuid.New(),
		Title:          title,
		DriverID:       driver.ID,
		DriverName:     driver.Name,
		DriverGender:   driver.Gender,
		VehicleType:    draft.VehicleType,
		Origin:         draft.Origin,
		Destination:    destination,
		DepartureTime:  draft.DepartureTime,
		AvailableSeats: seats,
		PricePerSeat:   draft.PricePerSeat,
		CreatedAt:      time.Now(),
	}

	if err := s.rides.CreateRide(ride); err != nil {
		return nil, fmt.Errorf("failed to create ride: %w", err)
	}

	if err := s.audit.LogRidePosted(driver.ID, ride.ID, string(ride.VehicleType), ipAddress, userAgent); err != nil {
		s.logger.WithError(err).Warn("Failed to audit ride posting")
	}

	s.logger.WithFields(logrus.Fields{
		"ride_id":   ride.ID,
		"driver_id": driver.ID,
	}).Info("Ride posted")

	return ride, nil
}

// ListRidesForUser returns all open rides the viewer is allowed to see,
// newest first. The gender safety filter is always applied; the vehicle
// type filter only when one is given.
func (s *RideService) ListRidesForUser(viewer *models.User, vehicleType models.VehicleType) ([]models.Ride, error) {
	if vehicleType != "" && !vehicleType.Valid() {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("invalid vehicle type: %s", vehicleType))
	}

	rides, err := s.rides.ListRides()
	if err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}

	matched := FilterRidesForUser(rides, viewer)
	return FilterByVehicleType(matched, vehicleType), nil
}
