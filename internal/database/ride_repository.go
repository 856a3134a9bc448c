package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/uniride/campus-pool-backend/internal/models"
)

// RideRepository is the append-only ride store. Rides are immutable once
// created, so the repository exposes create and read operations only.
type RideRepository struct {
	db DB
}

// NewRideRepository creates a new ride repository
func NewRideRepository(db DB) *RideRepository {
	return &RideRepository{
		db: db,
	}
}

// CreateRide appends a new ride
func (r *RideRepository) CreateRide(ride *models.Ride) error {
	query := `
		INSERT INTO rides (
			id, title, driver_id, driver_name, driver_gender,
			vehicle_type, origin, destination, departure_time,
			available_seats, price_per_seat, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(
		query,
		ride.ID,
		ride.Title,
		ride.DriverID,
		ride.DriverName,
		ride.DriverGender,
		ride.VehicleType,
		ride.Origin,
		ride.Destination,
		ride.DepartureTime,
		ride.AvailableSeats,
		ride.PricePerSeat,
		ride.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}

	return nil
}

// ListRides returns all rides, newest first
func (r *RideRepository) ListRides() ([]models.Ride, error) {
	query := `
		SELECT id, title, driver_id, driver_name, driver_gender,
		       vehicle_type, origin, destination, departure_time,
		       available_seats, price_per_seat, created_at
		FROM rides
		ORDER BY created_at DESC
	`

	var rides []models.Ride
	if err := r.db.Select(&rides, query); err != nil {
		return nil, fmt.Errorf("failed to list rides: %w", err)
	}

	return rides, nil
}

// GetRideByID retrieves a single ride
func (r *RideRepository) GetRideByID(id uuid.UUID) (*models.Ride, error) {
	query := `
		SELECT id, title, driver_id, driver_name, driver_gender,
		       vehicle_type, origin, destination, departure_time,
		       available_seats, price_per_seat, created_at
		FROM rides
		WHERE id = $1
	`

	var ride models.Ride
	if err := r.db.Get(&ride, query, id); err != nil {
		return nil, err
	}

	return &ride, nil
}
