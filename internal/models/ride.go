package models

import (
	"time"

	"github.com/google/uuid"
)

// Ride is an offer posted by a verified driver. Rides are immutable once
// created; there is no edit or cancel flow.
//
// DriverGender is a denormalized snapshot of the driver's gender at post
// time, so safety filtering never needs a user lookup. Gender is immutable
// after registration, so the snapshot cannot go stale.
type Ride struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	Title          string      `json:"title" db:"title"`
	DriverID       uuid.UUID   `json:"driver_id" db:"driver_id"`
	DriverName     string      `json:"driver_name" db:"driver_name"`
	DriverGender   Gender      `json:"driver_gender" db:"driver_gender"`
	VehicleType    VehicleType `json:"vehicle_type" db:"vehicle_type"`
	Origin         string      `json:"origin" db:"origin"`
	Destination    string      `json:"destination" db:"destination"`
	DepartureTime  string      `json:"departure_time" db:"departure_time"`
	AvailableSeats int         `json:"available_seats" db:"available_seats"`
	PricePerSeat   float64     `json:"price_per_seat" db:"price_per_seat"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// RideDraft is the unvalidated form input for a new ride. The posting
// validator turns a draft into a Ride or rejects it.
type RideDraft struct {
	Title          string      `json:"title"`
	VehicleType    VehicleType `json:"vehicle_type"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	DepartureTime  string      `json:"departure_time"`
	AvailableSeats int         `json:"available_seats"`
	PricePerSeat   float64     `json:"price_per_seat"`
}
