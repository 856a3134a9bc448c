package services

import (
	"github.com/uniride/campus-pool-backend/internal/models"
)

// FilterRidesForUser returns the rides whose driver gender exactly matches
// the viewer's gender. This is the safety rule of the platform: it is applied
// to every listing a user sees and never relaxed. Order is preserved and the
// input slice is not modified.
func FilterRidesForUser(rides []models.Ride, viewer *models.User) []models.Ride {
	matched := make([]models.Ride, 0, len(rides))
	for _, ride := range rides {
		if ride.DriverGender == viewer.Gender {
			matched = append(matched, ride)
		}
	}
	return matched
}

// FilterByVehicleType keeps only rides of the given vehicle type. An empty
// vehicle type means no filtering.
func FilterByVehicleType(rides []models.Ride, vehicleType models.VehicleType) []models.Ride {
	if vehicleType == "" {
		return rides
	}
	filtered := make([]models.Ride, 0, len(rides))
	for _, ride := range rides {
		if ride.VehicleType == vehicleType {
			filtered = append(filtered, ride)
		}
	}
	return filtered
}
