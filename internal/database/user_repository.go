package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/uniride/campus-pool-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser creates a new user awaiting Student ID verification
func (r *UserRepository) CreateUser(name, college string, gender models.Gender) (*models.User, error) {
	user := &models.User{
		ID:                uuid.New(),
		Name:              name,
		College:           college,
		Gender:            gender,
		IsVerified:        false,
		IsDriver:          false,
		VerificationState: models.StateAwaitingID,
		AvatarURL:         avatarURL(name),
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	query := `
		INSERT INTO users (
			id, name, college, gender,
			is_verified, is_driver, verification_state, avatar_url,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.Name,
		user.College,
		user.Gender,
		user.IsVerified,
		user.IsDriver,
		user.VerificationState,
		user.AvatarURL,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, name, college, gender, is_verified, is_driver,
		       verification_state, vehicle_preference, avatar_url,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	if err := r.db.Get(&user, query, id); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateName updates a user's display name
func (r *UserRepository) UpdateName(id uuid.UUID, name string) error {
	query := `
		UPDATE users
		SET name = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(query, name, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}

	return nil
}

// UpdateVehiclePreference updates a user's preferred vehicle type
func (r *UserRepository) UpdateVehiclePreference(id uuid.UUID, preference models.VehicleType) error {
	query := `
		UPDATE users
		SET vehicle_preference = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.Exec(query, string(preference), time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update vehicle preference: %w", err)
	}

	return nil
}

// MarkIDVerified advances a user from awaiting_id to awaiting_license and
// sets isVerified, which never transitions back. The state guard in the
// WHERE clause keeps the transition one-way.
func (r *UserRepository) MarkIDVerified(id uuid.UUID) error {
	query := `
		UPDATE users
		SET is_verified = true, verification_state = $1, updated_at = $2
		WHERE id = $3 AND verification_state = $4
	`

	result, err := r.db.Exec(query, models.StateAwaitingLicense, time.Now(), id, models.StateAwaitingID)
	if err != nil {
		return fmt.Errorf("failed to mark ID verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s is not awaiting ID verification", id)
	}

	return nil
}

// CompleteVerification finalizes a user from awaiting_license. isVerified is
// always set true here; it never transitions back.
func (r *UserRepository) CompleteVerification(id uuid.UUID, isDriver bool) error {
	query := `
		UPDATE users
		SET is_verified = true, is_driver = $1, verification_state = $2, updated_at = $3
		WHERE id = $4 AND verification_state = $5
	`

	result, err := r.db.Exec(query, isDriver, models.StateComplete, time.Now(), id, models.StateAwaitingLicense)
	if err != nil {
		return fmt.Errorf("failed to complete verification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %s is not awaiting license verification", id)
	}

	return nil
}

// avatarURL derives a stable display avatar from the user's name.
func avatarURL(name string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200", url.PathEscape(name))
}
