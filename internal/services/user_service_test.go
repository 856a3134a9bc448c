package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniride/campus-pool-backend/internal/apperr"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/pkg/validator"
)

func setupUserTest(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()

	sqlmockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlmockDB.Close() })

	sqlxDB := sqlx.NewDb(sqlmockDB, "sqlmock")
	db := &database.PostgresDB{DB: sqlxDB}

	logger := testLogger()
	service := NewUserService(
		database.NewUserRepository(db),
		validator.NewRegistrationValidator(),
		NewAuditService(db, logger),
		logger,
	)
	return service, mock
}

func TestRegister_CreatesUnverifiedUser(t *testing.T) {
	service, mock := setupUserTest(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := service.Register("  Priya  Sharma ", "IIT Delhi", models.GenderFemale, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, "Priya Sharma", user.Name)
	assert.Equal(t, models.StateAwaitingID, user.VerificationState)
	assert.False(t, user.IsVerified)
	assert.False(t, user.IsDriver)
	assert.Contains(t, user.AvatarURL, "picsum.photos/seed/")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_InvalidInputRejectedBeforeInsert(t *testing.T) {
	service, mock := setupUserTest(t)

	cases := []struct {
		name    string
		college string
		gender  models.Gender
	}{
		{"", "IIT Delhi", models.GenderMale},
		{"   ", "IIT Delhi", models.GenderMale},
		{"Priya", "", models.GenderFemale},
		{"Priya", "IIT Delhi", "Unknown"},
	}

	for _, tc := range cases {
		_, err := service.Register(tc.name, tc.college, tc.gender, "", "")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateVehiclePreference_InvalidType(t *testing.T) {
	service, _ := setupUserTest(t)

	_, err := service.UpdateVehiclePreference(uuid.New(), "Boat")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}
