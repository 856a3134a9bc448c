package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniride/campus-pool-backend/internal/models"
)

func setupRepoTest(t *testing.T) (DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlmockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlmockDB.Close() })

	sqlxDB := sqlx.NewDb(sqlmockDB, "sqlmock")
	return &PostgresDB{DB: sqlxDB}, mock
}

func TestCreateUser_StartsAwaitingID(t *testing.T) {
	db, mock := setupRepoTest(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user, err := repo.CreateUser("Priya", "IIT Delhi", models.GenderFemale)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, models.StateAwaitingID, user.VerificationState)
	assert.False(t, user.IsVerified)
	assert.Equal(t, "https://picsum.photos/seed/Priya/200", user.AvatarURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_NotFound(t *testing.T) {
	db, mock := setupRepoTest(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT id, name, college").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByID(id)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMarkIDVerified_RequiresAwaitingIDState(t *testing.T) {
	db, mock := setupRepoTest(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkIDVerified(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not awaiting ID verification")
}

func TestCompleteVerification_RequiresAwaitingLicenseState(t *testing.T) {
	db, mock := setupRepoTest(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CompleteVerification(uuid.New(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not awaiting license verification")
}

func TestAvatarURL_EscapesName(t *testing.T) {
	assert.Equal(t, "https://picsum.photos/seed/Priya%20Sharma/200", avatarURL("Priya Sharma"))
}

func TestCountFailedAttempts(t *testing.T) {
	db, mock := setupRepoTest(t)
	repo := NewVerificationAttemptRepository(db)
	id := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(id, "ID").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountFailedAttempts(id, "ID")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRecordAttempt(t *testing.T) {
	db, mock := setupRepoTest(t)
	repo := NewVerificationAttemptRepository(db)

	mock.ExpectExec("INSERT INTO verification_attempts").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.RecordAttempt(&models.VerificationAttempt{
		UserID:       uuid.New(),
		DocumentType: "ID",
		Success:      false,
		Confidence:   0.4,
		CreatedAt:    time.Now(),
	})
	assert.NoError(t, err)
}
