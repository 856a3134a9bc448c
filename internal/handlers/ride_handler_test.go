package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniride/campus-pool-backend/internal/database"
	"github.com/uniride/campus-pool-backend/internal/middleware"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/internal/services"
	"github.com/uniride/campus-pool-backend/pkg/docai"
	"github.com/uniride/campus-pool-backend/pkg/jwt"
	"github.com/uniride/campus-pool-backend/pkg/validator"
)

type rideHandlerFixture struct {
	router     *gin.Engine
	mock       sqlmock.Sqlmock
	jwtManager *jwt.Manager
}

func setupRideHandlerTest(t *testing.T) *rideHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlmockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlmockDB.Close() })

	sqlxDB := sqlx.NewDb(sqlmockDB, "sqlmock")
	db := &database.PostgresDB{DB: sqlxDB}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	jwtManager := jwt.NewManager("test-secret", time.Hour)
	audit := services.NewAuditService(db, logger)
	userService := services.NewUserService(database.NewUserRepository(db), validator.NewRegistrationValidator(), audit, logger)
	rideService := services.NewRideService(database.NewRideRepository(db), audit, logger)
	advisor := services.NewAdvisorService(docai.NewMockAnalyzer(), logger)

	handler := NewRideHandler(rideService, userService, advisor, logger)

	router := gin.New()
	authenticated := router.Group("/api/v1")
	authenticated.Use(middleware.RequireAuth(jwtManager))
	authenticated.GET("/rides", handler.ListRides)
	authenticated.POST("/rides", handler.CreateRide)

	return &rideHandlerFixture{router: router, mock: mock, jwtManager: jwtManager}
}

func (f *rideHandlerFixture) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := f.jwtManager.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (f *rideHandlerFixture) expectUserLookup(user *models.User, isVerified, isDriver bool, state models.VerificationState) {
	rows := sqlmock.NewRows([]string{
		"id", "name", "college", "gender", "is_verified", "is_driver",
		"verification_state", "vehicle_preference", "avatar_url",
		"created_at", "updated_at",
	}).AddRow(
		user.ID, user.Name, user.College, string(user.Gender), isVerified, isDriver,
		string(state), nil, "", time.Now(), time.Now(),
	)
	f.mock.ExpectQuery("SELECT id, name, college").WillReturnRows(rows)
}

func TestListRides_FiltersByViewerGender(t *testing.T) {
	f := setupRideHandlerTest(t)
	viewer := &models.User{ID: uuid.New(), Name: "Priya", College: "IIT Delhi", Gender: models.GenderFemale}

	f.expectUserLookup(viewer, true, false, models.StateComplete)

	now := time.Now()
	rideRows := sqlmock.NewRows([]string{
		"id", "title", "driver_id", "driver_name", "driver_gender",
		"vehicle_type", "origin", "destination", "departure_time",
		"available_seats", "price_per_seat", "created_at",
	}).
		AddRow(uuid.New(), "Ride A", uuid.New(), "Meera", "Female", "Car", "A", "B", "08:00", 3, 40.0, now).
		AddRow(uuid.New(), "Ride B", uuid.New(), "Rahul", "Male", "Car", "A", "B", "09:00", 2, 30.0, now)
	f.mock.ExpectQuery("SELECT id, title, driver_id").WillReturnRows(rideRows)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rides", nil)
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, viewer))
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Rides []models.Ride `json:"rides"`
		Count int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Ride A", body.Rides[0].Title)
}

func TestListRides_RequiresAuth(t *testing.T) {
	f := setupRideHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rides", nil)
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCreateRide_NonDriverForbidden(t *testing.T) {
	f := setupRideHandlerTest(t)
	viewer := &models.User{ID: uuid.New(), Name: "Priya", College: "IIT Delhi", Gender: models.GenderFemale}

	f.expectUserLookup(viewer, true, false, models.StateComplete)

	payload, _ := json.Marshal(models.RideDraft{
		VehicleType:    models.VehicleCar,
		Origin:         "Hauz Khas",
		DepartureTime:  "08:30",
		AvailableSeats: 2,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rides", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, viewer))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestCreateRide_DriverSucceeds(t *testing.T) {
	f := setupRideHandlerTest(t)
	driver := &models.User{ID: uuid.New(), Name: "Arjun", College: "IIT Delhi", Gender: models.GenderMale}

	f.expectUserLookup(driver, true, true, models.StateComplete)
	f.mock.ExpectExec("INSERT INTO rides").WillReturnResult(sqlmock.NewResult(1, 1))
	f.mock.ExpectExec("INSERT INTO audit_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	payload, _ := json.Marshal(models.RideDraft{
		VehicleType:    models.VehicleBike,
		Origin:         "Hauz Khas",
		DepartureTime:  "08:30",
		AvailableSeats: 3,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rides", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+f.tokenFor(t, driver))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusCreated, recorder.Code)

	var ride models.Ride
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &ride))
	assert.Equal(t, 1, ride.AvailableSeats)
	assert.Equal(t, models.GenderMale, ride.DriverGender)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}
