package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/middleware"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/internal/services"
	"github.com/uniride/campus-pool-backend/internal/utils"
)

// RideHandler serves ride posting, listing and recommendations.
type RideHandler struct {
	rideService *services.RideService
	userService *services.UserService
	advisor     *services.AdvisorService
	logger      *logrus.Logger
}

// NewRideHandler creates a new ride handler
func NewRideHandler(rideService *services.RideService, userService *services.UserService, advisor *services.AdvisorService, logger *logrus.Logger) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		userService: userService,
		advisor:     advisor,
		logger:      logger,
	}
}

// ListRides returns the rides visible to the caller, newest first.
// GET /api/v1/rides?vehicle_type=Car|Bike
func (h *RideHandler) ListRides(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	vehicleType := models.VehicleType(c.Query("vehicle_type"))
	rides, err := h.rideService.ListRidesForUser(user, vehicleType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rides": rides,
		"count": len(rides),
	})
}

// CreateRide posts a new ride offer.
// POST /api/v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var draft models.RideDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	ride, err := h.rideService.CreateRide(user, draft, utils.GetRealIP(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, ride)
}

// Recommendations returns up to two suggested rides for the caller. The
// advisor is best-effort: when it cannot help, the list is just empty.
// GET /api/v1/rides/recommendations
func (h *RideHandler) Recommendations(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	candidates, err := h.rideService.ListRidesForUser(user, "")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	recommended := h.advisor.RankCandidates(c.Request.Context(), user, candidates)
	if recommended == nil {
		recommended = []models.Ride{}
	}

	c.JSON(http.StatusOK, gin.H{
		"rides": recommended,
		"count": len(recommended),
	})
}

func (h *RideHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return nil, false
	}

	user, err := h.userService.GetProfile(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return user, true
}
