package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/middleware"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/internal/services"
)

// ProfileHandler serves the authenticated user's own profile.
type ProfileHandler struct {
	userService *services.UserService
	logger      *logrus.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(userService *services.UserService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
		logger:      logger,
	}
}

// UpdateProfileRequest carries the mutable profile fields. Gender and
// college cannot be changed after registration.
type UpdateProfileRequest struct {
	Name              string             `json:"name,omitempty"`
	VehiclePreference models.VehicleType `json:"vehicle_preference,omitempty"`
}

// GetProfile returns the caller's profile.
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	user, err := h.userService.GetProfile(userCtx.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the caller's display name or vehicle preference.
// PATCH /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required", Code: "UNAUTHORIZED"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	if req.Name == "" && req.VehiclePreference == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "nothing to update",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	var user *models.User
	var err error

	if req.Name != "" {
		user, err = h.userService.UpdateName(userCtx.UserID, req.Name)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	if req.VehiclePreference != "" {
		user, err = h.userService.UpdateVehiclePreference(userCtx.UserID, req.VehiclePreference)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
	}

	c.JSON(http.StatusOK, user)
}
