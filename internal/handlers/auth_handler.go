package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/internal/services"
	"github.com/uniride/campus-pool-backend/internal/utils"
	"github.com/uniride/campus-pool-backend/pkg/jwt"
)

// AuthHandler handles account registration.
type AuthHandler struct {
	userService *services.UserService
	jwtManager  *jwt.Manager
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, jwtManager *jwt.Manager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
		logger:      logger,
	}
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Name    string        `json:"name" binding:"required"`
	College string        `json:"college" binding:"required"`
	Gender  models.Gender `json:"gender" binding:"required"`
}

// RegisterResponse returns the new account and its identity token.
type RegisterResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new account and issues its identity token.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
			Code:    "INVALID_REQUEST",
		})
		return
	}

	user, err := h.userService.Register(req.Name, req.College, req.Gender, utils.GetRealIP(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, err := h.jwtManager.GenerateToken(user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		User:  user,
		Token: token,
	})
}
