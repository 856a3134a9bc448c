package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uniride/campus-pool-backend/internal/models"
	"github.com/uniride/campus-pool-backend/pkg/jwt"
)

const userContextKey = "user_context"

// UserContext holds the authenticated user's identity for the request.
type UserContext struct {
	UserID uuid.UUID
	Name   string
	Gender models.Gender
}

// RequireAuth validates the Bearer token and places the caller's identity
// in the request context.
func RequireAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "authorization header required",
				"code":    "MISSING_AUTH_HEADER",
				"message": "Please provide a valid authorization token",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid authorization format",
				"code":    "INVALID_AUTH_FORMAT",
				"message": "Authorization header must be in format: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			code := "INVALID_TOKEN"
			message := "The provided token is invalid"
			if err == jwt.ErrExpiredToken {
				code = "TOKEN_EXPIRED"
				message = "Your session has expired, please register again"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   err.Error(),
				"code":    code,
				"message": message,
			})
			c.Abort()
			return
		}

		c.Set(userContextKey, &UserContext{
			UserID: claims.UserID,
			Name:   claims.Name,
			Gender: claims.Gender,
		})
		c.Next()
	}
}

// GetUserContext retrieves the authenticated identity from the request
// context. The bool is false when the request did not pass RequireAuth.
func GetUserContext(c *gin.Context) (*UserContext, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	userCtx, ok := value.(*UserContext)
	return userCtx, ok
}
