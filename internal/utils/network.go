package utils

import (
	"github.com/gin-gonic/gin"
)

// GetRealIP extracts the real client IP address from the request,
// preferring proxy headers over the raw remote address.
func GetRealIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// GetUserAgent returns the User-Agent header of the request.
func GetUserAgent(c *gin.Context) string {
	return c.GetHeader("User-Agent")
}
