package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"homefinder-backend/internal/shared/response"
)

// RequireRole allows the request only for the listed roles. Must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		response.Forbidden(c, fmt.Sprintf("User role %s is not authorized to access this route", role))
	}
}
