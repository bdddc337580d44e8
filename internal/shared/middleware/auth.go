package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/shared"
	"homefinder-backend/internal/shared/access"
	"homefinder-backend/internal/shared/response"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/jwt"
)

const notAuthorized = "Not authorized to access this route"

// AuthMiddleware verifies the bearer token (header first, then cookie), rejects
// revoked tokens and stores the caller identity in the gin context.
func AuthMiddleware(jwtManager *jwt.Manager, revocations cache.Cache, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Step 1: Extract token
		token := ExtractToken(c, cookieName)
		if token == "" {
			response.Unauthorized(c, notAuthorized)
			return
		}

		// Step 2: Verify signature and expiry
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(c, notAuthorized)
			return
		}

		// Step 3: Reject tokens revoked by logout
		if revocations != nil && claims.ID != "" {
			revoked, err := revocations.Exists(c.Request.Context(), jwt.RevocationKey(claims.ID))
			if err != nil {
				log.Warn().Err(err).Msg("revocation lookup failed")
			}
			if revoked {
				response.Unauthorized(c, notAuthorized)
				return
			}
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.Unauthorized(c, notAuthorized)
			return
		}

		// Step 4: Expose identity to handlers
		c.Set(shared.ContextUserID, userID)
		c.Set(shared.ContextRole, claims.Role)
		c.Set(shared.ContextEmail, claims.Email)
		c.Set(shared.ContextClaims, claims)

		c.Next()
	}
}

// ExtractToken reads "Authorization: Bearer <token>" or falls back to the session cookie.
func ExtractToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil {
			return v
		}
	}
	return ""
}

// CurrentUserID returns the authenticated user id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(shared.ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func CurrentRole(c *gin.Context) string {
	return c.GetString(shared.ContextRole)
}

func CurrentClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, ok := c.Get(shared.ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	return claims, ok
}

// CurrentRequester bundles the caller identity for the access guards.
func CurrentRequester(c *gin.Context) (access.Requester, bool) {
	id, ok := CurrentUserID(c)
	if !ok {
		return access.Requester{}, false
	}
	return access.Requester{UserID: id, Role: CurrentRole(c)}, true
}
