package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"homefinder-backend/internal/shared/response"
	"homefinder-backend/pkg/cache"
	"homefinder-backend/pkg/jwt"
)

// Handler authenticates and upgrades websocket connections.
type Handler struct {
	hub         *Hub
	jwt         *jwt.Manager
	revocations cache.Cache
	upgrader    websocket.Upgrader
}

// NewHandler builds the websocket handler. revocations holds logged out token ids and may be nil.
func NewHandler(hub *Hub, jwtManager *jwt.Manager, revocations cache.Cache, allowedOrigins []string) *Handler {
	return &Handler{
		hub:         hub,
		jwt:         jwtManager,
		revocations: revocations,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS handles GET /ws. The token comes from ?token= or the Authorization header.
func (h *Handler) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "Not authorized to access this route")
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil || h.revoked(c, claims.ID) {
		response.Unauthorized(c, "Not authorized to access this route")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[WS] Upgrade failed")
		return
	}

	client := newClient(h.hub, conn, claims.UserID)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// revoked mirrors the auth middleware: a token logged out through /auth/logout cannot
// open a session.
func (h *Handler) revoked(c *gin.Context, jti string) bool {
	if h.revocations == nil || jti == "" {
		return false
	}
	revoked, err := h.revocations.Exists(c.Request.Context(), jwt.RevocationKey(jti))
	if err != nil {
		log.Warn().Err(err).Msg("[WS] Revocation lookup failed")
	}
	return revoked
}
