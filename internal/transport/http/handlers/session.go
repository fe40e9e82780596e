package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-authguard/internal/transport/http/middleware"
)

// SessionToucher refreshes a session heartbeat. Sessions that stop
// pinging eventually become stale and are reclaimed at the next login.
type SessionToucher interface {
	Touch(ctx context.Context, sessionID string, at time.Time) error
}

// SessionHandler exposes the session heartbeat endpoint.
type SessionHandler struct {
	toucher SessionToucher
	parser  middleware.SessionTokenParser
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(toucher SessionToucher, parser middleware.SessionTokenParser) *SessionHandler {
	return &SessionHandler{toucher: toucher, parser: parser}
}

// RegisterRoutes binds session routes.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/session/ping", middleware.RequireSession(h.parser), h.ping)
}

// Ping godoc
// @Summary Refresh the session heartbeat
// @Description Marks the caller's session as recently active.
// @Tags Sessions
// @Produce json
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/session/ping [post]
func (h *SessionHandler) ping(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.toucher.Touch(c.Request.Context(), sessionID, time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to refresh session"))
		return
	}

	c.Status(http.StatusNoContent)
}
