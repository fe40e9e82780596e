package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/infra/security"
	"github.com/arklim/social-platform-authguard/internal/transport/http/middleware"
	"github.com/arklim/social-platform-authguard/internal/usecase"
)

// AuthHandler exposes the guarded authentication endpoints.
type AuthHandler struct {
	guard     *usecase.Guard
	loginHook *usecase.LoginHook
	parser    middleware.SessionTokenParser
	sessions  port.SessionStore
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(guard *usecase.Guard, loginHook *usecase.LoginHook, parser middleware.SessionTokenParser, sessions port.SessionStore) *AuthHandler {
	return &AuthHandler{
		guard:     guard,
		loginHook: loginHook,
		parser:    parser,
		sessions:  sessions,
	}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}

	r.POST("/logout", middleware.RequireSession(h.parser), h.logout)
}

// Login godoc
// @Summary Authenticate a user
// @Description Runs the guarded login flow: lockout, password lifecycle, and session concurrency checks around credential verification.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request payload"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} LoginRejectedResponse
// @Failure 409 {object} LoginRejectedResponse
// @Failure 423 {object} LoginRejectedResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	loginReq := port.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	}
	if ip := c.ClientIP(); ip != "" {
		loginReq.IP = &ip
	}
	if ua := c.Request.UserAgent(); ua != "" {
		loginReq.UserAgent = &ua
	}

	result, err := h.guard.Authenticate(c.Request.Context(), loginReq)
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	resp := LoginResponse{
		SessionID:    result.SessionID,
		SessionToken: result.SessionToken,
	}

	if h.loginHook != nil {
		if notification := h.loginHook.Process(c.Request.Context(), req.Username); notification != nil {
			resp.Notifications = newNotificationPayloads([]usecase.Notification{*notification})
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	var rej *usecase.Rejection
	if errors.As(err, &rej) {
		status := http.StatusUnauthorized
		switch rej.Kind {
		case usecase.RejectionLocked:
			status = http.StatusLocked
		case usecase.RejectionMultiLogin:
			status = http.StatusConflict
		case usecase.RejectionConfig, usecase.RejectionUnexpected:
			status = http.StatusInternalServerError
		}

		resp := LoginRejectedResponse{Error: rej.Message}
		if traceID, ok := c.Get("trace_id"); ok {
			resp.TraceID, _ = traceID.(string)
		}
		if rej.Kind == usecase.RejectionIncorrectAttempt {
			remaining := rej.RemainingAttempts
			resp.RemainingAttempts = &remaining
		}

		c.JSON(status, resp)
		return
	}

	if errors.Is(err, security.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid username or password"))
		return
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "authentication failed"))
}

// Logout godoc
// @Summary Logout the current session
// @Description Deactivates the caller's session named by the session token.
// @Tags Authentication
// @Produce json
// @Success 204 {string} string ""
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) logout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	if err := h.sessions.Deactivate(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to end session"))
		return
	}

	c.Status(http.StatusNoContent)
}
