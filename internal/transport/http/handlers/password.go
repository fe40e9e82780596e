package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
	"github.com/arklim/social-platform-authguard/internal/transport/http/middleware"
	"github.com/arklim/social-platform-authguard/internal/usecase"
)

// PasswordHandler exposes the credential change endpoints.
type PasswordHandler struct {
	service    *usecase.PasswordService
	widgetHook *usecase.PasswordWidgetHook
	users      port.UserRepository
	parser     middleware.SessionTokenParser
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(service *usecase.PasswordService, widgetHook *usecase.PasswordWidgetHook, users port.UserRepository, parser middleware.SessionTokenParser) *PasswordHandler {
	return &PasswordHandler{
		service:    service,
		widgetHook: widgetHook,
		users:      users,
		parser:     parser,
	}
}

// RegisterRoutes binds password routes behind session authentication.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/password", middleware.RequireSession(h.parser))
	group.POST("/change", h.change)
	group.POST("/check", h.check)
}

// Change godoc
// @Summary Change the caller's password
// @Description Verifies the current password, applies the strength and reuse policies, and stores the new hash.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordChangeRequest true "Password change payload"
// @Success 204 {string} string ""
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/change [post]
func (h *PasswordHandler) change(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password change payload"))
		return
	}

	err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		var rej *usecase.Rejection
		if errors.As(err, &rej) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, rej.Message))
			return
		}
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrCurrentPasswordMismatch, Status: http.StatusUnauthorized, Message: "current password does not match"},
			{Err: repository.ErrNotFound, Status: http.StatusUnauthorized, Message: "authentication required"},
		}, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.Status(http.StatusNoContent)
}

// Check godoc
// @Summary Pre-check a candidate password
// @Description Reports reuse advisories for a candidate password before the user commits to it.
// @Tags Password
// @Accept json
// @Produce json
// @Param request body PasswordCheckRequest true "Password check payload"
// @Success 200 {object} PasswordCheckResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/password/check [post]
func (h *PasswordHandler) check(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req PasswordCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid password check payload"))
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to check password"))
		return
	}

	resp := PasswordCheckResponse{Acceptable: true}
	if h.widgetHook != nil {
		if notification := h.widgetHook.Process(c.Request.Context(), user, req.Password); notification != nil {
			resp.Acceptable = false
			resp.Notifications = newNotificationPayloads([]usecase.Notification{*notification})
		}
	}

	c.JSON(http.StatusOK, resp)
}
