package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-authguard/internal/usecase"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// NotificationPayload carries an advisory surfaced alongside a response.
type NotificationPayload struct {
	Severity string `json:"severity"`
	Title    string `json:"title,omitempty"`
	Message  string `json:"message"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	SessionID     string                `json:"session_id"`
	SessionToken  string                `json:"session_token"`
	Notifications []NotificationPayload `json:"notifications,omitempty"`
}

// LoginRejectedResponse describes a login refused by policy.
type LoginRejectedResponse struct {
	Error             string `json:"error"`
	RemainingAttempts *int   `json:"remaining_attempts,omitempty"`
	TraceID           string `json:"trace_id,omitempty"`
}

// PasswordChangeRequest defines the payload for the password change endpoint.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// PasswordCheckRequest defines the payload for the password pre-check endpoint.
type PasswordCheckRequest struct {
	Password string `json:"password" binding:"required"`
}

// PasswordCheckResponse reports the advisory outcome of a candidate password check.
type PasswordCheckResponse struct {
	Acceptable    bool                  `json:"acceptable"`
	Notifications []NotificationPayload `json:"notifications,omitempty"`
}

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

func newNotificationPayloads(notifications []usecase.Notification) []NotificationPayload {
	if len(notifications) == 0 {
		return nil
	}
	payloads := make([]NotificationPayload, 0, len(notifications))
	for _, n := range notifications {
		payloads = append(payloads, NotificationPayload{
			Severity: string(n.Severity),
			Title:    n.Title,
			Message:  n.Message,
		})
	}
	return payloads
}
