package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishUserLocked logs authguard.user.locked events.
func (p *StubPublisher) PublishUserLocked(_ context.Context, event domain.UserLockedEvent) error {
	payload := map[string]any{
		"user_id":         event.UserID,
		"username":        event.Username,
		"failed_attempts": event.FailedAttempts,
		"locked_at":       event.LockedAt,
		"metadata":        event.Metadata,
	}
	p.logEvent("authguard.user.locked", event.UserID, event.LockedAt, payload)
	return nil
}

// PublishSessionsKilled logs authguard.sessions.killed events.
func (p *StubPublisher) PublishSessionsKilled(_ context.Context, event domain.SessionsKilledEvent) error {
	payload := map[string]any{
		"user_id":     event.UserID,
		"session_ids": event.SessionIDs,
		"reason":      event.Reason,
		"killed_at":   event.KilledAt,
		"metadata":    event.Metadata,
	}
	p.logEvent("authguard.sessions.killed", event.UserID, event.KilledAt, payload)
	return nil
}

// PublishPasswordExpired logs authguard.password.expired events.
func (p *StubPublisher) PublishPasswordExpired(_ context.Context, event domain.PasswordExpiredEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"username":   event.Username,
		"deadline":   event.Deadline,
		"flagged_at": event.FlaggedAt,
		"forced":     event.Forced,
		"metadata":   event.Metadata,
	}
	p.logEvent("authguard.password.expired", event.UserID, event.FlaggedAt, payload)
	return nil
}

// PublishPasswordChanged logs authguard.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"changed_at": event.ChangedAt,
		"changed_by": event.ChangedBy,
		"metadata":   event.Metadata,
	}
	p.logEvent("authguard.password.changed", event.UserID, event.ChangedAt, payload)
	return nil
}
