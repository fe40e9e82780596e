package port

import (
	"context"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// EventPublisher publishes guard lifecycle events to the message bus.
type EventPublisher interface {
	PublishUserLocked(ctx context.Context, event domain.UserLockedEvent) error
	PublishSessionsKilled(ctx context.Context, event domain.SessionsKilledEvent) error
	PublishPasswordExpired(ctx context.Context, event domain.PasswordExpiredEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
