package port

import (
	"context"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// SessionStore deals with session storage. The guard never creates
// sessions; it only enumerates active ones and requests deactivation.
type SessionStore interface {
	// ListActive returns the active sessions for the user ordered by
	// creation time, most recent last.
	ListActive(ctx context.Context, userID string) ([]domain.Session, error)
	// Deactivate sets active=false on the session. Calling it on an
	// already-inactive session is a no-op.
	Deactivate(ctx context.Context, sessionID string) error
}
