package port

import (
	"context"
	"time"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// UserRepository exposes persistence behavior for users. Lookups return
// active records only and are not restricted by the caller's access scope;
// the guard operates with administrative visibility.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user domain.User) error
	Save(ctx context.Context, user domain.User) error
	// RecordFailedAttempt increments the failed-attempt counter and locks
	// the row when the incremented value reaches maxAttempts, in a single
	// atomic statement. It returns the counter value after the increment
	// and whether the account ended locked. Concurrent failures for the
	// same user must not lose increments.
	RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int) (attempts int, locked bool, err error)
	// ResetAttempts sets the failed-attempt counter back to zero.
	ResetAttempts(ctx context.Context, userID string) error
	// SetPasswordExpired persists the password-expired flag.
	SetPasswordExpired(ctx context.Context, userID string, expired bool) error
	// RecordLogin stores the last successful login timestamp.
	RecordLogin(ctx context.Context, userID string, at time.Time) error
	// UpdatePassword stores the new hash, stamps the change time, and
	// clears the expired and new-account flags in one statement.
	UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error
}

// LoginAttemptRepository persists the audit trail of guard decisions.
type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt domain.LoginAttempt) error
}
