package domain

import "time"

// PolicyConfig is the per-user snapshot of guard policy values, resolved
// once per invocation and immutable for its duration.
type PolicyConfig struct {
	// MaxAttempts is the failed-attempt ceiling before the account locks.
	// Zero or negative disables the lockout check entirely.
	MaxAttempts int
	// ValidityDays is the password validity window in calendar days.
	ValidityDays int
	// SessionCheckEnabled gates the concurrent-session policy.
	SessionCheckEnabled bool
	// HistoryCheckEnabled gates password reuse prevention.
	HistoryCheckEnabled bool
	// ShowExpiryWarnings gates the near-expiry login warning.
	ShowExpiryWarnings bool
	// NearExpiryGraceDays is the warning window before the deadline.
	NearExpiryGraceDays int
	// SessionStaleGrace is how long a session may go without a heartbeat
	// before the stale sweep reclaims it.
	SessionStaleGrace time.Duration
}
