package domain

import "time"

// UserLockedEvent represents the payload for authguard.user.locked messages.
type UserLockedEvent struct {
	EventID        string
	UserID         string
	Username       string
	FailedAttempts int
	LockedAt       time.Time
	Metadata       map[string]any
}

// SessionsKilledEvent represents the payload for authguard.sessions.killed
// messages, emitted when a new login deactivates prior sessions.
type SessionsKilledEvent struct {
	EventID    string
	UserID     string
	SessionIDs []string
	Reason     string
	KilledAt   time.Time
	Metadata   map[string]any
}

// PasswordExpiredEvent represents the payload for authguard.password.expired
// messages, emitted when the guard flags a password as expired at login.
type PasswordExpiredEvent struct {
	EventID   string
	UserID    string
	Username  string
	Deadline  time.Time
	FlaggedAt time.Time
	Forced    bool
	Metadata  map[string]any
}

// PasswordChangedEvent represents the payload for authguard.password.changed
// messages, emitted after a credential change passes policy checks.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	ChangedBy string
	Metadata  map[string]any
}
