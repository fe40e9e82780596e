package domain

import "time"

// SystemUserID is the distinguished built-in account exempt from every
// guard policy.
const SystemUserID = "100"

// User mirrors the persisted representation in the users table. The guard
// reads and mutates the lock flag, the failed-attempt counter, the
// password-expired flag, and the new-account flag; everything else is owned
// by the surrounding platform.
type User struct {
	ID                 string
	Username           string
	PasswordHash       string
	IsActive           bool
	Locked             bool
	FailedAttempts     int
	PasswordExpired    bool
	IsNewAccount       bool
	AllowMultiSession  bool
	RegisteredAt       time.Time
	LastLogin          *time.Time
	LastPasswordChange time.Time
}

// IsSystemAccount reports whether the user is the distinguished system
// account that bypasses lockout, expiration, and session policies.
func (u User) IsSystemAccount() bool {
	return u.ID == SystemUserID
}

// UserPasswordHistory tracks historical password hashes for reuse prevention.
type UserPasswordHistory struct {
	ID           string
	UserID       string
	PasswordHash string
	SetAt        time.Time
}

// LoginAttempt records authentication attempts for throttling and audit.
type LoginAttempt struct {
	ID        string
	UserID    *string
	Username  string
	Succeeded bool
	Reason    string
	IP        *string
	UserAgent *string
	CreatedAt time.Time
}
