package domain

import "time"

// Session represents a persisted login session. The guard only reads
// sessions and requests deactivation; creation belongs to the base
// authentication flow.
type Session struct {
	ID         string
	UserID     string
	Identifier string
	Active     bool
	CreatedAt  time.Time
	LastPing   *time.Time
}

// IsStale reports whether the session's last heartbeat is older than the
// supplied grace period at the given moment. Sessions without a heartbeat
// are never considered stale; they have not completed establishment yet.
func (s Session) IsStale(at time.Time, grace time.Duration) bool {
	if !s.Active || s.LastPing == nil || grace <= 0 {
		return false
	}
	return s.LastPing.Add(grace).Before(at)
}
