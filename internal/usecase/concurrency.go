package usecase

// ConcurrencyAction enumerates the outcomes of the session concurrency check.
type ConcurrencyAction int

const (
	// ConcurrencyAllow lets the login proceed untouched.
	ConcurrencyAllow ConcurrencyAction = iota
	// ConcurrencyReject denies the login because an exclusive session exists.
	ConcurrencyReject
	// ConcurrencyKillAndAllow lets the login proceed and deactivates the
	// listed prior sessions once the new one is established.
	ConcurrencyKillAndAllow
)

// ConcurrencyDecision is the outcome of resolving concurrent sessions for
// one login attempt.
type ConcurrencyDecision struct {
	Action ConcurrencyAction
	// SessionsToKill holds the prior session ids to deactivate, set only
	// for ConcurrencyKillAndAllow.
	SessionsToKill []string
}

// ResolveConcurrency decides how a new login interacts with the user's
// currently active sessions. With no active sessions the login is allowed
// regardless of policy. With active sessions and multi-session disabled the
// login is rejected. With multi-session enabled the caller must run the
// base authentication first and call SurvivingSessions afterwards to learn
// which prior sessions to kill; this two-phase shape avoids killing the
// session being created.
func ResolveConcurrency(activeSessions []string, multiSessionAllowed bool) ConcurrencyDecision {
	if len(activeSessions) == 0 {
		return ConcurrencyDecision{Action: ConcurrencyAllow}
	}
	if !multiSessionAllowed {
		return ConcurrencyDecision{Action: ConcurrencyReject}
	}
	return ConcurrencyDecision{Action: ConcurrencyKillAndAllow, SessionsToKill: activeSessions}
}

// SurvivingSessions compares the pre-login session set with the post-login
// one and returns the prior sessions to deactivate. When the sets are
// identical the base authentication reused an existing session and nothing
// is killed. Otherwise every id from the old set is deactivated; the newly
// established session is, by construction, not among them.
func SurvivingSessions(before, after []string) []string {
	if equalSessionSets(before, after) {
		return nil
	}
	return before
}

func equalSessionSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
