package usecase

import "fmt"

// RejectionKind classifies terminal guard rejections.
type RejectionKind string

const (
	// RejectionLocked indicates the account is locked. The message is
	// fixed and non-specific so a locked attacker learns nothing more.
	RejectionLocked RejectionKind = "locked"
	// RejectionIncorrectAttempt indicates a failed credential check with
	// attempts remaining.
	RejectionIncorrectAttempt RejectionKind = "incorrect_attempt"
	// RejectionMultiLogin indicates a concurrent session exists and
	// multi-session is disabled for the user.
	RejectionMultiLogin RejectionKind = "multi_login_denied"
	// RejectionConfig indicates a required policy value was missing or
	// unparseable. The guard fails closed.
	RejectionConfig RejectionKind = "configuration_error"
	// RejectionPolicy indicates a credential change violated password
	// policy (weak or reused).
	RejectionPolicy RejectionKind = "policy_violation"
	// RejectionUnexpected covers any other failure during evaluation,
	// reported generically without internal detail.
	RejectionUnexpected RejectionKind = "unexpected"
)

// Rejection is the structured reason carried by every terminal Rejected
// outcome. It implements error so callers can propagate it directly.
type Rejection struct {
	Kind              RejectionKind
	Message           string
	Username          string
	RemainingAttempts int
}

// Error implements error.
func (r *Rejection) Error() string {
	if r == nil {
		return ""
	}
	return r.Message
}

// User-visible message templates. Deployments localize these at the
// presentation layer; the guard only fixes the shape.
const (
	msgLockedUser             = "This account has been locked. Contact your administrator"
	msgIncorrectAttemptFormat = "Incorrect password. %d attempt(s) remaining before the account is locked"
	msgMultiLoginFormat       = "User %s already has an active session. Concurrent logins are not allowed"
	msgGenericAuthFailure     = "Authentication failed"
)

func lockedRejection() *Rejection {
	return &Rejection{Kind: RejectionLocked, Message: msgLockedUser}
}

func incorrectAttemptRejection(remaining int) *Rejection {
	return &Rejection{
		Kind:              RejectionIncorrectAttempt,
		Message:           fmt.Sprintf(msgIncorrectAttemptFormat, remaining),
		RemainingAttempts: remaining,
	}
}

func multiLoginRejection(username string) *Rejection {
	return &Rejection{
		Kind:     RejectionMultiLogin,
		Message:  fmt.Sprintf(msgMultiLoginFormat, username),
		Username: username,
	}
}

func configRejection(detail string) *Rejection {
	return &Rejection{Kind: RejectionConfig, Message: detail}
}

func unexpectedRejection() *Rejection {
	return &Rejection{Kind: RejectionUnexpected, Message: msgGenericAuthFailure}
}
