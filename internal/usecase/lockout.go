package usecase

// LockoutDecision is the outcome of evaluating one authentication attempt
// against the failed-attempt policy. Persisting the updated counter and
// lock flag is the caller's responsibility.
type LockoutDecision struct {
	// NextAttempts is the counter value the user row must end with.
	NextAttempts int
	// ShouldLock is true when the attempt exhausted the allowance and the
	// account must be locked.
	ShouldLock bool
	// ShouldReset is true when a successful attempt must clear a non-zero
	// counter. A zero counter on success produces no write at all.
	ShouldReset bool
	// Remaining is the number of attempts left before lock, meaningful
	// only on a failed attempt that did not lock.
	Remaining int
	// Disabled is true when maxAttempts <= 0 and the check did not run.
	Disabled bool
}

// EvaluateLockout decides what one authentication attempt does to the
// failed-attempt counter. It is pure: currentAttempts is the persisted
// counter before the attempt, maxAttempts the policy ceiling, succeeded
// whether the credential check passed. Locked accounts are rejected
// upstream and never reach this function.
func EvaluateLockout(currentAttempts, maxAttempts int, succeeded bool) LockoutDecision {
	if maxAttempts <= 0 {
		return LockoutDecision{NextAttempts: currentAttempts, Disabled: true}
	}

	if succeeded {
		if currentAttempts > 0 {
			return LockoutDecision{NextAttempts: 0, ShouldReset: true}
		}
		return LockoutDecision{NextAttempts: 0}
	}

	next := currentAttempts + 1
	if next >= maxAttempts {
		return LockoutDecision{NextAttempts: next, ShouldLock: true}
	}
	return LockoutDecision{NextAttempts: next, Remaining: maxAttempts - next}
}
