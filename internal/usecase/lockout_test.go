package usecase

import "testing"

func TestEvaluateLockoutDisabledWhenMaxNotPositive(t *testing.T) {
	for _, max := range []int{0, -1} {
		decision := EvaluateLockout(5, max, false)
		if !decision.Disabled {
			t.Fatalf("maxAttempts=%d: expected disabled decision", max)
		}
		if decision.ShouldLock || decision.ShouldReset {
			t.Fatalf("maxAttempts=%d: disabled decision must carry no action", max)
		}
		if decision.NextAttempts != 5 {
			t.Fatalf("maxAttempts=%d: counter must be untouched, got %d", max, decision.NextAttempts)
		}
	}
}

func TestEvaluateLockoutIncrementsOnFailure(t *testing.T) {
	maxAttempts := 5
	for current := 0; current < maxAttempts-1; current++ {
		decision := EvaluateLockout(current, maxAttempts, false)
		if decision.NextAttempts != current+1 {
			t.Fatalf("current=%d: expected next=%d, got %d", current, current+1, decision.NextAttempts)
		}
		if decision.ShouldLock {
			t.Fatalf("current=%d: must not lock below the ceiling", current)
		}
		if decision.Remaining != maxAttempts-current-1 {
			t.Fatalf("current=%d: expected remaining=%d, got %d", current, maxAttempts-current-1, decision.Remaining)
		}
	}
}

func TestEvaluateLockoutLocksAtCeiling(t *testing.T) {
	decision := EvaluateLockout(2, 3, false)
	if !decision.ShouldLock {
		t.Fatal("expected lock when the incremented counter reaches maxAttempts")
	}
	if decision.NextAttempts != 3 {
		t.Fatalf("expected next=3, got %d", decision.NextAttempts)
	}
}

func TestEvaluateLockoutLocksBeyondCeiling(t *testing.T) {
	// A counter already past the ceiling (policy tightened between
	// attempts) still locks.
	decision := EvaluateLockout(7, 3, false)
	if !decision.ShouldLock {
		t.Fatal("expected lock when counter exceeds maxAttempts")
	}
}

func TestEvaluateLockoutResetsOnSuccess(t *testing.T) {
	for _, current := range []int{1, 2, 9} {
		decision := EvaluateLockout(current, 3, true)
		if decision.NextAttempts != 0 {
			t.Fatalf("current=%d: expected counter reset to 0, got %d", current, decision.NextAttempts)
		}
		if !decision.ShouldReset {
			t.Fatalf("current=%d: expected reset side effect", current)
		}
		if decision.ShouldLock {
			t.Fatalf("current=%d: success must never lock", current)
		}
	}
}

func TestEvaluateLockoutSuccessWithZeroCounterIsNoop(t *testing.T) {
	decision := EvaluateLockout(0, 3, true)
	if decision.ShouldReset {
		t.Fatal("a zero counter on success must not produce a write")
	}
	if decision.NextAttempts != 0 {
		t.Fatalf("expected counter to stay 0, got %d", decision.NextAttempts)
	}
}
