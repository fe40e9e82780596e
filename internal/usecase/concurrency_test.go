package usecase

import (
	"reflect"
	"testing"
)

func TestResolveConcurrencyEmptyAlwaysAllows(t *testing.T) {
	for _, multi := range []bool{true, false} {
		decision := ResolveConcurrency(nil, multi)
		if decision.Action != ConcurrencyAllow {
			t.Fatalf("multi=%v: empty active set must allow", multi)
		}
	}
}

func TestResolveConcurrencyRejectsExclusiveSession(t *testing.T) {
	decision := ResolveConcurrency([]string{"s1"}, false)
	if decision.Action != ConcurrencyReject {
		t.Fatal("one active session with multi-session disabled must reject")
	}
}

func TestResolveConcurrencyKillAndAllowWhenMultiEnabled(t *testing.T) {
	active := []string{"s1", "s2"}
	decision := ResolveConcurrency(active, true)
	if decision.Action != ConcurrencyKillAndAllow {
		t.Fatal("active sessions with multi-session enabled must kill-and-allow")
	}
	if !reflect.DeepEqual(decision.SessionsToKill, active) {
		t.Fatalf("expected prior sessions %v marked for kill, got %v", active, decision.SessionsToKill)
	}
}

func TestSurvivingSessionsIdenticalSetKillsNothing(t *testing.T) {
	before := []string{"s1", "s2"}
	after := []string{"s1", "s2"}
	if toKill := SurvivingSessions(before, after); toKill != nil {
		t.Fatalf("identical sets mean the base auth reused a session; got kills %v", toKill)
	}
}

func TestSurvivingSessionsNewSessionKillsPriors(t *testing.T) {
	before := []string{"s1", "s2"}
	after := []string{"s1", "s2", "s3"}
	toKill := SurvivingSessions(before, after)
	if !reflect.DeepEqual(toKill, before) {
		t.Fatalf("expected all prior sessions killed, got %v", toKill)
	}
}
