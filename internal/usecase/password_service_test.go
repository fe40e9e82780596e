package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

func newTestPasswordService(t *testing.T, user *domain.User, strong bool, history *stubHistoryRepo) (*PasswordService, *stubUserRepo) {
	t.Helper()
	users := newStubUserRepo(user)
	guard := newTestCredentialGuard(t, GuardConfig{HistoryCheckEnabled: true}, strong, history)
	svc, err := NewPasswordService(users, &plainHasher{}, guard, nil)
	if err != nil {
		t.Fatalf("construct password service: %v", err)
	}
	return svc.WithClock(func() time.Time { return testNow }), users
}

func TestChangePasswordStoresHashAndClearsFlags(t *testing.T) {
	user := &domain.User{
		ID:              "u1",
		Username:        "alice",
		PasswordHash:    "hash:old-secret",
		IsActive:        true,
		PasswordExpired: true,
	}
	history := &stubHistoryRepo{}
	svc, users := newTestPasswordService(t, user, true, history)

	if err := svc.ChangePassword(context.Background(), "u1", "old-secret", "new-secret"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}

	stored := users.byID("u1")
	if stored.PasswordHash != "hash:new-secret" {
		t.Fatalf("unexpected stored hash: %s", stored.PasswordHash)
	}
	if stored.PasswordExpired || stored.IsNewAccount {
		t.Fatalf("lifecycle flags must be cleared: %+v", stored)
	}
	if !stored.LastPasswordChange.Equal(testNow) {
		t.Fatalf("unexpected change timestamp: %v", stored.LastPasswordChange)
	}
	if len(history.appended) != 1 || history.appended[0].PasswordHash != "hash:new-secret" {
		t.Fatalf("expected history entry for new hash, got %+v", history.appended)
	}
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice", PasswordHash: "hash:old-secret", IsActive: true}
	svc, users := newTestPasswordService(t, user, true, &stubHistoryRepo{})

	err := svc.ChangePassword(context.Background(), "u1", "not-it", "new-secret")
	if !errors.Is(err, ErrCurrentPasswordMismatch) {
		t.Fatalf("expected ErrCurrentPasswordMismatch, got %v", err)
	}
	if users.byID("u1").PasswordHash != "hash:old-secret" {
		t.Fatal("password must not change on mismatch")
	}
}

func TestChangePasswordRejectsReusedPassword(t *testing.T) {
	user := &domain.User{ID: "u1", Username: "alice", PasswordHash: "hash:old-secret", IsActive: true}
	history := &stubHistoryRepo{hashes: []string{"hash:burned"}}
	svc, users := newTestPasswordService(t, user, true, history)

	err := svc.ChangePassword(context.Background(), "u1", "old-secret", "burned")
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Kind != RejectionPolicy {
		t.Fatalf("expected policy rejection, got %v", err)
	}
	if users.byID("u1").PasswordHash != "hash:old-secret" {
		t.Fatal("password must not change on policy rejection")
	}
}

func TestChangePasswordAllowsWeakReplacementWhenExpired(t *testing.T) {
	// An expired password is an administrative reset; the strength and
	// reuse checks are skipped so the user can regain access.
	user := &domain.User{
		ID:              "u1",
		Username:        "alice",
		PasswordHash:    "hash:old-secret",
		IsActive:        true,
		PasswordExpired: true,
	}
	svc, users := newTestPasswordService(t, user, false, &stubHistoryRepo{})

	if err := svc.ChangePassword(context.Background(), "u1", "old-secret", "weak"); err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if users.byID("u1").PasswordHash != "hash:weak" {
		t.Fatal("expired-reset change must be applied")
	}
}
