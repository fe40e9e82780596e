package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/core/port"
)

func hookConfig() GuardConfig {
	return GuardConfig{ShowExpiryWarnings: true, NearExpiryGraceDays: 7}
}

func newTestLoginHook(users *stubUserRepo, prefs *stubPrefs) *LoginHook {
	hook := NewLoginHook(hookConfig(), users, prefs, nil)
	return hook.WithClock(func() time.Time { return testNow })
}

func TestLoginHookSilentWhenFarFromExpiry(t *testing.T) {
	user := testUser() // changed 10 days ago, 30 day window: 20 days left
	hook := newTestLoginHook(newStubUserRepo(user), defaultPrefs())

	if notification := hook.Process(context.Background(), "alice"); notification != nil {
		t.Fatalf("expected no advisory, got %+v", notification)
	}
}

func TestLoginHookWarnsInDays(t *testing.T) {
	user := testUser()
	user.LastPasswordChange = testNow.AddDate(0, 0, -27) // 3 days left
	hook := newTestLoginHook(newStubUserRepo(user), defaultPrefs())

	notification := hook.Process(context.Background(), "alice")
	if notification == nil || notification.Severity != SeverityWarning {
		t.Fatalf("expected warning, got %+v", notification)
	}
	if !strings.Contains(notification.Message, "3 day") {
		t.Fatalf("expected day wording, got %q", notification.Message)
	}
}

func TestLoginHookWarnsInHoursOnFinalDay(t *testing.T) {
	user := testUser()
	// Deadline lands 5 hours from the fixed clock.
	user.LastPasswordChange = testNow.Add(5 * time.Hour).AddDate(0, 0, -30)
	hook := newTestLoginHook(newStubUserRepo(user), defaultPrefs())

	notification := hook.Process(context.Background(), "alice")
	if notification == nil || notification.Severity != SeverityWarning {
		t.Fatalf("expected warning, got %+v", notification)
	}
	if !strings.Contains(notification.Message, "5 hour") {
		t.Fatalf("expected hour wording, got %q", notification.Message)
	}
}

func TestLoginHookSilentWhenWarningsDisabled(t *testing.T) {
	user := testUser()
	user.LastPasswordChange = testNow.AddDate(0, 0, -29)
	hook := NewLoginHook(GuardConfig{ShowExpiryWarnings: false}, newStubUserRepo(user), defaultPrefs(), nil)

	if notification := hook.Process(context.Background(), "alice"); notification != nil {
		t.Fatalf("warnings disabled: expected nil, got %+v", notification)
	}
}

func TestLoginHookSilentForSystemAccount(t *testing.T) {
	user := testUser()
	user.ID = domain.SystemUserID
	user.Username = "system"
	user.LastPasswordChange = testNow.AddDate(0, 0, -29)
	hook := newTestLoginHook(newStubUserRepo(user), defaultPrefs())

	if notification := hook.Process(context.Background(), "system"); notification != nil {
		t.Fatalf("system account: expected nil, got %+v", notification)
	}
}

func TestLoginHookReportsEvaluationFailureAsError(t *testing.T) {
	user := testUser()
	prefs := &stubPrefs{values: map[string]string{port.PrefDaysToPasswordExpiration: "soon"}}
	hook := newTestLoginHook(newStubUserRepo(user), prefs)

	notification := hook.Process(context.Background(), "alice")
	if notification == nil || notification.Severity != SeverityError {
		t.Fatalf("expected error advisory, got %+v", notification)
	}
}

func TestLoginHookSilentForUnknownUser(t *testing.T) {
	hook := newTestLoginHook(newStubUserRepo(), defaultPrefs())
	if notification := hook.Process(context.Background(), "ghost"); notification != nil {
		t.Fatalf("unknown user: expected nil, got %+v", notification)
	}
}

func TestPasswordWidgetHookFlagsReuse(t *testing.T) {
	history := &stubHistoryRepo{hashes: []string{"hash:OldPass1!"}}
	policy := NewPasswordPolicy(&stubStrengthChecker{strong: true}, &plainHasher{})
	hook := NewPasswordWidgetHook(GuardConfig{HistoryCheckEnabled: true}, policy, history, nil)

	notification := hook.Process(context.Background(), &domain.User{ID: "u1"}, "OldPass1!")
	if notification == nil || notification.Severity != SeverityError {
		t.Fatalf("expected error advisory for reused password, got %+v", notification)
	}
}

func TestPasswordWidgetHookSilentWhenHistoryDisabled(t *testing.T) {
	history := &stubHistoryRepo{hashes: []string{"hash:OldPass1!"}}
	policy := NewPasswordPolicy(&stubStrengthChecker{strong: true}, &plainHasher{})
	hook := NewPasswordWidgetHook(GuardConfig{}, policy, history, nil)

	if notification := hook.Process(context.Background(), &domain.User{ID: "u1"}, "OldPass1!"); notification != nil {
		t.Fatalf("history disabled: expected nil, got %+v", notification)
	}
}

func TestPasswordWidgetHookSilentForNovelPassword(t *testing.T) {
	history := &stubHistoryRepo{hashes: []string{"hash:OldPass1!"}}
	policy := NewPasswordPolicy(&stubStrengthChecker{strong: true}, &plainHasher{})
	hook := NewPasswordWidgetHook(GuardConfig{HistoryCheckEnabled: true}, policy, history, nil)

	if notification := hook.Process(context.Background(), &domain.User{ID: "u1"}, "BrandNew1!"); notification != nil {
		t.Fatalf("novel password: expected nil, got %+v", notification)
	}
}
