package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

// NotificationSeverity classifies hook messages.
type NotificationSeverity string

const (
	SeverityWarning NotificationSeverity = "warning"
	SeverityError   NotificationSeverity = "error"
)

// Notification is the optional structured message a hook surfaces to the
// presentation layer. A nil notification means nothing to report.
type Notification struct {
	Severity NotificationSeverity
	Title    string
	Message  string
}

const (
	titleNearExpiry          = "Password about to expire"
	msgNearExpiryDaysFormat  = "Your password expires in %d day(s). Please change it"
	msgNearExpiryHoursFormat = "Your password expires in %d hour(s). Please change it"
)

// LoginHook computes the post-login advisory for a user: a near-expiry
// warning, an error when evaluation itself failed, or nothing.
type LoginHook struct {
	cfg    GuardConfig
	users  port.UserRepository
	prefs  port.PreferenceResolver
	logger *zap.Logger
	now    func() time.Time
}

// NewLoginHook constructs a LoginHook.
func NewLoginHook(cfg GuardConfig, users port.UserRepository, prefs port.PreferenceResolver, logger *zap.Logger) *LoginHook {
	if cfg.NearExpiryGraceDays <= 0 {
		cfg.NearExpiryGraceDays = DefaultNearExpiryGraceDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginHook{cfg: cfg, users: users, prefs: prefs, logger: logger, now: time.Now}
}

// WithClock overrides the hook's notion of "now". Intended for tests.
func (h *LoginHook) WithClock(now func() time.Time) *LoginHook {
	h.now = now
	return h
}

// Process returns the advisory for the named user after a successful
// login. Evaluation failures are reported as an error notification rather
// than propagated; the login itself already succeeded.
func (h *LoginHook) Process(ctx context.Context, username string) *Notification {
	if !h.cfg.ShowExpiryWarnings {
		return nil
	}

	user, err := h.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		h.logger.Error("login hook user lookup", zap.String("username", username), zap.Error(err))
		return &Notification{Severity: SeverityError, Message: msgGenericAuthFailure}
	}
	if user.IsSystemAccount() {
		return nil
	}

	raw, err := h.prefs.Resolve(ctx, port.PrefDaysToPasswordExpiration, user.ID)
	if err != nil {
		h.logger.Error("login hook preference lookup", zap.String("user_id", user.ID), zap.Error(err))
		return &Notification{Severity: SeverityError, Message: msgGenericAuthFailure}
	}
	validityDays, err := ParseValidityDays(raw)
	if err != nil {
		h.logger.Error("login hook preference parse", zap.String("user_id", user.ID), zap.Error(err))
		return &Notification{Severity: SeverityError, Message: msgGenericAuthFailure}
	}

	now := h.now()
	deadline := ExpiryDeadline(user.LastPasswordChange, validityDays)
	if !IsNearExpiry(deadline, now, h.cfg.NearExpiryGraceDays) {
		return nil
	}

	remaining := RemainingDays(deadline, now)
	message := fmt.Sprintf(msgNearExpiryDaysFormat, remaining)
	if remaining == 0 {
		// Less than a day left; report hours for a meaningful count.
		message = fmt.Sprintf(msgNearExpiryHoursFormat, RemainingHours(deadline, now))
	}

	return &Notification{
		Severity: SeverityWarning,
		Title:    titleNearExpiry,
		Message:  message,
	}
}

// PasswordWidgetHook validates a password change submitted through the
// user-info widget. It returns an error notification when the candidate is
// found in the user's history and reuse prevention is enabled, nil
// otherwise.
type PasswordWidgetHook struct {
	cfg     GuardConfig
	policy  *PasswordPolicy
	history port.PasswordHistoryRepository
	logger  *zap.Logger
}

// NewPasswordWidgetHook constructs a PasswordWidgetHook.
func NewPasswordWidgetHook(cfg GuardConfig, policy *PasswordPolicy, history port.PasswordHistoryRepository, logger *zap.Logger) *PasswordWidgetHook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordWidgetHook{cfg: cfg, policy: policy, history: history, logger: logger}
}

// Process checks the candidate password for the given user.
func (h *PasswordWidgetHook) Process(ctx context.Context, user *domain.User, candidate string) *Notification {
	if !h.cfg.HistoryCheckEnabled {
		return nil
	}

	assessment, err := h.policy.EvaluateForUser(ctx, h.history, user.ID, candidate, true)
	if err != nil {
		h.logger.Error("widget hook evaluation", zap.String("user_id", user.ID), zap.Error(err))
		return &Notification{Severity: SeverityError, Message: msgGenericAuthFailure}
	}
	if assessment.Reused {
		return &Notification{Severity: SeverityError, Message: ErrPasswordAlreadyUsed.Error()}
	}
	return nil
}
