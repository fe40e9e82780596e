package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/core/port"
)

var (
	// ErrPasswordNotStrong indicates the candidate password fails the
	// strength policy.
	ErrPasswordNotStrong = errors.New("password is not strong enough")
	// ErrPasswordAlreadyUsed indicates the candidate password appears in
	// the user's password history.
	ErrPasswordAlreadyUsed = errors.New("password has already been used")
)

// CredentialChangeGuard validates user-record writes that may carry a new
// password. The surrounding service layer invokes it at the before-create
// and before-update extension points; a returned *Rejection aborts the
// write and leaves the original record unmodified.
type CredentialChangeGuard struct {
	policy  *PasswordPolicy
	history port.PasswordHistoryRepository
	hasher  port.PasswordHasher
	events  port.EventPublisher
	logger  *zap.Logger
	cfg     GuardConfig
	now     func() time.Time
}

// NewCredentialChangeGuard constructs a CredentialChangeGuard. The event
// publisher may be nil.
func NewCredentialChangeGuard(
	cfg GuardConfig,
	policy *PasswordPolicy,
	history port.PasswordHistoryRepository,
	hasher port.PasswordHasher,
	events port.EventPublisher,
	logger *zap.Logger,
) (*CredentialChangeGuard, error) {
	if policy == nil || history == nil || hasher == nil {
		return nil, fmt.Errorf("credential change guard requires policy, history repository, and hasher")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialChangeGuard{
		cfg:     cfg,
		policy:  policy,
		history: history,
		hasher:  hasher,
		events:  events,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// WithClock overrides the guard's notion of "now". Intended for tests.
func (c *CredentialChangeGuard) WithClock(now func() time.Time) *CredentialChangeGuard {
	c.now = now
	return c
}

// BeforeCreate corrects and validates a user record about to be inserted.
// Every new account starts flagged as new regardless of the incoming value;
// only strength is checked, since a new record has no history by definition.
func (c *CredentialChangeGuard) BeforeCreate(ctx context.Context, user *domain.User, candidate string) error {
	if !user.IsNewAccount {
		user.IsNewAccount = true
	}

	assessment, err := c.policy.Evaluate(candidate, nil, false)
	if err != nil {
		c.logger.Error("evaluate password on create", zap.Error(err))
		return unexpectedRejection()
	}
	if !assessment.Strong {
		return &Rejection{Kind: RejectionPolicy, Message: ErrPasswordNotStrong.Error()}
	}
	return nil
}

// BeforeUpdate validates a user record about to be updated with a possibly
// changed password. When the incoming state already has the password
// marked expired, an administrator is forcing a reset and policy checks
// are bypassed to avoid lockout loops.
func (c *CredentialChangeGuard) BeforeUpdate(ctx context.Context, user *domain.User, candidate string) error {
	if user.PasswordExpired {
		return nil
	}

	var hashes []string
	if c.cfg.HistoryCheckEnabled && candidate != "" {
		var err error
		hashes, err = c.history.ListHashes(ctx, user.ID)
		if err != nil {
			c.logger.Error("list password history", zap.String("user_id", user.ID), zap.Error(err))
			return unexpectedRejection()
		}
	}

	assessment, err := c.policy.Evaluate(candidate, hashes, c.cfg.HistoryCheckEnabled)
	if err != nil {
		c.logger.Error("evaluate password on update", zap.String("user_id", user.ID), zap.Error(err))
		return unexpectedRejection()
	}
	if !assessment.Strong {
		return &Rejection{Kind: RejectionPolicy, Message: ErrPasswordNotStrong.Error()}
	}
	if assessment.Reused {
		return &Rejection{Kind: RejectionPolicy, Message: ErrPasswordAlreadyUsed.Error()}
	}
	return nil
}

// AfterPasswordChange appends the new hash to the user's history and
// publishes the change event. Called by the service layer once the write
// committed.
func (c *CredentialChangeGuard) AfterPasswordChange(ctx context.Context, user *domain.User, newHash, changedBy string) error {
	entry := domain.UserPasswordHistory{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		PasswordHash: newHash,
		SetAt:        c.now(),
	}
	if err := c.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("append password history: %w", err)
	}

	if c.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			ChangedAt: c.now(),
			ChangedBy: changedBy,
		}
		if err := c.events.PublishPasswordChanged(ctx, event); err != nil {
			c.logger.Warn("publish password changed event", zap.Error(err))
		}
	}
	return nil
}
