package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

// ErrCurrentPasswordMismatch indicates the caller failed to prove the
// current password before changing it.
var ErrCurrentPasswordMismatch = errors.New("current password does not match")

// PasswordService drives the credential change flow: prove the current
// password, run the policy checks, persist the new hash, and record the
// change.
type PasswordService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	guard  *CredentialChangeGuard
	logger *zap.Logger
	now    func() time.Time
}

// NewPasswordService constructs the service.
func NewPasswordService(users port.UserRepository, hasher port.PasswordHasher, guard *CredentialChangeGuard, logger *zap.Logger) (*PasswordService, error) {
	if users == nil || hasher == nil || guard == nil {
		return nil, fmt.Errorf("password service requires user repository, hasher, and credential change guard")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordService{
		users:  users,
		hasher: hasher,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}, nil
}

// WithClock overrides the service's notion of "now". Intended for tests.
func (s *PasswordService) WithClock(now func() time.Time) *PasswordService {
	s.now = now
	return s
}

// ChangePassword replaces the user's password after verifying the current
// one and passing the change through the credential guard. The expired and
// new-account flags are cleared by the same write that stores the hash.
func (s *PasswordService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	match, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !match {
		return ErrCurrentPasswordMismatch
	}

	if err := s.guard.BeforeUpdate(ctx, user, newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		return fmt.Errorf("persist new password: %w", err)
	}

	if err := s.guard.AfterPasswordChange(ctx, user, hash, user.ID); err != nil {
		s.logger.Warn("post password change bookkeeping failed",
			zap.String("user_id", user.ID), zap.Error(err))
	}

	return nil
}
