package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

var userColumns = []string{
	"id",
	"username",
	"password_hash",
	"is_active",
	"locked",
	"failed_attempts",
	"password_expired",
	"is_new_account",
	"allow_multi_session",
	"registered_at",
	"last_login",
	"last_password_change",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves an active user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("authguard.users").
		Where(squirrel.Eq{"id": id, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}
	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// GetByUsername retrieves an active user by username. The lookup is not
// restricted by any caller scope; the guard requires administrative
// visibility.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("authguard.users").
		Where(squirrel.Eq{"username": username, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user by username sql: %w", err)
	}
	return r.scanUser(r.exec.QueryRow(ctx, stmt, args...))
}

// Create inserts a new user row.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Insert("authguard.users").
		Columns(userColumns...).
		Values(
			user.ID,
			user.Username,
			user.PasswordHash,
			user.IsActive,
			user.Locked,
			user.FailedAttempts,
			user.PasswordExpired,
			user.IsNewAccount,
			user.AllowMultiSession,
			user.RegisteredAt,
			user.LastLogin,
			user.LastPasswordChange,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Save persists the guard-owned mutable fields of the user row.
func (r *UserRepository) Save(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Update("authguard.users").
		Set("locked", user.Locked).
		Set("failed_attempts", user.FailedAttempts).
		Set("password_expired", user.PasswordExpired).
		Set("is_new_account", user.IsNewAccount).
		Set("allow_multi_session", user.AllowMultiSession).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}
	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RecordFailedAttempt increments the failed-attempt counter and applies
// the lock comparison inside one UPDATE so concurrent logins for the same
// user cannot lose increments or disagree on the lock decision.
func (r *UserRepository) RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int) (int, bool, error) {
	const stmt = `
		UPDATE authguard.users
		SET failed_attempts = failed_attempts + 1,
		    locked = locked OR (failed_attempts + 1 >= $2)
		WHERE id = $1
		RETURNING failed_attempts, locked`

	var (
		attempts int
		locked   bool
	)
	if err := r.exec.QueryRow(ctx, stmt, userID, maxAttempts).Scan(&attempts, &locked); err != nil {
		if err == pgx.ErrNoRows {
			return 0, false, repository.ErrNotFound
		}
		return 0, false, fmt.Errorf("record failed attempt: %w", err)
	}
	return attempts, locked, nil
}

// ResetAttempts clears the failed-attempt counter.
func (r *UserRepository) ResetAttempts(ctx context.Context, userID string) error {
	stmt, args, err := r.builder.Update("authguard.users").
		Set("failed_attempts", 0).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build reset attempts sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

// SetPasswordExpired persists the password-expired flag.
func (r *UserRepository) SetPasswordExpired(ctx context.Context, userID string, expired bool) error {
	stmt, args, err := r.builder.Update("authguard.users").
		Set("password_expired", expired).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set password expired sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("set password expired: %w", err)
	}
	return nil
}

// RecordLogin stores the last successful login timestamp.
func (r *UserRepository) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	stmt, args, err := r.builder.Update("authguard.users").
		Set("last_login", at).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record login sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return nil
}

// UpdatePassword stores the new hash and resets the lifecycle flags that a
// successful change clears.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error {
	stmt, args, err := r.builder.Update("authguard.users").
		Set("password_hash", hash).
		Set("password_expired", false).
		Set("is_new_account", false).
		Set("last_password_change", at).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}
	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		lastLogin *time.Time
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.IsActive,
		&user.Locked,
		&user.FailedAttempts,
		&user.PasswordExpired,
		&user.IsNewAccount,
		&user.AllowMultiSession,
		&user.RegisteredAt,
		&lastLogin,
		&user.LastPasswordChange,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	user.LastLogin = lastLogin
	return &user, nil
}
