package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// LoginAttemptRepository persists the audit trail of authentication
// attempts.
type LoginAttemptRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewLoginAttemptRepository(exec pgExecutor) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Record appends a single attempt row. Failures here must not block
// authentication, so callers log and continue.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt domain.LoginAttempt) error {
	stmt, args, err := r.builder.Insert("authguard.login_attempts").
		Columns("id", "user_id", "username", "succeeded", "reason", "ip", "user_agent", "created_at").
		Values(attempt.ID, attempt.UserID, attempt.Username, attempt.Succeeded, attempt.Reason, attempt.IP, attempt.UserAgent, attempt.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert login attempt sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}
	return nil
}
