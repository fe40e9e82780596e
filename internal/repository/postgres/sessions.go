package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// SessionRepository implements port.SessionStore plus the session-creation
// capability the base authenticator needs, backed by PostgreSQL.
type SessionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewSessionRepository(exec pgExecutor) *SessionRepository {
	return &SessionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a session record.
func (r *SessionRepository) Create(ctx context.Context, session domain.Session) error {
	stmt, args, err := r.builder.Insert("authguard.sessions").
		Columns("id", "user_id", "identifier", "active", "created_at", "last_ping").
		Values(
			session.ID,
			session.UserID,
			session.Identifier,
			session.Active,
			session.CreatedAt,
			session.LastPing,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert session sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListActive returns the user's active sessions ordered by creation time,
// most recent last. Sessions without a heartbeat are excluded; they have
// not finished establishment.
func (r *SessionRepository) ListActive(ctx context.Context, userID string) ([]domain.Session, error) {
	stmt, args, err := r.builder.
		Select("id", "user_id", "identifier", "active", "created_at", "last_ping").
		From("authguard.sessions").
		Where(squirrel.Eq{"user_id": userID, "active": true}).
		Where("last_ping IS NOT NULL").
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active sessions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var (
			session  domain.Session
			lastPing *time.Time
		)
		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Identifier,
			&session.Active,
			&session.CreatedAt,
			&lastPing,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.LastPing = lastPing
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Deactivate sets active=false on the session. Deactivating an inactive
// or unknown session is a no-op.
func (r *SessionRepository) Deactivate(ctx context.Context, sessionID string) error {
	stmt, args, err := r.builder.Update("authguard.sessions").
		Set("active", false).
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate session sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}

// Touch refreshes the session heartbeat.
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	stmt, args, err := r.builder.Update("authguard.sessions").
		Set("last_ping", at).
		Where(squirrel.Eq{"id": sessionID, "active": true}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build touch session sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}
