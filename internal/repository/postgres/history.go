package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// PasswordHistoryRepository implements port.PasswordHistoryRepository
// backed by PostgreSQL. The table is append-only.
type PasswordHistoryRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPasswordHistoryRepository constructs a repository backed by any
// executor that satisfies pgExecutor.
func NewPasswordHistoryRepository(exec pgExecutor) *PasswordHistoryRepository {
	return &PasswordHistoryRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListHashes returns every stored password hash for the user, oldest
// first.
func (r *PasswordHistoryRepository) ListHashes(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.
		Select("password_hash").
		From("authguard.password_history").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("set_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list password history sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query password history: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var hash string
		if err := rows.Scan(&hash); err != nil {
			return nil, fmt.Errorf("scan password history: %w", err)
		}
		hashes = append(hashes, hash)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate password history: %w", err)
	}
	return hashes, nil
}

// Append stores a new history entry.
func (r *PasswordHistoryRepository) Append(ctx context.Context, entry domain.UserPasswordHistory) error {
	stmt, args, err := r.builder.Insert("authguard.password_history").
		Columns("id", "user_id", "password_hash", "set_at").
		Values(entry.ID, entry.UserID, entry.PasswordHash, entry.SetAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert password history sql: %w", err)
	}
	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert password history: %w", err)
	}
	return nil
}
