package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/social-platform-authguard/internal/repository"
)

// PreferenceRepository resolves policy preferences from PostgreSQL.
// A preference row either targets a specific user (user_id set) or is
// global (user_id NULL); the user-specific row wins when both exist.
type PreferenceRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

func NewPreferenceRepository(exec pgExecutor) *PreferenceRepository {
	return &PreferenceRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Resolve returns the preference value for the key as visible to the
// given user. Absence is reported as repository.ErrNotFound so callers
// can fail closed.
func (r *PreferenceRepository) Resolve(ctx context.Context, key, userID string) (string, error) {
	stmt, args, err := r.builder.
		Select("value").
		From("authguard.preferences").
		Where(squirrel.Eq{"key": key}).
		Where(squirrel.Or{
			squirrel.Eq{"user_id": userID},
			squirrel.Eq{"user_id": nil},
		}).
		OrderBy("user_id NULLS LAST").
		Limit(1).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build resolve preference sql: %w", err)
	}

	var value string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&value); err != nil {
		if err == pgx.ErrNoRows {
			return "", repository.ErrNotFound
		}
		return "", fmt.Errorf("resolve preference %s: %w", key, err)
	}
	return value, nil
}
