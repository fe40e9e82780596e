package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

func TestPreferenceRepository_Resolve_UserRowWins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPreferenceRepository(mock)

	rows := pgxmock.NewRows([]string{"value"}).AddRow("5")

	mock.ExpectQuery(`SELECT value FROM authguard\.preferences WHERE .+ ORDER BY user_id NULLS LAST LIMIT 1`).
		WithArgs(port.PrefMaxPasswordAttempts, "user-1").
		WillReturnRows(rows)

	value, err := repo.Resolve(context.Background(), port.PrefMaxPasswordAttempts, "user-1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if value != "5" {
		t.Fatalf("expected value 5, got %q", value)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPreferenceRepository_Resolve_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewPreferenceRepository(mock)

	mock.ExpectQuery(`SELECT value FROM authguard\.preferences`).
		WithArgs(port.PrefDaysToPasswordExpiration, "user-1").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.Resolve(context.Background(), port.PrefDaysToPasswordExpiration, "user-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
