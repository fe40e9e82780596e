package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

func TestUserRepository_RecordFailedAttempt_IncrementsAndLocks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{"failed_attempts", "locked"}).
		AddRow(3, true)

	mock.ExpectQuery(`UPDATE authguard\.users\s+SET failed_attempts = failed_attempts \+ 1,\s+locked = locked OR \(failed_attempts \+ 1 >= \$2\)`).
		WithArgs("user-1", 3).
		WillReturnRows(rows)

	attempts, locked, err := repo.RecordFailedAttempt(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("RecordFailedAttempt returned error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if !locked {
		t.Fatal("expected locked to be true")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_RecordFailedAttempt_BelowCeiling(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	rows := pgxmock.NewRows([]string{"failed_attempts", "locked"}).
		AddRow(1, false)

	mock.ExpectQuery(`UPDATE authguard\.users`).
		WithArgs("user-1", 3).
		WillReturnRows(rows)

	attempts, locked, err := repo.RecordFailedAttempt(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("RecordFailedAttempt returned error: %v", err)
	}
	if attempts != 1 || locked {
		t.Fatalf("expected (1, false), got (%d, %v)", attempts, locked)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_RecordFailedAttempt_UnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`UPDATE authguard\.users`).
		WithArgs("ghost", 3).
		WillReturnError(pgx.ErrNoRows)

	_, _, err = repo.RecordFailedAttempt(context.Background(), "ghost", 3)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	registeredAt := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	lastChange := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(userColumns).
		AddRow("user-1", "alice", "argon2id$hash", true, false, 1, false, false, true, registeredAt, nil, lastChange)

	mock.ExpectQuery(`SELECT .+ FROM authguard\.users WHERE`).
		WithArgs(true, "alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user.ID != "user-1" || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.FailedAttempts != 1 || user.Locked {
		t.Fatalf("unexpected lockout state: %+v", user)
	}
	if user.LastLogin != nil {
		t.Fatalf("expected nil last login, got %v", user.LastLogin)
	}
	if !user.LastPasswordChange.Equal(lastChange) {
		t.Fatalf("unexpected last password change: %v", user.LastPasswordChange)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByUsername_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM authguard\.users WHERE`).
		WithArgs(true, "ghost").
		WillReturnError(pgx.ErrNoRows)

	if _, err := repo.GetByUsername(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_Save_UnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE authguard\.users SET`).
		WithArgs(false, 0, false, false, true, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	user := testRepoUser("ghost")
	if err := repo.Save(context.Background(), user); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func testRepoUser(id string) domain.User {
	return domain.User{
		ID:                 id,
		Username:           "ghost",
		PasswordHash:       "argon2id$hash",
		IsActive:           true,
		AllowMultiSession:  true,
		RegisteredAt:       time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		LastPasswordChange: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestUserRepository_ResetAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE authguard\.users SET failed_attempts = \$1`).
		WithArgs(0, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.ResetAttempts(context.Background(), "user-1"); err != nil {
		t.Fatalf("ResetAttempts returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
