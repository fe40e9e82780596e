package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

type authUserRepo struct {
	user *domain.User
}

func (r *authUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		u := *r.user
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *authUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.user != nil && r.user.Username == username {
		u := *r.user
		return &u, nil
	}
	return nil, repository.ErrNotFound
}

func (r *authUserRepo) Create(ctx context.Context, user domain.User) error { return nil }
func (r *authUserRepo) Save(ctx context.Context, user domain.User) error   { return nil }

func (r *authUserRepo) RecordFailedAttempt(ctx context.Context, userID string, maxAttempts int) (int, bool, error) {
	return 0, false, nil
}

func (r *authUserRepo) ResetAttempts(ctx context.Context, userID string) error { return nil }

func (r *authUserRepo) SetPasswordExpired(ctx context.Context, userID string, expired bool) error {
	return nil
}

func (r *authUserRepo) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return nil
}

func (r *authUserRepo) UpdatePassword(ctx context.Context, userID, hash string, at time.Time) error {
	return nil
}

type capturingSessionWriter struct {
	created []domain.Session
	fail    error
}

func (w *capturingSessionWriter) Create(ctx context.Context, session domain.Session) error {
	if w.fail != nil {
		return w.fail
	}
	w.created = append(w.created, session)
	return nil
}

// plainHasher treats the stored hash as the plaintext password.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return password, nil }

func (plainHasher) Verify(password, encoded string) (bool, error) {
	return password == encoded, nil
}

func newTestAuthenticator(t *testing.T, repo *authUserRepo, sessions *capturingSessionWriter) *BaseAuthenticator {
	t.Helper()
	auth, err := NewBaseAuthenticator(repo, sessions, plainHasher{}, []byte("test-signing-key"), "authguard-test", time.Hour)
	if err != nil {
		t.Fatalf("construct authenticator: %v", err)
	}
	return auth
}

func TestAuthenticateIssuesParsableToken(t *testing.T) {
	repo := &authUserRepo{user: &domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "s3cret",
		IsActive:     true,
	}}
	sessions := &capturingSessionWriter{}
	auth := newTestAuthenticator(t, repo, sessions)

	result, err := auth.Authenticate(context.Background(), port.LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected 1 session created, got %d", len(sessions.created))
	}
	created := sessions.created[0]
	if created.ID != result.SessionID {
		t.Fatalf("session id mismatch: stored %q, returned %q", created.ID, result.SessionID)
	}
	if !created.Active || created.UserID != "user-1" || created.Identifier != "alice" {
		t.Fatalf("unexpected session record: %+v", created)
	}

	sessionID, userID, err := auth.ParseSessionToken(result.SessionToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if sessionID != result.SessionID {
		t.Fatalf("token names session %q, expected %q", sessionID, result.SessionID)
	}
	if userID != "user-1" {
		t.Fatalf("token names user %q, expected user-1", userID)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	repo := &authUserRepo{user: &domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "s3cret",
	}}
	sessions := &capturingSessionWriter{}
	auth := newTestAuthenticator(t, repo, sessions)

	cases := []port.LoginRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "s3cret"},
	}
	for _, req := range cases {
		if _, err := auth.Authenticate(context.Background(), req); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("login %q/%q: expected ErrInvalidCredentials, got %v", req.Username, req.Password, err)
		}
	}
	if len(sessions.created) != 0 {
		t.Fatalf("rejected logins must not create sessions, got %d", len(sessions.created))
	}
}

func TestAuthenticatePropagatesSessionWriteFailure(t *testing.T) {
	repo := &authUserRepo{user: &domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "s3cret",
	}}
	sessions := &capturingSessionWriter{fail: errors.New("connection reset")}
	auth := newTestAuthenticator(t, repo, sessions)

	if _, err := auth.Authenticate(context.Background(), port.LoginRequest{Username: "alice", Password: "s3cret"}); err == nil {
		t.Fatal("expected error when session write fails")
	}
}

func TestCheckCredentials(t *testing.T) {
	repo := &authUserRepo{user: &domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "s3cret",
	}}
	auth := newTestAuthenticator(t, repo, &capturingSessionWriter{})

	ok, err := auth.CheckCredentials(context.Background(), "alice", "s3cret")
	if err != nil || !ok {
		t.Fatalf("valid credentials: ok=%v err=%v", ok, err)
	}
	ok, err = auth.CheckCredentials(context.Background(), "alice", "wrong")
	if err != nil || ok {
		t.Fatalf("wrong password: ok=%v err=%v", ok, err)
	}
	ok, err = auth.CheckCredentials(context.Background(), "nobody", "s3cret")
	if err != nil || ok {
		t.Fatalf("unknown user: ok=%v err=%v", ok, err)
	}
}

func TestParseSessionTokenRejectsForeignSignature(t *testing.T) {
	repo := &authUserRepo{user: &domain.User{
		ID:           "user-1",
		Username:     "alice",
		PasswordHash: "s3cret",
	}}
	auth := newTestAuthenticator(t, repo, &capturingSessionWriter{})

	other, err := NewBaseAuthenticator(repo, &capturingSessionWriter{}, plainHasher{}, []byte("other-key"), "authguard-test", time.Hour)
	if err != nil {
		t.Fatalf("construct authenticator: %v", err)
	}
	result, err := other.Authenticate(context.Background(), port.LoginRequest{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, _, err := auth.ParseSessionToken(result.SessionToken); err == nil {
		t.Fatal("token signed with a foreign key must not validate")
	}
}
