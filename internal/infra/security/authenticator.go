package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

// ErrInvalidCredentials indicates the provided username or password are
// incorrect. The message is uniform for unknown users and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionWriter is the session-creation capability the base authenticator
// needs on top of the read-only port.SessionStore the guard uses.
type SessionWriter interface {
	Create(ctx context.Context, session domain.Session) error
}

// BaseAuthenticator is the credential verification and session
// establishment primitive the guard wraps. It implements
// port.Authenticator.
type BaseAuthenticator struct {
	users      port.UserRepository
	sessions   SessionWriter
	hasher     port.PasswordHasher
	signingKey []byte
	issuer     string
	sessionTTL time.Duration
}

// NewBaseAuthenticator constructs a BaseAuthenticator.
func NewBaseAuthenticator(users port.UserRepository, sessions SessionWriter, hasher port.PasswordHasher, signingKey []byte, issuer string, sessionTTL time.Duration) (*BaseAuthenticator, error) {
	if users == nil || sessions == nil || hasher == nil {
		return nil, fmt.Errorf("base authenticator requires user repository, session writer, and hasher")
	}
	if len(signingKey) == 0 {
		return nil, fmt.Errorf("base authenticator requires a signing key")
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &BaseAuthenticator{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		signingKey: signingKey,
		issuer:     issuer,
		sessionTTL: sessionTTL,
	}, nil
}

// CheckCredentials verifies the username/password pair without creating a
// session.
func (a *BaseAuthenticator) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}
	ok, err := a.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return ok, nil
}

// Authenticate verifies the credentials, persists a new session record,
// and returns a signed session token.
func (a *BaseAuthenticator) Authenticate(ctx context.Context, req port.LoginRequest) (*port.LoginResult, error) {
	user, err := a.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := a.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	ping := now
	session := domain.Session{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		Identifier: user.Username,
		Active:     true,
		CreatedAt:  now,
		LastPing:   &ping,
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    a.issuer,
		ID:        session.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.sessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &port.LoginResult{SessionID: session.ID, SessionToken: signed}, nil
}

// ParseSessionToken validates a session token and returns the session id
// and user id it names.
func (a *BaseAuthenticator) ParseSessionToken(raw string) (sessionID, userID string, err error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.signingKey, nil
	}, jwt.WithIssuer(a.issuer))
	if err != nil || !parsed.Valid {
		return "", "", fmt.Errorf("invalid session token")
	}
	if claims.ID == "" {
		return "", "", fmt.Errorf("session token carries no session id")
	}
	return claims.ID, claims.Subject, nil
}
