package port

import "context"

// LoginRequest carries the credentials of one authentication attempt.
type LoginRequest struct {
	Username  string
	Password  string
	IP        *string
	UserAgent *string
}

// LoginResult is the outcome of the base authentication primitive.
type LoginResult struct {
	SessionID    string
	SessionToken string
}

// Authenticator is the base authenticate primitive the guard wraps. It
// performs the actual credential verification and session establishment.
type Authenticator interface {
	Authenticate(ctx context.Context, req LoginRequest) (*LoginResult, error)
	// CheckCredentials verifies the username/password pair without
	// establishing a session. Used by the lockout step, which must know
	// success or failure before the session is created.
	CheckCredentials(ctx context.Context, username, password string) (bool, error)
}
