package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}

// StrengthChecker decides whether a candidate password is strong enough.
type StrengthChecker interface {
	IsStrong(password string) bool
}
