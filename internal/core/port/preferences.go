package port

import "context"

// Preference keys resolved per user through the platform preference chain.
const (
	PrefMaxPasswordAttempts      = "AUTHGUARD_MaxPasswordAttempts"
	PrefDaysToPasswordExpiration = "AUTHGUARD_DaysToPasswordExpiration"
)

// PreferenceResolver resolves deployment policy values scoped by the
// user's client, organization, and role context. An absent or malformed
// value is a configuration error, never a silent default.
type PreferenceResolver interface {
	Resolve(ctx context.Context, key string, userID string) (string, error)
}
