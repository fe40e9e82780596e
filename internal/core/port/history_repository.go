package port

import (
	"context"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
)

// PasswordHistoryRepository reads and appends the per-user password history
// used for reuse prevention. The history is append-only.
type PasswordHistoryRepository interface {
	ListHashes(ctx context.Context, userID string) ([]string, error)
	Append(ctx context.Context, entry domain.UserPasswordHistory) error
}
