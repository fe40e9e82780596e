package usecase

import (
	"context"
	"fmt"

	"github.com/arklim/social-platform-authguard/internal/core/port"
)

// PasswordAssessment is the outcome of evaluating a candidate password
// against strength and reuse policy.
type PasswordAssessment struct {
	Strong bool
	Reused bool
}

// PasswordPolicy sequences the external strength and hash-matching
// capabilities around a candidate password. It holds no state and performs
// no I/O of its own.
type PasswordPolicy struct {
	strength port.StrengthChecker
	hasher   port.PasswordHasher
}

// NewPasswordPolicy constructs a PasswordPolicy.
func NewPasswordPolicy(strength port.StrengthChecker, hasher port.PasswordHasher) *PasswordPolicy {
	return &PasswordPolicy{strength: strength, hasher: hasher}
}

// Evaluate assesses the candidate. An empty candidate models a form
// submission where the password field was untouched: it is strong by
// default and the strength checker is not invoked. The reuse check runs
// only when historyEnabled is set, matching the candidate against every
// stored hash through the hasher.
func (p *PasswordPolicy) Evaluate(candidate string, history []string, historyEnabled bool) (PasswordAssessment, error) {
	assessment := PasswordAssessment{Strong: true}
	if candidate == "" {
		return assessment, nil
	}

	assessment.Strong = p.strength.IsStrong(candidate)

	if historyEnabled {
		for _, hash := range history {
			match, err := p.hasher.Verify(candidate, hash)
			if err != nil {
				return PasswordAssessment{}, fmt.Errorf("match candidate against history: %w", err)
			}
			if match {
				assessment.Reused = true
				break
			}
		}
	}

	return assessment, nil
}

// EvaluateForUser loads the user's password history through the repository
// and evaluates the candidate. Used by the advisory callout path where only
// flags are wanted, never enforcement.
func (p *PasswordPolicy) EvaluateForUser(ctx context.Context, history port.PasswordHistoryRepository, userID, candidate string, historyEnabled bool) (PasswordAssessment, error) {
	var hashes []string
	if historyEnabled && candidate != "" {
		var err error
		hashes, err = history.ListHashes(ctx, userID)
		if err != nil {
			return PasswordAssessment{}, fmt.Errorf("list password history: %w", err)
		}
	}
	return p.Evaluate(candidate, hashes, historyEnabled)
}
