package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	defaultMinPasswordLength   = 10
	defaultMinCharacterClasses = 3
	defaultMinZxcvbnScore      = 3
)

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return fmt.Errorf("password must be at least %d characters long", min)
		}
		return nil
	})
}

// RequireCharacterClassesRule ensures the password draws on at least min
// distinct classes (upper, lower, digit, symbol).
func RequireCharacterClassesRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if min <= 0 {
			return nil
		}

		var hasUpper, hasLower, hasDigit, hasSymbol bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				hasSymbol = true
			}
		}

		classes := 0
		for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
			if present {
				classes++
			}
		}
		if classes >= min {
			return nil
		}
		return fmt.Errorf("password must include at least %d character types", min)
	})
}

// RequireZxcvbnScoreRule enforces a minimum zxcvbn score to reject
// passwords that pass the structural rules but remain guessable.
func RequireZxcvbnScoreRule(minScore int, userInputs ...string) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if minScore <= 0 {
			return nil
		}
		if minScore > 4 {
			minScore = 4
		}
		result := zxcvbn.PasswordStrength(password, userInputs)
		if result.Score >= minScore {
			return nil
		}
		return fmt.Errorf("password is too weak; choose a more complex value")
	})
}

// ZxcvbnStrengthChecker applies a sequence of password rules and reports a
// boolean verdict. It implements port.StrengthChecker.
type ZxcvbnStrengthChecker struct {
	rules []PasswordRule
}

// NewStrengthChecker constructs a checker with the provided rules.
func NewStrengthChecker(rules ...PasswordRule) *ZxcvbnStrengthChecker {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &ZxcvbnStrengthChecker{rules: copied}
}

// DefaultStrengthChecker returns the built-in checker enforcing length,
// character class, and zxcvbn score requirements.
func DefaultStrengthChecker() *ZxcvbnStrengthChecker {
	return NewStrengthChecker(
		MinLengthRule(defaultMinPasswordLength),
		RequireCharacterClassesRule(defaultMinCharacterClasses),
		RequireZxcvbnScoreRule(defaultMinZxcvbnScore),
	)
}

// IsStrong reports whether the password satisfies every configured rule.
func (c *ZxcvbnStrengthChecker) IsStrong(password string) bool {
	return c.Explain(password) == nil
}

// Explain returns the first violated rule's error, or nil when the
// password passes. Callers wanting a user-facing reason use this; the
// guard itself only needs the boolean.
func (c *ZxcvbnStrengthChecker) Explain(password string) error {
	for _, rule := range c.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}
