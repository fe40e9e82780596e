package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultNearExpiryGraceDays is the warning window before the password
// expiration deadline.
const DefaultNearExpiryGraceDays = 7

// ExpiryDeadline computes the password expiration instant: last change plus
// the validity window in calendar days. Calendar arithmetic keeps the
// deadline aligned with human expectations across DST boundaries.
func ExpiryDeadline(lastChange time.Time, validityDays int) time.Time {
	return lastChange.AddDate(0, 0, validityDays)
}

// RemainingDays returns the whole days between now and the deadline,
// wrapped modulo 365. The wrap mirrors the platform's historical display
// behavior for windows far exceeding a year.
func RemainingDays(deadline, now time.Time) int {
	return int(deadline.Sub(now).Hours()/24) % 365
}

// RemainingHours returns the whole hours between now and the deadline
// modulo 24, used when less than a day remains.
func RemainingHours(deadline, now time.Time) int {
	return int(deadline.Sub(now).Hours()) % 24
}

// IsExpired reports whether the deadline is strictly before now.
func IsExpired(deadline, now time.Time) bool {
	return deadline.Before(now)
}

// IsNearExpiry reports whether the password is within the warning window:
// still valid but with no more than graceDays remaining.
func IsNearExpiry(deadline, now time.Time, graceDays int) bool {
	return RemainingDays(deadline, now) <= graceDays
}

// ParseValidityDays parses the raw preference value of the password
// validity window. An empty or unparseable value is a configuration
// error; the guard fails closed instead of treating the password as
// never-expiring.
func ParseValidityDays(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("password validity days preference is empty")
	}
	days, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse password validity days %q: %w", raw, err)
	}
	return days, nil
}
