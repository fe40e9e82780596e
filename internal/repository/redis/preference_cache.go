package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

const (
	defaultPreferenceKeyPrefix = "authguard:pref"
	defaultPreferenceTTL       = 30 * time.Second

	// Absent preferences are cached too so a missing row does not turn
	// every login into a database round trip.
	absentPreferenceMarker = "\x00absent"
)

// CachedPreferenceResolver decorates a PreferenceResolver with a Redis
// read-through cache. Policy preferences change rarely but are read on
// every authentication attempt.
type CachedPreferenceResolver struct {
	client   *red.Client
	delegate port.PreferenceResolver
	prefix   string
	ttl      time.Duration
}

// NewCachedPreferenceResolver wires the cache in front of the delegate.
// Zero or negative ttl falls back to a short default so stale policy
// values cannot persist unbounded.
func NewCachedPreferenceResolver(client *red.Client, delegate port.PreferenceResolver, prefix string, ttl time.Duration) (*CachedPreferenceResolver, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if delegate == nil {
		return nil, errors.New("delegate resolver is required")
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = defaultPreferenceKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultPreferenceTTL
	}

	return &CachedPreferenceResolver{
		client:   client,
		delegate: delegate,
		prefix:   trimmedPrefix,
		ttl:      ttl,
	}, nil
}

// Resolve returns the cached value when present, otherwise consults the
// delegate and caches the outcome. Cache failures degrade to delegate
// reads; they never block resolution.
func (r *CachedPreferenceResolver) Resolve(ctx context.Context, key, userID string) (string, error) {
	cacheKey := r.cacheKey(key, userID)

	cached, err := r.client.Get(ctx, cacheKey).Result()
	if err == nil {
		if cached == absentPreferenceMarker {
			return "", repository.ErrNotFound
		}
		return cached, nil
	}
	if err != red.Nil {
		// Fall through to the delegate; the cache is an optimization.
		return r.resolveAndStore(ctx, cacheKey, key, userID)
	}

	return r.resolveAndStore(ctx, cacheKey, key, userID)
}

func (r *CachedPreferenceResolver) resolveAndStore(ctx context.Context, cacheKey, key, userID string) (string, error) {
	value, err := r.delegate.Resolve(ctx, key, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = r.client.Set(ctx, cacheKey, absentPreferenceMarker, r.ttl).Err()
		}
		return "", err
	}

	_ = r.client.Set(ctx, cacheKey, value, r.ttl).Err()
	return value, nil
}

// Invalidate drops the cached entry for the key and user, used after a
// preference update.
func (r *CachedPreferenceResolver) Invalidate(ctx context.Context, key, userID string) error {
	if err := r.client.Del(ctx, r.cacheKey(key, userID)).Err(); err != nil {
		return fmt.Errorf("redis delete preference cache: %w", err)
	}
	return nil
}

func (r *CachedPreferenceResolver) cacheKey(key, userID string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, key, userID)
}
