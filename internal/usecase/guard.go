package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-authguard/internal/core/domain"
	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/repository"
)

const killReasonNewLogin = "superseded_by_new_login"

// GuardConfig carries the deployment-level policy values that are not
// resolved per user through the preference chain.
type GuardConfig struct {
	SessionCheckEnabled bool
	HistoryCheckEnabled bool
	ShowExpiryWarnings  bool
	NearExpiryGraceDays int
	SessionStaleGrace   time.Duration
}

// GuardMetrics receives counters for guard decisions. Implementations are
// optional; a nil metrics sink disables instrumentation.
type GuardMetrics interface {
	ObserveDecision(outcome string)
	ObserveLock()
	ObserveSessionsKilled(count int)
}

// Guard intercepts every authentication attempt and applies the lockout,
// password-lifecycle, and session-concurrency policies around the base
// authenticate primitive.
type Guard struct {
	cfg      GuardConfig
	users    port.UserRepository
	sessions port.SessionStore
	prefs    port.PreferenceResolver
	auth     port.Authenticator
	attempts port.LoginAttemptRepository
	events   port.EventPublisher
	metrics  GuardMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewGuard constructs a Guard. The attempts repository, event publisher,
// and metrics sink may be nil; the corresponding side channels are then
// skipped.
func NewGuard(
	cfg GuardConfig,
	users port.UserRepository,
	sessions port.SessionStore,
	prefs port.PreferenceResolver,
	auth port.Authenticator,
	attempts port.LoginAttemptRepository,
	events port.EventPublisher,
	metrics GuardMetrics,
	logger *zap.Logger,
) (*Guard, error) {
	if users == nil || sessions == nil || prefs == nil || auth == nil {
		return nil, fmt.Errorf("guard requires user repository, session store, preference resolver, and authenticator")
	}
	if cfg.NearExpiryGraceDays <= 0 {
		cfg.NearExpiryGraceDays = DefaultNearExpiryGraceDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		prefs:    prefs,
		auth:     auth,
		attempts: attempts,
		events:   events,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// WithClock overrides the guard's notion of "now". Intended for tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Authenticate runs one login attempt through the guard. The returned
// error is either a *Rejection carrying a structured, user-presentable
// reason, or the base authenticator's own failure. Unexpected collaborator
// failures are logged and reported as a generic rejection; side effects
// already persisted (an incremented counter, a flagged password) stay
// committed.
func (g *Guard) Authenticate(ctx context.Context, req port.LoginRequest) (*port.LoginResult, error) {
	result, err := g.authenticate(ctx, req)
	if err != nil {
		var rej *Rejection
		if errors.As(err, &rej) {
			g.observe(string(rej.Kind))
			g.recordAttempt(ctx, req, nil, false, string(rej.Kind))
			return nil, rej
		}
		return nil, err
	}
	g.observe("success")
	return result, nil
}

func (g *Guard) authenticate(ctx context.Context, req port.LoginRequest) (*port.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	user, err := g.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Unknown users skip all policy checks; the base
			// authenticator produces its own uniform failure.
			return g.auth.Authenticate(ctx, req)
		}
		g.logger.Error("lookup user", zap.String("username", username), zap.Error(err))
		return nil, unexpectedRejection()
	}

	if user.IsSystemAccount() {
		return g.auth.Authenticate(ctx, req)
	}

	if user.Locked {
		// Already-locked accounts are rejected before any attempt is
		// consumed, so repeating the call commits nothing new.
		return nil, lockedRejection()
	}

	credentialChecked := false
	credentialOK := false

	maxAttempts, rej := g.resolveMaxAttempts(ctx, user)
	if rej != nil {
		return nil, rej
	}

	if maxAttempts > 0 {
		credentialOK, err = g.auth.CheckCredentials(ctx, username, req.Password)
		if err != nil {
			g.logger.Error("check credentials", zap.String("user_id", user.ID), zap.Error(err))
			return nil, unexpectedRejection()
		}
		credentialChecked = true

		if rej := g.applyLockout(ctx, user, maxAttempts, credentialOK); rej != nil {
			return nil, rej
		}
	}

	if rej := g.applyExpiration(ctx, user); rej != nil {
		return nil, rej
	}

	var priorSessions []string
	killAfterAuth := false
	if g.cfg.SessionCheckEnabled {
		priorSessions, err = g.sweepAndList(ctx, user.ID)
		if err != nil {
			g.logger.Error("list active sessions", zap.String("user_id", user.ID), zap.Error(err))
			return nil, unexpectedRejection()
		}

		decision := ResolveConcurrency(priorSessions, user.AllowMultiSession)
		switch decision.Action {
		case ConcurrencyReject:
			return nil, multiLoginRejection(user.Username)
		case ConcurrencyKillAndAllow:
			killAfterAuth = true
		}
	}

	if credentialChecked && !credentialOK {
		// Unreachable once the lockout step ran, kept as a guard against
		// delegating a known-bad credential pair.
		return nil, unexpectedRejection()
	}

	result, err := g.auth.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	if killAfterAuth {
		g.killSupersededSessions(ctx, user, priorSessions)
	}

	if err := g.users.RecordLogin(ctx, user.ID, g.now()); err != nil {
		g.logger.Warn("record last login", zap.String("user_id", user.ID), zap.Error(err))
	}
	g.recordAttempt(ctx, req, &user.ID, true, "")

	return result, nil
}

// resolveMaxAttempts reads the lockout ceiling from the preference chain.
// A missing or malformed value fails closed.
func (g *Guard) resolveMaxAttempts(ctx context.Context, user *domain.User) (int, *Rejection) {
	raw, err := g.prefs.Resolve(ctx, port.PrefMaxPasswordAttempts, user.ID)
	if err != nil {
		g.logger.Error("resolve max password attempts", zap.String("user_id", user.ID), zap.Error(err))
		return 0, configRejection("max password attempts preference could not be resolved")
	}
	maxAttempts, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		g.logger.Error("parse max password attempts", zap.String("user_id", user.ID), zap.String("raw", raw), zap.Error(err))
		return 0, configRejection("max password attempts preference is not a number")
	}
	return maxAttempts, nil
}

// applyLockout runs the lockout tracker and persists its outcome. The
// failed-attempt increment and the lock comparison execute as one atomic
// repository statement so concurrent logins cannot lose increments.
func (g *Guard) applyLockout(ctx context.Context, user *domain.User, maxAttempts int, succeeded bool) *Rejection {
	decision := EvaluateLockout(user.FailedAttempts, maxAttempts, succeeded)
	if decision.Disabled {
		return nil
	}

	if succeeded {
		if decision.ShouldReset {
			if err := g.users.ResetAttempts(ctx, user.ID); err != nil {
				g.logger.Error("reset failed attempts", zap.String("user_id", user.ID), zap.Error(err))
				return unexpectedRejection()
			}
			user.FailedAttempts = 0
		}
		return nil
	}

	attempts, locked, err := g.users.RecordFailedAttempt(ctx, user.ID, maxAttempts)
	if err != nil {
		g.logger.Error("record failed attempt", zap.String("user_id", user.ID), zap.Error(err))
		return unexpectedRejection()
	}
	user.FailedAttempts = attempts
	user.Locked = locked

	if locked {
		g.logger.Info("user locked after repeated failed attempts",
			zap.String("user_id", user.ID),
			zap.Int("attempts", attempts))
		if g.metrics != nil {
			g.metrics.ObserveLock()
		}
		g.publishUserLocked(ctx, user, attempts)
		return lockedRejection()
	}

	return incorrectAttemptRejection(maxAttempts - attempts)
}

// applyExpiration resolves the validity window, flags expired passwords,
// and performs the one-time forced reset for new accounts. Expiration
// never blocks the login itself.
func (g *Guard) applyExpiration(ctx context.Context, user *domain.User) *Rejection {
	raw, err := g.prefs.Resolve(ctx, port.PrefDaysToPasswordExpiration, user.ID)
	if err != nil {
		g.logger.Error("resolve password validity days", zap.String("user_id", user.ID), zap.Error(err))
		return configRejection("password validity days preference could not be resolved")
	}
	validityDays, err := ParseValidityDays(raw)
	if err != nil {
		g.logger.Error("parse password validity days", zap.String("user_id", user.ID), zap.Error(err))
		return configRejection("password validity days preference is not a number")
	}

	now := g.now()
	deadline := ExpiryDeadline(user.LastPasswordChange, validityDays)

	if user.IsNewAccount {
		// First login of a new account forces a password reset exactly once.
		user.PasswordExpired = true
		user.IsNewAccount = false
		if err := g.users.Save(ctx, *user); err != nil {
			g.logger.Error("persist forced password reset", zap.String("user_id", user.ID), zap.Error(err))
			return unexpectedRejection()
		}
		g.publishPasswordExpired(ctx, user, deadline, true)
		return nil
	}

	if IsExpired(deadline, now) && !user.PasswordExpired {
		user.PasswordExpired = true
		if err := g.users.SetPasswordExpired(ctx, user.ID, true); err != nil {
			g.logger.Error("persist password expired flag", zap.String("user_id", user.ID), zap.Error(err))
			return unexpectedRejection()
		}
		g.publishPasswordExpired(ctx, user, deadline, false)
	}

	return nil
}

// sweepAndList reclaims stale sessions and returns the remaining active
// session ids ordered by creation time.
func (g *Guard) sweepAndList(ctx context.Context, userID string) ([]string, error) {
	sessions, err := g.sessions.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := g.now()
	ids := make([]string, 0, len(sessions))
	for _, session := range sessions {
		if session.IsStale(now, g.cfg.SessionStaleGrace) {
			if err := g.sessions.Deactivate(ctx, session.ID); err != nil {
				g.logger.Warn("reclaim stale session",
					zap.String("session_id", session.ID),
					zap.Error(err))
				// An unreclaimed stale session stays in the set so the
				// concurrency decision errs on the strict side.
				ids = append(ids, session.ID)
			}
			continue
		}
		ids = append(ids, session.ID)
	}
	return ids, nil
}

// killSupersededSessions re-reads the active set after the base auth step
// and deactivates every prior session not reproduced in it. A partial kill
// is logged as an anomaly and left for the next login's stale sweep.
func (g *Guard) killSupersededSessions(ctx context.Context, user *domain.User, before []string) {
	after, err := g.sessions.ListActive(ctx, user.ID)
	if err != nil {
		g.logger.Error("re-read active sessions", zap.String("user_id", user.ID), zap.Error(err))
		return
	}
	afterIDs := make([]string, 0, len(after))
	for _, session := range after {
		afterIDs = append(afterIDs, session.ID)
	}

	toKill := SurvivingSessions(before, afterIDs)
	if len(toKill) == 0 {
		return
	}

	killed := make([]string, 0, len(toKill))
	for _, sessionID := range toKill {
		if err := g.sessions.Deactivate(ctx, sessionID); err != nil {
			g.logger.Error("kill superseded session: partial kill anomaly",
				zap.String("user_id", user.ID),
				zap.String("session_id", sessionID),
				zap.Error(err))
			continue
		}
		g.logger.Debug("killed session", zap.String("session_id", sessionID))
		killed = append(killed, sessionID)
	}

	if len(killed) > 0 {
		if g.metrics != nil {
			g.metrics.ObserveSessionsKilled(len(killed))
		}
		g.publishSessionsKilled(ctx, user, killed)
	}
}

func (g *Guard) observe(outcome string) {
	if g.metrics != nil {
		g.metrics.ObserveDecision(outcome)
	}
}

// recordAttempt appends to the login audit trail. Failures are logged and
// swallowed; auditing never changes the guard's decision.
func (g *Guard) recordAttempt(ctx context.Context, req port.LoginRequest, userID *string, succeeded bool, reason string) {
	if g.attempts == nil {
		return
	}
	attempt := domain.LoginAttempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  strings.TrimSpace(req.Username),
		Succeeded: succeeded,
		Reason:    reason,
		IP:        req.IP,
		UserAgent: req.UserAgent,
		CreatedAt: g.now(),
	}
	if err := g.attempts.Record(ctx, attempt); err != nil {
		g.logger.Warn("record login attempt", zap.Error(err))
	}
}

func (g *Guard) publishUserLocked(ctx context.Context, user *domain.User, attempts int) {
	if g.events == nil {
		return
	}
	event := domain.UserLockedEvent{
		EventID:        uuid.NewString(),
		UserID:         user.ID,
		Username:       user.Username,
		FailedAttempts: attempts,
		LockedAt:       g.now(),
	}
	if err := g.events.PublishUserLocked(ctx, event); err != nil {
		g.logger.Warn("publish user locked event", zap.Error(err))
	}
}

func (g *Guard) publishPasswordExpired(ctx context.Context, user *domain.User, deadline time.Time, forced bool) {
	if g.events == nil {
		return
	}
	event := domain.PasswordExpiredEvent{
		EventID:   uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Deadline:  deadline,
		FlaggedAt: g.now(),
		Forced:    forced,
	}
	if err := g.events.PublishPasswordExpired(ctx, event); err != nil {
		g.logger.Warn("publish password expired event", zap.Error(err))
	}
}

func (g *Guard) publishSessionsKilled(ctx context.Context, user *domain.User, killed []string) {
	if g.events == nil {
		return
	}
	event := domain.SessionsKilledEvent{
		EventID:    uuid.NewString(),
		UserID:     user.ID,
		SessionIDs: killed,
		Reason:     killReasonNewLogin,
		KilledAt:   g.now(),
	}
	if err := g.events.PublishSessionsKilled(ctx, event); err != nil {
		g.logger.Warn("publish sessions killed event", zap.Error(err))
	}
}
