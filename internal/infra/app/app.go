package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arklim/social-platform-authguard/internal/core/port"
	"github.com/arklim/social-platform-authguard/internal/infra/config"
	"github.com/arklim/social-platform-authguard/internal/infra/database"
	kafkainfra "github.com/arklim/social-platform-authguard/internal/infra/kafka"
	"github.com/arklim/social-platform-authguard/internal/infra/logger"
	redisinfra "github.com/arklim/social-platform-authguard/internal/infra/redis"
	"github.com/arklim/social-platform-authguard/internal/infra/security"
	"github.com/arklim/social-platform-authguard/internal/infra/telemetry"
	postgresrepo "github.com/arklim/social-platform-authguard/internal/repository/postgres"
	redisrepo "github.com/arklim/social-platform-authguard/internal/repository/redis"
	"github.com/arklim/social-platform-authguard/internal/transport/http/middleware"
	"github.com/arklim/social-platform-authguard/internal/transport/http/routes"
	"github.com/arklim/social-platform-authguard/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	users := postgresrepo.NewUserRepository(pool)
	sessions := postgresrepo.NewSessionRepository(pool)
	history := postgresrepo.NewPasswordHistoryRepository(pool)
	attempts := postgresrepo.NewLoginAttemptRepository(pool)
	preferences := postgresrepo.NewPreferenceRepository(pool)

	prefResolver, err := redisrepo.NewCachedPreferenceResolver(
		redisClient.Client(), preferences, cfg.Redis.PreferenceCachePrefix, cfg.Redis.PreferenceCacheTTL)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init preference cache: %w", err)
	}

	hasher, err := security.NewArgon2Hasher(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init argon2 hasher: %w", err)
	}

	baseAuth, err := security.NewBaseAuthenticator(
		users, sessions, hasher,
		[]byte(cfg.Session.SigningKey), cfg.Session.Issuer, cfg.Session.TTL)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init base authenticator: %w", err)
	}

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			kafkaProducer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	guardCfg := usecase.GuardConfig{
		SessionCheckEnabled: cfg.Guard.SessionCheckEnabled,
		HistoryCheckEnabled: cfg.Guard.HistoryCheckEnabled,
		ShowExpiryWarnings:  cfg.Guard.ShowExpiryWarnings,
		NearExpiryGraceDays: cfg.Guard.NearExpiryGraceDays,
		SessionStaleGrace:   cfg.Guard.SessionStaleGrace,
	}

	guard, err := usecase.NewGuard(guardCfg, users, sessions, prefResolver, baseAuth, attempts, eventPublisher, provider, log)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init guard: %w", err)
	}

	passwordPolicy := usecase.NewPasswordPolicy(security.DefaultStrengthChecker(), hasher)

	credentialGuard, err := usecase.NewCredentialChangeGuard(guardCfg, passwordPolicy, history, hasher, eventPublisher, log)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init credential change guard: %w", err)
	}

	passwordService, err := usecase.NewPasswordService(users, hasher, credentialGuard, log)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init password service: %w", err)
	}

	loginHook := usecase.NewLoginHook(guardCfg, users, prefResolver, log)
	widgetHook := usecase.NewPasswordWidgetHook(guardCfg, passwordPolicy, history, log)

	throttleWindow := cfg.Throttle.WindowDuration
	if throttleWindow <= 0 {
		throttleWindow = time.Minute
	}
	throttleStore := redisrepo.NewLoginThrottleRepository(redisClient.Client(), redisrepo.LoginThrottleConfig{
		KeyPrefix: cfg.Throttle.KeyPrefix,
		TTL:       throttleWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(throttleStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		TokenParser: baseAuth,
		Users:       users,
		Sessions:    sessions,
		Toucher:     sessions,
		Database:    pool,
		Cache:       redisClient,
		HTTPMetrics: httpMetrics,
		Services: routes.ServiceSet{
			Guard:      guard,
			LoginHook:  loginHook,
			WidgetHook: widgetHook,
			Passwords:  passwordService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting authguard API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
