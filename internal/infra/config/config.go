package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	Postgres  PostgresSettings  `mapstructure:"postgres"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Guard     GuardSettings     `mapstructure:"guard"`
	Throttle  ThrottleSettings  `mapstructure:"throttle"`
	Session   SessionSettings   `mapstructure:"session"`
	Argon2    Argon2Settings    `mapstructure:"argon2"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and the preference cache
type RedisSettings struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	DB                    int           `mapstructure:"db"`
	Password              string        `mapstructure:"password"`
	TLSEnabled            bool          `mapstructure:"tls_enabled"`
	PreferenceCachePrefix string        `mapstructure:"preference_cache_prefix"`
	PreferenceCacheTTL    time.Duration `mapstructure:"preference_cache_ttl"`
}

// KafkaSettings configures Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// GuardSettings configures the authentication guard policy toggles.
type GuardSettings struct {
	SessionCheckEnabled bool          `mapstructure:"session_check_enabled"`
	HistoryCheckEnabled bool          `mapstructure:"history_check_enabled"`
	ShowExpiryWarnings  bool          `mapstructure:"show_expiry_warnings"`
	NearExpiryGraceDays int           `mapstructure:"near_expiry_grace_days"`
	SessionStaleGrace   time.Duration `mapstructure:"session_stale_grace"`
}

// ThrottleSettings configures the IP-level sliding-window login throttle.
type ThrottleSettings struct {
	WindowDuration   time.Duration `mapstructure:"window_duration"`
	LoginMaxAttempts int           `mapstructure:"login_max_attempts"`
	KeyPrefix        string        `mapstructure:"key_prefix"`
}

// SessionSettings configures the base login flow's session tokens.
type SessionSettings struct {
	SigningKey string        `mapstructure:"signing_key"`
	Issuer     string        `mapstructure:"issuer"`
	TTL        time.Duration `mapstructure:"ttl"`
}

// Argon2Settings configures Argon2id password hashing parameters
type Argon2Settings struct {
	Memory      uint32 `mapstructure:"memory"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("AUTHGUARD")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.preference_cache_prefix",
		"redis.preference_cache_ttl",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"guard.session_check_enabled",
		"guard.history_check_enabled",
		"guard.show_expiry_warnings",
		"guard.near_expiry_grace_days",
		"guard.session_stale_grace",
		"throttle.window_duration",
		"throttle.login_max_attempts",
		"throttle.key_prefix",
		"session.signing_key",
		"session.issuer",
		"session.ttl",
		"argon2.memory",
		"argon2.iterations",
		"argon2.parallelism",
		"argon2.salt_length",
		"argon2.key_length",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "authguard-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "authguard")
	v.SetDefault("postgres.password", "authguard_password")
	v.SetDefault("postgres.database", "authguard")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.preference_cache_prefix", "authguard:pref")
	v.SetDefault("redis.preference_cache_ttl", "30s")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic_prefix", "authguard")
	v.SetDefault("kafka.async", true)

	v.SetDefault("guard.session_check_enabled", true)
	v.SetDefault("guard.history_check_enabled", true)
	v.SetDefault("guard.show_expiry_warnings", true)
	v.SetDefault("guard.near_expiry_grace_days", 7)
	v.SetDefault("guard.session_stale_grace", "30m")

	v.SetDefault("throttle.window_duration", "1m")
	v.SetDefault("throttle.login_max_attempts", 10)
	v.SetDefault("throttle.key_prefix", "authguard:throttle")

	v.SetDefault("session.signing_key", "")
	v.SetDefault("session.issuer", "authguard-service")
	v.SetDefault("session.ttl", "12h")

	v.SetDefault("argon2.memory", 65536) // 64 MB
	v.SetDefault("argon2.iterations", 3)
	v.SetDefault("argon2.parallelism", 4)
	v.SetDefault("argon2.salt_length", 16)
	v.SetDefault("argon2.key_length", 32)

}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "AUTHGUARD_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
