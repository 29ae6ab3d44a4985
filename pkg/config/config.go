package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Admin        AdminConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Stripe       StripeConfig
	Anthropic    AnthropicConfig
	RapidAPI     RapidAPIConfig
	Fulfillment  FulfillmentConfig
	Encryption   EncryptionConfig
	Cron         CronConfig
	Webhooks     WebhooksConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadPassword reads only the argon2 cost settings, for tooling that runs
// without the rest of the service environment.
func LoadPassword() (PasswordConfig, error) {
	var cfg PasswordConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return PasswordConfig{}, fmt.Errorf("parsing password config: %w", err)
	}
	return cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"URGENCY_APP_ENV" required:"true"`
	Port         string   `envconfig:"URGENCY_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"URGENCY_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"URGENCY_LOG_WARN_STACK" default:"false"`
	LogFormat    string   `envconfig:"URGENCY_LOG_FORMAT" default:"json"`
	FrontendURL  string   `envconfig:"URGENCY_FRONTEND_URL" default:"http://localhost:3000"`
	CORSOrigins  []string `envconfig:"URGENCY_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"URGENCY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"URGENCY_DB_DSN"`
	Driver string `envconfig:"URGENCY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"URGENCY_DB_HOST"`
	LegacyPort     int    `envconfig:"URGENCY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"URGENCY_DB_USER"`
	LegacyPassword string `envconfig:"URGENCY_DB_PASSWORD"`
	LegacyName     string `envconfig:"URGENCY_DB_NAME"`
	LegacySSLMode  string `envconfig:"URGENCY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"URGENCY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"URGENCY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"URGENCY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"URGENCY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this at warn level. Zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"URGENCY_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"URGENCY_REDIS_URL"`
	Address      string        `envconfig:"URGENCY_REDIS_ADDR"`
	Password     string        `envconfig:"URGENCY_REDIS_PASSWORD"`
	DB           int           `envconfig:"URGENCY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"URGENCY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"URGENCY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"URGENCY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"URGENCY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"URGENCY_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"URGENCY_REDIS_KEY_PREFIX" default:"ue"`
}

// Configured reports whether a redis endpoint was provided.
func (r RedisConfig) Configured() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"URGENCY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"URGENCY_JWT_ISSUER" default:"urgency-engine"`
	ExpirationMinutes int    `envconfig:"URGENCY_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// AdminConfig holds the single operator account allowed into the admin API.
type AdminConfig struct {
	Email        string `envconfig:"URGENCY_ADMIN_EMAIL"`
	PasswordHash string `envconfig:"URGENCY_ADMIN_PASSWORD_HASH"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"URGENCY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"URGENCY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"URGENCY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"URGENCY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"URGENCY_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig throttles the unauthenticated surfaces: admin login and the storefront chat.
type RateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"URGENCY_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"URGENCY_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"URGENCY_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ChatWindow       time.Duration `envconfig:"URGENCY_RATE_LIMIT_CHAT_WINDOW" default:"1m"`
	ChatSessionLimit int           `envconfig:"URGENCY_RATE_LIMIT_CHAT_SESSION_LIMIT" default:"20"`
	ChatIPLimit      int           `envconfig:"URGENCY_RATE_LIMIT_CHAT_IP_LIMIT" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate    bool `envconfig:"URGENCY_AUTO_MIGRATE" default:"false"`
	InMemoryKV     bool `envconfig:"URGENCY_IN_MEMORY_KV" default:"false"`
	SeedTrendsDemo bool `envconfig:"URGENCY_SEED_TRENDS_DEMO" default:"false"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"URGENCY_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"URGENCY_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"URGENCY_STRIPE_ENV" default:"test"`
	Currency      string `envconfig:"URGENCY_STRIPE_CURRENCY" default:"usd"`

	// WebhookTolerance bounds the age of a signed delivery.
	WebhookTolerance  time.Duration `envconfig:"URGENCY_STRIPE_WEBHOOK_TOLERANCE" default:"5m"`
	MaxNetworkRetries int64         `envconfig:"URGENCY_STRIPE_MAX_NETWORK_RETRIES" default:"2"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type AnthropicConfig struct {
	APIKey    string        `envconfig:"URGENCY_ANTHROPIC_API_KEY"`
	Model     string        `envconfig:"URGENCY_ANTHROPIC_MODEL" default:"claude-3-haiku-20240307"`
	BaseURL   string        `envconfig:"URGENCY_ANTHROPIC_BASE_URL" default:"https://api.anthropic.com"`
	MaxTokens int           `envconfig:"URGENCY_ANTHROPIC_MAX_TOKENS" default:"1024"`
	Timeout   time.Duration `envconfig:"URGENCY_ANTHROPIC_TIMEOUT" default:"30s"`
}

type RapidAPIConfig struct {
	Key        string        `envconfig:"URGENCY_RAPIDAPI_KEY"`
	TikTokHost string        `envconfig:"URGENCY_RAPIDAPI_TIKTOK_HOST" default:"tiktok-scraper7.p.rapidapi.com"`
	Timeout    time.Duration `envconfig:"URGENCY_RAPIDAPI_TIMEOUT" default:"30s"`
}

type FulfillmentConfig struct {
	AutoFulfillEnabled     bool  `envconfig:"URGENCY_AUTO_FULFILL_ENABLED" default:"true"`
	MaxAutoOrderValueCents int64 `envconfig:"URGENCY_MAX_AUTO_ORDER_VALUE_CENTS" default:"10000"`
}

type EncryptionConfig struct {
	Secret string `envconfig:"URGENCY_ENCRYPTION_SECRET" required:"true"`
	Salt   string `envconfig:"URGENCY_ENCRYPTION_SALT" default:"urgency-engine-credentials"`
}

type CronConfig struct {
	FulfillmentQueueSchedule string        `envconfig:"URGENCY_CRON_FULFILLMENT_QUEUE" default:"0 */15 * * * *"`
	AnomalyAlertsSchedule    string        `envconfig:"URGENCY_CRON_ANOMALY_ALERTS" default:"0 0 * * * *"`
	TrendRefreshSchedule     string        `envconfig:"URGENCY_CRON_TREND_REFRESH" default:"0 0 */6 * * *"`
	LockTTL                  time.Duration `envconfig:"URGENCY_CRON_LOCK_TTL" default:"10m"`
	AlertRecipient           string        `envconfig:"URGENCY_CRON_ALERT_RECIPIENT" default:"admin"`
	// MetricsAddr serves /metrics from the worker when set, e.g. ":9091".
	MetricsAddr              string        `envconfig:"URGENCY_CRON_METRICS_ADDR"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"URGENCY_WEBHOOK_IDEMPOTENCY_TTL" default:"720h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
