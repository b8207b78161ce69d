package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Email         EmailConfig
	Uploads       UploadsConfig
	Cron          CronConfig
	AuthRateLimit AuthRateLimitConfig
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

type AppConfig struct {
	Env          string `envconfig:"RISHTA_APP_ENV" required:"true"`
	Port         string `envconfig:"RISHTA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RISHTA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RISHTA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RISHTA_DB_DSN"`
	Driver string `envconfig:"RISHTA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RISHTA_DB_HOST"`
	LegacyPort     int    `envconfig:"RISHTA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RISHTA_DB_USER"`
	LegacyPassword string `envconfig:"RISHTA_DB_PASSWORD"`
	LegacyName     string `envconfig:"RISHTA_DB_NAME"`
	LegacySSLMode  string `envconfig:"RISHTA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RISHTA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RISHTA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RISHTA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RISHTA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RISHTA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RISHTA_REDIS_ADDR"`
	Password     string        `envconfig:"RISHTA_REDIS_PASSWORD"`
	DB           int           `envconfig:"RISHTA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RISHTA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RISHTA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RISHTA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RISHTA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RISHTA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RISHTA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RISHTA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RISHTA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenDays  int    `envconfig:"RISHTA_JWT_REFRESH_TOKEN_DAYS" default:"30"`
}

// RefreshTokenTTL converts the configured refresh window into a duration.
func (c JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RISHTA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RISHTA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RISHTA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RISHTA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RISHTA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RISHTA_AUTH_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"RISHTA_AUTH_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"RISHTA_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"RISHTA_AUTH_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"RISHTA_AUTH_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"RISHTA_AUTH_RL_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RISHTA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RISHTA_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"RISHTA_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"RISHTA_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"RISHTA_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type EmailConfig struct {
	SMTPHost    string `envconfig:"RISHTA_SMTP_HOST"`
	SMTPPort    int    `envconfig:"RISHTA_SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"RISHTA_SMTP_USER"`
	SMTPPass    string `envconfig:"RISHTA_SMTP_PASS"`
	FromAddress string `envconfig:"RISHTA_EMAIL_FROM" default:"no-reply@rishtahub.com"`
	Enabled     bool   `envconfig:"RISHTA_EMAIL_ENABLED" default:"false"`
}

type UploadsConfig struct {
	RootDir     string `envconfig:"RISHTA_UPLOAD_DIR" default:"./uploads"`
	MaxUploadMB int    `envconfig:"RISHTA_MAX_UPLOAD_MB" default:"10"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"RISHTA_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"RISHTA_CRON_LOCK_TTL" default:"2h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
