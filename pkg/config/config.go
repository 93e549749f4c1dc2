package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "WH"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WH_DB_DSN"
	EnvDBHost = "WH_DB_HOST"
	EnvDBUser = "WH_DB_USER"
	EnvDBName = "WH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Ledger        LedgerConfig
	Tenant        TenantConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"WH_APP_ENV" required:"true"`
	Port         string `envconfig:"WH_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WH_DB_DSN"`
	Driver string `envconfig:"WH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WH_DB_HOST"`
	LegacyPort     int    `envconfig:"WH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WH_DB_USER"`
	LegacyPassword string `envconfig:"WH_DB_PASSWORD"`
	LegacyName     string `envconfig:"WH_DB_NAME"`
	LegacySSLMode  string `envconfig:"WH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WH_REDIS_URL"`
	Address      string        `envconfig:"WH_REDIS_ADDR"`
	Password     string        `envconfig:"WH_REDIS_PASSWORD"`
	DB           int           `envconfig:"WH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WH_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WH_JWT_ISSUER" default:"wholesale-backend"`
	ExpirationMinutes int    `envconfig:"WH_JWT_EXPIRATION_MINUTES" default:"720"`
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WH_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WH_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WH_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WH_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WH_ARGON_KEY_LEN" default:"32"`
}

// LedgerConfig governs debt-posting policy.
type LedgerConfig struct {
	EnforceCreditLimit bool `envconfig:"WH_LEDGER_ENFORCE_CREDIT_LIMIT" default:"true"`
}

// TenantConfig governs merchant onboarding defaults.
type TenantConfig struct {
	TrialDays int `envconfig:"WH_TENANT_TRIAL_DAYS" default:"30"`
}

// AuthRateLimitConfig bounds login and register attempts per client IP.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"WH_AUTH_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int64         `envconfig:"WH_AUTH_LOGIN_IP_LIMIT" default:"10"`
	RegisterWindow  time.Duration `envconfig:"WH_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit int64         `envconfig:"WH_AUTH_REGISTER_IP_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WH_AUTO_MIGRATE" default:"false"`
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
