package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "MODAWEAR_DB_DSN"
	EnvDBHost = "MODAWEAR_DB_HOST"
	EnvDBUser = "MODAWEAR_DB_USER"
	EnvDBName = "MODAWEAR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Stripe        StripeConfig
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
	Env          string `envconfig:"MODAWEAR_APP_ENV" required:"true"`
	Port         string `envconfig:"MODAWEAR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MODAWEAR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MODAWEAR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MODAWEAR_DB_DSN"`
	Driver string `envconfig:"MODAWEAR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MODAWEAR_DB_HOST"`
	LegacyPort     int    `envconfig:"MODAWEAR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MODAWEAR_DB_USER"`
	LegacyPassword string `envconfig:"MODAWEAR_DB_PASSWORD"`
	LegacyName     string `envconfig:"MODAWEAR_DB_NAME"`
	LegacySSLMode  string `envconfig:"MODAWEAR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MODAWEAR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MODAWEAR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MODAWEAR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MODAWEAR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MODAWEAR_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MODAWEAR_REDIS_ADDR"`
	Password     string        `envconfig:"MODAWEAR_REDIS_PASSWORD"`
	DB           int           `envconfig:"MODAWEAR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MODAWEAR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MODAWEAR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MODAWEAR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MODAWEAR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MODAWEAR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MODAWEAR_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MODAWEAR_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MODAWEAR_JWT_EXPIRATION_MINUTES" default:"120"`
	RefreshTokenTTLMinutes int    `envconfig:"MODAWEAR_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MODAWEAR_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MODAWEAR_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MODAWEAR_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MODAWEAR_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MODAWEAR_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MODAWEAR_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MODAWEAR_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MODAWEAR_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"MODAWEAR_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"MODAWEAR_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"MODAWEAR_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"MODAWEAR_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries the shipping policy plus the redirect targets handed
// to the payment provider.
type CheckoutConfig struct {
	FreeShippingThreshold decimal.Decimal `envconfig:"MODAWEAR_FREE_SHIPPING_THRESHOLD" default:"100"`
	ShippingRate          decimal.Decimal `envconfig:"MODAWEAR_SHIPPING_RATE" default:"0.15"`
	SuccessURL            string          `envconfig:"MODAWEAR_CHECKOUT_SUCCESS_URL" required:"true"`
	CancelURL             string          `envconfig:"MODAWEAR_CHECKOUT_CANCEL_URL" required:"true"`
}

type StripeConfig struct {
	APIKey string `envconfig:"MODAWEAR_STRIPE_API_KEY"`
	Env    string `envconfig:"MODAWEAR_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
