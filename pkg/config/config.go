package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Accrual      AccrualConfig
	Distribution DistributionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Accrual.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INVESTRA_APP_ENV" required:"true"`
	Port         string `envconfig:"INVESTRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INVESTRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INVESTRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"INVESTRA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"INVESTRA_DB_DSN"`
	Driver string `envconfig:"INVESTRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INVESTRA_DB_HOST"`
	LegacyPort     int    `envconfig:"INVESTRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVESTRA_DB_USER"`
	LegacyPassword string `envconfig:"INVESTRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVESTRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVESTRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INVESTRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVESTRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVESTRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVESTRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INVESTRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INVESTRA_REDIS_ADDR"`
	Password     string        `envconfig:"INVESTRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVESTRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVESTRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVESTRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVESTRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVESTRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVESTRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"INVESTRA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"INVESTRA_AUTO_MIGRATE" default:"false"`
}

// AccrualConfig drives the monthly profit-share worker.
type AccrualConfig struct {
	Interval           time.Duration `envconfig:"INVESTRA_ACCRUAL_INTERVAL" default:"24h"`
	LockTTL            time.Duration `envconfig:"INVESTRA_ACCRUAL_LOCK_TTL" default:"1h"`
	MonthlyRatePercent string        `envconfig:"INVESTRA_ACCRUAL_MONTHLY_RATE" default:"2.5"`
}

func (a AccrualConfig) validate() error {
	if _, err := decimal.NewFromString(a.MonthlyRatePercent); err != nil {
		return fmt.Errorf("invalid monthly accrual rate %q: %w", a.MonthlyRatePercent, err)
	}
	return nil
}

// MonthlyRate returns the default monthly profit-share rate as a decimal percentage.
func (a AccrualConfig) MonthlyRate() decimal.Decimal {
	rate, err := decimal.NewFromString(a.MonthlyRatePercent)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// DistributionConfig tunes the sale distribution engine.
type DistributionConfig struct {
	SaleLockTTL time.Duration `envconfig:"INVESTRA_SALE_LOCK_TTL" default:"2m"`
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
