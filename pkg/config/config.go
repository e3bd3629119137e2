package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Billing BillingConfig
	Sweep   SweepConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Billing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FORATASK_APP_ENV" required:"true"`
	Port         string `envconfig:"FORATASK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FORATASK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FORATASK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FORATASK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"FORATASK_DB_DSN"`

	Host     string `envconfig:"FORATASK_DB_HOST"`
	Port     int    `envconfig:"FORATASK_DB_PORT" default:"5432"`
	User     string `envconfig:"FORATASK_DB_USER"`
	Password string `envconfig:"FORATASK_DB_PASSWORD"`
	Name     string `envconfig:"FORATASK_DB_NAME"`
	SSLMode  string `envconfig:"FORATASK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FORATASK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FORATASK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FORATASK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FORATASK_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"FORATASK_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FORATASK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FORATASK_REDIS_ADDR"`
	Password     string        `envconfig:"FORATASK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FORATASK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FORATASK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FORATASK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FORATASK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FORATASK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FORATASK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"FORATASK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"FORATASK_JWT_ISSUER" default:"foratask"`
}

// BillingConfig keeps the tunables that the subscription engine must not
// hardcode: trial length is applied once at organization registration, the
// paid period length is the default used when a payment event does not name
// one.
type BillingConfig struct {
	TrialDays         int `envconfig:"FORATASK_BILLING_TRIAL_DAYS" default:"90"`
	DefaultPeriodDays int `envconfig:"FORATASK_BILLING_DEFAULT_PERIOD_DAYS" default:"30"`
	CASMaxRetries     int `envconfig:"FORATASK_BILLING_CAS_MAX_RETRIES" default:"5"`
}

func (b BillingConfig) validate() error {
	if b.TrialDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvBillingTrialDays)
	}
	if b.DefaultPeriodDays <= 0 {
		return fmt.Errorf("%s must be positive", EnvBillingPeriodDays)
	}
	return nil
}

// TrialLength returns the configured trial duration.
func (b BillingConfig) TrialLength() time.Duration {
	return time.Duration(b.TrialDays) * 24 * time.Hour
}

// DefaultPeriodLength returns the default paid period duration.
func (b BillingConfig) DefaultPeriodLength() time.Duration {
	return time.Duration(b.DefaultPeriodDays) * 24 * time.Hour
}

type SweepConfig struct {
	Interval  time.Duration `envconfig:"FORATASK_SWEEP_INTERVAL" default:"1h"`
	BatchSize int           `envconfig:"FORATASK_SWEEP_BATCH_SIZE" default:"250"`
	LockTTL   time.Duration `envconfig:"FORATASK_SWEEP_LOCK_TTL" default:"65m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
