package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Catalog   CatalogConfig
	Cart      CartConfig
	Payout    PayoutConfig
	Email     EmailConfig
	Reconcile ReconcileConfig
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
	Env          string `envconfig:"AUTOTRADEHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOTRADEHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"AUTOTRADEHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOTRADEHUB_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"AUTOTRADEHUB_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOTRADEHUB_DB_DSN"`
	Driver string `envconfig:"AUTOTRADEHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOTRADEHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOTRADEHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOTRADEHUB_DB_USER"`
	LegacyPassword string `envconfig:"AUTOTRADEHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOTRADEHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOTRADEHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOTRADEHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOTRADEHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOTRADEHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOTRADEHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOTRADEHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"AUTOTRADEHUB_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOTRADEHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOTRADEHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOTRADEHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOTRADEHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOTRADEHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOTRADEHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOTRADEHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CatalogConfig struct {
	// DefaultStockQuantity backfills listings whose stock was never recorded.
	DefaultStockQuantity int `envconfig:"AUTOTRADEHUB_CATALOG_DEFAULT_STOCK" default:"10"`
}

type CartConfig struct {
	// TTL bounds how long an untouched cart blob survives in Redis.
	TTL time.Duration `envconfig:"AUTOTRADEHUB_CART_TTL" default:"720h"`
}

type PayoutConfig struct {
	// DefaultCommissionRate applies when a partner profile carries no rate.
	DefaultCommissionRate string `envconfig:"AUTOTRADEHUB_PAYOUT_DEFAULT_COMMISSION_RATE" default:"10"`
}

type EmailConfig struct {
	FromAddress string `envconfig:"AUTOTRADEHUB_EMAIL_FROM_ADDRESS" default:"noreply@autotradehub.example"`
	FromName    string `envconfig:"AUTOTRADEHUB_EMAIL_FROM_NAME" default:"AutoTradeHub"`
}

type ReconcileConfig struct {
	DryRun bool `envconfig:"AUTOTRADEHUB_RECONCILE_DRY_RUN" default:"false"`
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
