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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Bootstrap     BootstrapConfig
	FeatureFlags  FeatureFlagsConfig
	Notifications NotificationsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	CORS          CORSConfig
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
	Env          string `envconfig:"ANDALIB_APP_ENV" required:"true"`
	Port         string `envconfig:"ANDALIB_APP_PORT" default:"3000"`
	LogLevel     string `envconfig:"ANDALIB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ANDALIB_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ANDALIB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ANDALIB_DB_DSN"`
	Driver string `envconfig:"ANDALIB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ANDALIB_DB_HOST"`
	LegacyPort     int    `envconfig:"ANDALIB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ANDALIB_DB_USER"`
	LegacyPassword string `envconfig:"ANDALIB_DB_PASSWORD"`
	LegacyName     string `envconfig:"ANDALIB_DB_NAME"`
	LegacySSLMode  string `envconfig:"ANDALIB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ANDALIB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ANDALIB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ANDALIB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ANDALIB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite store.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional; an empty URL and address disables Redis-backed features.
type RedisConfig struct {
	URL          string        `envconfig:"ANDALIB_REDIS_URL"`
	Address      string        `envconfig:"ANDALIB_REDIS_ADDR"`
	Password     string        `envconfig:"ANDALIB_REDIS_PASSWORD"`
	DB           int           `envconfig:"ANDALIB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ANDALIB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ANDALIB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ANDALIB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ANDALIB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ANDALIB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"ANDALIB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ANDALIB_JWT_ISSUER" default:"andalib"`
	ExpirationMinutes int    `envconfig:"ANDALIB_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// BootstrapConfig seeds the first admin account when the admins table is empty.
type BootstrapConfig struct {
	AdminEmail    string `envconfig:"ANDALIB_BOOTSTRAP_ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ANDALIB_BOOTSTRAP_ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ANDALIB_BOOTSTRAP_ADMIN_NAME" default:"Administrator"`
}

func (b BootstrapConfig) Enabled() bool {
	return strings.TrimSpace(b.AdminEmail) != "" && b.AdminPassword != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate      bool `envconfig:"ANDALIB_AUTO_MIGRATE" default:"false"`
	InProcessJanitor bool `envconfig:"ANDALIB_INPROCESS_JANITOR" default:"true"`
}

type NotificationsConfig struct {
	Retention     time.Duration `envconfig:"ANDALIB_NOTIFICATION_RETENTION" default:"2m"`
	SweepInterval time.Duration `envconfig:"ANDALIB_NOTIFICATION_SWEEP_INTERVAL" default:"1m"`
	QueueSize     int           `envconfig:"ANDALIB_NOTIFICATION_QUEUE_SIZE" default:"256"`
	Workers       int           `envconfig:"ANDALIB_NOTIFICATION_WORKERS" default:"1"`
	PushTimeout   time.Duration `envconfig:"ANDALIB_NOTIFICATION_PUSH_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"ANDALIB_GCP_PROJECT_ID"`
}

// PubSubConfig drives the optional push channel for admin notifications.
type PubSubConfig struct {
	NotificationTopic string `envconfig:"ANDALIB_PUBSUB_NOTIFICATION_TOPIC" default:"andalib-admin-notifications"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ANDALIB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
