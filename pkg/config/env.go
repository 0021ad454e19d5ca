package config

// EnvPrefix is passed to envconfig; every field carries an explicit envconfig tag.
const EnvPrefix = "ANDALIB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv    = "ANDALIB_APP_ENV"
	EnvPort      = "ANDALIB_APP_PORT"
	EnvDBDSN     = "ANDALIB_DB_DSN"
	EnvDBDriver  = "ANDALIB_DB_DRIVER"
	EnvDBHost    = "ANDALIB_DB_HOST"
	EnvDBUser    = "ANDALIB_DB_USER"
	EnvDBName    = "ANDALIB_DB_NAME"
	EnvRedisURL  = "ANDALIB_REDIS_URL"
	EnvJWTSecret = "ANDALIB_JWT_SECRET"
	EnvJWTIssuer = "ANDALIB_JWT_ISSUER"

	EnvNotificationRetention = "ANDALIB_NOTIFICATION_RETENTION"
	EnvNotificationInterval  = "ANDALIB_NOTIFICATION_SWEEP_INTERVAL"
	EnvGCPProjectID          = "ANDALIB_GCP_PROJECT_ID"
	EnvCORSAllowedOrigins    = "ANDALIB_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
