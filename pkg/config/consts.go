package config

// EnvPrefix is the envconfig prefix shared by every AutoTradeHub binary.
const EnvPrefix = "AUTOTRADEHUB"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error messages).
const (
	EnvAppEnv   = "AUTOTRADEHUB_APP_ENV"
	EnvPort     = "AUTOTRADEHUB_APP_PORT"
	EnvDBDSN    = "AUTOTRADEHUB_DB_DSN"
	EnvDBHost   = "AUTOTRADEHUB_DB_HOST"
	EnvDBUser   = "AUTOTRADEHUB_DB_USER"
	EnvDBName   = "AUTOTRADEHUB_DB_NAME"
	EnvRedisURL = "AUTOTRADEHUB_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
