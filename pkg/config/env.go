package config

// EnvPrefix is the envconfig prefix shared by every Investra service.
const EnvPrefix = "investra"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv = "INVESTRA_APP_ENV"
	EnvPort   = "INVESTRA_APP_PORT"

	EnvDBDSN  = "INVESTRA_DB_DSN"
	EnvDBHost = "INVESTRA_DB_HOST"
	EnvDBUser = "INVESTRA_DB_USER"
	EnvDBName = "INVESTRA_DB_NAME"

	EnvRedisURL = "INVESTRA_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
