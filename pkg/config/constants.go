package config

const (
	EnvPrefix = "URGENCY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
	DefaultSQLiteDSN = "file:urgency.db?cache=shared&_foreign_keys=on"

	EnvAppEnv        = "URGENCY_APP_ENV"
	EnvPort          = "URGENCY_APP_PORT"
	EnvDBDSN         = "URGENCY_DB_DSN"
	EnvDBDriver      = "URGENCY_DB_DRIVER"
	EnvDBHost        = "URGENCY_DB_HOST"
	EnvDBUser        = "URGENCY_DB_USER"
	EnvDBName        = "URGENCY_DB_NAME"
	EnvRedisURL      = "URGENCY_REDIS_URL"
	EnvJWTSecret     = "URGENCY_JWT_SECRET"
	EnvJWTIssuer     = "URGENCY_JWT_ISSUER"
	EnvEncryptSecret = "URGENCY_ENCRYPTION_SECRET"
	EnvMaxAutoOrder  = "URGENCY_MAX_AUTO_ORDER_VALUE_CENTS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
