package config

const EnvPrefix = "AISLA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "AISLA_APP_ENV"
	EnvPort     = "AISLA_APP_PORT"
	EnvLogLevel = "AISLA_LOG_LEVEL"

	EnvDBDSN    = "AISLA_DB_DSN"
	EnvDBDriver = "AISLA_DB_DRIVER"
	EnvDBHost   = "AISLA_DB_HOST"
	EnvDBPort   = "AISLA_DB_PORT"
	EnvDBUser   = "AISLA_DB_USER"
	EnvDBPass   = "AISLA_DB_PASSWORD"
	EnvDBName   = "AISLA_DB_NAME"

	EnvRedisURL = "AISLA_REDIS_URL"

	EnvSearchDefaultLimit = "AISLA_SEARCH_DEFAULT_LIMIT"
	EnvSearchMaxLimit     = "AISLA_SEARCH_MAX_LIMIT"
	EnvSearchCacheTTL     = "AISLA_SEARCH_CACHE_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
