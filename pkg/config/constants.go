package config

// EnvPrefix namespaces every environment variable consumed by the platform.
const EnvPrefix = "RISHTA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv     = "RISHTA_APP_ENV"
	EnvPort       = "RISHTA_APP_PORT"
	EnvDBDSN      = "RISHTA_DB_DSN"
	EnvDBHost     = "RISHTA_DB_HOST"
	EnvDBUser     = "RISHTA_DB_USER"
	EnvDBName     = "RISHTA_DB_NAME"
	EnvRedisURL   = "RISHTA_REDIS_URL"
	EnvJWTSecret  = "RISHTA_JWT_SECRET"
	EnvJWTIssuer  = "RISHTA_JWT_ISSUER"
	EnvJWTExpMins = "RISHTA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
