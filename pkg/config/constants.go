package config

const (
	// EnvPrefix namespaces every CampusBites environment variable.
	EnvPrefix = "CAMPUSBITES"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "CAMPUSBITES_APP_ENV"
	EnvDBDSN  = "CAMPUSBITES_DB_DSN"
	EnvDBHost = "CAMPUSBITES_DB_HOST"
	EnvDBUser = "CAMPUSBITES_DB_USER"
	EnvDBName = "CAMPUSBITES_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
