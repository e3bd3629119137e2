package config

const (
	EnvPrefix = "foratask"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "FORATASK_APP_ENV"
	EnvPort   = "FORATASK_APP_PORT"

	EnvDBDSN  = "FORATASK_DB_DSN"
	EnvDBHost = "FORATASK_DB_HOST"
	EnvDBUser = "FORATASK_DB_USER"
	EnvDBName = "FORATASK_DB_NAME"

	EnvRedisURL = "FORATASK_REDIS_URL"

	EnvJWTSecret = "FORATASK_JWT_SECRET"

	EnvBillingTrialDays  = "FORATASK_BILLING_TRIAL_DAYS"
	EnvBillingPeriodDays = "FORATASK_BILLING_DEFAULT_PERIOD_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
