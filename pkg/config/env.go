package config

const (
	EnvPrefix = "HOBILIK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
	AppEnvTest = "test"

	EnvAppEnv           = "HOBILIK_APP_ENV"
	EnvLogLevel         = "HOBILIK_LOG_LEVEL"
	EnvLogWarnStack     = "HOBILIK_LOG_WARN_STACK"
	EnvCatalogSeedPath  = "HOBILIK_CATALOG_SEED_PATH"
	EnvCatalogAllLabel  = "HOBILIK_CATALOG_ALL_LABEL"
	EnvCatalogLanguage  = "HOBILIK_CATALOG_LANGUAGE"
	EnvCheckoutCountry  = "HOBILIK_CHECKOUT_DEFAULT_COUNTRY"
	EnvCheckoutCurrency = "HOBILIK_CHECKOUT_CURRENCY_SYMBOL"
	EnvMetricsEnabled   = "HOBILIK_METRICS_ENABLED"
	EnvMetricsNamespace = "HOBILIK_METRICS_NAMESPACE"
)
