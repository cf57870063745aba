package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Checkout CheckoutConfig
	Metrics  MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.App.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HOBILIK_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"HOBILIK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOBILIK_LOG_WARN_STACK" default:"false"`
}

// IsDev reports whether the app runs locally; dev logs are human-readable.
func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) validate() error {
	for _, known := range []string{AppEnvDev, AppEnvProd, AppEnvTest} {
		if strings.EqualFold(a.Env, known) {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, %s, %s; got %q", EnvAppEnv, AppEnvDev, AppEnvProd, AppEnvTest, a.Env)
}

type CatalogConfig struct {
	SeedPath         string `envconfig:"HOBILIK_CATALOG_SEED_PATH"`
	AllCategoryLabel string `envconfig:"HOBILIK_CATALOG_ALL_LABEL" default:"Tümü"`
	Language         string `envconfig:"HOBILIK_CATALOG_LANGUAGE" default:"tr"`
}

// Tag returns the parsed search language, falling back to Turkish.
func (c CatalogConfig) Tag() language.Tag {
	tag, err := language.Parse(strings.TrimSpace(c.Language))
	if err != nil {
		return language.Turkish
	}
	return tag
}

func (c CatalogConfig) validate() error {
	if strings.TrimSpace(c.AllCategoryLabel) == "" {
		return fmt.Errorf("%s cannot be blank", EnvCatalogAllLabel)
	}
	if _, err := language.Parse(strings.TrimSpace(c.Language)); err != nil {
		return fmt.Errorf("%s: %w", EnvCatalogLanguage, err)
	}
	return nil
}

type CheckoutConfig struct {
	DefaultCountry string `envconfig:"HOBILIK_CHECKOUT_DEFAULT_COUNTRY" default:"United States"`
	CurrencySymbol string `envconfig:"HOBILIK_CHECKOUT_CURRENCY_SYMBOL" default:"$"`
}

type MetricsConfig struct {
	Enabled   bool   `envconfig:"HOBILIK_METRICS_ENABLED" default:"true"`
	Namespace string `envconfig:"HOBILIK_METRICS_NAMESPACE" default:"hobilik"`
}
