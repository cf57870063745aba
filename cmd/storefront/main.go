package main

import (
	"context"
	"fmt"
	"os"

	"github.com/angelmondragon/hobilik/internal/cart"
	"github.com/angelmondragon/hobilik/internal/catalog"
	"github.com/angelmondragon/hobilik/internal/checkout"
	"github.com/angelmondragon/hobilik/internal/storefront"
	"github.com/angelmondragon/hobilik/pkg/config"
	pkgerrors "github.com/angelmondragon/hobilik/pkg/errors"
	"github.com/angelmondragon/hobilik/pkg/logger"
	"github.com/angelmondragon/hobilik/pkg/metrics"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const serviceName = "storefront"

func main() {
	root := newRootCmd(&app{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// app holds what every subcommand needs once bootstrap has run.
type app struct {
	cfg      *config.Config
	logg     *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.CartMetrics
	catalog  *catalog.Catalog
	checkout checkout.Service
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the handmade goods catalog and shop from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bootstrap(cmd.Context())
		},
	}
	root.AddCommand(newCatalogCmd(a), newShopCmd(a))
	return root
}

func (a *app) bootstrap(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logg := logger.New(logger.Options{ServiceName: serviceName, Level: "info"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to load config")
	}

	a.cfg = cfg
	a.logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.App.LogLevel,
		Console:     cfg.App.IsDev(),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.NewCartMetrics(a.registry, cfg.Metrics.Namespace)
	}

	a.catalog = catalog.New(catalog.Options{
		AllLabel: cfg.Catalog.AllCategoryLabel,
		Language: cfg.Catalog.Tag(),
	})
	if err := a.loadCatalog(ctx); err != nil {
		return err
	}

	a.checkout, err = checkout.NewService(checkout.ServiceParams{
		DefaultCountry: cfg.Checkout.DefaultCountry,
		CurrencySymbol: cfg.Checkout.CurrencySymbol,
		Logger:         a.logg,
		Metrics:        a.metrics,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to create checkout service")
	}

	a.logg.Debug(a.logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"products": len(a.catalog.Products()),
	}), "storefront ready")
	return nil
}

func (a *app) loadCatalog(ctx context.Context) error {
	a.catalog.SetLoading(true)
	defer a.catalog.SetLoading(false)

	seed, err := a.readSeed()
	if err != nil {
		a.catalog.SetError(err.Error())
		a.logg.Error(ctx, "failed to load catalog", err)
		return err
	}
	seed.Apply(a.catalog)
	a.catalog.SetError("")
	return nil
}

func (a *app) readSeed() (*catalog.Seed, error) {
	path := a.cfg.Catalog.SeedPath
	if path == "" {
		return catalog.DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "open catalog seed")
	}
	defer f.Close()
	return catalog.LoadSeed(f)
}

// newSession starts a fresh shopper session against the shared catalog.
func (a *app) newSession() (*storefront.Session, error) {
	return storefront.NewSession(storefront.SessionParams{
		ID:      uuid.NewString(),
		Catalog: a.catalog,
		Cart: cart.NewAggregator(
			cart.WithLogger(a.logg),
			cart.WithMetrics(a.metrics),
		),
		Checkout: a.checkout,
		Logger:   a.logg,
	})
}

func exitCode(err error) int {
	if typed := pkgerrors.As(err); typed != nil {
		return pkgerrors.MetadataFor(typed.Code()).ExitCode
	}
	return 1
}
