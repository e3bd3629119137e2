package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/foratask/foratask-billing/api/routes"
	"github.com/foratask/foratask-billing/internal/billing"
	"github.com/foratask/foratask-billing/internal/memberships"
	"github.com/foratask/foratask-billing/internal/organizations"
	"github.com/foratask/foratask-billing/pkg/config"
	"github.com/foratask/foratask-billing/pkg/db"
	"github.com/foratask/foratask-billing/pkg/logger"
	"github.com/foratask/foratask-billing/pkg/migrate"
	"github.com/foratask/foratask-billing/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:          billing.NewRepository(dbClient.DB()),
		Users:         memberships.NewRepository(dbClient.DB()),
		Logger:        logg,
		TrialLength:   cfg.Billing.TrialLength(),
		DefaultPeriod: cfg.Billing.DefaultPeriodLength(),
		CASMaxRetries: cfg.Billing.CASMaxRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	organizationService, err := organizations.NewService(organizations.ServiceParams{
		DB:      dbClient,
		Repo:    organizations.NewRepository(dbClient.DB()),
		Logger:  logg,
		Billing: cfg.Billing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create organization service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, billingService, organizationService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
