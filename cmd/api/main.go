package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/autotradehub/autotradehub-backend/api/routes"
	"github.com/autotradehub/autotradehub-backend/internal/cart"
	"github.com/autotradehub/autotradehub-backend/internal/catalog"
	"github.com/autotradehub/autotradehub-backend/internal/emails"
	"github.com/autotradehub/autotradehub-backend/internal/orders"
	"github.com/autotradehub/autotradehub-backend/internal/partners"
	"github.com/autotradehub/autotradehub-backend/internal/paymentmethods"
	"github.com/autotradehub/autotradehub-backend/internal/payouts"
	"github.com/autotradehub/autotradehub-backend/pkg/config"
	"github.com/autotradehub/autotradehub-backend/pkg/db"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
	"github.com/autotradehub/autotradehub-backend/pkg/migrate"
	"github.com/autotradehub/autotradehub-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalogRepo := catalog.NewRepository(dbClient.DB())
	partnersRepo := partners.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, cfg.Catalog.DefaultStockQuantity)
	requireService(logg, "catalog", err)

	resolver, err := partners.NewResolver(partnersRepo, catalogRepo)
	requireService(logg, "partner resolver", err)

	cartStore, err := cart.NewStore(redisClient, cfg.Cart.TTL)
	requireService(logg, "cart store", err)

	cartService, err := cart.NewService(cartStore, resolver, catalogService, logg)
	requireService(logg, "cart", err)

	ordersService, err := orders.NewService(orders.NewRepository(dbClient.DB()))
	requireService(logg, "orders", err)

	paymentMethodsService, err := paymentmethods.NewService(paymentmethods.NewRepository(dbClient.DB()), dbClient)
	requireService(logg, "payment methods", err)

	payoutsService, err := payouts.NewService(
		payouts.NewRepository(dbClient.DB()),
		partnersRepo,
		dbClient,
		cfg.Payout.DefaultCommissionRate,
		logg,
	)
	requireService(logg, "payouts", err)

	emailsService, err := emails.NewService(emails.NewLogSender(logg), cfg.Email)
	requireService(logg, "emails", err)

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			resolver,
			cartService,
			ordersService,
			paymentMethodsService,
			payoutsService,
			emailsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	ctx := logg.WithField(context.Background(), "service", name)
	logg.Error(ctx, "failed to build service", err)
	os.Exit(1)
}
