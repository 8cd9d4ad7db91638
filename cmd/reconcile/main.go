package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/autotradehub/autotradehub-backend/internal/reconcile"
	"github.com/autotradehub/autotradehub-backend/pkg/config"
	"github.com/autotradehub/autotradehub-backend/pkg/db"
	"github.com/autotradehub/autotradehub-backend/pkg/logger"
	"github.com/autotradehub/autotradehub-backend/pkg/metrics"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "reconcile"})

	_ = godotenv.Load()

	dryRun := flag.Bool("dry-run", false, "count repairs without writing")
	pushGateway := flag.String("push-gateway", "", "optional prometheus push gateway address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "reconcile",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	registry := prometheus.NewRegistry()
	reconcileMetrics := metrics.NewReconcileMetrics(registry)

	runner, err := reconcile.NewRunner(
		dbClient,
		reconcile.DefaultRules(cfg.Catalog.DefaultStockQuantity),
		reconcileMetrics,
		logg,
		*dryRun || cfg.Reconcile.DryRun,
	)
	if err != nil {
		logg.Error(ctx, "failed to build runner", err)
		os.Exit(1)
	}

	summary, runErr := runner.Run(ctx)

	if *pushGateway != "" {
		if err := push.New(*pushGateway, "autotradehub_reconcile").Gatherer(registry).Push(); err != nil {
			logg.Error(ctx, "failed to push metrics", err)
		}
	}

	for _, result := range summary.Results {
		status := "ok"
		if result.Failed {
			status = "failed"
		}
		fmt.Printf("%-14s rows_fixed=%-6d %s\n", result.Rule, result.RowsFixed, status)
	}
	fmt.Printf("total_fixed=%d dry_run=%v\n", summary.TotalFixed, summary.DryRun)

	if runErr != nil {
		logg.Error(ctx, "reconciliation finished with failures", runErr)
		os.Exit(1)
	}
}
