package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopreviews/catalog/internal/config"
	"github.com/shopreviews/catalog/internal/db"
	"github.com/shopreviews/catalog/internal/metrics"
	"github.com/shopreviews/catalog/internal/repo"
	"github.com/shopreviews/catalog/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)

	// run returns instead of exiting so its deferred Close calls happen
	if err := run(context.Background(), cfg, log, os.Stdout); err != nil {
		log.Error("Catalog dump failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

// run connects to the store, prepares it and writes the catalog snapshot to out
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, out io.Writer) error {
	// Connect to database
	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	if err := db.EnsureSchema(database); err != nil {
		return err
	}

	if cfg.SeedDemo {
		log.Info("Seeding demo catalog")
		if err := db.SeedDemo(database); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	catalogRepo := repo.NewCatalogRepository(database, log, metrics.NewStoreMetrics(registry))

	snap, err := catalogRepo.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize catalog: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	stats, err := catalogRepo.Stats(ctx)
	if err != nil {
		log.Error("Failed to count catalog rows", zap.Error(err))
	}
	log.Info("Catalog written",
		zap.Int64("customers", stats.Customers),
		zap.Int64("items", stats.Items),
		zap.Int64("reviews", stats.Reviews),
		zap.Float64("store_operations", storeOperations(registry, log)),
	)
	return nil
}

// storeOperations sums every series of the store operation counter
func storeOperations(g prometheus.Gatherer, log *zap.Logger) float64 {
	families, err := g.Gather()
	if err != nil {
		log.Warn("Failed to gather metrics", zap.Error(err))
		return 0
	}

	var total float64
	for _, family := range families {
		for _, m := range family.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
