package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	corecfg "github.com/aevon-lab/cost-rollup/internal/core/config"
	"github.com/aevon-lab/cost-rollup/internal/core/storage"
	"github.com/aevon-lab/cost-rollup/internal/core/storage/memory"
	"github.com/aevon-lab/cost-rollup/internal/core/storage/postgres"
	"github.com/aevon-lab/cost-rollup/internal/migrations"
	"github.com/aevon-lab/cost-rollup/internal/server"
)

// backend is the storage wiring selected by database.type.
type backend struct {
	source  storage.Source
	summary storage.SummaryStore
	health  server.HealthChecker // nil for memory storage
	close   func()
}

// loadConfig installs the default logger at the configured level.
func loadConfig(configPath string) (*corecfg.Config, error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := corecfg.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Log.Level))); err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Loaded config",
		"database_type", cfg.Database.Type,
		"schemas", cfg.Rollup.Schemas,
		"publish_mode", cfg.Rollup.PublishMode,
	)
	return cfg, nil
}

func openBackend(ctx context.Context, cfg *corecfg.Config) (*backend, error) {
	if cfg.Database.Type == "memory" {
		return openMemoryBackend(cfg)
	}

	dbAdapter, err := openPostgres(ctx, cfg)
	if err != nil {
		return nil, err
	}

	for _, schema := range cfg.Rollup.Schemas {
		if err := dbAdapter.ValidateSchema(ctx, schema); err != nil {
			dbAdapter.Close()
			return nil, err
		}
	}

	return &backend{
		source:  postgres.NewSourceAdapter(dbAdapter.DB()),
		summary: postgres.NewSummaryAdapter(dbAdapter.DB(), postgres.PublishMode(cfg.Rollup.PublishMode)),
		health:  dbAdapter,
		close:   func() { dbAdapter.Close() },
	}, nil
}

// openPostgres connects and runs migrations for every configured schema.
func openPostgres(ctx context.Context, cfg *corecfg.Config) (*postgres.Adapter, error) {
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	for _, schema := range cfg.Rollup.Schemas {
		if err := migrations.RunMigrations(ctx, dbAdapter.DB(), schema, cfg.Database.AutoMigrate); err != nil {
			dbAdapter.Close()
			return nil, fmt.Errorf("migrate %s: %w", schema, err)
		}
	}
	return dbAdapter, nil
}

func openMemoryBackend(cfg *corecfg.Config) (*backend, error) {
	store := memory.NewStore()
	if cfg.Database.Fixture != "" {
		loaded, err := memory.LoadFixture(cfg.Database.Fixture)
		if err != nil {
			return nil, err
		}
		store = loaded
	}

	slog.Info("Using in-memory storage",
		"fixture", cfg.Database.Fixture,
		"fixture_schemas", store.Schemas(),
	)
	return &backend{
		source:  store,
		summary: store,
		close:   func() {},
	}, nil
}
