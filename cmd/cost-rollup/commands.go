package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	corecfg "github.com/aevon-lab/cost-rollup/internal/core/config"
	"github.com/aevon-lab/cost-rollup/internal/rollup"
	"github.com/aevon-lab/cost-rollup/internal/server"
	"github.com/aevon-lab/cost-rollup/internal/summary"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newEngine(cfg *corecfg.Config, b *backend, metrics *rollup.Metrics) *rollup.Engine {
	return rollup.NewEngine(b.source, b.summary, rollup.Options{
		WorkerCount:      cfg.Rollup.WorkerCount,
		AllowEmptySource: cfg.Rollup.AllowEmptySource,
		Timeout:          cfg.Rollup.TimeoutDuration(),
	}, metrics)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(configPath *string) *cobra.Command {
	var schemas []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Recompute and publish the summary once for every configured schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if len(schemas) > 0 {
				cfg.Rollup.Schemas = schemas
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			ctx, cancel := signalContext()
			defer cancel()

			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			engine := newEngine(cfg, b, nil)
			results, runErr := engine.RunAll(ctx, cfg.Rollup.Schemas, cfg.Rollup.MaxParallelSchemas)

			out := cmd.OutOrStdout()
			for _, res := range results {
				if res == nil {
					continue
				}
				fmt.Fprintf(out, "%s\tok\trun=%s\ttoday=%s\tbuckets=%d\tduration=%s\n",
					res.Schema, res.RunID, res.Today, res.Published, res.Duration)
			}
			if runErr == nil {
				return nil
			}

			for _, err := range unwrapJoined(runErr) {
				var se *rollup.StageError
				if errors.As(err, &se) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s\tfailed\trun=%s\tstage=%s\terror=%v\n", se.Schema, se.RunID, se.Stage, se.Err)
					continue
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "failed\terror=%v\n", err)
			}
			return fmt.Errorf("rollup failed for %d schema(s)", len(unwrapJoined(runErr)))
		},
	}
	cmd.Flags().StringSliceVarP(&schemas, "schema", "s", nil, "Schemas to run instead of rollup.schemas (comma-separated)")
	return cmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the rollup on a schedule and serve the trigger, summary and health API",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			b, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer b.close()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			engine := newEngine(cfg, b, rollup.NewMetrics(reg))

			srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), b.health, reg, cfg.Server.Mode)
			rollup.NewHandler(engine, cfg.Rollup.Schemas).RegisterRoutes(srv.Engine)
			summary.NewService(b.summary, cfg.Rollup.Schemas).RegisterRoutes(srv.Engine)

			scheduler := rollup.NewScheduler(cfg.Rollup.IntervalDuration(), engine, cfg.Rollup.Schemas, cfg.Rollup.MaxParallelSchemas)

			// b.close runs only after the scheduler has returned.
			if err := serveWithScheduler(ctx, srv.Run, scheduler.Start); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			slog.Info("Shutdown complete")
			return nil
		},
	}
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the reporting tables in every configured schema",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Database.Type != "postgres" {
				return fmt.Errorf("migrate requires database.type postgres, got %q", cfg.Database.Type)
			}
			// An explicit migrate always applies.
			cfg.Database.AutoMigrate = true

			ctx, cancel := signalContext()
			defer cancel()

			dbAdapter, err := openPostgres(ctx, cfg)
			if err != nil {
				return err
			}
			defer dbAdapter.Close()

			slog.Info("Migrations applied", "schemas", cfg.Rollup.Schemas)
			return nil
		},
	}
}

func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// serveWithScheduler runs serve in the foreground and scheduler in the
// background. Whichever way serve returns, the scheduler is cancelled and
// waited for before returning.
func serveWithScheduler(ctx context.Context, serve, scheduler func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler(ctx); err != nil {
			slog.Error("Scheduler stopped with error", "error", err)
		}
	}()

	err := serve(ctx)
	cancel()
	<-done
	return err
}
