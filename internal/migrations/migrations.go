package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
)

//go:embed *.sql
var MigrationFiles embed.FS

// migrationsTable is kept per schema so tenants migrate independently.
const migrationsTable = "rollup_schema_migrations"

// RunMigrations executes all pending migrations inside schema, creating the
// schema first when needed. If autoMigrate is false, it only logs the current
// version.
func RunMigrations(ctx context.Context, db *sql.DB, schema string, autoMigrate bool) error {
	sourceDriver, err := iofs.New(MigrationFiles, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// Migration files use unqualified names, so they run on one conn whose
	// search_path points at the tenant schema.
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	ident := pq.QuoteIdentifier(schema)
	if autoMigrate {
		if _, err := conn.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident); err != nil {
			conn.Close()
			return fmt.Errorf("failed to create schema %q: %w", schema, err)
		}
	}
	if _, err := conn.ExecContext(ctx, "SET search_path TO "+ident); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set search_path for %q: %w", schema, err)
	}

	dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		SchemaName:      schema,
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		dbDriver.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		// The conn goes back to the shared pool on Close.
		if _, err := conn.ExecContext(context.Background(), "RESET search_path"); err != nil {
			slog.Warn("[Migrations] Failed to reset search_path", "schema", schema, "error", err)
		}
		m.Close()
	}()

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		slog.Warn("[Migrations] Schema is in dirty state - migration was interrupted",
			"schema", schema,
			"version", version,
			"action", "attempting automatic recovery",
		)

		// Every migration is idempotent (IF NOT EXISTS), so forcing the
		// recorded version and re-running Up is safe.
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to recover dirty migration state at version %d: %w", version, err)
		}
		slog.Info("[Migrations] Recovered dirty migration state", "schema", schema, "version", version)
	}

	if !autoMigrate {
		slog.Info("[Migrations] Auto-migration disabled, skipping migrations",
			"schema", schema,
			"current_version", version,
			"dirty", dirty,
		)
		return nil
	}

	slog.Info("[Migrations] Running database migrations", "schema", schema, "current_version", version)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Migrations] Schema is up to date", "schema", schema, "version", version)
			return nil
		}
		return fmt.Errorf("failed to run migrations in %q: %w", schema, err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get updated migration version: %w", err)
	}

	slog.Info("[Migrations] Database migrations completed successfully",
		"schema", schema,
		"from_version", version,
		"to_version", newVersion,
	)
	return nil
}
