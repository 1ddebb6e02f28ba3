// Command astroquiz-migrate manages the PostgreSQL schema and sample catalog.
//
//	astroquiz-migrate [-env file] [-dsn url] [-no-seed] up|down|version|seed
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/lib/pq"

	"github.com/astroquiz/astroquiz/internal/app/storage"
	"github.com/astroquiz/astroquiz/internal/app/storage/postgres"
	"github.com/astroquiz/astroquiz/internal/app/storage/seed"
	"github.com/astroquiz/astroquiz/internal/config"
	"github.com/astroquiz/astroquiz/internal/platform/migrations"
	"github.com/astroquiz/astroquiz/pkg/logger"
)

func main() {
	envFile := flag.String("env", "", "Path to an env file (default: ./.env when present)")
	dsn := flag.String("dsn", "", "Postgres DSN (overrides ASTROQUIZ_DB_DSN)")
	noSeed := flag.Bool("no-seed", false, "Skip seeding the sample catalog after up")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	if *dsn != "" {
		os.Setenv("ASTROQUIZ_DB_DRIVER", config.DriverPostgres)
		os.Setenv("ASTROQUIZ_DB_DSN", *dsn)
	}
	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "astroquiz-migrate: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Logger()).Component("migrate")
	if cfg.Database.DSN == "" {
		log.Fatal("a postgres DSN is required (-dsn or ASTROQUIZ_DB_DSN)")
	}

	if err := run(context.Background(), command, cfg.Database.DSN, !*noSeed, log); err != nil {
		log.WithError(err).Fatal(command + " failed")
	}
}

func run(ctx context.Context, command, dsn string, withSeed bool, log *logger.Logger) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := migrations.NewMigrator(db)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		logVersion(m, log)
		if withSeed {
			return seedCatalog(ctx, db, log)
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		log.Info("all migrations reverted")
		return nil
	case "version":
		logVersion(m, log)
		return nil
	case "seed":
		return seedCatalog(ctx, db, log)
	default:
		return fmt.Errorf("unknown command %q (want up, down, version or seed)", command)
	}
}

func seedCatalog(ctx context.Context, db *sql.DB, log *logger.Logger) error {
	seeded, err := seed.ApplyIfEmpty(ctx, postgres.New(db), seed.Default(), storage.Timestamp(time.Now()))
	if err != nil {
		return err
	}
	if seeded {
		log.Info("sample catalog inserted")
	} else {
		log.Info("catalog already present; seeding skipped")
	}
	return nil
}

func logVersion(m *migrate.Migrate, log *logger.Logger) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("no migrations applied")
	case err != nil:
		log.WithError(err).Warn("could not read schema version")
	default:
		log.WithFields(map[string]any{"version": version, "dirty": dirty}).Info("schema version")
	}
}
