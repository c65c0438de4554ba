package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/supportly/backend/internal/config"
	"github.com/supportly/backend/internal/database"
	"github.com/supportly/backend/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	cfg, err := config.Load(".env")
	if err != nil {
		l := logger.New("production")
		l.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.New(cfg.Env)

	db, err := database.Open(context.Background(), cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise migrations")
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			log.Error().AnErr("source", sourceErr).AnErr("database", dbErr).Msg("Failed to close migration resources")
		}
	}()

	switch command {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info().Msg("No change: database is already up to date")
		case err != nil:
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		default:
			log.Info().Msg("Migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back the last migration")
		}
		log.Info().Msg("Rolled back the last migration")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatal().Msg("goto needs a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatal().Err(err).Str("version", os.Args[2]).Msg("Invalid version number")
		}
		err = m.Migrate(uint(version))
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info().Uint64("version", version).Msg("No change: database is already at this version")
		case err != nil:
			log.Fatal().Err(err).Uint64("version", version).Msg("Failed to migrate")
		default:
			log.Info().Uint64("version", version).Msg("Migrated")
		}

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Info().Msg("No migrations have been applied yet")
		case err != nil:
			log.Fatal().Err(err).Msg("Failed to read migration version")
		default:
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration version")
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: go run ./cmd/migrate [command]")
	fmt.Println("Commands:")
	fmt.Println("  up     - apply all pending migrations")
	fmt.Println("  down   - roll back the last migration")
	fmt.Println("  goto N - migrate to version N")
	fmt.Println("  status - show the current migration version")
}
