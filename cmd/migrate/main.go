// Command migrate applies, rolls back, or inspects the SQL schema
// migrations without starting the API server.
package main

import (
	"fmt"
	"os"
	"strconv"

	"fintrack/internal/database"
	"fintrack/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Get().Fatal("usage: migrate <up|down|version> [N]")
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(command string, args []string) error {
	cfg, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	m, err := migrate.New("file://migrations", cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	log := logger.Get()

	switch command {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migration up failed: %w", err)
		}
		log.Info("Migrations applied successfully")
		return nil

	case "down":
		steps := 1
		if len(args) > 0 {
			steps, err = strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count: %w", err)
			}
		}
		if err := m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migration down failed: %w", err)
		}
		log.Infof("Rolled back %d migration(s)", steps)
		return nil

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		log.Infof("Version: %d, Dirty: %v", version, dirty)
		return nil

	default:
		return fmt.Errorf("unknown command: %s (use up, down, or version)", command)
	}
}
