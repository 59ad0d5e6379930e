package main

import (
	"flag"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	// Only the database and logger sections are needed here, so the full
	// service validation is skipped.
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	connString := cfg.Database.ConnectionString()

	switch *direction {
	case "up":
		return database.MigrateUp(connString, logger)
	case "down":
		return database.MigrateDown(connString, logger)
	default:
		return fmt.Errorf("unknown direction %q, want up or down", *direction)
	}
}
