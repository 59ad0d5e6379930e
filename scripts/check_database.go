//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"storefront/internal/config"

	"github.com/jackc/pgx/v5"
)

// Prints the connected database, the applied migration version and the row
// count of each table. Reads the same DB_* variables as the API.
func main() {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	var dbName string
	if err := conn.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	var version int64
	var dirty bool
	err = conn.QueryRow(ctx, "SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&version, &dirty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		fmt.Println("No migrations applied")
	case err != nil:
		fmt.Printf("Migration table not readable: %v\n", err)
	default:
		fmt.Printf("Migration version: %d (dirty: %t)\n", version, dirty)
	}

	fmt.Println("\nRow counts:")
	for _, table := range []string{"products", "addresses", "orders", "order_items"} {
		var count int64
		if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			fmt.Printf("  - %s: %v\n", table, err)
			continue
		}
		fmt.Printf("  - %s: %d\n", table, count)
	}
}
