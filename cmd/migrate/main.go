package main

import (
	"context"
	"log"
	"os"

	"borelog/internal/config"
	"borelog/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url>")
	}

	databaseURL := os.Args[1]
	driver := config.DriverFor(databaseURL)

	log.Printf("Migrating %s ledger at %s", driver, databaseURL)

	db, err := sqlx.Connect(driver, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(context.Background(), db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Printf("Migration complete: schema version %s", runner.Version())
}
