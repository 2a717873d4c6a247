package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"furnistock/config"
	"furnistock/internal/pkg/database"
	"furnistock/migrations"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Warning: .env file not found. Loading configs from system environment only: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("goose: %v", err)
	}
	if cfg.StoreDriver != config.DriverPostgres {
		log.Fatalf("goose: migrations require STORE_DRIVER=%s (got %s)", config.DriverPostgres, cfg.StoreDriver)
	}

	verbose := flag.Bool("v", false, "enable goose logging")
	flag.Parse()

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("goose: failed to connect to DB: %v\n", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalf("goose: failed to close DB: %v\n", err)
		}
	}()

	// As migrações vão embutidas no binário.
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("goose: %v", err)
	}
	if !*verbose {
		goose.SetLogger(goose.NopLogger())
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"} // Default to 'up' if no command is provided
	}

	command := arguments[0]
	var args []string
	if len(arguments) > 1 {
		args = arguments[1:]
	}

	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		log.Fatalf("goose %v: %v", command, err)
	}

	fmt.Printf("goose %s success\n", command)
}
