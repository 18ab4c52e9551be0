// Command seed loads the demo menu and staff accounts. The server seeds an
// empty database on its own; this tool exists for resetting demo environments.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/enat-pos/api/internal/config"
	"github.com/enat-pos/api/internal/database"
	"github.com/enat-pos/api/internal/seed"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	force := flag.Bool("force", false, "seed even when menu items already exist")
	flag.Parse()

	cfg := config.Load()
	if cfg.SeedPassword == "enat1234" {
		log.Println("WARNING: seeding with the default password; set SEED_PASSWORD")
	}

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer pool.Close()

	queries := database.New(pool)
	if *force {
		err = seed.Run(ctx, queries, cfg.SeedPassword)
	} else {
		err = seed.IfEmpty(ctx, queries, cfg.SeedPassword)
	}
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
}
