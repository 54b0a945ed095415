// Command seed loads the sample Mauritanian establishments into the bolt
// catalog configured for the current ENV.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/meghashyamc/schoolfinder/config"
	"github.com/meghashyamc/schoolfinder/db/kvdb"
	"github.com/meghashyamc/schoolfinder/db/seed"
	"github.com/meghashyamc/schoolfinder/logger"
)

func main() {
	godotenv.Load()

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.GetLogLevel())

	store, err := kvdb.New(log, cfg)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer store.Close()

	seeded, err := seedIfEmpty(ctx, store)
	if err != nil {
		return err
	}
	if seeded == 0 {
		log.Info("catalog already has data, skipping seed")
		return nil
	}
	log.Info("seeded catalog", "establishments", seeded)

	return nil
}

// seedIfEmpty loads seed.Records unless the store already holds locations.
func seedIfEmpty(ctx context.Context, store *kvdb.BoltDB) (int, error) {
	existing, err := store.ListLocations(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded, err := seed.Load(ctx, store, seed.Records)
	if err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}

	return len(seeded), nil
}
