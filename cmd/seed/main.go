// cmd/seed/main.go
//
// Seeds the card reference data from a JSON file:
//
//	go run ./cmd/seed -file cards.json [-wipe]
//
// Seeding is idempotent; existing card IDs are skipped. -wipe deletes all
// cards first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/tcg2i/tcg-service/internal/config"
	"github.com/tcg2i/tcg-service/internal/database"
	"github.com/tcg2i/tcg-service/internal/models"
)

func main() {
	file := flag.String("file", "cards.json", "path to the card list JSON")
	wipe := flag.Bool("wipe", false, "delete all existing cards first")
	flag.Parse()

	logger := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatalf("failed to read %s: %v", *file, err)
	}
	var cards []models.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		logger.Fatalf("failed to parse %s: %v", *file, err)
	}
	for _, c := range cards {
		if _, err := models.ParseRarity(string(c.Rarity)); err != nil {
			logger.Fatalf("card %s: %v", c.ID, err)
		}
	}

	ctx := context.Background()
	store, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatalf("failed to ensure schema: %v", err)
	}

	if *wipe {
		if err := store.DeleteAllCards(ctx); err != nil {
			logger.Fatalf("failed to wipe cards: %v", err)
		}
		logger.Info("existing cards deleted")
	}

	inserted, err := store.SeedCards(ctx, cards)
	if err != nil {
		logger.Fatalf("failed to seed cards: %v", err)
	}
	logger.Infof("seeded %d new cards (%d already present)", inserted, len(cards)-inserted)
}
