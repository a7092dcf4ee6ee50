package main

import (
	"context"
	"os"
	"time"

	"nutri-lens/config"
	"nutri-lens/db"
	"nutri-lens/extractor"
	"nutri-lens/internal/app"
)

// seed asks the model for a starter category list and upserts it into the catalog.
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	repos := app.NewRepositories()
	gen, err := app.NewGenerator(ctx, cfg, repos.AILogs)
	if err != nil {
		config.Logger.Errorf("failed to initialize generator: %v", err)
		os.Exit(1)
	}

	names, err := extractor.SeedCategories(ctx, gen, repos.Catalog)
	if err != nil {
		config.Logger.Errorf("category seed failed: %v", err)
		os.Exit(1)
	}
	config.Logger.Infof("seeded %d categories", len(names))
}
