package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutri-lens/analyzer"
	"nutri-lens/config"
	"nutri-lens/db"
	"nutri-lens/internal/app"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
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
	a, err := app.NewAnalyzer(cfg, repos, gen)
	if err != nil {
		config.Logger.Errorf("failed to initialize analyzer: %v", err)
		os.Exit(1)
	}

	// first run right away, over today
	runOnce(ctx, a, time.Now())

	// then, at each midnight in the analysis timezone, the day that just ended
	for {
		next := nextMidnight(time.Now(), a.Location())
		config.Logger.Infof("scheduler sleeping until %s (%s)", next.Format(time.RFC3339), a.Location())
		select {
		case <-ctx.Done():
			config.Logger.Info("scheduler stopped")
			return
		case <-time.After(time.Until(next)):
		}
		runOnce(ctx, a, reportTime(next))
	}
}

func runOnce(ctx context.Context, a *analyzer.Analyzer, at time.Time) {
	res, err := a.Sweep(ctx, at)
	if err != nil {
		config.Logger.Errorf("consumption sweep error: %v", err)
		return
	}
	config.Logger.Infof("consumption sweep done: analyzed=%d skipped=%d failed=%d", res.Analyzed, res.Skipped, res.Failed)
}
