package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"nutri-lens/cmd/api/router"
	"nutri-lens/cmd/api/services"
	"nutri-lens/config"
	"nutri-lens/db"
	"nutri-lens/eventbus"
	"nutri-lens/ingest"
	"nutri-lens/internal/app"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
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

	// sync runs the pipeline in this process; async only gates the URL
	// and hands the request to the processor.
	var (
		ingester  services.Ingester
		requester services.IngestRequester
	)
	switch cfg.Ingest.Mode {
	case "async":
		brokers, err := eventbus.GetBrokers()
		if err != nil {
			config.Logger.Errorf("%v", err)
			os.Exit(1)
		}
		if err := eventbus.EnsureTopics(brokers, eventbus.TopicProductIngest, 3); err != nil {
			config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
		}
		bus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			config.Logger.Errorf("failed to create event bus: %v", err)
			os.Exit(1)
		}
		defer bus.Close()
		requester = ingest.NewRequester(app.NewGate(cfg, repos), bus)
	default:
		pipe, closeStore, err := app.NewPipeline(ctx, cfg, repos, gen)
		if err != nil {
			config.Logger.Errorf("failed to initialize pipeline: %v", err)
			os.Exit(1)
		}
		defer closeStore()
		ingester = pipe
	}

	analyzer, err := app.NewAnalyzer(cfg, repos, gen)
	if err != nil {
		config.Logger.Errorf("failed to initialize analyzer: %v", err)
		os.Exit(1)
	}

	r := router.New(router.Services{
		Products:     services.NewProductService(repos.Catalog, ingester, requester, app.NewPersonalizationEngine(repos, gen)),
		Users:        services.NewUserService(repos.Users),
		Consumptions: services.NewConsumptionService(repos.Users, repos.Catalog, repos.Consumptions),
		Analyses:     services.NewAnalysisService(analyzer, repos.Analyses),
		CronSecret:   os.Getenv("CRON_SECRET"),
		Health: func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.API.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-User-Id", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	}).Handler(r)

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		config.Logger.Infof("api listening on %s (ingest mode=%s)", cfg.API.Addr, cfg.Ingest.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.Logger.Errorf("api server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}
	config.Logger.Info("shutting down api server...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("api shutdown error: %v", err)
	}
	config.Logger.Info("api server stopped")
}
