package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"nutri-lens/cmd/processor/handlers"
	"nutri-lens/config"
	"nutri-lens/db"
	"nutri-lens/eventbus"
	"nutri-lens/internal/app"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
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
	pipe, closeStore, err := app.NewPipeline(ctx, cfg, repos, gen)
	if err != nil {
		config.Logger.Errorf("failed to initialize pipeline: %v", err)
		os.Exit(1)
	}
	defer closeStore()

	// event bus and topics
	brokers, err := eventbus.GetBrokers()
	if err != nil {
		config.Logger.Errorf("%v", err)
		os.Exit(1)
	}
	groupID, err := eventbus.GetGroupID()
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

	eventHandlers := handlers.NewEventHandlers(pipe, bus)

	config.Logger.Info("starting processor service with eventbus...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// closed when the consumer stops on its own
	consumerDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(consumerDone)
		if err := bus.Subscribe(ctx, groupID, eventbus.TopicProductIngest, eventHandlers.Handle); err != nil && !errors.Is(err, context.Canceled) {
			config.Logger.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	select {
	case <-sigChan:
		config.Logger.Info("received shutdown signal, shutting down processor service...")
	case <-consumerDone:
		config.Logger.Error("consumer stopped, shutting down processor service...")
	}

	cancel()
	wg.Wait()

	config.Logger.Info("processor service stopped")
}
