// Package app builds the components shared by the api, processor, scheduler and seed binaries.
package app

import (
	"context"
	"fmt"

	"nutri-lens/analyzer"
	"nutri-lens/config"
	"nutri-lens/db"
	"nutri-lens/extractor"
	"nutri-lens/ingest"
	"nutri-lens/llm"
	"nutri-lens/personalization"
	"nutri-lens/pipeline"
	"nutri-lens/repositories"
	"nutri-lens/scoring"
	"nutri-lens/scraper"
	"nutri-lens/storage"
)

// Repositories groups every Mongo-backed store. db.Init must have succeeded.
type Repositories struct {
	Catalog      *repositories.CatalogRepository
	Users        *repositories.UserRepository
	Overviews    *repositories.OverviewRepository
	Consumptions *repositories.ConsumptionRepository
	Analyses     *repositories.AnalysisRepository
	AILogs       *repositories.AILogRepository
}

func NewRepositories() *Repositories {
	database := db.Database()
	return &Repositories{
		Catalog:      repositories.NewCatalogRepository(db.Client(), database),
		Users:        repositories.NewUserRepository(database),
		Overviews:    repositories.NewOverviewRepository(database),
		Consumptions: repositories.NewConsumptionRepository(database),
		Analyses:     repositories.NewAnalysisRepository(database),
		AILogs:       repositories.NewAILogRepository(database),
	}
}

// NewGenerator returns the Gemini client behind the shared quota and the ai_logs recorder.
func NewGenerator(ctx context.Context, cfg config.AppConfig, logs llm.AILogSink) (llm.Generator, error) {
	client, err := llm.NewGeminiClient(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	limited := llm.WithQuota(client, llm.NewQuotaLimiter(cfg.LLMQuota))
	return llm.WithRecorder(limited, logs, cfg.LLM.RecordPromptBytes), nil
}

// NewGate builds the vendor allow-list check over the catalog.
func NewGate(cfg config.AppConfig, repos *Repositories) *ingest.Gate {
	return ingest.NewGate(cfg.Vendors, repos.Catalog)
}

// NewPipeline wires the ingest pipeline. The returned close func releases the object store client.
func NewPipeline(ctx context.Context, cfg config.AppConfig, repos *Repositories, gen llm.Generator) (*pipeline.Pipeline, func() error, error) {
	store, err := storage.NewGCSStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	p := &pipeline.Pipeline{
		Gate:       NewGate(cfg, repos),
		Acquirer:   scraper.NewAcquirer(scraper.NewPageFetcher(cfg.Scraper), cfg.Scraper),
		Classifier: extractor.NewClassifier(gen),
		Extractor:  extractor.NewExtractor(gen),
		Categories: repos.Catalog,
		Store:      store,
		Writer:     repos.Catalog,
		Policy:     scoring.PolicyFromConfig(cfg.Scoring),
	}
	return p, store.Close, nil
}

func NewPersonalizationEngine(repos *Repositories, gen llm.Generator) *personalization.Engine {
	return personalization.NewEngine(repos.Overviews, repos.Users, repos.Catalog, personalization.NewGeminiPersonalizer(gen))
}

func NewAnalyzer(cfg config.AppConfig, repos *Repositories, gen llm.Generator) (*analyzer.Analyzer, error) {
	return analyzer.NewAnalyzer(repos.Users, repos.Consumptions, repos.Catalog, repos.Analyses,
		analyzer.NewGeminiAdvisor(gen), cfg.Analysis)
}
