package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Mongo    MongoConfig    `yaml:"mongo"`
	API      APIConfig      `yaml:"api"`
	LLM      LLMConfig      `yaml:"llm"`
	LLMQuota LLMQuotaConfig `yaml:"llm_quota"`
	Vendors  []VendorConfig `yaml:"vendors"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Storage  StorageConfig  `yaml:"storage"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Ingest   IngestConfig   `yaml:"ingest"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type APIConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LLMConfig selects the generative model used per task.
// Empty task models fall back to DefaultModel.
type LLMConfig struct {
	Provider          string `yaml:"provider"`
	DefaultModel      string `yaml:"default_model"`
	ExtractionModel   string `yaml:"extraction_model"`
	ClassifierModel   string `yaml:"classifier_model"`
	PersonalizeModel  string `yaml:"personalize_model"`
	AnalysisModel     string `yaml:"analysis_model"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxOutputTokens   int32  `yaml:"max_output_tokens"`
	RecordPromptBytes int    `yaml:"record_prompt_bytes"`
}

// LLMQuotaConfig limits model calls per minute and per day. Values <= 0 mean no limit.
type LLMQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// VendorConfig is a single allow-listed storefront.
type VendorConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
}

type ScraperConfig struct {
	FetchMode       string `yaml:"fetch_mode"` // http | browser
	UserAgent       string `yaml:"user_agent"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxImageBytes   int64  `yaml:"max_image_bytes"`
	MaxImages       int    `yaml:"max_images"`
	DownloadWorkers int    `yaml:"download_workers"`
	ChromePath      string `yaml:"chrome_path"`
}

type StorageConfig struct {
	Bucket    string `yaml:"bucket"`
	CDNDomain string `yaml:"cdn_domain"`
	Prefix    string `yaml:"prefix"`
}

// ScoringConfig overrides the scoring policy. Zero values keep the defaults.
type ScoringConfig struct {
	SaturatedFatCeiling float64 `yaml:"saturated_fat_ceiling"`
	TransFatCeiling     float64 `yaml:"trans_fat_ceiling"`
	CholesterolCeiling  float64 `yaml:"cholesterol_ceiling"`
	SodiumCeiling       float64 `yaml:"sodium_ceiling"`
	AddedSugarsCeiling  float64 `yaml:"added_sugars_ceiling"`
	ProteinTarget       float64 `yaml:"protein_target"`
	FiberTarget         float64 `yaml:"fiber_target"`
	VitaminATarget      float64 `yaml:"vitamin_a_target"`
	VitaminCTarget      float64 `yaml:"vitamin_c_target"`
	CalciumTarget       float64 `yaml:"calcium_target"`
	IronTarget          float64 `yaml:"iron_target"`
	DensityWeight       float64 `yaml:"density_weight"`
	NegativeWeight      float64 `yaml:"negative_weight"`
	PositiveWeight      float64 `yaml:"positive_weight"`
	IngredientWeight    float64 `yaml:"ingredient_weight"`
	Exponent            float64 `yaml:"exponent"`
}

type AnalysisConfig struct {
	Window      string `yaml:"window"` // day | week
	Concurrency int    `yaml:"concurrency"`
	Timezone    string `yaml:"timezone"`
}

type IngestConfig struct {
	Mode string `yaml:"mode"` // sync | async
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	config = c
}

// Parse decodes config.yaml content, applies env overrides and fills defaults.
func Parse(data []byte) (*AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DB_NAME"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("GCS_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("INGEST_MODE"); v != "" {
		c.Ingest.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *AppConfig) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "nutrilens"
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "google"
	}
	if c.LLM.DefaultModel == "" {
		c.LLM.DefaultModel = "gemini-1.5-flash"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 90
	}
	if len(c.Vendors) == 0 {
		c.Vendors = []VendorConfig{{Name: "bigbasket", Host: "www.bigbasket.com"}}
	}
	if c.Scraper.FetchMode == "" {
		c.Scraper.FetchMode = "http"
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		c.Scraper.TimeoutSeconds = 30
	}
	if c.Scraper.MaxImageBytes <= 0 {
		c.Scraper.MaxImageBytes = 8 << 20
	}
	if c.Scraper.MaxImages <= 0 {
		c.Scraper.MaxImages = 8
	}
	if c.Scraper.DownloadWorkers <= 0 {
		c.Scraper.DownloadWorkers = 4
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = "products"
	}
	if c.Analysis.Window == "" {
		c.Analysis.Window = "day"
	}
	if c.Analysis.Concurrency <= 0 {
		c.Analysis.Concurrency = 4
	}
	if c.Analysis.Timezone == "" {
		c.Analysis.Timezone = "Asia/Kolkata"
	}
	if c.Ingest.Mode == "" {
		c.Ingest.Mode = "sync"
	}
}

// ModelFor returns the configured model for a task, or the default model.
func (l LLMConfig) ModelFor(task string) string {
	var m string
	switch task {
	case "extraction":
		m = l.ExtractionModel
	case "classifier":
		m = l.ClassifierModel
	case "personalize":
		m = l.PersonalizeModel
	case "analysis":
		m = l.AnalysisModel
	}
	if m == "" {
		return l.DefaultModel
	}
	return m
}

func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
