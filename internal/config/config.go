package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"info-seeker-be/pkg/progress"
	"info-seeker-be/pkg/scoring"
	"info-seeker-be/pkg/sources"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Search   SearchConfig
	Pipeline PipelineConfig
	Progress ProgressConfig
	Scoring  ScoringConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
	SessionTTL         time.Duration
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider         string // "ollama"
	LLMModel            string // e.g. "llama3", "qwen2.5"
	LLMTimeout          time.Duration
	OllamaBaseURL       string
	EmbeddingModel      string
	EmbeddingDimensions int
}

type SearchConfig struct {
	SerpAPIKey          string
	Endpoint            string
	Engine              string
	MaxResults          int
	KnowledgeLimit      int
	SimilarityThreshold float64
}

type PipelineConfig struct {
	PhaseTimeout   time.Duration
	RunWorkers     int
	PersistWorkers int
	DrainTimeout   time.Duration
	MaxTotal       int
	MaxFromKB      int
	MinFromWeb     int
	MinContentLen  int
}

type ProgressConfig struct {
	MinInterval    time.Duration
	MaxQueue       int
	PollInterval   time.Duration
	HeartbeatEvery int
}

type ScoringConfig struct {
	BaseWeight       float64
	FactCheckWeight  float64
	QualityWeight    float64
	ConfidenceWeight float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", time.Hour),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:         getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:            getEnv("LLM_MODEL", "llama3"),
			LLMTimeout:          getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:      getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 768),
		},
		Search: SearchConfig{
			SerpAPIKey:          getEnv("SERPAPI_API_KEY", ""),
			Endpoint:            getEnv("WEB_SEARCH_ENDPOINT", "https://serpapi.com/search.json"),
			Engine:              getEnv("WEB_SEARCH_ENGINE", "duckduckgo"),
			MaxResults:          getEnvAsInt("WEB_SEARCH_MAX_RESULTS", 10),
			KnowledgeLimit:      getEnvAsInt("KB_SEARCH_LIMIT", 5),
			SimilarityThreshold: getEnvAsFloat("KB_SIMILARITY_THRESHOLD", 0.3),
		},
		Pipeline: PipelineConfig{
			PhaseTimeout:   getEnvAsDuration("PHASE_TIMEOUT", 60*time.Second),
			RunWorkers:     getEnvAsInt("RUN_WORKERS", 8),
			PersistWorkers: getEnvAsInt("PERSIST_WORKERS", 4),
			DrainTimeout:   getEnvAsDuration("DRAIN_TIMEOUT", 30*time.Second),
			MaxTotal:       getEnvAsInt("SOURCES_MAX_TOTAL", 10),
			MaxFromKB:      getEnvAsInt("SOURCES_MAX_FROM_KB", 5),
			MinFromWeb:     getEnvAsInt("SOURCES_MIN_FROM_WEB", 2),
			MinContentLen:  getEnvAsInt("SOURCES_MIN_CONTENT_LENGTH", 20),
		},
		Progress: ProgressConfig{
			MinInterval:    getEnvAsDuration("PROGRESS_MIN_INTERVAL", 500*time.Millisecond),
			MaxQueue:       getEnvAsInt("PROGRESS_MAX_QUEUE", 1000),
			PollInterval:   getEnvAsDuration("STREAM_POLL_INTERVAL", 100*time.Millisecond),
			HeartbeatEvery: getEnvAsInt("STREAM_HEARTBEAT_EVERY", 300),
		},
		Scoring: ScoringConfig{
			BaseWeight:       getEnvAsFloat("SCORE_BASE_WEIGHT", 0.6),
			FactCheckWeight:  getEnvAsFloat("SCORE_FACTCHECK_WEIGHT", 0.4),
			QualityWeight:    getEnvAsFloat("QUALITY_WEIGHT", 0.7),
			ConfidenceWeight: getEnvAsFloat("QUALITY_CONFIDENCE_WEIGHT", 0.3),
		},
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// ProgressBus returns the bus settings. The always-pass set is fixed to the
// lifecycle statuses.
func (c *Config) ProgressBus() progress.Config {
	cfg := progress.DefaultConfig()
	cfg.MinInterval = c.Progress.MinInterval
	cfg.MaxQueue = c.Progress.MaxQueue
	return cfg
}

func (c *Config) SourcePolicy() sources.Policy {
	return sources.Policy{
		MaxTotal:         c.Pipeline.MaxTotal,
		MaxFromKB:        c.Pipeline.MaxFromKB,
		MinFromWeb:       c.Pipeline.MinFromWeb,
		MinContentLength: c.Pipeline.MinContentLen,
	}
}

func (c *Config) ScoringEngine() scoring.Config {
	cfg := scoring.DefaultConfig()
	cfg.BaseWeight = c.Scoring.BaseWeight
	cfg.FactCheckWeight = c.Scoring.FactCheckWeight
	cfg.QualityWeight = c.Scoring.QualityWeight
	cfg.ConfidenceWeight = c.Scoring.ConfidenceWeight
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
