package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	Index     IndexConfig
	Ingest    IngestConfig
	Retry     RetryConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type EmbeddingConfig struct {
	BaseURL       string
	Dimension     int
	MaxTextLength int
	ImageSize     int
	Timeout       time.Duration
	CacheTTL      time.Duration
}

type IndexConfig struct {
	// Backend selects the vector index implementation: "flat", "hnsw" or
	// "pgvector".
	Backend        string
	Dimension      int
	HnswM          int
	EfConstruction int
	EfSearch       int
}

type IngestConfig struct {
	TopicName  string
	BatchSize  int
	BatchDelay time.Duration
	Workers    int
}

type RetryConfig struct {
	MaxAttempts      int
	EmbedInterval    time.Duration
	DeletionInterval time.Duration
	CleanupInterval  time.Duration
	RetentionDays    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Embedding: EmbeddingConfig{
			BaseURL:       getEnv("EMBEDDING_BASE_URL", "http://localhost:8090"),
			Dimension:     getEnvAsInt("EMBEDDING_DIMENSION", 512),
			MaxTextLength: getEnvAsInt("EMBEDDING_MAX_TEXT_LENGTH", 77),
			ImageSize:     getEnvAsInt("EMBEDDING_IMAGE_SIZE", 224),
			Timeout:       getEnvAsDuration("EMBEDDING_TIMEOUT", 30*time.Second),
			CacheTTL:      getEnvAsDuration("EMBEDDING_CACHE_TTL", 10*time.Minute),
		},
		Index: IndexConfig{
			Backend:        getEnv("INDEX_BACKEND", "flat"),
			Dimension:      getEnvAsInt("EMBEDDING_DIMENSION", 512),
			HnswM:          getEnvAsInt("INDEX_HNSW_M", 16),
			EfConstruction: getEnvAsInt("INDEX_HNSW_EF_CONSTRUCTION", 100),
			EfSearch:       getEnvAsInt("INDEX_HNSW_EF_SEARCH", 64),
		},
		Ingest: IngestConfig{
			TopicName:  getEnv("EMBED_IMAGES_TOPIC_NAME", "EMBED_IMAGES"),
			BatchSize:  getEnvAsInt("INGEST_BATCH_SIZE", 50),
			BatchDelay: getEnvAsDuration("INGEST_BATCH_DELAY", 1*time.Second),
			Workers:    getEnvAsInt("INGEST_WORKERS", 4),
		},
		Retry: RetryConfig{
			MaxAttempts:      getEnvAsInt("RETRY_MAX_ATTEMPTS", 5),
			EmbedInterval:    getEnvAsDuration("RETRY_EMBED_INTERVAL", 10*time.Minute),
			DeletionInterval: getEnvAsDuration("RETRY_DELETION_INTERVAL", 15*time.Minute),
			CleanupInterval:  getEnvAsDuration("RETRY_CLEANUP_INTERVAL", 24*time.Hour),
			RetentionDays:    getEnvAsInt("RETRY_RETENTION_DAYS", 7),
		},
	}
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
