package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenRouter  string
	IngestTopic string // Corpus ingestion topic
}

type AIConfig struct {
	EmbeddingBaseURL string
	EmbeddingModel   string
	LLMProvider      string // "ollama" or "openrouter"
	LLMModel         string // e.g. "llama3", "qwen2.5"
	SummaryModel     string // defaults to LLMModel when unset
	OllamaBaseURL    string
	RetrievalTopK    int
}

// Load reads configuration from the environment, with .env as a local
// convenience. The database connection string has no default: running
// against an implicit database is worse than failing loudly.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenRouter:  getEnv("OPENROUTER_API_KEY", ""),
			IngestTopic: getEnv("INGEST_CORPUS_TOPIC_NAME", "INGEST_CORPUS"),
		},
		Ai: AIConfig{
			EmbeddingBaseURL: getEnv("EMBEDDING_BASE_URL", getEnv("OLLAMA_BASE_URL", "http://localhost:11434")),
			EmbeddingModel:   getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:         getEnv("LLM_MODEL", "llama3"),
			SummaryModel:     getEnv("SUMMARY_MODEL", ""),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RetrievalTopK:    getEnvAsInt("RETRIEVAL_TOP_K", 6),
		},
	}

	if cfg.Ai.SummaryModel == "" {
		cfg.Ai.SummaryModel = cfg.Ai.LLMModel
	}

	if cfg.Database.Connection == "" {
		log.Fatal("[FATAL] DB_CONNECTION_STRING is required")
	}

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
