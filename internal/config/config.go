package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	GitHubUsername    string
	GitHubToken       string
	GitHubAPIURL      string
	GitHubHTTPTimeout time.Duration
	GitHubAllPages    bool
	EnrichConcurrency int

	SurrealURL  string
	SurrealNS   string
	SurrealDB   string
	SurrealUser string
	SurrealPass string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:    os.Getenv("PORT"),
		GinMode: os.Getenv("GIN_MODE"),

		GitHubUsername: os.Getenv("GITHUB_USERNAME"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		GitHubAPIURL:   os.Getenv("GITHUB_API_URL"),

		SurrealURL:  os.Getenv("SURREAL_URL"),
		SurrealNS:   os.Getenv("SURREAL_NS"),
		SurrealDB:   os.Getenv("SURREAL_DB"),
		SurrealUser: os.Getenv("SURREAL_USER"),
		SurrealPass: os.Getenv("SURREAL_PASS"),

		LLMBaseURL: os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMModel:   os.Getenv("LLM_MODEL"),

		EmbeddingBaseURL: os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingAPIKey:  os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:   os.Getenv("EMBEDDING_MODEL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.GitHubUsername == "" {
		cfg.GitHubUsername = "DevGodVGS"
	}
	if cfg.GitHubAPIURL == "" {
		cfg.GitHubAPIURL = "https://api.github.com"
	}
	cfg.GitHubAPIURL = strings.TrimSuffix(cfg.GitHubAPIURL, "/")

	cfg.GitHubHTTPTimeout = 10 * time.Second
	if v := os.Getenv("GITHUB_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GitHubHTTPTimeout = d
		}
	}

	if v, err := strconv.ParseBool(os.Getenv("GITHUB_ALL_PAGES")); err == nil {
		cfg.GitHubAllPages = v
	}

	cfg.EnrichConcurrency = 10
	if v := os.Getenv("ENRICH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.EnrichConcurrency = n
		}
	}

	// The SDK appends /rpc automatically
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/rpc")
	cfg.SurrealURL = strings.TrimSuffix(cfg.SurrealURL, "/")

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-4o-mini"
	}
	if cfg.EmbeddingBaseURL == "" {
		cfg.EmbeddingBaseURL = cfg.LLMBaseURL
	}
	if cfg.EmbeddingAPIKey == "" {
		cfg.EmbeddingAPIKey = cfg.LLMAPIKey
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}

	return cfg
}

// Addr is the listen address for the web server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
