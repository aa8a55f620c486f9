package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GITHUB_USERNAME", "GITHUB_API_URL", "GITHUB_HTTP_TIMEOUT", "GITHUB_ALL_PAGES",
		"ENRICH_CONCURRENCY", "SURREAL_URL", "LLM_BASE_URL", "LLM_API_KEY",
		"LLM_MODEL", "EMBEDDING_BASE_URL", "EMBEDDING_API_KEY", "EMBEDDING_MODEL",
	} {
		t.Setenv(k, "")
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "DevGodVGS", cfg.GitHubUsername)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIURL)
	assert.Equal(t, 10*time.Second, cfg.GitHubHTTPTimeout)
	assert.False(t, cfg.GitHubAllPages)
	assert.Equal(t, 10, cfg.EnrichConcurrency)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, "https://api.openai.com/v1", cfg.EmbeddingBaseURL)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("GITHUB_USERNAME", "octocat")
	t.Setenv("GITHUB_API_URL", "http://localhost:1234/")
	t.Setenv("GITHUB_HTTP_TIMEOUT", "250ms")
	t.Setenv("GITHUB_ALL_PAGES", "true")
	t.Setenv("ENRICH_CONCURRENCY", "3")
	t.Setenv("SURREAL_URL", "ws://db:8000/rpc")
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "octocat", cfg.GitHubUsername)
	assert.Equal(t, "http://localhost:1234", cfg.GitHubAPIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.GitHubHTTPTimeout)
	assert.True(t, cfg.GitHubAllPages)
	assert.Equal(t, 3, cfg.EnrichConcurrency)
	assert.Equal(t, "ws://db:8000", cfg.SurrealURL)
	assert.Equal(t, "sk-test", cfg.EmbeddingAPIKey)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_HTTP_TIMEOUT", "soon")
	t.Setenv("ENRICH_CONCURRENCY", "many")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.GitHubHTTPTimeout)
	assert.Equal(t, 10, cfg.EnrichConcurrency)
}
