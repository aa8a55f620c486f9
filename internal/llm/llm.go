package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/portfolio/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const systemPrompt = `You write copy for a developer's portfolio website. Given one of their GitHub repositories (name, description, primary language, topics), produce a JSON object with:

1. "summary": One or two sentences, first person, describing what the project does and what it shows about the author's skills. No marketing superlatives.
2. "categories": An array of 1-3 categories from this list:
   Web App, Frontend, Backend, CLI, Library, Game, Data/ML, DevOps, Mobile, Learning Project, Other

Return ONLY valid JSON. No markdown, no code fences.`

// Summarize asks the model for a portfolio blurb and categories for repo.
func (c *Client) Summarize(ctx context.Context, repo models.Repo) (*models.SummaryResult, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(repo)},
		},
		// No ResponseFormat: not all models support json_object mode.
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM call for %s: %w", repo.Name, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned for %s", repo.Name)
	}

	return parseSummary(repo.Name, resp.Choices[0].Message.Content)
}

func userMessage(repo models.Repo) string {
	parts := []string{fmt.Sprintf("Repository: %s", repo.Name)}
	if repo.Description != nil {
		parts = append(parts, fmt.Sprintf("Description: %s", *repo.Description))
	}
	if repo.Language != nil {
		parts = append(parts, fmt.Sprintf("Language: %s", *repo.Language))
	}
	if len(repo.Topics) > 0 {
		parts = append(parts, fmt.Sprintf("Topics: %s", strings.Join(repo.Topics, ", ")))
	}
	if repo.LiveDemoURL != nil {
		parts = append(parts, "Has a live demo.")
	}
	return strings.Join(parts, "\n\n")
}

func parseSummary(name, content string) (*models.SummaryResult, error) {
	content = stripCodeFences(content)

	var result models.SummaryResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing LLM response for %s: %w\nraw: %s", name, err, content)
	}
	if result.Categories == nil {
		result.Categories = []string{}
	}
	return &result, nil
}

// stripCodeFences removes markdown code fences that some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
