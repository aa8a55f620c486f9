package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/portfolio/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}
}

const maxBatchSize = 256

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for _, b := range batches(len(texts), maxBatchSize) {
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[b.start:b.end],
			Model: c.model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating embeddings (batch %d-%d): %w", b.start, b.end, err)
		}
		for _, emb := range resp.Data {
			vectors[b.start+emb.Index] = emb.Embedding
		}
	}
	return vectors, nil
}

func (c *Client) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 || vecs[0] == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return vecs[0], nil
}

// ProjectText is the text a project is embedded from: its name, what it says
// about itself and how it is tagged.
func ProjectText(r models.Repo) string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Description != nil {
		b.WriteString(": ")
		b.WriteString(*r.Description)
	}
	if r.AIBlurb != nil {
		b.WriteString("\n")
		b.WriteString(*r.AIBlurb)
	}
	tags := append(append([]string{}, r.Topics...), r.AICategories...)
	if r.Language != nil {
		tags = append(tags, *r.Language)
	}
	if len(tags) > 0 {
		b.WriteString("\nTags: ")
		b.WriteString(strings.Join(tags, ", "))
	}
	return b.String()
}

type span struct{ start, end int }

func batches(n, size int) []span {
	var out []span
	for start := 0; start < n; start += size {
		out = append(out, span{start, min(start+size, n)})
	}
	return out
}
