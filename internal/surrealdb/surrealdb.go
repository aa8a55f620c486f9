package surrealdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kevinmichaelchen/portfolio/internal/config"
	"github.com/kevinmichaelchen/portfolio/internal/models"
	sdk "github.com/surrealdb/surrealdb.go"
)

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS project SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS id_github      ON TABLE project TYPE int;
DEFINE FIELD IF NOT EXISTS owner          ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS name           ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS url            ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS description    ON TABLE project TYPE option<string>;
DEFINE FIELD IF NOT EXISTS language       ON TABLE project TYPE option<string>;
DEFINE FIELD IF NOT EXISTS default_branch ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS topics         ON TABLE project TYPE array<string>;
DEFINE FIELD IF NOT EXISTS live_demo_url  ON TABLE project TYPE option<string>;
DEFINE FIELD IF NOT EXISTS screenshot_url ON TABLE project TYPE string;
DEFINE FIELD IF NOT EXISTS position       ON TABLE project TYPE int;
DEFINE FIELD IF NOT EXISTS ai_blurb       ON TABLE project TYPE option<string>;
DEFINE FIELD IF NOT EXISTS ai_categories  ON TABLE project TYPE option<array<string>>;
DEFINE FIELD IF NOT EXISTS embedding      ON TABLE project TYPE option<array<float>>;
DEFINE FIELD IF NOT EXISTS synced_at      ON TABLE project TYPE datetime;
DEFINE FIELD IF NOT EXISTS enriched_at    ON TABLE project TYPE option<datetime>;

DEFINE INDEX IF NOT EXISTS idx_project_name ON TABLE project FIELDS owner, name UNIQUE;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// UpsertProject writes the GitHub-derived fields of r. AI fields are left
// untouched so a re-sync keeps earlier enrichment. position is the index of
// the project in the most-recently-updated listing.
func (c *Client) UpsertProject(ctx context.Context, r models.Repo, position int) error {
	_, err := sdk.Query[any](ctx, c.db,
		`UPSERT type::thing("project", $id) MERGE $data`,
		map[string]any{
			"id":   recordID(r),
			"data": projectData(r, position, time.Now().UTC()),
		})
	if err != nil {
		return fmt.Errorf("upserting %s: %w", r.FullName(), err)
	}
	return nil
}

// projectData builds the record with only non-nil optional fields to avoid
// CBOR NULL vs SurrealDB NONE mismatch.
func projectData(r models.Repo, position int, now time.Time) map[string]any {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	data := map[string]any{
		"id_github":      r.ID,
		"owner":          r.Owner,
		"name":           r.Name,
		"url":            r.URL,
		"default_branch": r.DefaultBranch,
		"topics":         topics,
		"screenshot_url": r.ScreenshotURL,
		"position":       position,
		"synced_at":      now,
	}
	if r.Description != nil {
		data["description"] = *r.Description
	}
	if r.Language != nil {
		data["language"] = *r.Language
	}
	if r.LiveDemoURL != nil {
		data["live_demo_url"] = *r.LiveDemoURL
	}
	return data
}

func recordID(r models.Repo) string {
	return strings.ToLower(r.Owner) + "__" + r.Name
}

// projectFields leaves out the record id, which is a SurrealDB thing and not
// the GitHub id.
const projectFields = `id_github, owner, name, url, description, language, default_branch,
	topics, live_demo_url, screenshot_url, position, ai_blurb, ai_categories`

type projectRow struct {
	GitHubID      int64    `json:"id_github"`
	Owner         string   `json:"owner"`
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	Description   *string  `json:"description"`
	Language      *string  `json:"language"`
	DefaultBranch string   `json:"default_branch"`
	Topics        []string `json:"topics"`
	LiveDemoURL   *string  `json:"live_demo_url"`
	ScreenshotURL string   `json:"screenshot_url"`
	Position      int      `json:"position"`
	AIBlurb       *string  `json:"ai_blurb"`
	AICategories  []string `json:"ai_categories"`
}

func (p projectRow) toRepo() models.Repo {
	topics := p.Topics
	if topics == nil {
		topics = []string{}
	}
	return models.Repo{
		ID:            p.GitHubID,
		Owner:         p.Owner,
		Name:          p.Name,
		URL:           p.URL,
		Description:   p.Description,
		Language:      p.Language,
		DefaultBranch: p.DefaultBranch,
		Topics:        topics,
		LiveDemoURL:   p.LiveDemoURL,
		ScreenshotURL: p.ScreenshotURL,
		AIBlurb:       p.AIBlurb,
		AICategories:  p.AICategories,
	}
}

func (c *Client) AllProjects(ctx context.Context) ([]models.Repo, error) {
	return c.selectProjects(ctx, "", "all projects")
}

func (c *Client) ProjectsNeedingBlurb(ctx context.Context) ([]models.Repo, error) {
	return c.selectProjects(ctx, "WHERE ai_blurb IS NONE", "projects needing a blurb")
}

func (c *Client) ProjectsNeedingEmbedding(ctx context.Context) ([]models.Repo, error) {
	return c.selectProjects(ctx, "WHERE ai_blurb IS NOT NONE AND embedding IS NONE", "projects needing embedding")
}

func (c *Client) selectProjects(ctx context.Context, where, what string) ([]models.Repo, error) {
	query := fmt.Sprintf("SELECT %s FROM project %s ORDER BY position", projectFields, where)
	results, err := sdk.Query[[]projectRow](ctx, c.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", what, err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	rows := (*results)[0].Result
	repos := make([]models.Repo, 0, len(rows))
	for _, row := range rows {
		repos = append(repos, row.toRepo())
	}
	return repos, nil
}

func (c *Client) UpdateBlurb(ctx context.Context, r models.Repo, blurb string, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	_, err := sdk.Query[any](ctx, c.db,
		`UPDATE type::thing("project", $id) SET
			ai_blurb = $ai_blurb,
			ai_categories = $ai_categories,
			enriched_at = time::now()`,
		map[string]any{
			"id":            recordID(r),
			"ai_blurb":      blurb,
			"ai_categories": categories,
		})
	if err != nil {
		return fmt.Errorf("updating blurb for %s: %w", r.FullName(), err)
	}
	return nil
}

func (c *Client) UpdateEmbedding(ctx context.Context, r models.Repo, embedding []float32) error {
	_, err := sdk.Query[any](ctx, c.db,
		`UPDATE type::thing("project", $id) SET embedding = $embedding`,
		map[string]any{
			"id":        recordID(r),
			"embedding": embedding,
		})
	if err != nil {
		return fmt.Errorf("updating embedding for %s: %w", r.FullName(), err)
	}
	return nil
}

// VectorSearch ranks projects by cosine similarity to queryVec. The portfolio
// holds a few dozen projects, so a full scan is used instead of an index.
func (c *Client) VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		k = 5
	}
	query := fmt.Sprintf(`
		SELECT name, description, ai_blurb, ai_categories, url,
			vector::similarity::cosine(embedding, $query_vec) AS score
		FROM project
		WHERE embedding IS NOT NONE
		ORDER BY score DESC
		LIMIT %d
	`, k)

	results, err := sdk.Query[[]models.SearchResult](ctx, c.db, query,
		map[string]any{"query_vec": queryVec})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

type Stats struct {
	Total    int
	Live     int
	Enriched int
	Embedded int
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS total,
			math::sum(IF live_demo_url IS NOT NONE THEN 1 ELSE 0 END) AS live,
			math::sum(IF ai_blurb IS NOT NONE THEN 1 ELSE 0 END) AS enriched,
			math::sum(IF embedding IS NOT NONE THEN 1 ELSE 0 END) AS embedded
		FROM project GROUP ALL`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &Stats{}, nil
	}
	row := (*results)[0].Result[0]
	return &Stats{
		Total:    toInt(row["total"]),
		Live:     toInt(row["live"]),
		Enriched: toInt(row["enriched"]),
		Embedded: toInt(row["embedded"]),
	}, nil
}

type TagCount struct {
	Tag   string
	Count int
}

// TopicBreakdown counts how many projects carry each topic, most used first.
func (c *Client) TopicBreakdown(ctx context.Context) ([]TagCount, error) {
	results, err := sdk.Query[[]projectRow](ctx, c.db, `SELECT topics FROM project`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting topics: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	var repos []models.Repo
	for _, row := range (*results)[0].Result {
		repos = append(repos, row.toRepo())
	}
	return countTags(repos), nil
}

func countTags(repos []models.Repo) []TagCount {
	counts := map[string]int{}
	for _, r := range repos {
		for _, t := range r.Topics {
			counts[t]++
		}
	}
	out := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
