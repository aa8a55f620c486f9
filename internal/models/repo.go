package models

// Repo is one portfolio project backed by a GitHub repository.
type Repo struct {
	ID            int64     `json:"id"`
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	URL           string    `json:"url"`
	Description   *string   `json:"description"`
	Language      *string   `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	Topics        []string  `json:"topics"`
	LiveDemoURL   *string   `json:"live_demo_url,omitempty"`
	ScreenshotURL string    `json:"screenshot_url"`
	AIBlurb       *string   `json:"ai_blurb,omitempty"`
	AICategories  []string  `json:"ai_categories,omitempty"`
	Embedding     []float32 `json:"embedding,omitempty"`
}

// FullName is the owner/name pair.
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

type SummaryResult struct {
	Summary    string   `json:"summary"`
	Categories []string `json:"categories"`
}

type SearchResult struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	AIBlurb      *string  `json:"ai_blurb"`
	AICategories []string `json:"ai_categories"`
	URL          string   `json:"url"`
	Score        float64  `json:"score"`
}
