package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kevinmichaelchen/portfolio/internal/config"
	"github.com/kevinmichaelchen/portfolio/internal/models"
)

const (
	DefaultAPIURL        = "https://api.github.com"
	DefaultPagesFormat   = "https://%s.github.io/%s/"
	DefaultRawContentURL = "https://raw.githubusercontent.com"

	// preview media type the topics endpoint was introduced under
	topicsMediaType = "application/vnd.github.mercy-preview+json"
)

// NetworkError reports a GitHub call that did not complete or came back with
// a non-success status. StatusCode is 0 when no response was received.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GitHub returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client is a thin wrapper around the GitHub REST API and the GitHub Pages
// hosts used for live-demo probes.
type Client struct {
	token       string
	apiURL      string
	pagesFormat string
	rawURL      string
	strategy    Strategy
	httpClient  *http.Client
}

type Option func(*Client)

func WithAPIURL(u string) Option {
	return func(c *Client) { c.apiURL = strings.TrimSuffix(u, "/") }
}

// WithPagesURLFormat overrides the live-demo URL pattern. The format receives
// the username and the repository name, in that order.
func WithPagesURLFormat(f string) Option {
	return func(c *Client) { c.pagesFormat = f }
}

func WithRawContentURL(u string) Option {
	return func(c *Client) { c.rawURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

func WithStrategy(s Strategy) Option {
	return func(c *Client) { c.strategy = s }
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:       token,
		apiURL:      DefaultAPIURL,
		pagesFormat: DefaultPagesFormat,
		rawURL:      DefaultRawContentURL,
		strategy:    FirstPageStrategy{},
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the GITHUB_* settings.
func NewClientFromConfig(cfg *config.Config) *Client {
	opts := []Option{
		WithAPIURL(cfg.GitHubAPIURL),
		WithTimeout(cfg.GitHubHTTPTimeout),
	}
	if cfg.GitHubAllPages {
		opts = append(opts, WithStrategy(AllPagesStrategy{}))
	}
	return NewClient(cfg.GitHubToken, opts...)
}

// ListRepos returns the user's repositories, most recently updated first.
func (c *Client) ListRepos(ctx context.Context, username string) ([]models.Repo, error) {
	return c.strategy.Fetch(ctx, c, username)
}

// Topics returns the topic tags of one repository. A repository without
// topics yields an empty, non-nil slice.
func (c *Client) Topics(ctx context.Context, username, name string) ([]string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/topics", c.apiURL, url.PathEscape(username), url.PathEscape(name))

	resp, err := c.do(ctx, http.MethodGet, u, topicsMediaType, true)
	if err != nil {
		return nil, &NetworkError{Op: "fetching topics for " + name, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return nil, &NetworkError{Op: "fetching topics for " + name, StatusCode: resp.StatusCode}
	}

	var body struct {
		Names []string `json:"names"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing topics for %s: %w", name, err)
	}
	if body.Names == nil {
		body.Names = []string{}
	}
	return body.Names, nil
}

// Probe issues a HEAD request and reports nil when the target answers with
// any 2xx status.
func (c *Client) Probe(ctx context.Context, target string) error {
	resp, err := c.do(ctx, http.MethodHead, target, "", false)
	if err != nil {
		return &NetworkError{Op: "probing " + target, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return &NetworkError{Op: "probing " + target, StatusCode: resp.StatusCode}
	}
	return nil
}

// PagesURL is the GitHub Pages address a repository would be published at.
func (c *Client) PagesURL(username, name string) string {
	return fmt.Sprintf(c.pagesFormat, username, name)
}

// ScreenshotURL points at screenshot.png in the root of the default branch.
// It is never checked; the page swaps in a placeholder when it fails to load.
func (c *Client) ScreenshotURL(username, name, branch string) string {
	return fmt.Sprintf("%s/%s/%s/%s/screenshot.png", c.rawURL, username, name, branch)
}

// --- internal ---

type repoJSON struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	HTMLURL       string  `json:"html_url"`
	Description   *string `json:"description"`
	Language      *string `json:"language"`
	DefaultBranch string  `json:"default_branch"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (c *Client) reposURL(username string) string {
	return fmt.Sprintf("%s/users/%s/repos?sort=updated", c.apiURL, url.PathEscape(username))
}

// listPage fetches one page of the repository listing and returns the URL of
// the next page, if the Link header announces one.
func (c *Client) listPage(ctx context.Context, username, pageURL string) ([]models.Repo, string, error) {
	resp, err := c.do(ctx, http.MethodGet, pageURL, "application/vnd.github+json", true)
	if err != nil {
		return nil, "", &NetworkError{Op: "listing repositories", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, "", &NetworkError{Op: "listing repositories", StatusCode: resp.StatusCode}
	}

	var raw []repoJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, "", &NetworkError{Op: "listing repositories", Err: fmt.Errorf("parsing response: %w", err)}
	}

	repos := make([]models.Repo, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, c.toRepo(username, r))
	}
	return repos, extractNextLink(resp.Header.Get("Link")), nil
}

func (c *Client) toRepo(username string, r repoJSON) models.Repo {
	owner := r.Owner.Login
	if owner == "" {
		owner = username
	}
	branch := r.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	return models.Repo{
		ID:            r.ID,
		Owner:         owner,
		Name:          r.Name,
		URL:           r.HTMLURL,
		Description:   nonEmpty(r.Description),
		Language:      nonEmpty(r.Language),
		DefaultBranch: branch,
		Topics:        []string{},
		ScreenshotURL: c.ScreenshotURL(username, r.Name, branch),
	}
}

func (c *Client) do(ctx context.Context, method, target, accept string, auth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// extractNextLink parses the Link header to find the "next" URL.
func extractNextLink(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	for _, link := range strings.Split(linkHeader, ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		for _, p := range parts[1:] {
			if strings.TrimSpace(p) == `rel="next"` {
				target := strings.TrimSpace(parts[0])
				return strings.TrimSuffix(strings.TrimPrefix(target, "<"), ">")
			}
		}
	}
	return ""
}
