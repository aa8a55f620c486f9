package web

import (
	"bufio"
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmichaelchen/portfolio/internal/config"
	"github.com/kevinmichaelchen/portfolio/internal/github"
	"github.com/kevinmichaelchen/portfolio/internal/models"
	"github.com/kevinmichaelchen/portfolio/internal/particles"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ptr(s string) *string { return &s }

func sampleRepos() []models.Repo {
	return []models.Repo{
		{
			Name:          "foo",
			URL:           "https://github.com/u/foo",
			Description:   ptr("Foo app"),
			Language:      ptr("Go"),
			Topics:        []string{"cli", "tooling"},
			LiveDemoURL:   ptr("https://u.github.io/foo/"),
			ScreenshotURL: "https://raw.githubusercontent.com/u/foo/main/screenshot.png",
		},
		{
			Name:          "bar",
			URL:           "https://github.com/u/bar",
			Topics:        []string{},
			ScreenshotURL: "https://raw.githubusercontent.com/u/bar/main/screenshot.png",
		},
	}
}

func newTestServer(load Loader) *gin.Engine {
	cfg := &config.Config{GitHubUsername: "u"}
	return NewServer(cfg, load, nil, WithFramePeriod(time.Millisecond)).Router()
}

func okLoader(context.Context) ([]models.Repo, error) { return sampleRepos(), nil }

func failLoader(context.Context) ([]models.Repo, error) {
	return nil, &github.NetworkError{Op: "listing repos for u", StatusCode: http.StatusServiceUnavailable}
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestStaticPages(t *testing.T) {
	r := newTestServer(okLoader)

	tests := []struct {
		path     string
		contains string
		overlay  string
	}{
		{"/", "View My Work", ""},
		{"/about", "Core Skills", `data-variant="trail"`},
		{"/contact", "https://github.com/DevGodVGS", `data-variant="trail"`},
		{"/resume", "Unleash My Potential", `data-variant="glow"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(r, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, tt.contains)
			assert.Contains(t, body, "Vishwa Gaurav Shukla")
			if tt.overlay == "" {
				assert.NotContains(t, body, `id="overlay"`)
			} else {
				assert.Contains(t, body, tt.overlay)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	w := get(newTestServer(okLoader), "/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Page Not Found")
	assert.NotContains(t, w.Body.String(), `id="overlay"`)
}

func TestPanicRendersErrorPage(t *testing.T) {
	r := newTestServer(okLoader)
	r.GET("/boom", func(*gin.Context) { panic("template data missing") })

	w := get(r, "/boom?x=1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, template.HTMLEscapeString(errorMessage))
	assert.Contains(t, body, `data-variant="trail" data-count="25"`)
	assert.Contains(t, body, `href="/boom?x=1"`)

	// the server keeps serving after a panic
	assert.Equal(t, http.StatusOK, get(r, "/about").Code)
}

func TestProjectsPage(t *testing.T) {
	w := get(newTestServer(okLoader), "/projects")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Less(t, strings.Index(body, "<h2>foo</h2>"), strings.Index(body, "<h2>bar</h2>"))
	assert.Contains(t, body, "Foo app")
	assert.Contains(t, body, noDescription)
	assert.Contains(t, body, `<span class="badge">tooling</span>`)
	assert.Contains(t, body, `href="https://u.github.io/foo/"`)
	assert.Equal(t, 1, strings.Count(body, "Live Demo"))
	assert.Contains(t, body, "screenshot.png")
}

func TestProjectsPage_ListFailure(t *testing.T) {
	w := get(newTestServer(failLoader), "/projects")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), template.HTMLEscapeString(loadFailedMessage))
	assert.Contains(t, w.Body.String(), "Try again")
}

func TestProjectsJSON(t *testing.T) {
	w := get(newTestServer(okLoader), "/api/projects")
	require.Equal(t, http.StatusOK, w.Code)

	var repos []models.Repo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repos))
	require.Len(t, repos, 2)
	assert.Equal(t, "foo", repos[0].Name)
	require.NotNil(t, repos[0].LiveDemoURL)
	assert.Nil(t, repos[1].LiveDemoURL)
	assert.NotContains(t, w.Body.String(), `"live_demo_url":null`)

	w = get(newTestServer(failLoader), "/api/projects")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "GitHub returned 503")
}

func TestParticleSnapshot(t *testing.T) {
	r := newTestServer(okLoader)

	w := get(r, "/api/particles?count=10&w=300&h=200")
	require.Equal(t, http.StatusOK, w.Code)
	var snap snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, variantTrail, snap.Variant)
	assert.Equal(t, particles.TrailConfig(10), snap.Config)
	require.Len(t, snap.Circles, 10)
	for _, c := range snap.Circles {
		assert.GreaterOrEqual(t, c.X, 0.0)
		assert.Less(t, c.X, 300.0)
		assert.GreaterOrEqual(t, c.Y, 0.0)
		assert.Less(t, c.Y, 200.0)
	}

	w = get(r, "/api/particles?variant=glow")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, particles.GlowConfig(25), snap.Config)
	assert.Equal(t, float64(defaultWidth), snap.Width)
}

func TestParticleParams_Rejected(t *testing.T) {
	r := newTestServer(okLoader)
	for _, q := range []string{"variant=sparkle", "count=-1", "count=abc", "w=0", "h=20000", "frames=-2"} {
		t.Run(q, func(t *testing.T) {
			w := get(r, "/api/particles/stream?"+q)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestParticleStream_StopsAfterFrames(t *testing.T) {
	w := get(newTestServer(okLoader), "/api/particles/stream?count=3&w=100&h=100&frames=4")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	var frames [][]particles.Circle
	sc := bufio.NewScanner(strings.NewReader(w.Body.String()))
	for sc.Scan() {
		line := sc.Text()
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			var circles []particles.Circle
			require.NoError(t, json.Unmarshal([]byte(data), &circles))
			frames = append(frames, circles)
		}
	}
	require.Len(t, frames, 4)
	// With trails, the first frame has one trail entry per particle, the
	// fourth has four.
	assert.Len(t, frames[0], 3*2)
	assert.Len(t, frames[3], 3*5)
}

func TestParticleStream_StopsOnDisconnect(t *testing.T) {
	r := newTestServer(okLoader)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/particles/stream?count=1", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after the client went away")
	}
}
