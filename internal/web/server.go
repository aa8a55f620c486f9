// Package web serves the portfolio pages and the JSON and event-stream
// endpoints behind them.
package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kevinmichaelchen/portfolio/internal/config"
	"github.com/kevinmichaelchen/portfolio/internal/models"
	"github.com/kevinmichaelchen/portfolio/internal/particles"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Loader produces the project list for one request.
type Loader func(ctx context.Context) ([]models.Repo, error)

type Server struct {
	cfg         *config.Config
	load        Loader
	log         *slog.Logger
	framePeriod time.Duration
}

type Option func(*Server)

// WithFramePeriod overrides the tick interval of streamed particle fields.
func WithFramePeriod(d time.Duration) Option {
	return func(s *Server) { s.framePeriod = d }
}

func NewServer(cfg *config.Config, load Loader, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:         cfg,
		load:        load,
		log:         log,
		framePeriod: particles.DefaultPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var funcs = template.FuncMap{
	"orDefault": func(s *string, def string) string {
		if s == nil || *s == "" {
			return def
		}
		return *s
	},
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(s.recovered))
	r.SetHTMLTemplate(template.Must(
		template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"),
	))

	r.GET("/", s.page("home.html", "/", nil))
	r.GET("/about", s.page("about.html", "/about", aboutOverlay))
	r.GET("/contact", s.page("contact.html", "/contact", contactOverlay))
	r.GET("/resume", s.page("resume.html", "/resume", resumeOverlay))
	r.GET("/projects", s.projectsPage)
	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "404.html", s.pageData("", nil, nil))
	})

	api := r.Group("/api")
	api.GET("/projects", s.projectsJSON)
	api.GET("/particles", s.particleSnapshot)
	api.GET("/particles/stream", s.particleStream)

	return r
}

func (s *Server) pageData(path string, o *overlay, extra gin.H) gin.H {
	data := gin.H{
		"owner":   owner,
		"nav":     navLinks,
		"path":    path,
		"overlay": o,
		"year":    time.Now().Year(),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func (s *Server) page(name, path string, o *overlay) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, name, s.pageData(path, o, nil))
	}
}

// recovered renders the error page for a handler that panicked.
func (s *Server) recovered(c *gin.Context, err any) {
	s.log.Error("handler panicked", "path", c.Request.URL.Path, "panic", err)
	if c.Writer.Written() {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.HTML(http.StatusInternalServerError, "error.html", s.pageData("", errorOverlay, gin.H{
		"message": errorMessage,
		"retry":   c.Request.URL.RequestURI(),
	}))
	c.Abort()
}

func (s *Server) projectsPage(c *gin.Context) {
	repos, err := s.load(c.Request.Context())
	if err != nil {
		s.log.Error("loading projects", "error", err)
		c.HTML(http.StatusBadGateway, "projects.html", s.pageData("/projects", nil, gin.H{
			"error": loadFailedMessage,
		}))
		return
	}
	c.HTML(http.StatusOK, "projects.html", s.pageData("/projects", nil, gin.H{
		"repos":         repos,
		"username":      s.cfg.GitHubUsername,
		"placeholder":   placeholderScreenshot,
		"noDescription": noDescription,
	}))
}

func (s *Server) projectsJSON(c *gin.Context) {
	repos, err := s.load(c.Request.Context())
	if err != nil {
		s.log.Error("loading projects", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, repos)
}
