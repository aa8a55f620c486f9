package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/kevinmichaelchen/portfolio/internal/config"
	"github.com/kevinmichaelchen/portfolio/internal/embedding"
	"github.com/kevinmichaelchen/portfolio/internal/github"
	"github.com/kevinmichaelchen/portfolio/internal/llm"
	"github.com/kevinmichaelchen/portfolio/internal/models"
	"github.com/kevinmichaelchen/portfolio/internal/output"
	"github.com/kevinmichaelchen/portfolio/internal/portfolio"
	"github.com/kevinmichaelchen/portfolio/internal/surrealdb"
	"golang.org/x/sync/errgroup"
)

const summarizeConcurrency = 5

type Store interface {
	UpsertProject(ctx context.Context, r models.Repo, position int) error
	AllProjects(ctx context.Context) ([]models.Repo, error)
	ProjectsNeedingBlurb(ctx context.Context) ([]models.Repo, error)
	ProjectsNeedingEmbedding(ctx context.Context) ([]models.Repo, error)
	UpdateBlurb(ctx context.Context, r models.Repo, blurb string, categories []string) error
	UpdateEmbedding(ctx context.Context, r models.Repo, embedding []float32) error
}

type Summarizer interface {
	Summarize(ctx context.Context, repo models.Repo) (*models.SummaryResult, error)
}

type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type Options struct {
	SkipEnrich bool
	Force      bool
}

// Syncer copies the aggregated portfolio into the store and enriches it.
type Syncer struct {
	Source      portfolio.Source
	Store       Store
	Summarizer  Summarizer
	Embedder    Embedder
	UI          *output.UI
	Logger      *slog.Logger
	Username    string
	Concurrency int
}

// Run wires the real clients from cfg and syncs.
func Run(ctx context.Context, cfg *config.Config, ui *output.UI, log *slog.Logger, opts Options) error {
	ui.Info("Connecting to SurrealDB...")
	db, err := surrealdb.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(ctx) }()

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	s := &Syncer{
		Source:      github.NewClientFromConfig(cfg),
		Store:       db,
		Summarizer:  llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel),
		Embedder:    embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel),
		UI:          ui,
		Logger:      log,
		Username:    cfg.GitHubUsername,
		Concurrency: cfg.EnrichConcurrency,
	}
	return s.Sync(ctx, opts)
}

func (s *Syncer) Sync(ctx context.Context, opts Options) error {
	ui := s.UI

	// Step 1: Aggregate from GitHub
	ui.Info("Loading projects for %s...", s.Username)
	repos, err := portfolio.Load(ctx, s.Source, s.Username, portfolio.Options{
		Concurrency: s.Concurrency,
		Logger:      s.Logger,
	})
	if err != nil {
		return fmt.Errorf("loading portfolio: %w", err)
	}

	// Step 2: Upsert, keeping the listing order as position
	for i, repo := range repos {
		if err := s.Store.UpsertProject(ctx, repo, i); err != nil {
			return err
		}
	}
	ui.Success("Stored %d projects", len(repos))

	if opts.SkipEnrich {
		ui.Info("Skipping enrichment (--skip-enrich)")
		return nil
	}

	if err := s.summarize(ctx, opts.Force); err != nil {
		return err
	}
	if err := s.embed(ctx, opts.Force); err != nil {
		return err
	}

	ui.Success("Sync complete!")
	return nil
}

func (s *Syncer) summarize(ctx context.Context, force bool) error {
	ui := s.UI

	var todo []models.Repo
	var err error
	if force {
		todo, err = s.Store.AllProjects(ctx)
	} else {
		todo, err = s.Store.ProjectsNeedingBlurb(ctx)
	}
	if err != nil {
		return err
	}
	if len(todo) == 0 {
		ui.Info("All projects already have a blurb")
		return nil
	}

	ui.Info("Writing blurbs for %d projects...", len(todo))
	var done atomic.Int64
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(summarizeConcurrency)

	for _, repo := range todo {
		g.Go(func() error {
			result, err := s.Summarizer.Summarize(gCtx, repo)
			if err != nil {
				ui.Warning("%v", err)
				return nil // continue with other projects
			}
			if err := s.Store.UpdateBlurb(gCtx, repo, result.Summary, result.Categories); err != nil {
				ui.Warning("storing blurb for %s: %v", repo.Name, err)
				return nil
			}
			n := done.Add(1)
			ui.VerboseLog("Blurb %d/%d: %s", n, len(todo), repo.Name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	ui.Success("Blurbs written (%d/%d projects)", done.Load(), len(todo))
	return nil
}

func (s *Syncer) embed(ctx context.Context, force bool) error {
	ui := s.UI

	var todo []models.Repo
	var err error
	if force {
		todo, err = s.Store.AllProjects(ctx)
	} else {
		todo, err = s.Store.ProjectsNeedingEmbedding(ctx)
	}
	if err != nil {
		return err
	}
	if len(todo) == 0 {
		ui.Info("All projects already have embeddings")
		return nil
	}

	ui.Info("Generating embeddings for %d projects...", len(todo))
	texts := make([]string, len(todo))
	for i, repo := range todo {
		texts[i] = embedding.ProjectText(repo)
	}

	vectors, err := s.Embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("generating embeddings: %w", err)
	}
	if len(vectors) != len(todo) {
		return fmt.Errorf("generating embeddings: got %d vectors for %d projects", len(vectors), len(todo))
	}

	stored := 0
	for i, repo := range todo {
		if vectors[i] == nil {
			ui.Warning("no embedding returned for %s", repo.Name)
			continue
		}
		if err := s.Store.UpdateEmbedding(ctx, repo, vectors[i]); err != nil {
			ui.Warning("storing embedding for %s: %v", repo.Name, err)
			continue
		}
		stored++
	}
	ui.Success("Stored %d embeddings", stored)
	return nil
}
