package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kevinmichaelchen/portfolio/internal/config"
	"github.com/kevinmichaelchen/portfolio/internal/embedding"
	"github.com/kevinmichaelchen/portfolio/internal/github"
	"github.com/kevinmichaelchen/portfolio/internal/models"
	"github.com/kevinmichaelchen/portfolio/internal/output"
	"github.com/kevinmichaelchen/portfolio/internal/particles"
	"github.com/kevinmichaelchen/portfolio/internal/pipeline"
	"github.com/kevinmichaelchen/portfolio/internal/portfolio"
	"github.com/kevinmichaelchen/portfolio/internal/surrealdb"
	"github.com/kevinmichaelchen/portfolio/internal/web"
)

var ui = output.New()

func main() {
	root := &cobra.Command{
		Use:           "portfolio",
		Short:         "Personal portfolio site: GitHub projects and particle overlays",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&ui.Verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(serveCmd(), projectsCmd(), particlesCmd(), schemaCmd(), syncCmd(), searchCmd(), statsCmd())

	if err := root.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if ui.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loader(cfg *config.Config, log *slog.Logger) web.Loader {
	gh := github.NewClientFromConfig(cfg)
	return func(ctx context.Context) ([]models.Repo, error) {
		return portfolio.Load(ctx, gh, cfg.GitHubUsername, portfolio.Options{
			Concurrency: cfg.EnrichConcurrency,
			Logger:      log,
		})
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := newLogger()
			if cfg.GinMode != "" {
				gin.SetMode(cfg.GinMode)
			}

			srv := &http.Server{
				Addr:              cfg.Addr(),
				Handler:           web.NewServer(cfg, loader(cfg, log), log).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				ui.Info("Serving %s's portfolio on %s", cfg.GitHubUsername, output.Cyan("http://localhost"+cfg.Addr()))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serving: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			ui.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		},
	}
}

func projectsCmd() *cobra.Command {
	var asJSON bool
	var username string

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List the projects shown on the projects page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if username != "" {
				cfg.GitHubUsername = username
			}

			repos, err := loader(cfg, newLogger())(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(ui.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(repos)
			}

			if len(repos) == 0 {
				ui.Info("No public repositories for %s", cfg.GitHubUsername)
				return nil
			}
			table := ui.Table([]string{"#", "Name", "Language", "Topics", "Live Demo"})
			for i, r := range repos {
				lang := "-"
				if r.Language != nil {
					lang = *r.Language
				}
				if err := table.Append([]string{
					fmt.Sprintf("%d", i+1),
					output.Cyan(r.Name),
					lang,
					strings.Join(r.Topics, ", "),
					output.LiveColor(r.LiveDemoURL),
				}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVarP(&username, "user", "u", "", "GitHub user (defaults to GITHUB_USERNAME)")
	return cmd
}

func particlesCmd() *cobra.Command {
	var (
		variant       string
		policy        string
		count, ticks  int
		width, height float64
		period        time.Duration
		seed          uint64
	)

	cmd := &cobra.Command{
		Use:   "particles",
		Short: "Run a particle overlay headless and print the final field",
		RunE: func(cmd *cobra.Command, args []string) error {
			if ticks < 1 {
				return fmt.Errorf("--ticks must be at least 1")
			}
			var pc particles.Config
			switch variant {
			case "trail":
				pc = particles.TrailConfig(count)
			case "glow":
				pc = particles.GlowConfig(count)
			default:
				return fmt.Errorf("unknown variant %q (want trail or glow)", variant)
			}

			switch policy {
			case "":
			case particles.PauseAndBounce.String():
				pc.Policy = particles.PauseAndBounce
			case particles.OvershootAndBounce.String():
				pc.Policy = particles.OvershootAndBounce
			default:
				return fmt.Errorf("unknown policy %q (want pause or overshoot)", policy)
			}

			var opts []particles.Option
			if cmd.Flags().Changed("seed") {
				opts = append(opts, particles.WithRand(rand.New(rand.NewPCG(seed, seed))))
			}
			field := particles.NewField(pc, width, height, opts...)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			n := 0
			_ = field.Run(ctx, period, func([]particles.Particle) {
				n++
				if n >= ticks {
					cancel()
				}
			})

			ui.Info("%s field, %d particles, %d ticks, policy %s", variant, count, n, pc.Policy)
			table := ui.Table([]string{"#", "X", "Y", "VX", "VY", "Hue", "Trail"})
			for i, p := range field.Particles() {
				if err := table.Append([]string{
					fmt.Sprintf("%d", i),
					fmt.Sprintf("%.1f", p.Pos.X),
					fmt.Sprintf("%.1f", p.Pos.Y),
					fmt.Sprintf("%+.2f", p.Vel.X),
					fmt.Sprintf("%+.2f", p.Vel.Y),
					fmt.Sprintf("%.0f", p.Hue),
					fmt.Sprintf("%d", len(p.Trail)),
				}); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}
			ui.VerboseLog("%d circles to draw", len(particles.Render(field.Particles())))
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "trail", "Overlay variant: trail or glow")
	cmd.Flags().StringVar(&policy, "policy", "", "Override the boundary policy: pause or overshoot")
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of particles")
	cmd.Flags().IntVar(&ticks, "ticks", 60, "Ticks to run")
	cmd.Flags().Float64Var(&width, "width", 1280, "Viewport width")
	cmd.Flags().Float64Var(&height, "height", 720, "Viewport height")
	cmd.Flags().DurationVar(&period, "period", particles.DefaultPeriod, "Tick interval")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible field")
	return cmd
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Initialize/update SurrealDB schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			if err := db.InitSchema(ctx); err != nil {
				return err
			}
			ui.Success("Schema initialized")
			return nil
		},
	}
}

func syncCmd() *cobra.Command {
	var skipEnrich, force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Aggregate projects from GitHub, enrich with AI, store in SurrealDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return pipeline.Run(cmd.Context(), cfg, ui, newLogger(), pipeline.Options{
				SkipEnrich: skipEnrich,
				Force:      force,
			})
		},
	}
	cmd.Flags().BoolVar(&skipEnrich, "skip-enrich", false, "Fetch and store only (no AI calls)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-enrich all projects")
	return cmd
}

func searchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Semantic similarity search across projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()
			query := args[0]

			embClient := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
			vec, err := embClient.EmbedSingle(ctx, query)
			if err != nil {
				return fmt.Errorf("embedding query: %w", err)
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			results, err := db.VectorSearch(ctx, vec, k)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				ui.Info("No results found")
				return nil
			}

			ui.Info("Top %d results for %q:", len(results), query)
			fmt.Fprintln(ui.Out)
			for i, r := range results {
				fmt.Fprintf(ui.Out, "%d. %s  (%s)\n", i+1, output.Cyan(r.Name), output.ScoreColor(r.Score))
				fmt.Fprintf(ui.Out, "   %s\n", r.URL)
				if r.AIBlurb != nil {
					fmt.Fprintf(ui.Out, "   %s\n", *r.AIBlurb)
				} else if r.Description != nil {
					fmt.Fprintf(ui.Out, "   %s\n", *r.Description)
				}
				if len(r.AICategories) > 0 {
					fmt.Fprintf(ui.Out, "   Tags: %s\n", strings.Join(r.AICategories, ", "))
				}
				fmt.Fprintln(ui.Out)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 5, "Number of results")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show project counts and topic breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Load()

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(ui.Out, "Projects:  %d\n", stats.Total)
			fmt.Fprintf(ui.Out, "Live demo: %s\n", output.Green(fmt.Sprintf("%d", stats.Live)))
			fmt.Fprintf(ui.Out, "Blurbs:    %d\n", stats.Enriched)
			fmt.Fprintf(ui.Out, "Embedded:  %d\n", stats.Embedded)

			tags, err := db.TopicBreakdown(ctx)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				return nil
			}

			fmt.Fprintln(ui.Out)
			table := ui.Table([]string{"Topic", "Projects"})
			for _, t := range tags {
				if err := table.Append([]string{t.Tag, fmt.Sprintf("%d", t.Count)}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}
