// Package portfolio builds the display-ready project list: the user's
// repositories, each enriched with its topics and, when one is published, a
// live demo URL.
package portfolio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kevinmichaelchen/portfolio/internal/models"
	"golang.org/x/sync/errgroup"
)

// Source is the remote side of the aggregation. *github.Client satisfies it.
type Source interface {
	ListRepos(ctx context.Context, username string) ([]models.Repo, error)
	Topics(ctx context.Context, username, name string) ([]string, error)
	Probe(ctx context.Context, url string) error
	PagesURL(username, name string) string
}

type Options struct {
	// Concurrency caps the topic lookups in flight, and separately the
	// probes. Zero or less issues all of them at once.
	Concurrency int
	Logger      *slog.Logger
}

// EnrichmentError describes a per-repository lookup that failed. It is
// logged and absorbed, never returned from Load.
type EnrichmentError struct {
	Repo string
	Step string
	Err  error
}

func (e *EnrichmentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Step, e.Repo, e.Err)
}

func (e *EnrichmentError) Unwrap() error { return e.Err }

// Load fetches the repositories of username and enriches every one of them.
//
// Only a failed listing fails the call, with the source's error and no
// repositories. Topic lookups and live-demo probes run concurrently; a failed
// topic lookup leaves that repository with no topics and a failed probe
// leaves it without a live demo URL. The result keeps the listing order.
// If ctx ends before every lookup has settled, Load returns ctx.Err() and
// nothing else.
func Load(ctx context.Context, src Source, username string, opts Options) ([]models.Repo, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	repos, err := src.ListRepos(ctx, username)
	if err != nil {
		return nil, err
	}

	topicTasks := make([]func(context.Context) ([]string, error), len(repos))
	probeTasks := make([]func(context.Context) (string, error), len(repos))
	for i, repo := range repos {
		name := repo.Name
		topicTasks[i] = func(ctx context.Context) ([]string, error) {
			topics, err := src.Topics(ctx, username, name)
			if err != nil {
				return nil, &EnrichmentError{Repo: name, Step: "topics", Err: err}
			}
			return topics, nil
		}
		probeTasks[i] = func(ctx context.Context) (string, error) {
			u := src.PagesURL(username, name)
			if err := src.Probe(ctx, u); err != nil {
				return "", &EnrichmentError{Repo: name, Step: "live demo probe", Err: err}
			}
			return u, nil
		}
	}

	onErr := func(err error) {
		log.Warn("enrichment failed", "user", username, "error", err)
	}

	var g errgroup.Group
	var topics [][]string
	var live []string
	g.Go(func() error {
		topics = settleAll(ctx, topicTasks, []string{}, opts.Concurrency, onErr)
		return nil
	})
	g.Go(func() error {
		live = settleAll(ctx, probeTasks, "", opts.Concurrency, onErr)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i := range repos {
		repos[i].Topics = topics[i]
		if repos[i].Topics == nil {
			repos[i].Topics = []string{}
		}
		if live[i] != "" {
			u := live[i]
			repos[i].LiveDemoURL = &u
		}
	}
	log.Info("portfolio loaded", "user", username, "repos", len(repos))
	return repos, nil
}
