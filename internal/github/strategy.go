package github

import (
	"context"

	"github.com/kevinmichaelchen/portfolio/internal/models"
)

// Strategy determines how the repository listing is paged through.
//
// The listing endpoint returns 30 repositories per page by default. The
// portfolio has always shown only that first page, so FirstPageStrategy is
// the default; AllPagesStrategy follows the Link header to the end.
type Strategy interface {
	Fetch(ctx context.Context, c *Client, username string) ([]models.Repo, error)
}

// FirstPageStrategy reads a single page, in the order GitHub returns it.
type FirstPageStrategy struct{}

func (FirstPageStrategy) Fetch(ctx context.Context, c *Client, username string) ([]models.Repo, error) {
	repos, _, err := c.listPage(ctx, username, c.reposURL(username))
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// AllPagesStrategy follows rel="next" links until the listing is exhausted or
// MaxPages pages were read. MaxPages <= 0 means no limit. A failed page fails
// the whole listing.
type AllPagesStrategy struct {
	MaxPages int
}

func (s AllPagesStrategy) Fetch(ctx context.Context, c *Client, username string) ([]models.Repo, error) {
	var all []models.Repo
	next := c.reposURL(username)

	for page := 1; next != ""; page++ {
		repos, nextURL, err := c.listPage(ctx, username, next)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)

		if s.MaxPages > 0 && page >= s.MaxPages {
			break
		}
		next = nextURL
	}

	if all == nil {
		all = []models.Repo{}
	}
	return all, nil
}
