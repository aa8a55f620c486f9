package portfolio

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// settleAll runs every task, at most limit at a time, and waits for all of
// them. A failed task is reported to onErr and yields def in its slot; it
// never cancels or fails its siblings. Results are in task order.
func settleAll[T any](ctx context.Context, tasks []func(context.Context) (T, error), def T, limit int, onErr func(error)) []T {
	out := make([]T, len(tasks))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		g.Go(func() error {
			v, err := task(ctx)
			if err != nil {
				if onErr != nil {
					onErr(err)
				}
				v = def
			}
			out[i] = v
			return nil // continue with other tasks
		})
	}
	_ = g.Wait()
	return out
}
