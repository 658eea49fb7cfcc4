package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/zeuecs/pkg/sequence"
)

// Concurrent runs action for each element of the iterator in its own goroutine
// and waits for all of them. The first error cancels the context handed to the
// remaining actions and is returned.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], action func(context.Context, T) error) error {
	return Limited(ctx, i, -1, action)
}

// Limited is Concurrent with at most limit actions in flight. A negative limit
// means no limit.
func Limited[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	next, stop := i.Pull()
	defer stop()

	for {
		value, valid := next()
		if !valid {
			break
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return action(gctx, value)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
