package core

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/deatools/deascope/schema"
)

// forEachDMU runs fn for every DMU index on a bounded worker pool. A fatal
// error from fn cancels the remaining work and is returned as-is; an
// expired or cancelled context comes back as a schema.PartialError listing
// the DMUs that completed.
func forEachDMU(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var completed []int

	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := fn(gctx, i); err != nil {
				return err
			}
			mu.Lock()
			completed = append(completed, i)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		sort.Ints(completed)
		return &schema.PartialError{Completed: completed, Cause: err}
	}
	return err
}

// failures collects the DMU indices hit by numerical solver trouble.
type failures struct {
	mu   sync.Mutex
	idxs []int
}

func (f *failures) add(i int) {
	f.mu.Lock()
	f.idxs = append(f.idxs, i)
	f.mu.Unlock()
}

func (f *failures) list() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.idxs) == 0 {
		return nil
	}
	out := append([]int(nil), f.idxs...)
	sort.Ints(out)
	return out
}
