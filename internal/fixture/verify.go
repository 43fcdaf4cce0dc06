package fixture

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// AssignFunc maps a state to a bucket.
type AssignFunc func(state int64, buckets int32) int32

// Mismatch is a case the assignment function got wrong.
type Mismatch struct {
	Case
	Index int
	Got   int32
}

// Verify runs fn over every case using up to workers goroutines and
// returns the mismatches in table order. workers <= 0 means GOMAXPROCS.
func Verify(ctx context.Context, cases []Case, fn AssignFunc, workers int) ([]Mismatch, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cases) {
		workers = max(len(cases), 1)
	}

	chunk := (len(cases) + workers - 1) / workers
	found := make([][]Mismatch, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := range workers {
		lo := w * chunk
		hi := min(lo+chunk, len(cases))
		if lo >= hi {
			continue
		}

		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				c := cases[i]
				if got := fn(c.State, c.Buckets); got != c.Expected {
					found[w] = append(found[w], Mismatch{Case: c, Index: i, Got: got})
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var mismatches []Mismatch
	for _, m := range found {
		mismatches = append(mismatches, m...)
	}
	return mismatches, nil
}
