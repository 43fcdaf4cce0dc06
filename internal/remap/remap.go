// Package remap measures how many keys change bucket when the bucket count
// grows by one.
package remap

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidRange = errors.New("remap: invalid bucket range")

// AssignFunc maps a state to a bucket.
type AssignFunc func(state int64, buckets int32) int32

// Step is the outcome of growing the bucket count from From to To.
type Step struct {
	From  int32
	To    int32
	Moved int
	Total int
	// Stray counts moved keys that did not land in the new bucket.
	Stray int
}

// Fraction is the share of keys that changed bucket.
func (s Step) Fraction() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Moved) / float64(s.Total)
}

// Ideal is the minimal share of keys that must move, 1/To.
func (s Step) Ideal() float64 {
	return 1 / float64(s.To)
}

// Deviation is the absolute distance between Fraction and Ideal.
func (s Step) Deviation() float64 {
	return math.Abs(s.Fraction() - s.Ideal())
}

func (s Step) String() string {
	return fmt.Sprintf("%d->%d moved=%d/%d (%.4f, ideal %.4f)", s.From, s.To, s.Moved, s.Total, s.Fraction(), s.Ideal())
}

// Keys returns n deterministic, well-distributed sample keys.
func Keys(n int, seed uint64) []int64 {
	keys := make([]int64, n)
	var buf [8]byte
	for i := range keys {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		keys[i] = int64(xxh3.HashSeed(buf[:], seed))
	}
	return keys
}

// Run computes one Step for every n in [from, to), growing n buckets to
// n+1, using up to workers goroutines. workers <= 0 means GOMAXPROCS.
func Run(ctx context.Context, keys []int64, from, to int32, fn AssignFunc, workers int) ([]Step, error) {
	if from < 1 || to <= from {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, from, to)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	steps := make([]Step, to-from)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range steps {
		n := from + int32(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			steps[i] = measure(keys, n, fn)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return steps, nil
}

func measure(keys []int64, n int32, fn AssignFunc) Step {
	step := Step{From: n, To: n + 1, Total: len(keys)}
	for _, key := range keys {
		before, after := fn(key, n), fn(key, n+1)
		if before == after {
			continue
		}
		step.Moved++
		if after != n {
			step.Stray++
		}
	}
	return step
}
