package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/mppinav/internal/dynamo"
)

// Factory builds a fresh simulator for one ensemble member.
type Factory func(seed uint64) (*Simulator, error)

// Ensemble runs the same scenario under consecutive controller seeds.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart uint64
	workers   int
}

func NewEnsemble(factory Factory, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

// SetWorkers caps concurrent runs; n <= 0 means unbounded.
func (e *Ensemble) SetWorkers(n int) { e.workers = n }

func (e *Ensemble) Run(ctx context.Context, x0 dynamo.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			s, err := e.factory(e.seedStart + uint64(idx))
			if err != nil {
				return err
			}
			res, err := s.Run(ctx, x0, cfg)
			results[idx] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
