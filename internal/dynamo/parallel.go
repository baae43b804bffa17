package dynamo

import (
	"golang.org/x/sync/errgroup"
)

// ParallelFor executes fn over [0, n) split into at most workers contiguous
// chunks. The first error returned by any chunk is returned once all chunks
// finish.
func ParallelFor(n, workers, minChunk int, fn func(start, end int) error) error {
	if workers <= 1 || n <= minChunk {
		return fn(0, n)
	}

	if minChunk < 1 {
		minChunk = 1
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		g.Go(func() error {
			return fn(start, end)
		})
	}

	return g.Wait()
}
