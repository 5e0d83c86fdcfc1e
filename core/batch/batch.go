package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize is the chunk size used when Options.BatchSize is unset.
	DefaultBatchSize = 100
	// DefaultConcurrency is the in-flight bound used when Options.Concurrency is unset.
	DefaultConcurrency = 10
)

// Options controls chunking and the failure policy of Apply.
type Options struct {
	// BatchSize is the number of items per sequential chunk.
	BatchSize int
	// Concurrency is the maximum number of in-flight fn calls within a chunk.
	Concurrency int
	// BestEffort, when true, records per-item failures and continues
	// instead of aborting on the first error.
	BestEffort bool
}

// Failure describes a single item that could not be applied.
type Failure struct {
	// Index is the item's position in the original slice.
	Index int
	// Err is the error returned by fn for this item.
	Err error
}

func (f Failure) String() string {
	return fmt.Sprintf("item %d: %v", f.Index, f.Err)
}

// Result reports what Apply accomplished.
type Result struct {
	// Applied is the number of items fn completed without error.
	Applied int
	// Failures holds per-item errors. Empty in fail-fast mode unless the
	// aborting chunk had other in-flight failures.
	Failures []Failure
}

// Apply partitions items into sequential chunks of BatchSize and invokes fn
// on every item with at most Concurrency invocations in flight. A chunk
// fully drains before the next one starts.
//
// In fail-fast mode the first error cancels the current chunk's context and
// Apply returns that error alongside the partial result. In best-effort mode
// Apply always returns a nil error; callers inspect Result.Failures.
func Apply[T any](ctx context.Context, items []T, fn func(context.Context, T) error, opts Options) (*Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	result := &Result{}
	var mu sync.Mutex

	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		g, chunkCtx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)

		for i := start; i < end; i++ {
			index := i
			item := items[i]

			g.Go(func() error {
				if err := chunkCtx.Err(); err != nil {
					return err
				}

				err := fn(chunkCtx, item)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					result.Applied++
					return nil
				}

				result.Failures = append(result.Failures, Failure{Index: index, Err: err})
				if opts.BestEffort {
					return nil
				}
				return err
			})
		}

		if err := g.Wait(); err != nil {
			return result, err
		}
	}

	return result, nil
}
