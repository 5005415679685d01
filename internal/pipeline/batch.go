package pipeline

import (
	"context"
	"errors"
	"runtime"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/store"
)

// DefaultRetries is the number of whole-sample retries on store failures.
const DefaultRetries = 3

// workResult is the outcome of one library, tagged with its input order.
type workResult struct {
	Seq    int
	Result *SampleResult
	Err    *SampleError
}

// RunBatch processes libs concurrently, at most opts.Workers at a time, and
// writes each result to st (which may be nil). A failed library does not
// stop the others; it is reported in the summary. The returned error is
// non-nil only when ctx is cancelled or the run log cannot be written.
func RunBatch(ctx context.Context, st *store.Store, libs []Library, opts Options) (*RunSummary, error) {
	log := opts.logger()
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	runID := uuid.NewString()
	agg := NewAggregator(runID, opts.now())
	log.Info("starting run",
		zap.String("run_id", runID),
		zap.Int("libraries", len(libs)),
		zap.Int("workers", workers))

	results := make(chan workResult, 2*workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		for i, lib := range libs {
			i, lib := i, lib
			if lib.RunID == "" {
				lib.RunID = runID
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := runSample(gctx, st, lib, opts)
				wr := workResult{Seq: i, Result: res}
				if err != nil {
					var se *SampleError
					if !errors.As(err, &se) {
						se = &SampleError{Sample: lib.Sample, Library: lib.Library, Err: err}
					}
					wr.Err = se
				}
				results <- wr
				return nil
			})
		}
		g.Wait()
		close(results)
	}()

	orderedCollect(results, func(wr workResult) error {
		if wr.Err != nil {
			log.Error("sample failed",
				zap.String("sample", wr.Err.Sample),
				zap.String("library", wr.Err.Library),
				zap.Error(wr.Err.Err))
			agg.Fail(wr.Err)
			return nil
		}
		agg.Add(wr.Result)
		return nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := agg.Summary(opts.now())
	if st != nil {
		if err := saveRun(ctx, st, summary); err != nil {
			return summary, err
		}
	}
	log.Info("run finished",
		zap.String("run_id", runID),
		zap.Int("succeeded", len(summary.Succeeded)),
		zap.Int("failed", len(summary.Failed)),
		zap.Duration("elapsed", summary.Finished.Sub(summary.Started)))
	return summary, nil
}

// runSample processes and stores one library. Store failures retry the whole
// sample with exponential backoff; input errors fail immediately.
func runSample(ctx context.Context, st *store.Store, lib Library, opts Options) (*SampleResult, error) {
	log := opts.logger().With(zap.String("sample", lib.Sample), zap.String("library", lib.Library))

	var res *SampleResult
	attempts := 0
	op := func() error {
		attempts++
		r, err := ProcessSample(lib, opts)
		if err != nil {
			return backoff.Permanent(err)
		}
		if st != nil {
			if err := persist(ctx, st, r); err != nil {
				if IsInputError(err) {
					return backoff.Permanent(err)
				}
				log.Warn("store unavailable, retrying sample", zap.Int("attempt", attempts), zap.Error(err))
				return err
			}
		}
		res = r
		return nil
	}

	if err := backoff.Retry(op, newBackOff(ctx, opts)); err != nil {
		var se *SampleError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &SampleError{Sample: lib.Sample, Library: lib.Library, Err: err}
	}
	res.Attempts = attempts
	return res, nil
}

func newBackOff(ctx context.Context, opts Options) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if opts.RetryInterval > 0 {
		eb.InitialInterval = opts.RetryInterval
		eb.MaxInterval = 10 * opts.RetryInterval
	}
	retries := opts.Retries
	if retries == 0 {
		retries = DefaultRetries
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, retries), ctx)
}

// persist replaces everything stored for the sample scope with res.
func persist(ctx context.Context, st *store.Store, res *SampleResult) error {
	ss, err := st.Session(ctx)
	if err != nil {
		return err
	}
	defer ss.Close()

	if err := ss.DeleteSample(ctx, res.Scope); err != nil {
		return err
	}
	if err := ss.WriteSample(ctx, res.Scope, res.Entries); err != nil {
		return err
	}
	if len(res.Coverage) > 0 {
		if err := ss.WriteCoverage(ctx, res.Scope, coverage.Program, res.Coverage); err != nil {
			return err
		}
	}
	return nil
}

func saveRun(ctx context.Context, st *store.Store, s *RunSummary) error {
	ss, err := st.Session(ctx)
	if err != nil {
		return err
	}
	defer ss.Close()
	return ss.SaveRun(ctx, store.Run{
		ID:        s.RunID,
		Started:   s.Started,
		Finished:  s.Finished,
		Succeeded: int64(len(s.Succeeded)),
		Failed:    int64(len(s.Failed)),
	})
}

// orderedCollect calls fn for each result in input order. Out-of-order
// results wait in a pending map until their predecessors arrive. Blocks
// until results is closed.
func orderedCollect(results <-chan workResult, fn func(workResult) error) error {
	pending := make(map[int]workResult)
	next := 0

	for r := range results {
		pending[r.Seq] = r
		for {
			rr, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}
	return nil
}
