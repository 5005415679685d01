package pipeline

import (
	"time"

	"github.com/inodb/vibe-tier/internal/tier"
)

// RunSummary is the result of a batch run.
type RunSummary struct {
	RunID     string
	Started   time.Time
	Finished  time.Time
	Succeeded []*SampleResult // in input order
	Failed    []*SampleError  // in input order
	Totals    tier.Counts
}

// Aggregator merges independent per-sample results into a RunSummary. It is
// owned by a single goroutine.
type Aggregator struct {
	s RunSummary
}

// NewAggregator starts a summary for runID.
func NewAggregator(runID string, started time.Time) *Aggregator {
	return &Aggregator{s: RunSummary{RunID: runID, Started: started, Totals: tier.NewCounts()}}
}

// Add records a successful sample.
func (a *Aggregator) Add(res *SampleResult) {
	a.s.Succeeded = append(a.s.Succeeded, res)
	a.s.Totals.Merge(res.Counts())
}

// Fail records a failed sample.
func (a *Aggregator) Fail(err *SampleError) {
	a.s.Failed = append(a.s.Failed, err)
}

// Summary returns the summary stamped with finished.
func (a *Aggregator) Summary(finished time.Time) *RunSummary {
	s := a.s
	s.Finished = finished
	return &s
}

// OK reports whether every sample succeeded.
func (s *RunSummary) OK() bool {
	return len(s.Failed) == 0
}
