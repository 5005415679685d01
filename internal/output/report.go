package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/locus"
	"github.com/inodb/vibe-tier/internal/store"
	"github.com/inodb/vibe-tier/internal/tier"
)

// SampleReport holds everything rendered for one library.
type SampleReport struct {
	Scope    consensus.Scope
	Buckets  *tier.Buckets
	Coverage []coverage.Row

	// Recurrence is optional per-locus recurrence from the store.
	Recurrence map[locus.Key]store.Recurrence
}

// Prefix is the file name prefix of the report, "{sample}.{library}".
func (r *SampleReport) Prefix() string {
	return r.Scope.Sample + "." + r.Scope.Library
}

// Rows returns the rows of one bucket with coverage and recurrence joined.
func (r *SampleReport) Rows(b tier.Bucket) []Row {
	cov := make(map[string]*coverage.Row, len(r.Coverage))
	for i := range r.Coverage {
		cov[r.Coverage[i].Amplicon] = &r.Coverage[i]
	}

	recs := r.Buckets.Records(b)
	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		row := Row{Record: rec, Assignment: tier.Assignment(b)}
		for _, a := range rec.AmpliconMembership {
			if c, ok := cov[a]; ok {
				row.Coverage = c
				break
			}
		}
		if rc, ok := r.Recurrence[rec.Key]; ok {
			row.Recurrence = &rc
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteBucket writes the tab-delimited rows of one bucket, header included.
func (r *SampleReport) WriteBucket(w io.Writer, b tier.Bucket) error {
	tw := NewTabWriter(w)
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, row := range r.Rows(b) {
		if err := tw.Write(row); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteFiles writes the six bucket files, the coverage file and the summary
// into dir and returns the paths written.
func (r *SampleReport) WriteFiles(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}

	var paths []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, r.Prefix()+"."+name+".txt")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		paths = append(paths, path)
		return nil
	}

	for _, b := range tier.Ordered {
		if err := write(b.Name(), func(w io.Writer) error { return r.WriteBucket(w, b) }); err != nil {
			return paths, err
		}
	}
	if err := write("coverage", func(w io.Writer) error {
		return WriteCoverage(w, r.Scope, r.Buckets.Thresholds(), r.Coverage)
	}); err != nil {
		return paths, err
	}
	if err := write("summary", func(w io.Writer) error {
		return WriteSampleSummary(w, r.Scope, r.Buckets.Counts(), r.Coverage)
	}); err != nil {
		return paths, err
	}
	return paths, nil
}
