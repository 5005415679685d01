package store

import (
	"context"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/inodb/vibe-tier/internal/locus"
)

// Recurrence summarizes how often a locus was called across every stored
// sample of one reference genome build.
type Recurrence struct {
	TimesCalled  int
	VAFMedian    float64 // -1 when no sample reported an allele fraction
	VAFStdDev    float64 // population standard deviation, -1 as above
	CallerCounts map[string]int
}

// Recurrence computes recurrence statistics for key within genome. Keys are
// only unique within one build.
func (ss *Session) Recurrence(ctx context.Context, genome string, key locus.Key) (Recurrence, error) {
	rows, err := ss.conn.QueryContext(ctx, `SELECT max_som_aaf, callers FROM variants
		WHERE reference_genome=? AND chrom=? AND start_pos=? AND ref=? AND alt=?`,
		genome, key.Chrom, key.Start, key.Ref, key.Alt)
	if err != nil {
		return Recurrence{}, unavailable("query recurrence", err)
	}
	defer rows.Close()

	r := Recurrence{CallerCounts: make(map[string]int)}
	var vafs []float64
	for rows.Next() {
		var vaf float64
		var callers string
		if err := rows.Scan(&vaf, &callers); err != nil {
			return Recurrence{}, unavailable("scan recurrence", err)
		}
		r.TimesCalled++
		if vaf >= 0 {
			vafs = append(vafs, vaf)
		}
		for _, c := range strings.Split(callers, ",") {
			if c != "" {
				r.CallerCounts[c]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Recurrence{}, unavailable("iterate recurrence", err)
	}

	r.VAFMedian, r.VAFStdDev = vafStats(vafs)
	return r, nil
}

func vafStats(vafs []float64) (median, stddev float64) {
	if len(vafs) == 0 {
		return -1, -1
	}
	sort.Float64s(vafs)
	n := len(vafs)
	median = vafs[n/2]
	if n%2 == 0 {
		median = (vafs[n/2-1] + vafs[n/2]) / 2
	}
	_, stddev = stat.PopMeanStdDev(vafs, nil)
	return median, stddev
}
