package output

import (
	"bufio"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/pipeline"
	"github.com/inodb/vibe-tier/internal/tier"
)

// WriteCoverage writes the coverage section: sample header and thresholds,
// then one line per amplicon with its status.
func WriteCoverage(w io.Writer, sc consensus.Scope, th tier.Thresholds, rows []coverage.Row) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Sample\t%s\n", sc.Sample)
	fmt.Fprintf(bw, "Library\t%s\n", sc.Library)
	fmt.Fprintf(bw, "Run ID\t%s\n", sc.RunID)
	fmt.Fprintf(bw, "Panel\t%s\n", dash(sc.Panel))
	fmt.Fprintf(bw, "Minimum Reportable Somatic Allele Frequency\t%s\n", formatFloat(th.MinSomaticAlleleFraction))
	fmt.Fprintf(bw, "Minimum Amplicon Depth\t%d\n", th.MinDepth)
	fmt.Fprintf(bw, "Maximum Population Allele Frequency\t%s\n", formatFloat(th.MaxPopulationAlleleFrequency))
	fmt.Fprintln(bw, "Amplicon\tNum_Reads\tCoverage\tStatus")
	for _, r := range rows {
		fmt.Fprintf(bw, "%s\t%d\t%s\t%s\n", r.Amplicon, r.NumReads, formatFloat(r.MeanCoverage), r.Status())
	}
	return bw.Flush()
}

// WriteSampleSummary writes bucket counts and a plot of mean coverage per
// amplicon.
func WriteSampleSummary(w io.Writer, sc consensus.Scope, c tier.Counts, rows []coverage.Row) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Sample %s, library %s, run %s\n\n", sc.Sample, sc.Library, sc.RunID)
	if err := writeCounts(bw, c); err != nil {
		return err
	}

	if len(rows) > 0 {
		means := make([]float64, len(rows))
		low := 0
		for i, r := range rows {
			means[i] = r.MeanCoverage
			if r.Status() != coverage.StatusPass {
				low++
			}
		}
		fmt.Fprintf(bw, "\nAmplicons below %.0fx: %d of %d\n\n", coverage.WarningBelow, low, len(rows))
		fmt.Fprintln(bw, asciigraph.Plot(means,
			asciigraph.Height(8),
			asciigraph.Precision(0),
			asciigraph.Caption("mean coverage per amplicon")))
	}
	return bw.Flush()
}

func writeCounts(w io.Writer, c tier.Counts) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Bucket\tRecords")
	for _, b := range tier.Ordered {
		fmt.Fprintf(tw, "%s\t%d\n", b.Name(), c.Buckets[b])
	}
	fmt.Fprintf(tw, "off_target\t%d\n", c.OffTarget)
	fmt.Fprintf(tw, "population_filtered\t%d\n", c.PopulationFiltered)
	return tw.Flush()
}

// WriteRunSummary writes the run-level counts: succeeded and failed samples,
// each failure with its reason, and bucket totals.
func WriteRunSummary(w io.Writer, s *pipeline.RunSummary) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Run %s\n", s.RunID)
	fmt.Fprintf(bw, "Samples succeeded: %d\n", len(s.Succeeded))
	fmt.Fprintf(bw, "Samples failed: %d\n", len(s.Failed))
	for _, f := range s.Failed {
		fmt.Fprintf(bw, "  FAILED %s/%s: %v\n", f.Sample, f.Library, f.Err)
	}
	fmt.Fprintln(bw)
	if err := writeCounts(bw, s.Totals); err != nil {
		return err
	}
	return bw.Flush()
}
