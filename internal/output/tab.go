// Package output renders tier reports.
package output

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/store"
	"github.com/inodb/vibe-tier/internal/tier"
)

// Row is one reported variant with the data joined to it.
type Row struct {
	Record     *consensus.Record
	Assignment tier.Assignment
	Coverage   *coverage.Row     // coverage of the first member amplicon, if known
	Recurrence *store.Recurrence // nil when not computed
}

var callerColumns = map[string]string{
	caller.Mutect:    "MuTect_AF",
	caller.VarDict:   "VarDict_AF",
	caller.FreeBayes: "FreeBayes_AF",
	caller.Scalpel:   "Scalpel_AF",
	caller.Platypus:  "Platypus_AF",
	caller.Pindel:    "Pindel_AF",
}

// TabWriter writes tiered variants in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	columns := []string{
		"Variant_ID",
		"Gene",
		"Amplicon",
		"Ref",
		"Alt",
		"Codon",
		"AA",
		"Max_Somatic_VAF",
		"Callers",
		"Times_Called",
		"VAF_Median",
		"VAF_StdDev",
		"Caller_Counts",
		"COSMIC_IDs",
		"Num_COSMIC_Samples",
		"COSMIC_AA",
		"ClinVar_Significance",
		"ClinVar_HGVS",
		"ClinVar_Disease",
		"Coverage",
		"Num_Reads",
		"Impact",
		"Severity",
		"Gene_Type",
		"Max_Pop_AF",
		"Min_Depth",
		"Max_Depth",
		"Chrom",
		"Start",
		"End",
		"rsID",
		"Tier",
		"Outcome",
	}
	for _, c := range caller.All {
		columns = append(columns, callerColumns[c])
	}
	return &TabWriter{w: bufio.NewWriter(w), columns: columns}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single row. Missing values are written as "-".
func (tw *TabWriter) Write(r Row) error {
	rec := r.Record

	amplicon := "-"
	if len(rec.AmpliconMembership) > 0 {
		amplicon = strings.Join(rec.AmpliconMembership, ",")
	}

	depth, reads := "-", "-"
	if r.Coverage != nil {
		depth = formatFloat(r.Coverage.MeanCoverage)
		reads = strconv.FormatInt(r.Coverage.NumReads, 10)
	}

	timesCalled, vafMedian, vafStd, callerCounts := "-", "-", "-", "-"
	if r.Recurrence != nil {
		timesCalled = strconv.Itoa(r.Recurrence.TimesCalled)
		vafMedian = formatFloat(r.Recurrence.VAFMedian)
		vafStd = formatFloat(r.Recurrence.VAFStdDev)
		callerCounts = dash(formatCounts(r.Recurrence.CallerCounts))
	}

	values := []string{
		rec.Key.ID(),
		dash(rec.Effect.Gene),
		amplicon,
		rec.Key.Ref,
		rec.Key.Alt,
		dash(rec.Effect.CodonChange),
		dash(rec.Effect.AAChange),
		formatFloat(rec.MaxSomaticAlleleFraction),
		dash(strings.Join(rec.CallerNames(), ",")),
		timesCalled,
		vafMedian,
		vafStd,
		callerCounts,
		dash(strings.Join(rec.COSMIC.IDs, ",")),
		strconv.FormatInt(rec.COSMIC.SampleCount, 10),
		dash(rec.COSMIC.AA),
		dash(strings.Join(rec.ClinVar.Significance, ",")),
		dash(rec.ClinVar.HGVS),
		dash(rec.ClinVar.Disease),
		depth,
		reads,
		dash(rec.Effect.Impact),
		rec.Effect.Severity.String(),
		dash(rec.GeneType),
		formatFloat(rec.PopulationMaxAlleleFrequency),
		strconv.FormatInt(rec.MinDepth, 10),
		strconv.FormatInt(rec.MaxDepth, 10),
		rec.Key.Chrom,
		strconv.FormatInt(rec.Key.Start, 10),
		strconv.FormatInt(rec.Key.End, 10),
		dash(rec.RSID),
		r.Assignment.Tier.String(),
		r.Assignment.Outcome.String(),
	}
	for _, c := range caller.All {
		af := "-"
		if cr, ok := rec.PerCaller[c]; ok {
			af = formatFloat(cr.AlleleFraction())
		}
		values = append(values, af)
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatCounts renders counts as "name: n" pairs sorted by name.
func formatCounts(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + strconv.Itoa(counts[name])
	}
	return strings.Join(parts, ",")
}

func dash(s string) string {
	if s == "" || s == consensus.None {
		return "-"
	}
	return s
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
