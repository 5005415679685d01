package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/locus"
	"github.com/inodb/vibe-tier/internal/store"
	"github.com/inodb/vibe-tier/internal/tier"
)

func brafRecord() *consensus.Record {
	rec := consensus.New(locus.NewKey("7", 140453136, "A", "T"), consensus.Scope{Sample: "S1", Library: "lib1"})
	rec.Callers = []string{caller.VarDict, caller.Mutect}
	rec.PerCaller[caller.Mutect] = &caller.MutectRecord{DP: 400, AltDepth: 100, FA: "0.25"}
	rec.PerCaller[caller.VarDict] = &caller.VarDictRecord{DP: 500, VD: 100}
	rec.MaxSomaticAlleleFraction = 0.25
	rec.MinDepth = 400
	rec.MaxDepth = 500
	rec.Effect.Gene = "BRAF"
	rec.Effect.AAChange = "p.V600E"
	rec.Effect.Impact = "MODERATE"
	rec.Effect.Severity = consensus.SeverityMed
	rec.COSMIC.IDs = []string{"COSM476"}
	rec.COSMIC.SampleCount = 12
	rec.AmpliconMembership = []string{"BRAF_1"}
	return rec
}

func parseTab(t *testing.T, out string) []map[string]string {
	t.Helper()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.NotEmpty(t, lines)
	header := strings.Split(lines[0], "\t")
	var rows []map[string]string
	for _, line := range lines[1:] {
		fields := strings.Split(line, "\t")
		require.Len(t, fields, len(header))
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = fields[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func TestTabWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	header := buf.String()
	for _, col := range []string{"Variant_ID", "Gene", "Max_Somatic_VAF", "COSMIC_IDs", "Tier", "Outcome", "MuTect_AF", "Pindel_AF"} {
		assert.Contains(t, header, col)
	}
	assert.True(t, strings.HasPrefix(header, "Variant_ID\t"))
}

func TestTabWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	cov := &coverage.Row{Amplicon: "BRAF_1", NumReads: 900, MeanCoverage: 612.5}
	rec := &store.Recurrence{
		TimesCalled:  3,
		VAFMedian:    0.25,
		VAFStdDev:    0.05,
		CallerCounts: map[string]int{"vardict": 2, "mutect": 3},
	}

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(Row{
		Record:     brafRecord(),
		Assignment: tier.Assignment{Tier: tier.Tier1, Outcome: tier.Pass},
		Coverage:   cov,
		Recurrence: rec,
	}))
	require.NoError(t, w.Flush())

	rows := parseTab(t, buf.String())
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, "chr7:140453135-140453136_A_T", row["Variant_ID"])
	assert.Equal(t, "BRAF", row["Gene"])
	assert.Equal(t, "BRAF_1", row["Amplicon"])
	assert.Equal(t, "p.V600E", row["AA"])
	assert.Equal(t, "-", row["Codon"])
	assert.Equal(t, "0.25", row["Max_Somatic_VAF"])
	assert.Equal(t, "mutect,vardict", row["Callers"])
	assert.Equal(t, "3", row["Times_Called"])
	assert.Equal(t, "mutect: 3,vardict: 2", row["Caller_Counts"])
	assert.Equal(t, "COSM476", row["COSMIC_IDs"])
	assert.Equal(t, "12", row["Num_COSMIC_Samples"])
	assert.Equal(t, "612.5", row["Coverage"])
	assert.Equal(t, "900", row["Num_Reads"])
	assert.Equal(t, "MED", row["Severity"])
	assert.Equal(t, "-", row["Gene_Type"])
	assert.Equal(t, "-1", row["Max_Pop_AF"])
	assert.Equal(t, "400", row["Min_Depth"])
	assert.Equal(t, "500", row["Max_Depth"])
	assert.Equal(t, "TIER1", row["Tier"])
	assert.Equal(t, "PASS", row["Outcome"])
	assert.Equal(t, "0.25", row["MuTect_AF"])
	assert.Equal(t, "0.2", row["VarDict_AF"])
	assert.Equal(t, "-", row["FreeBayes_AF"])
}

func TestTabWriter_WriteMissingJoins(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	rec := consensus.New(locus.NewKey("chr1", 100, "C", "G"), consensus.Scope{})
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(Row{Record: rec, Assignment: tier.Assignment{Tier: tier.Tier4, Outcome: tier.Fail}}))
	require.NoError(t, w.Flush())

	row := parseTab(t, buf.String())[0]
	assert.Equal(t, "-", row["Amplicon"])
	assert.Equal(t, "-", row["Coverage"])
	assert.Equal(t, "-", row["Times_Called"])
	assert.Equal(t, "-", row["Caller_Counts"])
	assert.Equal(t, "-", row["Callers"])
	assert.Equal(t, "-", row["rsID"])
	assert.Equal(t, "TIER4", row["Tier"])
	assert.Equal(t, "FAIL", row["Outcome"])
}
