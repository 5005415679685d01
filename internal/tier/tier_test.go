package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/locus"
)

func onTarget(af float64, minDepth, maxDepth int64) *consensus.Record {
	rec := consensus.New(locus.NewKey("7", 140453137, "A", "T"), consensus.Scope{Sample: "S1"})
	rec.Callers = []string{"mutect", "vardict"}
	rec.MaxSomaticAlleleFraction = af
	rec.MinDepth = minDepth
	rec.MaxDepth = maxDepth
	rec.AmpliconMembership = []string{"BRAF_1"}
	return rec
}

func TestClassify_Policy(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		modify func(*consensus.Record)
		want   Assignment
	}{
		{"cosmic hit", func(r *consensus.Record) { r.COSMIC.IDs = []string{"COSM476"} }, Assignment{Tier1, Pass}},
		{"clinvar pathogenic", func(r *consensus.Record) { r.ClinVar.Pathogenic = "pathogenic" }, Assignment{Tier1, Pass}},
		{"clinvar uncertain", func(r *consensus.Record) { r.ClinVar.Pathogenic = "uncertain" }, Assignment{Tier1, Pass}},
		{"clinvar benign", func(r *consensus.Record) { r.ClinVar.Pathogenic = "benign" }, Assignment{Tier4, Pass}},
		{"clinvar likely-benign med", func(r *consensus.Record) {
			r.ClinVar.Pathogenic = "likely-benign"
			r.Effect.Severity = consensus.SeverityMed
		}, Assignment{Tier3, Pass}},
		{"high severity", func(r *consensus.Record) { r.Effect.Severity = consensus.SeverityHigh }, Assignment{Tier3, Pass}},
		{"med severity", func(r *consensus.Record) { r.Effect.Severity = consensus.SeverityMed }, Assignment{Tier3, Pass}},
		{"low severity", func(r *consensus.Record) {}, Assignment{Tier4, Pass}},
		{"cosmic beats severity", func(r *consensus.Record) {
			r.COSMIC.IDs = []string{"COSM1"}
			r.Effect.Severity = consensus.SeverityLow
		}, Assignment{Tier1, Pass}},
		{"low fraction fails", func(r *consensus.Record) { r.MaxSomaticAlleleFraction = 0.005 }, Assignment{Tier4, Fail}},
		{"fraction at threshold passes", func(r *consensus.Record) { r.MaxSomaticAlleleFraction = 0.01 }, Assignment{Tier4, Pass}},
		{"low depth fails", func(r *consensus.Record) { r.MaxDepth = 150 }, Assignment{Tier4, Fail}},
		{"depth at threshold passes", func(r *consensus.Record) { r.MaxDepth = 200 }, Assignment{Tier4, Pass}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := onTarget(0.2, 300, 400)
			tt.modify(rec)
			got, ok := Classify(rec, th)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_BRAFExample(t *testing.T) {
	rec := onTarget(0.32, 210, 250)
	rec.Effect.Severity = consensus.SeverityHigh
	th := Thresholds{MinSomaticAlleleFraction: 0.10, MaxPopulationAlleleFrequency: 0.005, MinDepth: 200}

	got, ok := Classify(rec, th)
	require.True(t, ok)
	assert.Equal(t, Assignment{Tier3, Pass}, got)
	assert.Equal(t, "TIER3 PASS", got.String())
}

func TestClassify_RescueExample(t *testing.T) {
	rec := onTarget(0.32, 210, 250)
	rec.COSMIC.IDs = []string{"COSM12345"}
	rec.PopulationMaxAlleleFrequency = 0.02
	th := Thresholds{MinSomaticAlleleFraction: 0.10, MaxPopulationAlleleFrequency: 0.005, MinDepth: 200}

	require.True(t, RetainedByPopulation(rec, th))
	got, ok := Classify(rec, th)
	require.True(t, ok)
	assert.Equal(t, Tier1, got.Tier)
	assert.Equal(t, Pass, got.Outcome)
}

func TestClassify_ZeroCallers(t *testing.T) {
	rec := consensus.New(locus.NewKey("4", 55599321, "A", "T"), consensus.Scope{})
	rec.AmpliconMembership = []string{"KIT_1"}
	rec.Effect.Severity = consensus.SeverityHigh

	got, ok := Classify(rec, DefaultThresholds())
	require.True(t, ok)
	assert.Equal(t, Fail, got.Outcome)
	assert.Equal(t, Tier3, got.Tier)

	// Outcome is FAIL for every tier a zero-caller record can reach.
	rec.COSMIC.IDs = []string{"COSM1"}
	got, _ = Classify(rec, Thresholds{})
	assert.Equal(t, Assignment{Tier1, Fail}, got)
}

func TestClassify_OffTarget(t *testing.T) {
	tests := []struct {
		name       string
		membership []string
	}{
		{"nil", nil},
		{"empty", []string{}},
		// The sentinel produced by an independent string construction must
		// still be recognized.
		{"None sentinel", []string{string([]byte{'N', 'o', 'n', 'e'})}},
		{"empty string", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := onTarget(0.5, 500, 500)
			rec.COSMIC.IDs = []string{"COSM1"}
			rec.AmpliconMembership = tt.membership
			_, ok := Classify(rec, DefaultThresholds())
			assert.False(t, ok)
		})
	}
}

func TestRetainedByPopulation(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name   string
		freq   float64
		cosmic []string
		clin   string
		want   bool
	}{
		{"missing", -1, nil, consensus.None, true},
		{"rare", 0.001, nil, consensus.None, true},
		{"at threshold", 0.005, nil, consensus.None, true},
		{"common", 0.3, nil, consensus.None, false},
		{"common cosmic", 0.3, []string{"COSM1"}, consensus.None, true},
		{"common clinvar", 0.3, nil, "pathogenic", true},
		{"common clinvar benign", 0.3, nil, "benign", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := onTarget(0.2, 300, 300)
			rec.PopulationMaxAlleleFrequency = tt.freq
			rec.COSMIC.IDs = tt.cosmic
			rec.ClinVar.Pathogenic = tt.clin
			assert.Equal(t, tt.want, RetainedByPopulation(rec, th))
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	rec := onTarget(0.05, 100, 250)
	rec.ClinVar.Pathogenic = "likely-pathogenic"
	rec.Effect.Severity = consensus.SeverityMed

	first, _ := Classify(rec, DefaultThresholds())
	for i := 0; i < 100; i++ {
		got, _ := Classify(rec, DefaultThresholds())
		assert.Equal(t, first, got)
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{MinSomaticAlleleFraction: 1.5}.Validate())
	assert.Error(t, Thresholds{MaxPopulationAlleleFrequency: -0.1}.Validate())
	assert.Error(t, Thresholds{MinDepth: -1}.Validate())
}

func TestParseTier(t *testing.T) {
	for _, tr := range []Tier{Tier1, Tier3, Tier4, TierNone} {
		got, err := ParseTier(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	_, err := ParseTier("TIER2")
	assert.Error(t, err)
}
