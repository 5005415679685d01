package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-tier/internal/locus"
)

func TestNewDefaults(t *testing.T) {
	r := New(locus.NewKey("7", 140453137, "A", "T"), Scope{Sample: "S1"})

	assert.Equal(t, MissingAlleleFraction, r.MaxSomaticAlleleFraction)
	assert.Equal(t, MissingDepth, r.MinDepth)
	assert.Equal(t, MissingDepth, r.MaxDepth)
	assert.Equal(t, SeverityLow, r.Effect.Severity)
	assert.Equal(t, None, r.ClinVar.Pathogenic)
	assert.Equal(t, MissingFrequency, r.PopulationMaxAlleleFrequency)
	assert.False(t, r.InCOSMIC())
	assert.False(t, r.ClinVarFlagged())
	assert.True(t, r.OffTarget())
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"HIGH", SeverityHigh},
		{"MED", SeverityMed},
		{"moderate", SeverityMed},
		{"LOW", SeverityLow},
		{"", SeverityLow},
		{"bogus", SeverityLow},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSeverity(tt.in))
		})
	}

	assert.True(t, SeverityLow < SeverityMed && SeverityMed < SeverityHigh)
	assert.Equal(t, "MED", SeverityMed.String())
}

func TestClinVarFlagged(t *testing.T) {
	tests := []struct {
		pathogenic string
		want       bool
	}{
		{None, false},
		{"", false},
		{"benign", false},
		{"likely-benign", false},
		{"pathogenic", true},
		{"likely-pathogenic", true},
		{"uncertain", true},
		{"drug-response", true},
	}
	for _, tt := range tests {
		t.Run(tt.pathogenic, func(t *testing.T) {
			r := &Record{ClinVar: ClinVar{Pathogenic: tt.pathogenic}}
			assert.Equal(t, tt.want, r.ClinVarFlagged())
		})
	}
}

// The off-target check must hold for a "None" built at runtime, not just
// the constant literal.
func TestOffTarget_SentinelByValue(t *testing.T) {
	built := string([]byte{'N', 'o', 'n', 'e'})

	tests := []struct {
		name       string
		membership []string
		want       bool
	}{
		{"nil", nil, true},
		{"constant sentinel", []string{None}, true},
		{"runtime sentinel", []string{built}, true},
		{"empty string", []string{""}, true},
		{"amplicon", []string{"BRAF_1"}, false},
		{"sentinel plus amplicon", []string{built, "BRAF_1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{AmpliconMembership: tt.membership}
			assert.Equal(t, tt.want, r.OffTarget())
		})
	}
}

func TestInCOSMIC(t *testing.T) {
	assert.True(t, (&Record{COSMIC: COSMIC{IDs: []string{"COSM12345"}}}).InCOSMIC())
	assert.False(t, (&Record{COSMIC: COSMIC{IDs: []string{None}}}).InCOSMIC())
}

func TestCallerNames(t *testing.T) {
	r := &Record{Callers: []string{"vardict", "mutect"}}
	assert.Equal(t, []string{"mutect", "vardict"}, r.CallerNames())
	assert.Equal(t, []string{"vardict", "mutect"}, r.Callers)
}
