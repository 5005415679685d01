package population

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/locus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

func TestSource_Annotate(t *testing.T) {
	v := &vcf.Variant{Chrom: "1", Pos: 115256530, Ref: "G", Alts: []string{"T"}, Info: map[string]string{
		"aaf_1kg_all":      "0.3",
		"aaf_adj_exac_fin": "0.45",
		"aaf_esp_ea":       ".",
		"max_aaf_all":      "0.45",
		"max_aaf_no_fin":   "0.3",
	}}
	rec := consensus.New(locus.NewKey(v.Chrom, v.Pos, v.Ref, v.Alt()), consensus.Scope{})

	src := NewSource()
	src.Annotate(v, rec)

	assert.Len(t, rec.PopulationFreqs, len(Populations))
	assert.InDelta(t, 0.3, rec.PopulationFreqs["1kg_all"], 1e-9)
	assert.InDelta(t, 0.45, rec.PopulationFreqs["adj_exac_fin"], 1e-9)
	assert.Equal(t, consensus.MissingFrequency, rec.PopulationFreqs["esp_ea"])
	assert.Equal(t, consensus.MissingFrequency, rec.PopulationFreqs["exac_all"])
	assert.InDelta(t, 0.45, rec.PopulationMaxAlleleFrequency, 1e-9)
	assert.InDelta(t, 0.3, rec.PopulationMaxAlleleFreqNoFin, 1e-9)
	assert.Len(t, src.Columns(), len(Populations)+2)
}

func TestSource_AnnotateMissing(t *testing.T) {
	v := &vcf.Variant{Chrom: "1", Pos: 10, Ref: "A", Alts: []string{"C"}, Info: map[string]string{}}
	rec := consensus.New(locus.NewKey(v.Chrom, v.Pos, v.Ref, v.Alt()), consensus.Scope{})

	NewSource().Annotate(v, rec)

	assert.Equal(t, consensus.MissingFrequency, rec.PopulationMaxAlleleFrequency)
	assert.Equal(t, consensus.MissingFrequency, rec.PopulationMaxAlleleFreqNoFin)
	for _, p := range Populations {
		assert.Equal(t, consensus.MissingFrequency, rec.PopulationFreqs[p], p)
	}
}
