// Package population copies population allele frequencies from vcfanno INFO
// fields (ESP, 1000 Genomes, ExAC).
package population

import (
	"github.com/inodb/vibe-tier/internal/annotate"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// Populations lists the frequency names stored per record. The INFO key is
// "aaf_" + name.
var Populations = []string{
	"esp_ea", "esp_aa", "esp_all",
	"1kg_amr", "1kg_eas", "1kg_sas", "1kg_afr", "1kg_eur", "1kg_all",
	"exac_all",
	"adj_exac_all", "adj_exac_afr", "adj_exac_amr", "adj_exac_eas",
	"adj_exac_fin", "adj_exac_nfe", "adj_exac_oth", "adj_exac_sas",
}

// Source implements annotate.Source for population frequencies.
type Source struct{}

// NewSource creates a population frequency source.
func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string { return "population" }

func (s *Source) Columns() []annotate.ColumnDef {
	cols := make([]annotate.ColumnDef, 0, len(Populations)+2)
	for _, p := range Populations {
		cols = append(cols, annotate.ColumnDef{Name: "aaf_" + p, Description: "Alternate allele frequency, " + p})
	}
	return append(cols,
		annotate.ColumnDef{Name: "max_aaf_all", Description: "Maximum frequency over all populations"},
		annotate.ColumnDef{Name: "max_aaf_no_fin", Description: "Maximum frequency excluding Finnish"},
	)
}

// Annotate copies every frequency onto rec; missing values are -1.
func (s *Source) Annotate(v *vcf.Variant, rec *consensus.Record) {
	for _, p := range Populations {
		rec.PopulationFreqs[p] = frequency(v, "aaf_"+p)
	}
	rec.PopulationMaxAlleleFrequency = frequency(v, "max_aaf_all")
	rec.PopulationMaxAlleleFreqNoFin = frequency(v, "max_aaf_no_fin")
}

func frequency(v *vcf.Variant, key string) float64 {
	if f, ok := v.InfoFloat(key); ok {
		return f
	}
	return consensus.MissingFrequency
}
