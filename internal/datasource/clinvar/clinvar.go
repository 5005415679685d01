// Package clinvar copies ClinVar annotations from vcfanno INFO fields.
package clinvar

import (
	"github.com/inodb/vibe-tier/internal/annotate"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// INFO keys written by the vcfanno ClinVar configuration.
const (
	KeySignificance = "clinvar_sig"
	KeyPathogenic   = "clinvar_pathogenic"
	KeyHGVS         = "clinvar_hgvs"
	KeyRevStatus    = "clinvar_revstatus"
	KeyOrigin       = "clinvar_origin"
	KeyDisease      = "clinvar_diseasename"
	KeyAccession    = "clinvar_accession"
)

// Source implements annotate.Source for ClinVar.
type Source struct{}

// NewSource creates a ClinVar source.
func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string { return "clinvar" }

func (s *Source) Columns() []annotate.ColumnDef {
	return []annotate.ColumnDef{
		{Name: KeySignificance, Description: "Clinical significance terms"},
		{Name: KeyPathogenic, Description: "Pathogenicity summary"},
		{Name: KeyHGVS, Description: "ClinVar HGVS"},
		{Name: KeyRevStatus, Description: "Review status"},
		{Name: KeyOrigin, Description: "Allele origin"},
		{Name: KeyDisease, Description: "Disease name"},
		{Name: KeyAccession, Description: "ClinVar accession"},
	}
}

// Annotate copies the ClinVar fields onto rec. Significance is a set
// written with "," or "|" separators.
func (s *Source) Annotate(v *vcf.Variant, rec *consensus.Record) {
	rec.ClinVar = consensus.ClinVar{
		Significance: annotate.InfoList(v, KeySignificance, ",|"),
		Pathogenic:   annotate.InfoOrNone(v, KeyPathogenic),
		HGVS:         annotate.InfoOrNone(v, KeyHGVS),
		RevStatus:    annotate.InfoOrNone(v, KeyRevStatus),
		Origin:       annotate.InfoOrNone(v, KeyOrigin),
		Disease:      annotate.InfoOrNone(v, KeyDisease),
		Accession:    annotate.InfoOrNone(v, KeyAccession),
	}
}
