// Package cosmic copies COSMIC annotations from vcfanno INFO fields.
package cosmic

import (
	"strconv"

	"github.com/inodb/vibe-tier/internal/annotate"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// Source implements annotate.Source for COSMIC.
type Source struct{}

// NewSource creates a COSMIC source.
func NewSource() *Source {
	return &Source{}
}

func (s *Source) Name() string { return "cosmic" }

func (s *Source) Columns() []annotate.ColumnDef {
	return []annotate.ColumnDef{
		{Name: "cosmic_ids", Description: "COSMIC mutation ids"},
		{Name: "cosmic_numsamples", Description: "Number of COSMIC samples"},
		{Name: "cosmic_cds", Description: "COSMIC CDS change"},
		{Name: "cosmic_aa", Description: "COSMIC amino acid change"},
		{Name: "cosmic_gene", Description: "COSMIC gene"},
	}
}

// Annotate copies the COSMIC fields onto rec. A missing sample count is -1.
func (s *Source) Annotate(v *vcf.Variant, rec *consensus.Record) {
	count := int64(-1)
	if n, ok := v.InfoString("cosmic_numsamples"); ok {
		if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
			count = parsed
		}
	}
	rec.COSMIC = consensus.COSMIC{
		IDs:         annotate.InfoList(v, "cosmic_ids", ","),
		SampleCount: count,
		CDS:         annotate.InfoOrNone(v, "cosmic_cds"),
		AA:          annotate.InfoOrNone(v, "cosmic_aa"),
		Gene:        annotate.InfoOrNone(v, "cosmic_gene"),
	}
}
