package oncokb

import (
	"github.com/inodb/vibe-tier/internal/annotate"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// Source implements annotate.Source, setting the gene type of the selected
// effect's gene.
type Source struct {
	cgl CancerGeneList
}

// NewSource creates a gene-type source backed by cgl.
func NewSource(cgl CancerGeneList) *Source {
	return &Source{cgl: cgl}
}

func (s *Source) Name() string { return "oncokb" }

// Columns is empty: the gene type comes from the gene list, not from INFO.
func (s *Source) Columns() []annotate.ColumnDef { return nil }

// Annotate sets rec.GeneType. Genes outside the list keep the "None" default.
func (s *Source) Annotate(_ *vcf.Variant, rec *consensus.Record) {
	if gt := s.cgl.GeneType(rec.Effect.Gene); gt != "" {
		rec.GeneType = gt
	}
}
