// Package amplicon resolves which target-panel amplicons a locus falls in.
package amplicon

import (
	"github.com/inodb/vibe-tier/internal/annotate"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/panel"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// Source implements annotate.Source, intersecting the overlapping-amplicon
// list from the annotated VCF with the sample's target panel.
type Source struct {
	panel *panel.Panel
}

// NewSource creates an amplicon source for the given target panel.
func NewSource(p *panel.Panel) *Source {
	return &Source{panel: p}
}

func (s *Source) Name() string { return "amplicon" }

func (s *Source) Columns() []annotate.ColumnDef {
	return []annotate.ColumnDef{
		{Name: "amplicon_target", Description: "Overlapping amplicons"},
		{Name: "amplicon_intersect", Description: "Amplicons intersecting the variant"},
	}
}

// Annotate sets the raw amplicon lists and the panel membership.
// An empty membership marks the locus off-target.
func (s *Source) Annotate(v *vcf.Variant, rec *consensus.Record) {
	rec.AmpliconTargets = annotate.InfoList(v, "amplicon_target", ",")
	rec.AmpliconIntersect = annotate.InfoList(v, "amplicon_intersect", ",")
	rec.AmpliconMembership = s.panel.Intersect(rec.AmpliconTargets)
}
