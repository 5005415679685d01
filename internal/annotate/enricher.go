package annotate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// Enricher attaches annotation fields from an annotated VCF record to a
// consensus record.
type Enricher struct {
	keys    []string
	sources []Source
	logger  *zap.Logger
}

// NewEnricher creates an enricher for a file whose ANN header Description is
// annDescription. An empty description falls back to DefaultEffectKeys.
func NewEnricher(annDescription string, sources ...Source) *Enricher {
	keys := ParseEffectKeys(annDescription)
	if len(keys) == 0 {
		keys = DefaultEffectKeys
	}
	return &Enricher{
		keys:    keys,
		sources: sources,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for debug messages.
func (e *Enricher) SetLogger(l *zap.Logger) {
	e.logger = l
}

// EffectKeys returns the ANN field order in use.
func (e *Enricher) EffectKeys() []string {
	return e.keys
}

// MissingFields lists the source fields an annotated VCF header does not
// declare, grouped by source in configuration order. Sources whose fields
// are all declared are omitted.
func (e *Enricher) MissingFields(declared func(id string) bool) []MissingFields {
	var out []MissingFields
	for _, src := range e.sources {
		var fields []string
		for _, col := range src.Columns() {
			if !declared(col.Name) {
				fields = append(fields, col.Name)
			}
		}
		if len(fields) > 0 {
			out = append(out, MissingFields{Source: src.Name(), Fields: fields})
		}
	}
	return out
}

// MissingFields names the undeclared INFO fields of one source.
type MissingFields struct {
	Source string
	Fields []string
}

// Enrich populates rec from v. Missing annotations degrade to defaults.
func (e *Enricher) Enrich(rec *consensus.Record, v *vcf.Variant) {
	if v.ID != "" && v.ID != "." {
		rec.RSID = v.ID
	}
	rec.Type = InfoOrNone(v, "type")
	rec.SubType = InfoOrNone(v, "sub_type")

	raw, _ := v.InfoString("ANN")
	effects := ParseEffects(raw, e.keys)
	if top, ok := TopEffect(effects); ok {
		rec.Effect = top.ToConsensus()
	} else {
		e.logger.Debug("no functional effects", zap.String("locus", rec.Key.String()))
	}
	for _, eff := range effects {
		if eff.Transcript == "" {
			continue
		}
		rec.TranscriptEffects[eff.Transcript] = eff.Biotype + "|" + eff.ImpactClass
	}

	for _, src := range e.sources {
		src.Annotate(v, rec)
	}
}

// CallerList returns the caller names from the CALLERS INFO field.
func CallerList(v *vcf.Variant) []string {
	s, ok := v.InfoString("CALLERS")
	if !ok {
		return nil
	}
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
