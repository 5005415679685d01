package annotate

import (
	"strings"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// Source copies one group of annotation fields from an annotated VCF record
// onto a consensus record. Sources never fail: absent fields leave the
// record's defaults in place.
type Source interface {
	Name() string         // e.g. "clinvar"
	Columns() []ColumnDef // INFO fields this source reads
	Annotate(v *vcf.Variant, rec *consensus.Record)
}

// ColumnDef describes an INFO field read by an annotation source.
type ColumnDef struct {
	Name        string // INFO key, e.g. "clinvar_sig"
	Description string // human-readable description
}

// InfoOrNone returns the INFO value for key or the "None" sentinel.
func InfoOrNone(v *vcf.Variant, key string) string {
	if s, ok := v.InfoString(key); ok {
		return s
	}
	return consensus.None
}

// InfoList splits an INFO value on any of seps, dropping empty and "None"
// entries. Returns nil when the field is absent.
func InfoList(v *vcf.Variant, key, seps string) []string {
	s, ok := v.InfoString(key)
	if !ok {
		return nil
	}
	var out []string
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) }) {
		f = strings.TrimSpace(f)
		if f == "" || f == consensus.None || f == "." {
			continue
		}
		out = append(out, f)
	}
	return out
}
