package annotate

import (
	"regexp"
	"strings"

	"github.com/inodb/vibe-tier/internal/consensus"
)

// DefaultEffectKeys is the snpEff ANN field order, used when the header does
// not describe ANN.
var DefaultEffectKeys = []string{
	"Allele", "Annotation", "Annotation_Impact", "Gene_Name", "Gene_ID",
	"Feature_Type", "Feature_ID", "Transcript_BioType", "Rank", "HGVS.c",
	"HGVS.p", "cDNA.pos / cDNA.length", "CDS.pos / CDS.length",
	"AA.pos / AA.length", "Distance", "ERRORS / WARNINGS / INFO",
}

var keySplit = regexp.MustCompile(`\s*\|\s*`)

// ParseEffectKeys extracts the ANN field names from an INFO header
// Description such as "Functional annotations: 'Allele | Annotation | ...'".
func ParseEffectKeys(description string) []string {
	i := strings.IndexByte(description, ':')
	if i < 0 {
		return nil
	}
	body := strings.Trim(description[i+1:], `"' `)
	if body == "" {
		return nil
	}

	parts := keySplit.Split(body, -1)
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		keys = append(keys, strings.Trim(p, `"'`))
	}
	return keys
}

// Effect is one functional-effect prediction (one transcript) from ANN.
type Effect struct {
	Allele       string
	Consequences []string
	ImpactClass  string
	Gene         string
	GeneID       string
	FeatureType  string
	Transcript   string
	Biotype      string
	Rank         string
	HGVSc        string
	HGVSp        string
	Severity     consensus.Severity
}

// TopConsequence returns the most severe consequence term of the effect.
func (e Effect) TopConsequence() string {
	top, best := "", -1
	for _, c := range e.Consequences {
		if r := ConsequenceRank(c); r > best {
			top, best = c, r
		}
	}
	return top
}

// SO returns the consequence terms as written in ANN.
func (e Effect) SO() string {
	return strings.Join(e.Consequences, "&")
}

// ParseEffects splits a raw ANN value into effects using keys as the field
// order. Missing trailing fields are left empty.
func ParseEffects(raw string, keys []string) []Effect {
	if raw == "" || raw == "." {
		return nil
	}
	if len(keys) == 0 {
		keys = DefaultEffectKeys
	}

	var effects []Effect
	for _, entry := range strings.Split(raw, ",") {
		if entry == "" {
			continue
		}
		vals := strings.Split(entry, "|")
		field := func(name string) string {
			for i, k := range keys {
				if k == name && i < len(vals) {
					return vals[i]
				}
			}
			return ""
		}

		e := Effect{
			Allele:      field("Allele"),
			ImpactClass: field("Annotation_Impact"),
			Gene:        field("Gene_Name"),
			GeneID:      field("Gene_ID"),
			FeatureType: field("Feature_Type"),
			Transcript:  field("Feature_ID"),
			Biotype:     field("Transcript_BioType"),
			Rank:        field("Rank"),
			HGVSc:       field("HGVS.c"),
			HGVSp:       field("HGVS.p"),
		}
		if ann := field("Annotation"); ann != "" {
			e.Consequences = strings.Split(ann, "&")
		}
		e.Severity = GetSeverity(e.Consequences, e.ImpactClass)
		effects = append(effects, e)
	}
	return effects
}

// outranks orders effects by severity, then impact class, then the rank of
// the top consequence term, then protein_coding over other biotypes.
func outranks(a, b Effect) bool {
	if a.Severity != b.Severity {
		return a.Severity > b.Severity
	}
	if ra, rb := ImpactRank(a.ImpactClass), ImpactRank(b.ImpactClass); ra != rb {
		return ra > rb
	}
	if ra, rb := ConsequenceRank(a.TopConsequence()), ConsequenceRank(b.TopConsequence()); ra != rb {
		return ra > rb
	}
	return a.Biotype == "protein_coding" && b.Biotype != "protein_coding"
}

// TopEffect selects the single most severe effect. Among effects that tie on
// every ordering criterion the first one in ANN order wins, so the choice is
// stable for a given input file. Returns false for an empty list.
func TopEffect(effects []Effect) (Effect, bool) {
	if len(effects) == 0 {
		return Effect{}, false
	}
	top := effects[0]
	for _, e := range effects[1:] {
		if outranks(e, top) {
			top = e
		}
	}
	return top, true
}

// ToConsensus converts the selected effect into the record's effect fields.
func (e Effect) ToConsensus() consensus.Effect {
	return consensus.Effect{
		Gene:        e.Gene,
		Transcript:  e.Transcript,
		Exon:        e.Rank,
		CodonChange: e.HGVSc,
		AAChange:    e.HGVSp,
		Biotype:     e.Biotype,
		Severity:    e.Severity,
		Impact:      e.TopConsequence(),
		ImpactSO:    e.SO(),
		ImpactClass: e.ImpactClass,
	}
}
