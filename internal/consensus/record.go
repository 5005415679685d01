// Package consensus defines the reconciled, enriched variant record that
// flows from reconciliation through tiering into the store.
package consensus

import (
	"sort"
	"strings"
	"time"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/locus"
)

// None is the sentinel for absent string annotations. Off-target and
// missing-annotation checks compare against it by value.
const None = "None"

// Sentinels for aggregates over an empty caller set and missing frequencies.
const (
	MissingAlleleFraction = -1.0
	MissingFrequency      = -1.0
)

// MissingDepth is the depth aggregate sentinel.
const MissingDepth int64 = -1

// Severity is the ordinal functional severity of the selected effect.
type Severity int

// Severity levels, ordered.
const (
	SeverityLow Severity = iota
	SeverityMed
	SeverityHigh
)

// String returns LOW, MED or HIGH.
func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "HIGH"
	case SeverityMed:
		return "MED"
	}
	return "LOW"
}

// ParseSeverity is the inverse of Severity.String. Anything unrecognized is LOW.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(s) {
	case "HIGH":
		return SeverityHigh
	case "MED", "MEDIUM", "MODERATE":
		return SeverityMed
	}
	return SeverityLow
}

// Scope identifies which sample a record belongs to.
type Scope struct {
	Sample          string `yaml:"sample_name"`
	Library         string `yaml:"library_name"`
	RunID           string `yaml:"run_id"`
	ReferenceGenome string `yaml:"reference_genome"`
	Extraction      string `yaml:"extraction"`
	Panel           string `yaml:"panel"`
	TargetPool      string `yaml:"target_pool"`
	Sequencer       string `yaml:"sequencer"`
}

// Effect is the selected functional effect of a variant.
type Effect struct {
	Gene        string
	Transcript  string
	Exon        string
	CodonChange string
	AAChange    string
	Biotype     string
	Severity    Severity
	Impact      string // top consequence term
	ImpactSO    string // full consequence list
	ImpactClass string // HIGH, MODERATE, LOW, MODIFIER
}

// ClinVar holds the ClinVar fields copied from the annotation source.
type ClinVar struct {
	Significance []string
	Pathogenic   string
	HGVS         string
	RevStatus    string
	Origin       string
	Disease      string
	Accession    string
}

// COSMIC holds the COSMIC fields copied from the annotation source.
type COSMIC struct {
	IDs         []string
	SampleCount int64
	CDS         string
	AA          string
	Gene        string
}

// Record is a consensus variant record for one locus in one sample scope.
type Record struct {
	Key   locus.Key
	Scope Scope

	Callers   []string
	PerCaller map[string]caller.Record `json:"-"`

	MaxSomaticAlleleFraction float64
	MinDepth                 int64
	MaxDepth                 int64

	RSID          string
	Type          string
	SubType       string
	DateAnnotated time.Time

	Effect            Effect
	TranscriptEffects map[string]string
	GeneType          string // ONCOGENE, TSG or both; None outside the cancer gene list

	ClinVar ClinVar
	COSMIC  COSMIC

	PopulationFreqs              map[string]float64
	PopulationMaxAlleleFrequency float64
	PopulationMaxAlleleFreqNoFin float64
	AmpliconTargets              []string
	AmpliconIntersect            []string
	AmpliconMembership           []string
}

// New returns a record for key and scope with every annotation set to its
// documented default.
func New(key locus.Key, scope Scope) *Record {
	return &Record{
		Key:                          key,
		Scope:                        scope,
		PerCaller:                    make(map[string]caller.Record),
		MaxSomaticAlleleFraction:     MissingAlleleFraction,
		MinDepth:                     MissingDepth,
		MaxDepth:                     MissingDepth,
		RSID:                         None,
		Type:                         None,
		SubType:                      None,
		Effect:                       Effect{Severity: SeverityLow},
		TranscriptEffects:            make(map[string]string),
		GeneType:                     None,
		ClinVar:                      ClinVar{Pathogenic: None},
		PopulationFreqs:              make(map[string]float64),
		PopulationMaxAlleleFrequency: MissingFrequency,
		PopulationMaxAlleleFreqNoFin: MissingFrequency,
	}
}

// InCOSMIC reports whether the locus has any COSMIC id.
func (r *Record) InCOSMIC() bool {
	for _, id := range r.COSMIC.IDs {
		if id != "" && id != None {
			return true
		}
	}
	return false
}

// ClinVarFlagged reports whether ClinVar lists the locus as anything other
// than benign.
func (r *Record) ClinVarFlagged() bool {
	switch r.ClinVar.Pathogenic {
	case "", None, "benign", "likely-benign":
		return false
	}
	return true
}

// OffTarget reports whether the locus falls outside every panel amplicon.
func (r *Record) OffTarget() bool {
	for _, a := range r.AmpliconMembership {
		if a != "" && a != None {
			return false
		}
	}
	return true
}

// CallerNames returns the sorted caller set.
func (r *Record) CallerNames() []string {
	names := append([]string(nil), r.Callers...)
	sort.Strings(names)
	return names
}
