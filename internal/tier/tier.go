// Package tier assigns consensus records to reporting tiers.
package tier

import (
	"fmt"

	"github.com/inodb/vibe-tier/internal/consensus"
)

// Tier is a reporting tier.
type Tier int

// Tiers. TIER2 is not assigned by this classifier.
const (
	TierNone Tier = iota
	Tier1
	Tier3
	Tier4
)

// String returns TIER1, TIER3, TIER4 or "None".
func (t Tier) String() string {
	switch t {
	case Tier1:
		return "TIER1"
	case Tier3:
		return "TIER3"
	case Tier4:
		return "TIER4"
	}
	return consensus.None
}

// ParseTier is the inverse of Tier.String.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "TIER1":
		return Tier1, nil
	case "TIER3":
		return Tier3, nil
	case "TIER4":
		return Tier4, nil
	case consensus.None, "":
		return TierNone, nil
	}
	return TierNone, fmt.Errorf("unknown tier %q", s)
}

// Outcome is the quality outcome of a tiered record.
type Outcome int

// Outcomes.
const (
	Pass Outcome = iota
	Fail
)

// String returns PASS or FAIL.
func (o Outcome) String() string {
	if o == Fail {
		return "FAIL"
	}
	return "PASS"
}

// Assignment is the tier and outcome of one record.
type Assignment struct {
	Tier    Tier
	Outcome Outcome
}

// String returns e.g. "TIER1 PASS".
func (a Assignment) String() string {
	return a.Tier.String() + " " + a.Outcome.String()
}

// Thresholds are the three tunables of the classifier.
type Thresholds struct {
	MinSomaticAlleleFraction     float64 `mapstructure:"min_somatic_allele_fraction" yaml:"min_somatic_allele_fraction"`
	MaxPopulationAlleleFrequency float64 `mapstructure:"max_population_allele_frequency" yaml:"max_population_allele_frequency"`
	MinDepth                     int64   `mapstructure:"min_depth" yaml:"min_depth"`
}

// Default threshold values.
const (
	DefaultMinSomaticAlleleFraction     = 0.01
	DefaultMaxPopulationAlleleFrequency = 0.005
	DefaultMinDepth                     = 200
)

// DefaultThresholds returns the default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSomaticAlleleFraction:     DefaultMinSomaticAlleleFraction,
		MaxPopulationAlleleFrequency: DefaultMaxPopulationAlleleFrequency,
		MinDepth:                     DefaultMinDepth,
	}
}

// Validate rejects thresholds outside their meaningful ranges.
func (th Thresholds) Validate() error {
	if th.MinSomaticAlleleFraction < 0 || th.MinSomaticAlleleFraction > 1 {
		return fmt.Errorf("min somatic allele fraction %g out of range [0,1]", th.MinSomaticAlleleFraction)
	}
	if th.MaxPopulationAlleleFrequency < 0 || th.MaxPopulationAlleleFrequency > 1 {
		return fmt.Errorf("max population allele frequency %g out of range [0,1]", th.MaxPopulationAlleleFrequency)
	}
	if th.MinDepth < 0 {
		return fmt.Errorf("min depth %d is negative", th.MinDepth)
	}
	return nil
}

// RetainedByPopulation reports whether rec survives the population
// frequency pre-filter. Common variants are dropped unless COSMIC or ClinVar
// flags them. A missing frequency (-1) is always retained.
func RetainedByPopulation(rec *consensus.Record, th Thresholds) bool {
	if rec.PopulationMaxAlleleFrequency <= th.MaxPopulationAlleleFrequency {
		return true
	}
	return rec.InCOSMIC() || rec.ClinVarFlagged()
}

// Classify assigns rec a tier and outcome. Off-target records return false
// and are only counted. The first matching rule wins:
//
//  1. any COSMIC id: TIER1
//  2. ClinVar pathogenicity other than None/benign/likely-benign: TIER1
//  3. severity MED or HIGH: TIER3
//  4. otherwise TIER4
//
// The outcome is FAIL when the maximum somatic allele fraction is below the
// threshold, or else when the maximum depth is below the threshold.
func Classify(rec *consensus.Record, th Thresholds) (Assignment, bool) {
	if rec.OffTarget() {
		return Assignment{}, false
	}

	var a Assignment
	switch {
	case rec.InCOSMIC():
		a.Tier = Tier1
	case rec.ClinVarFlagged():
		a.Tier = Tier1
	case rec.Effect.Severity >= consensus.SeverityMed:
		a.Tier = Tier3
	default:
		a.Tier = Tier4
	}

	switch {
	case rec.MaxSomaticAlleleFraction < th.MinSomaticAlleleFraction:
		a.Outcome = Fail
	case rec.MaxDepth < th.MinDepth:
		a.Outcome = Fail
	default:
		a.Outcome = Pass
	}
	return a, true
}
