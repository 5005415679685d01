// Package caller normalizes per-caller VCF records into a common projection.
//
// Each supported variant caller names its depth and allele-fraction fields
// differently. Normalization happens once, when a caller's VCF is read; the
// rest of the pipeline only sees the Record interface.
package caller

import (
	"fmt"
	"strconv"
	"strings"
)

// Supported variant callers.
const (
	Mutect    = "mutect"
	VarDict   = "vardict"
	FreeBayes = "freebayes"
	Scalpel   = "scalpel"
	Platypus  = "platypus"
	Pindel    = "pindel"
)

// All lists the supported callers in reporting order.
var All = []string{Mutect, VarDict, FreeBayes, Scalpel, Platypus, Pindel}

// Sentinels for values a caller did not report.
const (
	MissingAlleleFraction = -1.0
	MissingFilter         = "None"
)

// MissingDepth is the depth sentinel.
const MissingDepth int64 = -1

// Record is one caller's normalized view of a locus.
// The concrete type identifies the caller.
type Record interface {
	Caller() string
	AlleleFraction() float64
	Depth() int64
	Filter() string
	// Fields returns the caller-specific raw values for display.
	Fields() map[string]string

	sealed()
}

// IsKnown reports whether name is a supported caller.
func IsKnown(name string) bool {
	for _, c := range All {
		if c == name {
			return true
		}
	}
	return false
}

// New returns an empty record of the named caller's type, for decoding
// stored records.
func New(name string) (Record, error) {
	switch name {
	case Mutect:
		return &MutectRecord{}, nil
	case VarDict:
		return &VarDictRecord{}, nil
	case FreeBayes:
		return &FreeBayesRecord{}, nil
	case Scalpel:
		return &ScalpelRecord{}, nil
	case Platypus:
		return &PlatypusRecord{}, nil
	case Pindel:
		return &PindelRecord{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCaller, name)
}

// fraction divides alt by depth, returning the sentinel when either is unknown.
func fraction(alt, depth int64) float64 {
	if alt < 0 || depth <= 0 {
		return MissingAlleleFraction
	}
	return float64(alt) / float64(depth)
}

// parseFraction parses a caller-reported allele fraction (first value only).
func parseFraction(s string) (float64, bool) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseCount(s string, ok bool) int64 {
	if !ok {
		return MissingDepth
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some callers write integer counts as floats.
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return MissingDepth
		}
		return int64(f)
	}
	return n
}

// splitAD splits an AD value (ref,alt) into its ref and first alt depth.
func splitAD(s string, ok bool) (ref, alt int64) {
	ref, alt = MissingDepth, MissingDepth
	if !ok {
		return
	}
	parts := strings.Split(s, ",")
	ref = parseCount(parts[0], true)
	if len(parts) > 1 {
		alt = parseCount(parts[1], true)
	}
	return
}

func filterStatus(f string) string {
	if f == "" || f == "." {
		return MissingFilter
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func orNone(s string) string {
	if s == "" {
		return MissingFilter
	}
	return s
}

// commonFields holds the keys every caller's display map carries.
func commonFields(r Record) map[string]string {
	return map[string]string{
		"AAF":    formatFloat(r.AlleleFraction()),
		"DP":     formatInt(r.Depth()),
		"FILTER": r.Filter(),
	}
}
