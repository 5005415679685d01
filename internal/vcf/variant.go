package vcf

import (
	"strconv"
	"strings"
)

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom   string              // Chromosome name (e.g., "7", "chr7")
	Pos     int64               // 1-based genomic position
	ID      string              // Variant identifier (e.g., rs ID)
	Ref     string              // Reference allele
	Alts    []string            // Alternate alleles as written
	Filter  string              // Filter status (PASS or filter name)
	Info    map[string]string   // INFO key-value pairs; flags map to ""
	Samples []map[string]string // FORMAT fields per sample column
	Line    int64               // Line number in the source file
}

// Alt returns the first alternate allele, or "" if there is none.
func (v *Variant) Alt() string {
	if len(v.Alts) == 0 {
		return ""
	}
	return v.Alts[0]
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt()) == 1
}

// IsIndel returns true if the variant is an insertion or deletion.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt())
}

// InfoString returns the raw INFO value for key and whether it was present
// with a non-missing value.
func (v *Variant) InfoString(key string) (string, bool) {
	s, ok := v.Info[key]
	if !ok || s == "" || s == "." {
		return "", false
	}
	return s, true
}

// InfoFloat parses the INFO value for key as a float.
// For Number=A style values only the first element is used.
func (v *Variant) InfoFloat(key string) (float64, bool) {
	s, ok := v.InfoString(key)
	if !ok {
		return 0, false
	}
	return parseFirstFloat(s)
}

// SampleField returns the FORMAT value for key in sample column i.
func (v *Variant) SampleField(i int, key string) (string, bool) {
	if i < 0 || i >= len(v.Samples) {
		return "", false
	}
	s, ok := v.Samples[i][key]
	if !ok || s == "" || s == "." {
		return "", false
	}
	return s, true
}

func parseFirstFloat(s string) (float64, bool) {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseInfo parses the INFO column into a map.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	if info == "" || info == "." {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		if kv == "" {
			continue
		}
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			// Flag-type INFO field
			result[parts[0]] = ""
		}
	}

	return result
}
