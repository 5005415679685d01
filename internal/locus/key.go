// Package locus defines the canonical join key for a candidate variant site.
package locus

import (
	"fmt"
	"strings"
)

// Key identifies a variant site within one reference-genome build.
// It is comparable and used directly as a map key.
type Key struct {
	Chrom string // always "chr"-prefixed
	Start int64  // 0-based
	End   int64  // Start + len(Ref)
	Ref   string
	Alt   string
}

// NewKey builds a Key from a 1-based VCF position.
func NewKey(chrom string, pos int64, ref, alt string) Key {
	start := pos - 1
	return Key{
		Chrom: NormalizeChrom(chrom),
		Start: start,
		End:   start + int64(len(ref)),
		Ref:   ref,
		Alt:   alt,
	}
}

// NormalizeChrom returns chrom with exactly one "chr" prefix.
func NormalizeChrom(chrom string) string {
	return "chr" + strings.TrimPrefix(chrom, "chr")
}

// Pos returns the 1-based VCF position of the key.
func (k Key) Pos() int64 {
	return k.Start + 1
}

// String formats the key as chr7:140453136-140453137 A>T.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d-%d %s>%s", k.Chrom, k.Start, k.End, k.Ref, k.Alt)
}

// ID formats the key as a report row identifier (chr:start-end_ref_alt).
func (k Key) ID() string {
	return fmt.Sprintf("%s:%d-%d_%s_%s", k.Chrom, k.Start, k.End, k.Ref, k.Alt)
}

// Less orders keys by chromosome, start, ref, alt, then end.
func (k Key) Less(o Key) bool {
	if k.Chrom != o.Chrom {
		return k.Chrom < o.Chrom
	}
	if k.Start != o.Start {
		return k.Start < o.Start
	}
	if k.Ref != o.Ref {
		return k.Ref < o.Ref
	}
	if k.Alt != o.Alt {
		return k.Alt < o.Alt
	}
	return k.End < o.End
}
