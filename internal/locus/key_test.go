package locus

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7", "chr7"},
		{"chr7", "chr7"},
		{"X", "chrX"},
		{"chrMT", "chrMT"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeChrom(tt.in))
		})
	}
}

func TestNewKey(t *testing.T) {
	k := NewKey("7", 140453137, "A", "T")

	assert.Equal(t, Key{Chrom: "chr7", Start: 140453136, End: 140453137, Ref: "A", Alt: "T"}, k)
	assert.Equal(t, int64(140453137), k.Pos())
	assert.Equal(t, "chr7:140453136-140453137 A>T", k.String())
	assert.Equal(t, "chr7:140453136-140453137_A_T", k.ID())

	// Prefixed and unprefixed chromosomes produce the same key.
	assert.Equal(t, k, NewKey("chr7", 140453137, "A", "T"))
}

func TestNewKey_Deletion(t *testing.T) {
	k := NewKey("chr12", 25398281, "CTT", "C")
	assert.Equal(t, int64(25398280), k.Start)
	assert.Equal(t, int64(25398283), k.End)
}

func TestKeyLess(t *testing.T) {
	keys := []Key{
		NewKey("2", 10, "A", "T"),
		NewKey("1", 20, "G", "C"),
		NewKey("1", 10, "A", "T"),
		NewKey("1", 10, "A", "G"),
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	assert.Equal(t, "chr1:9-10 A>G", keys[0].String())
	assert.Equal(t, "chr1:9-10 A>T", keys[1].String())
	assert.Equal(t, "chr1:19-20 G>C", keys[2].String())
	assert.Equal(t, "chr2:9-10 A>T", keys[3].String())
}
