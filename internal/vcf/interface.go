// Package vcf reads caller and annotated VCF files.
package vcf

// VariantParser yields variants one at a time. *Parser implements it over
// files and readers.
type VariantParser interface {
	// Next returns the next variant, or nil, nil at end of input.
	Next() (*Variant, error)
	// LineNumber returns the source line of the variant last returned.
	LineNumber() int
	Close() error
}

var _ VariantParser = (*Parser)(nil)
