package caller

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/locus"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// ErrUnknownCaller is returned for caller names without a normalizer.
var ErrUnknownCaller = errors.New("unknown variant caller")

// MalformedRecordError reports a caller record that cannot be keyed
// unambiguously because it carries more than one alternate allele.
type MalformedRecordError struct {
	Caller string
	Path   string
	Line   int64
	Alts   []string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record in %s at line %d: %d alternate alleles %v",
		e.Caller, e.Path, e.Line, len(e.Alts), e.Alts)
}

// Lookup maps a locus to one caller's normalized record.
type Lookup map[locus.Key]Record

// Lookups maps caller name to that caller's Lookup for one sample.
type Lookups map[string]Lookup

// Normalize converts a raw VCF record from the named caller into its locus
// key and normalized record.
func Normalize(name string, v *vcf.Variant) (locus.Key, Record, error) {
	if len(v.Alts) != 1 {
		return locus.Key{}, nil, &MalformedRecordError{Caller: name, Line: v.Line, Alts: v.Alts}
	}
	key := locus.NewKey(v.Chrom, v.Pos, v.Ref, v.Alt())
	filter := filterStatus(v.Filter)

	switch name {
	case Mutect:
		ref, alt := splitAD(v.SampleField(0, "AD"))
		fa, _ := v.SampleField(0, "FA")
		return key, &MutectRecord{
			FilterStatus: filter,
			DP:           parseCount(v.SampleField(0, "DP")),
			RefDepth:     ref,
			AltDepth:     alt,
			FA:           fa,
		}, nil
	case VarDict:
		af, _ := v.InfoString("AF")
		msi, _ := v.InfoString("MSI")
		bias, _ := v.InfoString("BIAS")
		return key, &VarDictRecord{
			FilterStatus: filter,
			DP:           parseCount(v.InfoString("DP")),
			VD:           parseCount(v.InfoString("VD")),
			AF:           af,
			MSI:          msi,
			Bias:         bias,
		}, nil
	case FreeBayes:
		return key, &FreeBayesRecord{
			FilterStatus: filter,
			DP:           parseCount(v.InfoString("DP")),
			AO:           parseCount(v.InfoString("AO")),
			RO:           parseCount(v.InfoString("RO")),
		}, nil
	case Scalpel:
		ref, alt := splitAD(v.SampleField(0, "AD"))
		zyg, _ := v.InfoString("ZYG")
		return key, &ScalpelRecord{
			FilterStatus: filter,
			DP:           parseCount(v.SampleField(0, "DP")),
			RefDepth:     ref,
			AltDepth:     alt,
			Zygosity:     zyg,
		}, nil
	case Platypus:
		fr, _ := v.InfoString("FR")
		return key, &PlatypusRecord{
			FilterStatus: filter,
			TC:           parseCount(v.InfoString("TC")),
			TR:           parseCount(v.InfoString("TR")),
			FR:           fr,
		}, nil
	case Pindel:
		ref, alt := splitAD(v.SampleField(0, "AD"))
		svType, _ := v.InfoString("SVTYPE")
		svLen, _ := v.InfoString("SVLEN")
		return key, &PindelRecord{
			FilterStatus: filter,
			DP:           parseCount(v.SampleField(0, "DP")),
			RefDepth:     ref,
			AltDepth:     alt,
			SVType:       svType,
			SVLen:        svLen,
		}, nil
	}
	return locus.Key{}, nil, fmt.Errorf("%w: %q", ErrUnknownCaller, name)
}

// Loader reads caller VCFs into lookups.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a Loader that logs to logger (nil for no logging).
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads the named caller's VCF at path into a Lookup.
// Later records for the same key overwrite earlier ones.
func (l *Loader) Load(name, path string) (Lookup, error) {
	if !IsKnown(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCaller, name)
	}

	parser, err := vcf.NewParser(path)
	if err != nil {
		return nil, fmt.Errorf("open %s vcf: %w", name, err)
	}
	defer parser.Close()
	parser.SetLogger(l.logger)

	lookup, err := l.Read(name, parser)
	if err != nil {
		var mre *MalformedRecordError
		if errors.As(err, &mre) {
			mre.Path = path
		}
		return nil, err
	}

	l.logger.Debug("loaded caller vcf",
		zap.String("caller", name),
		zap.String("path", path),
		zap.Int("records", len(lookup)))
	return lookup, nil
}

// Read drains parser into a Lookup for the named caller.
func (l *Loader) Read(name string, parser vcf.VariantParser) (Lookup, error) {
	lookup := make(Lookup)
	for {
		v, err := parser.Next()
		if err != nil {
			return nil, fmt.Errorf("read %s vcf: %w", name, err)
		}
		if v == nil {
			return lookup, nil
		}

		key, rec, err := Normalize(name, v)
		if err != nil {
			return nil, err
		}
		if _, dup := lookup[key]; dup {
			l.logger.Debug("duplicate caller record, keeping last",
				zap.String("caller", name),
				zap.String("locus", key.String()),
				zap.Int("line", parser.LineNumber()))
		}
		lookup[key] = rec
	}
}
