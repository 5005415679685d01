package pipeline

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/annotate"
	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/datasource/amplicon"
	"github.com/inodb/vibe-tier/internal/datasource/clinvar"
	"github.com/inodb/vibe-tier/internal/datasource/cosmic"
	"github.com/inodb/vibe-tier/internal/datasource/oncokb"
	"github.com/inodb/vibe-tier/internal/datasource/population"
	"github.com/inodb/vibe-tier/internal/locus"
	"github.com/inodb/vibe-tier/internal/panel"
	"github.com/inodb/vibe-tier/internal/reconcile"
	"github.com/inodb/vibe-tier/internal/store"
	"github.com/inodb/vibe-tier/internal/tier"
	"github.com/inodb/vibe-tier/internal/vcf"
)

// SampleError ties a failure to the library that produced it, so the
// library can be re-run on its own.
type SampleError struct {
	Sample  string
	Library string
	Err     error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %s (library %s): %v", e.Sample, e.Library, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

// Options configures a sample pass and a batch run.
type Options struct {
	Thresholds tier.Thresholds
	// GeneList, when set, adds the OncoKB gene type to records.
	GeneList oncokb.CancerGeneList
	Workers  int
	// Retries bounds the whole-sample retries on store failures.
	Retries uint64
	// RetryInterval is the initial backoff interval; zero uses the default.
	RetryInterval time.Duration
	Logger        *zap.Logger
	// Now stamps DateAnnotated; defaults to time.Now.
	Now func() time.Time
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

// SampleResult is the outcome of one sample pass.
type SampleResult struct {
	Scope    consensus.Scope
	Panel    *panel.Panel
	Buckets  *tier.Buckets
	Entries  []store.Entry // every record, including filtered and off-target
	Coverage []coverage.Row
	Attempts int
}

// Counts returns the bucket counts of the pass.
func (r *SampleResult) Counts() tier.Counts {
	return r.Buckets.Counts()
}

// ProcessSample runs the reconcile, enrich and tier pass for one library.
// It does not touch the store. Errors are input errors and are returned
// as *SampleError.
func ProcessSample(lib Library, opts Options) (*SampleResult, error) {
	res, err := processSample(lib, opts)
	if err != nil {
		return nil, &SampleError{Sample: lib.Sample, Library: lib.Library, Err: err}
	}
	return res, nil
}

func processSample(lib Library, opts Options) (*SampleResult, error) {
	log := opts.logger().With(zap.String("sample", lib.Sample), zap.String("library", lib.Library))
	lib.ReferenceGenome = lib.genome()

	p, err := panel.Load(lib.PanelBED)
	if err != nil {
		return nil, err
	}

	lookups, err := loadLookups(lib, log)
	if err != nil {
		return nil, err
	}

	parser, err := vcf.NewParser(lib.AnnotatedPath())
	if err != nil {
		return nil, fmt.Errorf("open annotated vcf: %w", err)
	}
	defer parser.Close()
	parser.SetLogger(log)

	desc, ok := parser.InfoDescription("ANN")
	if !ok {
		log.Debug("annotated vcf has no ANN header, using default effect keys")
	}
	sources := []annotate.Source{
		clinvar.NewSource(),
		cosmic.NewSource(),
		population.NewSource(),
		amplicon.NewSource(p),
	}
	if opts.GeneList != nil {
		sources = append(sources, oncokb.NewSource(opts.GeneList))
	}
	enricher := annotate.NewEnricher(desc, sources...)
	enricher.SetLogger(log)
	log.Debug("effect keys", zap.Strings("keys", enricher.EffectKeys()))
	declared := func(id string) bool {
		_, ok := parser.InfoDescription(id)
		return ok
	}
	for _, m := range enricher.MissingFields(declared) {
		log.Debug("annotation fields not declared in header",
			zap.String("source", m.Source),
			zap.Strings("fields", m.Fields),
		)
	}

	res := &SampleResult{
		Scope:   lib.Scope,
		Panel:   p,
		Buckets: tier.NewBuckets(opts.Thresholds),
	}
	annotated := opts.now()
	for {
		v, err := parser.Next()
		if err != nil {
			return nil, fmt.Errorf("read annotated vcf: %w", err)
		}
		if v == nil {
			break
		}
		if len(v.Alts) != 1 {
			return nil, &caller.MalformedRecordError{Caller: "annotated", Path: parser.Path(), Line: v.Line, Alts: v.Alts}
		}

		key := locus.NewKey(v.Chrom, v.Pos, v.Ref, v.Alt())
		rec, err := reconcile.Reconcile(key, lib.Scope, annotate.CallerList(v), lookups)
		if err != nil {
			return nil, err
		}
		rec.DateAnnotated = annotated
		enricher.Enrich(rec, v)

		a := res.Buckets.Add(rec)
		res.Entries = append(res.Entries, store.Entry{Record: rec, Assignment: a})
	}

	if path := lib.CoveragePath(); path != "" {
		if res.Coverage, err = coverage.Load(path, p); err != nil {
			return nil, err
		}
	}

	c := res.Counts()
	log.Info("sample processed",
		zap.Int("records", len(res.Entries)),
		zap.Int("tiered", c.Total()),
		zap.Int("off_target", c.OffTarget),
		zap.Int("population_filtered", c.PopulationFiltered))
	return res, nil
}

// loadLookups reads every caller VCF that exists. A caller without a file
// has no lookup; records naming it fail reconciliation.
func loadLookups(lib Library, log *zap.Logger) (caller.Lookups, error) {
	loader := caller.NewLoader(log)
	lookups := make(caller.Lookups)
	for _, name := range lib.CallerNames() {
		path := lib.CallerVCF(name)
		if path == "" {
			log.Warn("no vcf for caller", zap.String("caller", name))
			continue
		}
		lookup, err := loader.Load(name, path)
		if err != nil {
			return nil, err
		}
		log.Debug("loaded caller vcf",
			zap.String("caller", name),
			zap.String("path", path),
			zap.Int("records", len(lookup)))
		lookups[name] = lookup
	}
	return lookups, nil
}

// IsInputError reports whether err is a permanent input problem, as opposed
// to a store failure worth retrying.
func IsInputError(err error) bool {
	return err != nil && !errors.Is(err, store.ErrUnavailable)
}
