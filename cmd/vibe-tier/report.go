package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/locus"
	"github.com/inodb/vibe-tier/internal/output"
	"github.com/inodb/vibe-tier/internal/store"
	"github.com/inodb/vibe-tier/internal/tier"
)

type reportOptions struct {
	runID   string
	sample  string
	library string
	stdout  bool
}

func newReportCmd(a *app) *cobra.Command {
	var o reportOptions

	cmd := &cobra.Command{
		Use:   "report [options]",
		Short: "Rebuild tier reports from the variant store",
		Long: `Read stored consensus records back from the variant store, classify them
with the configured thresholds and write the per-sample reports. Coverage and
recurrence across every stored sample are joined to each row.`,
		Example: `  vibe-tier report --run 2024-06-01
  vibe-tier report --sample S1 --library lib1 --stdout
  vibe-tier report --min-depth 500 --report-dir strict`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd, a, o)
		},
	}

	cmd.Flags().StringVar(&o.runID, "run", "", "Run id (default: every run)")
	cmd.Flags().StringVar(&o.sample, "sample", "", "Only this sample")
	cmd.Flags().StringVar(&o.library, "library", "", "Only this library")
	cmd.Flags().BoolVar(&o.stdout, "stdout", false, "Write tiered rows to stdout instead of report files")

	return cmd
}

func runReport(ctx context.Context, cmd *cobra.Command, a *app, o reportOptions) error {
	th, err := thresholds()
	if err != nil {
		return err
	}

	st, err := openStore(a.logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ss, err := st.Session(ctx)
	if err != nil {
		return err
	}
	defer ss.Close()

	scopes, err := ss.Samples(ctx, o.runID)
	if err != nil {
		return err
	}

	var tw *output.TabWriter
	if o.stdout {
		tw = output.NewTabWriter(cmd.OutOrStdout())
		if err := tw.WriteHeader(); err != nil {
			return err
		}
	}

	dir := viper.GetString("report.dir")
	reported := 0
	for _, sc := range scopes {
		if (o.sample != "" && sc.Sample != o.sample) || (o.library != "" && sc.Library != o.library) {
			continue
		}
		rep, err := readSampleReport(ctx, ss, sc, th)
		if err != nil {
			return err
		}
		reported++

		if tw != nil {
			for _, b := range tier.Ordered {
				for _, row := range rep.Rows(b) {
					if err := tw.Write(row); err != nil {
						return err
					}
				}
			}
			continue
		}

		paths, err := rep.WriteFiles(dir)
		if err != nil {
			return err
		}
		a.logger.Info("wrote sample report",
			zap.String("sample", sc.Sample),
			zap.String("library", sc.Library),
			zap.String("run_id", sc.RunID),
			zap.Int("files", len(paths)))
	}
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if reported == 0 {
		return fmt.Errorf("no stored samples match run %q sample %q library %q", o.runID, o.sample, o.library)
	}
	return nil
}

// readSampleReport rebuilds the report of one stored sample scope.
func readSampleReport(ctx context.Context, ss *store.Session, sc consensus.Scope, th tier.Thresholds) (*output.SampleReport, error) {
	entries, err := ss.Query(ctx, store.Filter{Sample: sc.Sample, Library: sc.Library, RunID: sc.RunID})
	if err != nil {
		return nil, err
	}

	buckets := tier.NewBuckets(th)
	for _, e := range entries {
		buckets.Add(e.Record)
	}

	cov, err := ss.Coverage(ctx, sc, coverage.Program)
	if err != nil {
		return nil, err
	}
	rec, err := sessionRecurrence(ctx, ss, buckets)
	if err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		sc = entries[0].Record.Scope
	}
	return &output.SampleReport{Scope: sc, Buckets: buckets, Coverage: cov, Recurrence: rec}, nil
}

// loadRecurrence computes recurrence for every bucketed record.
func loadRecurrence(ctx context.Context, st *store.Store, buckets *tier.Buckets) (map[locus.Key]store.Recurrence, error) {
	ss, err := st.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer ss.Close()
	return sessionRecurrence(ctx, ss, buckets)
}

func sessionRecurrence(ctx context.Context, ss *store.Session, buckets *tier.Buckets) (map[locus.Key]store.Recurrence, error) {
	out := make(map[locus.Key]store.Recurrence)
	for _, b := range tier.Ordered {
		for _, rec := range buckets.Records(b) {
			if _, ok := out[rec.Key]; ok {
				continue
			}
			r, err := ss.Recurrence(ctx, rec.Scope.ReferenceGenome, rec.Key)
			if err != nil {
				return nil, err
			}
			out[rec.Key] = r
		}
	}
	return out, nil
}
