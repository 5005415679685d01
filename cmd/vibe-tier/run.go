package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/datasource/oncokb"
	"github.com/inodb/vibe-tier/internal/output"
	"github.com/inodb/vibe-tier/internal/pipeline"
	"github.com/inodb/vibe-tier/internal/store"
)

var errSamplesFailed = errors.New("samples failed")

func newRunCmd(a *app) *cobra.Command {
	var (
		geneList string
		noStore  bool
	)

	cmd := &cobra.Command{
		Use:   "run [options] <samples.yaml>",
		Short: "Tier every library in a samples file",
		Long: `Reconcile caller VCFs with the annotated VCF of every library listed in the
samples file, classify each variant, store the consensus records and write
the per-sample reports.`,
		Example: `  vibe-tier run samples.yaml
  vibe-tier run --workers 4 --store /data/vibe-tier.duckdb samples.yaml
  vibe-tier run --no-store --report-dir out samples.yaml`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, a, args[0], geneList, noStore)
		},
	}

	cmd.Flags().Int("workers", 0, "Libraries processed concurrently (default: number of CPUs)")
	cmd.Flags().Int("retries", pipeline.DefaultRetries, "Store retries per library")
	cmd.Flags().StringVar(&geneList, "gene-list", "", "OncoKB cancer gene list (TSV) for gene types")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Only write reports, do not persist records")
	bindFlags(cmd.Flags(), map[string]string{
		"workers": "workers",
		"retries": "retries",
	})

	return cmd
}

func runRun(ctx context.Context, cmd *cobra.Command, a *app, samplesPath, geneList string, noStore bool) error {
	libs, err := pipeline.LoadSamples(samplesPath)
	if err != nil {
		return err
	}
	genome := viper.GetString("reference_genome")
	for i := range libs {
		if libs[i].ReferenceGenome == "" {
			libs[i].ReferenceGenome = genome
		}
	}

	th, err := thresholds()
	if err != nil {
		return err
	}
	opts := pipeline.Options{
		Thresholds: th,
		Workers:    viper.GetInt("workers"),
		Retries:    uint64(viper.GetInt("retries")),
		Logger:     a.logger,
	}
	if geneList != "" {
		if opts.GeneList, err = oncokb.LoadCancerGeneList(geneList); err != nil {
			return err
		}
		a.logger.Info("loaded cancer gene list", zap.Int("genes", len(opts.GeneList)))
	}

	var st *store.Store
	if !noStore {
		if st, err = openStore(a.logger); err != nil {
			return err
		}
		defer st.Close()
	}

	summary, runErr := pipeline.RunBatch(ctx, st, libs, opts)
	if summary == nil {
		return runErr
	}

	dir := viper.GetString("report.dir")
	for _, res := range summary.Succeeded {
		rep := &output.SampleReport{Scope: res.Scope, Buckets: res.Buckets, Coverage: res.Coverage}
		if st != nil {
			if rep.Recurrence, err = loadRecurrence(ctx, st, res.Buckets); err != nil {
				return err
			}
		}
		paths, err := rep.WriteFiles(dir)
		if err != nil {
			return err
		}
		a.logger.Info("wrote sample report",
			zap.String("sample", res.Scope.Sample),
			zap.String("library", res.Scope.Library),
			zap.String("dir", dir),
			zap.Int("files", len(paths)))
	}

	if err := output.WriteRunSummary(cmd.OutOrStdout(), summary); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d", errSamplesFailed, len(summary.Failed), len(libs))
	}
	return nil
}

func openStore(logger *zap.Logger) (*store.Store, error) {
	opts := store.Options{Path: viper.GetString("store.path")}
	if err := opts.FromEnv(); err != nil {
		return nil, err
	}
	st, err := store.OpenWithOptions(opts)
	if err != nil {
		return nil, err
	}
	st.SetLogger(logger)
	logger.Debug("opened store", zap.String("path", st.Path()))
	return st, nil
}
