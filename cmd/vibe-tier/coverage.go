package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/coverage"
	"github.com/inodb/vibe-tier/internal/output"
	"github.com/inodb/vibe-tier/internal/panel"
)

var errRequiresScope = errors.New("--ingest requires --sample and --library")

type coverageOptions struct {
	scope    consensus.Scope
	panelBED string
	ingest   bool
}

func newCoverageCmd(a *app) *cobra.Command {
	var o coverageOptions

	cmd := &cobra.Command{
		Use:   "coverage [options] <coverage.bed>",
		Short: "Show or store per-amplicon coverage",
		Long: `Read a sambamba per-amplicon coverage file, restricted to the amplicons of a
panel when one is given, and print the coverage section of the report.
With --ingest the rows are stored for the given sample scope.`,
		Example: `  vibe-tier coverage --panel panel.bed lib1.sambamba_coverage.bed
  vibe-tier coverage --ingest --sample S1 --library lib1 --run run1 lib1.sambamba_coverage.bed`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd.Context(), cmd, a, o, args[0])
		},
	}

	cmd.Flags().StringVar(&o.panelBED, "panel", "", "Panel BED restricting the amplicons")
	cmd.Flags().StringVar(&o.scope.Sample, "sample", "", "Sample name")
	cmd.Flags().StringVar(&o.scope.Library, "library", "", "Library name")
	cmd.Flags().StringVar(&o.scope.RunID, "run", "", "Run id")
	cmd.Flags().BoolVar(&o.ingest, "ingest", false, "Store the coverage rows")

	return cmd
}

func runCoverage(ctx context.Context, cmd *cobra.Command, a *app, o coverageOptions, path string) error {
	var p *panel.Panel
	if o.panelBED != "" {
		var err error
		if p, err = panel.Load(o.panelBED); err != nil {
			return err
		}
		o.scope.Panel = p.Name
	}

	rows, err := coverage.Load(path, p)
	if err != nil {
		return err
	}

	if o.ingest {
		if o.scope.Sample == "" || o.scope.Library == "" {
			return &usageError{errRequiresScope}
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
		if err := ss.WriteCoverage(ctx, o.scope, coverage.Program, rows); err != nil {
			return err
		}
		a.logger.Info("stored coverage",
			zap.String("sample", o.scope.Sample),
			zap.String("library", o.scope.Library),
			zap.Int("amplicons", len(rows)))
	}

	th, err := thresholds()
	if err != nil {
		return err
	}
	return output.WriteCoverage(cmd.OutOrStdout(), o.scope, th, rows)
}
