// Package main provides the vibe-tier command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-tier/internal/pipeline"
	"github.com/inodb/vibe-tier/internal/tier"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// usageError marks errors caused by how the tool was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err}
		}
		return nil
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// app carries state shared by subcommands once flags are parsed.
type app struct {
	cfgFile string
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "vibe-tier",
		Short: "Tier somatic variants from targeted-panel sequencing",
		Long: `vibe-tier reconciles somatic variant calls from several callers with an
annotated VCF, classifies every variant into a clinical tier and writes
per-sample reports backed by a DuckDB variant store.`,
		Example: `  vibe-tier run samples.yaml
  vibe-tier report --run 2024-06-01
  vibe-tier coverage --panel panel.bed lib1.sambamba_coverage.bed
  vibe-tier config set thresholds.min_depth 300`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{fmt.Errorf("unknown command %q", args[0])}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Help()
			return &usageError{errors.New("command required")}
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(a.cfgFile); err != nil {
				return err
			}
			logger, err := newLogger(a.verbose)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	def := tier.DefaultThresholds()
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.vibe-tier.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug messages")
	pf.String("store", "", "DuckDB variant store path")
	pf.String("report-dir", "", "Directory for report files")
	pf.Float64("min-somatic-af", def.MinSomaticAlleleFraction, "Minimum reportable somatic allele fraction")
	pf.Float64("max-population-af", def.MaxPopulationAlleleFrequency, "Maximum population allele frequency")
	pf.Int64("min-depth", def.MinDepth, "Minimum depth for a passing call")
	bindFlags(pf, map[string]string{
		"store.path":                                "store",
		"report.dir":                                "report-dir",
		"thresholds.min_somatic_allele_fraction":    "min-somatic-af",
		"thresholds.max_population_allele_frequency": "max-population-af",
		"thresholds.min_depth":                      "min-depth",
	})

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newReportCmd(a))
	root.AddCommand(newCoverageCmd(a))
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		viper.BindPFlag(key, fs.Lookup(name))
	}
}

// initConfig reads the config file and environment into viper.
func initConfig(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		viper.SetConfigFile(filepath.Join(home, ".vibe-tier.yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config %s: %w", viper.ConfigFileUsed(), err)
		}
	}
	return nil
}

func setDefaults() {
	def := tier.DefaultThresholds()
	viper.SetDefault("thresholds.min_somatic_allele_fraction", def.MinSomaticAlleleFraction)
	viper.SetDefault("thresholds.max_population_allele_frequency", def.MaxPopulationAlleleFrequency)
	viper.SetDefault("thresholds.min_depth", def.MinDepth)
	viper.SetDefault("store.path", "vibe-tier.duckdb")
	viper.SetDefault("report.dir", "reports")
	viper.SetDefault("workers", 0)
	viper.SetDefault("retries", pipeline.DefaultRetries)
	viper.SetDefault("reference_genome", pipeline.DefaultReferenceGenome)
}

// thresholds returns the configured thresholds.
func thresholds() (tier.Thresholds, error) {
	th := tier.Thresholds{
		MinSomaticAlleleFraction:     viper.GetFloat64("thresholds.min_somatic_allele_fraction"),
		MaxPopulationAlleleFrequency: viper.GetFloat64("thresholds.max_population_allele_frequency"),
		MinDepth:                     viper.GetInt64("thresholds.min_depth"),
	}
	if err := th.Validate(); err != nil {
		return th, &usageError{err}
	}
	return th, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !verbose
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-tier version %s (%s) built %s\n", version, commit, date)
		},
	}
}
