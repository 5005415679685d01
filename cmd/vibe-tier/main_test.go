package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	if code != ExitSuccess {
		t.Logf("stderr: %s", stderr.String())
	}
	return code, stdout.String()
}

func writeSamples(t *testing.T, dir string, libs ...string) string {
	t.Helper()
	testdata, err := filepath.Abs(filepath.Join("..", "..", "testdata"))
	require.NoError(t, err)

	var b strings.Builder
	b.WriteString("run_id: run1\nreference_genome: GRCh37.75\nsamples:\n")
	for _, lib := range libs {
		panel := filepath.Join(testdata, "panel.bed")
		if lib == "S3" {
			panel = filepath.Join(testdata, "missing.bed")
		}
		fmt.Fprintf(&b, "  - sample_name: %s\n    library_name: lib1\n    vcf_dir: %s\n    panel_bed: %s\n", lib, testdata, panel)
	}
	path := filepath.Join(dir, "samples.yaml")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestRun_Version(t *testing.T) {
	setup(t)
	code, out := execute(t, "version")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "vibe-tier version dev (none) built unknown\n", out)
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no command", nil},
		{"unknown command", []string{"annotate"}},
		{"unknown flag", []string{"run", "--bogus", "samples.yaml"}},
		{"missing argument", []string{"run"}},
		{"extra argument", []string{"version", "extra"}},
		{"bad threshold", []string{"coverage", "--min-somatic-af", "2", filepath.Join("..", "..", "testdata", "lib1.sambamba_coverage.bed")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			code, _ := execute(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
		})
	}
}

func TestRun_RunAndReport(t *testing.T) {
	dir := setup(t)
	db := filepath.Join(dir, "store", "vibe-tier.duckdb")
	reports := filepath.Join(dir, "reports")
	samples := writeSamples(t, dir, "S1", "S2")

	code, out := execute(t, "run", "--store", db, "--report-dir", reports, "--workers", "2", samples)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Samples succeeded: 2\n")
	assert.Contains(t, out, "Samples failed: 0\n")
	assert.FileExists(t, filepath.Join(reports, "S1.lib1.tier1_pass.txt"))
	assert.FileExists(t, filepath.Join(reports, "S2.lib1.summary.txt"))

	data, err := os.ReadFile(filepath.Join(reports, "S1.lib1.tier1_pass.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "KRAS")

	rebuilt := filepath.Join(dir, "rebuilt")
	code, _ = execute(t, "report", "--store", db, "--report-dir", rebuilt, "--run", "run1")
	require.Equal(t, ExitSuccess, code)
	again, err := os.ReadFile(filepath.Join(rebuilt, "S1.lib1.tier1_pass.txt"))
	require.NoError(t, err)
	assert.Equal(t, 2, len(strings.Split(strings.TrimRight(string(again), "\n"), "\n")))
	assert.Contains(t, string(again), "KRAS")

	code, out = execute(t, "report", "--store", db, "--sample", "S1", "--stdout")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "Variant_ID\t"))
	// tier1 pass, tier1 fail, tier3 pass, tier3 fail, tier4 fail
	assert.Len(t, strings.Split(strings.TrimRight(out, "\n"), "\n"), 6)

	code, _ = execute(t, "report", "--store", db, "--sample", "nobody")
	assert.Equal(t, ExitError, code)
}

func TestRun_FailedSample(t *testing.T) {
	dir := setup(t)
	samples := writeSamples(t, dir, "S1", "S3")

	code, out := execute(t, "run", "--no-store", "--report-dir", filepath.Join(dir, "reports"), samples)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, out, "Samples succeeded: 1\n")
	assert.Contains(t, out, "Samples failed: 1\n")
	assert.Contains(t, out, "FAILED S3/lib1")
	assert.FileExists(t, filepath.Join(dir, "reports", "S1.lib1.tier1_pass.txt"))
}

func TestRun_Coverage(t *testing.T) {
	dir := setup(t)
	testdata := filepath.Join("..", "..", "testdata")
	db := filepath.Join(dir, "cov.duckdb")

	code, out := execute(t, "coverage", "--panel", filepath.Join(testdata, "panel.bed"),
		"--ingest", "--store", db, "--sample", "S1", "--library", "lib1", "--run", "run1",
		filepath.Join(testdata, "lib1.sambamba_coverage.bed"))
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Sample\tS1\n")
	assert.Contains(t, out, "Amplicon\tNum_Reads\tCoverage\tStatus\n")

	code, _ = execute(t, "coverage", "--ingest", filepath.Join(testdata, "lib1.sambamba_coverage.bed"))
	assert.Equal(t, ExitUsage, code)
}

func TestRun_Config(t *testing.T) {
	home := setup(t)

	code, out := execute(t, "config", "set", "thresholds.min_depth", "300")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "thresholds.min_depth = 300")
	assert.FileExists(t, filepath.Join(home, ".vibe-tier.yaml"))

	viper.Reset()
	code, out = execute(t, "config", "get", "thresholds.min_depth")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "300\n", out)

	th, err := thresholds()
	require.NoError(t, err)
	assert.Equal(t, int64(300), th.MinDepth)
	assert.Equal(t, 0.01, th.MinSomaticAlleleFraction)
}
