// Package pipeline runs the per-sample reconcile, enrich and tier pass and
// drives it concurrently over a batch of samples.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/inodb/vibe-tier/internal/caller"
	"github.com/inodb/vibe-tier/internal/consensus"
)

// Library describes the inputs of one sequencing library of a sample.
type Library struct {
	consensus.Scope `yaml:",inline"`

	// VCFDir holds files named after the library when explicit paths are
	// not given.
	VCFDir       string            `yaml:"vcf_dir"`
	Callers      []string          `yaml:"callers"`
	CallerVCFs   map[string]string `yaml:"caller_vcfs"`
	AnnotatedVCF string            `yaml:"annotated_vcf"`
	PanelBED     string            `yaml:"panel_bed"`
	CoverageBED  string            `yaml:"coverage_bed"`
}

// SamplesFile is the YAML document listing the libraries of a run.
type SamplesFile struct {
	RunID           string    `yaml:"run_id"`
	ReferenceGenome string    `yaml:"reference_genome"`
	Samples         []Library `yaml:"samples"`
}

// LoadSamples reads a samples YAML file. Relative paths resolve against the
// file's directory; run id and reference genome default to the file-level
// values.
func LoadSamples(path string) ([]Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples file: %w", err)
	}

	var sf SamplesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse samples file %s: %w", path, err)
	}
	if len(sf.Samples) == 0 {
		return nil, fmt.Errorf("samples file %s: no samples", path)
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool)
	for i := range sf.Samples {
		lib := &sf.Samples[i]
		if lib.Sample == "" || lib.Library == "" {
			return nil, fmt.Errorf("samples file %s: entry %d needs sample_name and library_name", path, i+1)
		}
		id := lib.Sample + "/" + lib.Library
		if seen[id] {
			return nil, fmt.Errorf("samples file %s: duplicate library %s", path, id)
		}
		seen[id] = true

		if lib.RunID == "" {
			lib.RunID = sf.RunID
		}
		if lib.ReferenceGenome == "" {
			lib.ReferenceGenome = sf.ReferenceGenome
		}
		lib.VCFDir = resolve(base, lib.VCFDir)
		lib.AnnotatedVCF = resolve(base, lib.AnnotatedVCF)
		lib.PanelBED = resolve(base, lib.PanelBED)
		lib.CoverageBED = resolve(base, lib.CoverageBED)
		for c, p := range lib.CallerVCFs {
			lib.CallerVCFs[c] = resolve(base, p)
		}
		for _, c := range lib.Callers {
			if !caller.IsKnown(c) {
				return nil, fmt.Errorf("samples file %s: %s: %w: %q", path, id, caller.ErrUnknownCaller, c)
			}
		}
	}
	return sf.Samples, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// CallerNames returns the callers to load, all supported callers by default.
func (l *Library) CallerNames() []string {
	if len(l.Callers) > 0 {
		return l.Callers
	}
	return caller.All
}

// CallerVCF returns the VCF path for c: the explicit path, else
// {library}.{caller}.normalized.vcf.gz in VCFDir, else the uncompressed
// name. Returns "" when no candidate exists.
func (l *Library) CallerVCF(c string) string {
	if p, ok := l.CallerVCFs[c]; ok {
		return p
	}
	stem := filepath.Join(l.VCFDir, fmt.Sprintf("%s.%s.normalized.vcf", l.Library, c))
	for _, p := range []string{stem + ".gz", stem} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// AnnotatedPath returns the multi-caller annotated VCF of the library.
func (l *Library) AnnotatedPath() string {
	if l.AnnotatedVCF != "" {
		return l.AnnotatedVCF
	}
	return filepath.Join(l.VCFDir, l.Library+".vcfanno.snpEff."+l.genome()+".vcf")
}

// CoveragePath returns the sambamba coverage file, or "" when there is none.
func (l *Library) CoveragePath() string {
	if l.CoverageBED != "" {
		return l.CoverageBED
	}
	p := filepath.Join(l.VCFDir, l.Library+".sambamba_coverage.bed")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// DefaultReferenceGenome names the snpEff database of annotated VCFs.
const DefaultReferenceGenome = "GRCh37.75"

func (l *Library) genome() string {
	if l.ReferenceGenome != "" {
		return l.ReferenceGenome
	}
	return DefaultReferenceGenome
}
