// Package panel loads target-panel BED files. Column 4 names the amplicon.
package panel

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/io/featio"
	"github.com/biogo/biogo/io/featio/bed"
)

// Region is one amplicon interval of the panel.
type Region struct {
	Chrom string
	Start int
	End   int
	Name  string
}

// Panel is the set of target amplicons for a sample.
type Panel struct {
	Name    string
	regions []Region
	names   map[string]bool
	order   []string
}

// New builds a panel from amplicon names with no coordinates.
func New(name string, amplicons ...string) *Panel {
	p := &Panel{Name: name, names: make(map[string]bool)}
	for _, a := range amplicons {
		p.add(Region{Name: a})
	}
	return p
}

func (p *Panel) add(r Region) {
	p.regions = append(p.regions, r)
	if r.Name == "" || p.names[r.Name] {
		return
	}
	p.names[r.Name] = true
	p.order = append(p.order, r.Name)
}

// Load reads a BED4 (or wider) file. Comment, track and browser lines are
// skipped.
func Load(path string) (*Panel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open panel: %w", err)
	}

	var body bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "track") || strings.HasPrefix(trimmed, "browser") {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read panel: %w", err)
	}

	br, err := bed.NewReader(&body, 4)
	if err != nil {
		return nil, fmt.Errorf("create bed reader: %w", err)
	}

	p := New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	fs := featio.NewScanner(br)
	for fs.Next() {
		f := fs.Feat()
		p.add(Region{
			Chrom: f.Location().Name(),
			Start: f.Start(),
			End:   f.End(),
			Name:  f.Name(),
		})
	}
	if err := fs.Error(); err != nil {
		return nil, fmt.Errorf("parse panel %s: %w", path, err)
	}
	return p, nil
}

// Amplicons returns the amplicon names in file order, without duplicates.
func (p *Panel) Amplicons() []string {
	return p.order
}

// Regions returns every region of the panel in file order.
func (p *Panel) Regions() []Region {
	return p.regions
}

// Contains reports whether amplicon is part of the panel.
func (p *Panel) Contains(amplicon string) bool {
	return p.names[amplicon]
}

// Len returns the number of distinct amplicons.
func (p *Panel) Len() int {
	return len(p.order)
}

// Intersect returns the members of candidates that are panel amplicons, in
// candidate order, without duplicates. Returns nil when none match.
func (p *Panel) Intersect(candidates []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if p.names[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
