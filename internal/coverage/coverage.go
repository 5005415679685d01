// Package coverage reads sambamba per-amplicon coverage files.
package coverage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/vibe-tier/internal/panel"
)

// Program is the coverage program name recorded with each row.
const Program = "sambamba"

// Coverage status thresholds on mean coverage.
const (
	ErrorBelow   = 200.0
	WarningBelow = 500.0
)

// Status levels.
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Row is the coverage of one amplicon in one library.
type Row struct {
	Amplicon     string
	Chrom        string
	Start        int64
	End          int64
	NumReads     int64
	MeanCoverage float64
}

// Status classifies the row's mean coverage.
func (r Row) Status() string {
	return Status(r.MeanCoverage)
}

// Status classifies a mean coverage value.
func Status(mean float64) string {
	switch {
	case mean < ErrorBelow:
		return StatusError
	case mean < WarningBelow:
		return StatusWarning
	}
	return StatusPass
}

// Load reads a sambamba coverage BED file, keeping only amplicons of p.
// A nil panel keeps every row.
func Load(path string, p *panel.Panel) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coverage: %w", err)
	}
	defer f.Close()

	rows, err := Read(f, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// Read parses sambamba region coverage: chrom, start, end, amplicon,
// read count, mean coverage, then optional extra columns. Header lines start
// with "#".
func Read(r io.Reader, p *panel.Panel) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read coverage: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 6 {
			return nil, fmt.Errorf("coverage line %d: expected at least 6 columns, got %d", line, len(rec))
		}

		amplicon := strings.TrimSpace(rec[3])
		if p != nil && !p.Contains(amplicon) {
			continue
		}

		row := Row{Amplicon: amplicon, Chrom: rec[0]}
		if row.Start, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
			return nil, fmt.Errorf("coverage line %d: start: %w", line, err)
		}
		if row.End, err = strconv.ParseInt(rec[2], 10, 64); err != nil {
			return nil, fmt.Errorf("coverage line %d: end: %w", line, err)
		}
		if row.NumReads, err = strconv.ParseInt(rec[4], 10, 64); err != nil {
			return nil, fmt.Errorf("coverage line %d: read count: %w", line, err)
		}
		if row.MeanCoverage, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return nil, fmt.Errorf("coverage line %d: mean coverage: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
