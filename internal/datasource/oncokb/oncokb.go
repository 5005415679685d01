// Package oncokb classifies genes as oncogenes or tumor suppressors using the
// OncoKB cancer gene list.
package oncokb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Gene is one entry of the cancer gene list.
type Gene struct {
	HugoSymbol string
	GeneType   string // "ONCOGENE", "TSG", or "ONCOGENE,TSG"
}

// CancerGeneList maps Hugo symbol to its entry.
type CancerGeneList map[string]Gene

// IsCancerGene returns true if the gene is in the list.
func (c CancerGeneList) IsCancerGene(gene string) bool {
	_, ok := c[gene]
	return ok
}

// GeneType returns the gene classification, or "" for genes not in the list.
func (c CancerGeneList) GeneType(gene string) string {
	return c[gene].GeneType
}

// LoadCancerGeneList loads an OncoKB cancerGeneList.tsv file.
func LoadCancerGeneList(path string) (CancerGeneList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cancer gene list: %w", err)
	}
	defer f.Close()
	return ReadCancerGeneList(f)
}

// ReadCancerGeneList parses a tab-separated cancer gene list. The header must
// name "Hugo Symbol" and "Gene Type" columns; other columns are ignored.
func ReadCancerGeneList(r io.Reader) (CancerGeneList, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cancer gene list: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("cancer gene list header: %w", err)
	}

	hugoIdx, typeIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Hugo Symbol":
			hugoIdx = i
		case "Gene Type":
			typeIdx = i
		}
	}
	if hugoIdx < 0 {
		return nil, fmt.Errorf("cancer gene list: missing 'Hugo Symbol' column")
	}
	if typeIdx < 0 {
		return nil, fmt.Errorf("cancer gene list: missing 'Gene Type' column")
	}

	cgl := make(CancerGeneList)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading cancer gene list: %w", err)
		}
		if len(row) <= hugoIdx || len(row) <= typeIdx {
			continue
		}
		hugo := strings.TrimSpace(row[hugoIdx])
		if hugo == "" {
			continue
		}
		cgl[hugo] = Gene{HugoSymbol: hugo, GeneType: strings.TrimSpace(row[typeIdx])}
	}
	return cgl, nil
}
