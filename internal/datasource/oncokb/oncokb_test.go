package oncokb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-tier/internal/consensus"
	"github.com/inodb/vibe-tier/internal/locus"
)

const geneListTSV = "Hugo Symbol\tEntrez Gene ID\tGene Type\tOncoKB Annotated\n" +
	"BRAF\t673\tONCOGENE\tYes\n" +
	"KRAS\t3845\tONCOGENE\tYes\n" +
	"TP53\t7157\tTSG\tYes\n" +
	"NOTCH1\t4851\tONCOGENE,TSG\tYes\n" +
	"\t0\tTSG\tNo\n"

func TestReadCancerGeneList(t *testing.T) {
	cgl, err := ReadCancerGeneList(strings.NewReader(geneListTSV))
	require.NoError(t, err)
	require.Len(t, cgl, 4)

	tests := []struct {
		gene     string
		geneType string
	}{
		{"BRAF", "ONCOGENE"},
		{"KRAS", "ONCOGENE"},
		{"TP53", "TSG"},
		{"NOTCH1", "ONCOGENE,TSG"},
	}
	for _, tt := range tests {
		t.Run(tt.gene, func(t *testing.T) {
			assert.True(t, cgl.IsCancerGene(tt.gene))
			assert.Equal(t, tt.geneType, cgl.GeneType(tt.gene))
		})
	}
	assert.False(t, cgl.IsCancerGene("UNKNOWN"))
	assert.Equal(t, "", cgl.GeneType("UNKNOWN"))
}

func TestReadCancerGeneList_BadHeader(t *testing.T) {
	_, err := ReadCancerGeneList(strings.NewReader("Symbol\tGene Type\nTP53\tTSG\n"))
	assert.ErrorContains(t, err, "Hugo Symbol")

	_, err = ReadCancerGeneList(strings.NewReader("Hugo Symbol\tType\nTP53\tTSG\n"))
	assert.ErrorContains(t, err, "Gene Type")

	_, err = ReadCancerGeneList(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestLoadCancerGeneList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cancerGeneList.tsv")
	require.NoError(t, os.WriteFile(path, []byte(geneListTSV), 0o644))

	cgl, err := LoadCancerGeneList(path)
	require.NoError(t, err)
	assert.Equal(t, "TSG", cgl.GeneType("TP53"))

	_, err = LoadCancerGeneList("/nonexistent/path.tsv")
	assert.Error(t, err)
}

func TestSource_Annotate(t *testing.T) {
	cgl, err := ReadCancerGeneList(strings.NewReader(geneListTSV))
	require.NoError(t, err)
	src := NewSource(cgl)

	rec := consensus.New(locus.NewKey("7", 140453137, "A", "T"), consensus.Scope{})
	rec.Effect.Gene = "BRAF"
	src.Annotate(nil, rec)
	assert.Empty(t, src.Columns())
	assert.Equal(t, "ONCOGENE", rec.GeneType)

	rec = consensus.New(locus.NewKey("13", 28592642, "CT", "C"), consensus.Scope{})
	rec.Effect.Gene = "FLT3"
	src.Annotate(nil, rec)
	assert.Equal(t, consensus.None, rec.GeneType)
}
