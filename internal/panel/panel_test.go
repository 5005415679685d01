package panel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "testdata", "panel.bed"))
	require.NoError(t, err)

	assert.Equal(t, "panel", p.Name)
	assert.Equal(t, []string{"NRAS_1", "KIT_1", "BRAF_1", "KRAS_1", "FLT3_1", "TP53_1"}, p.Amplicons())
	assert.Equal(t, 6, p.Len())
	assert.True(t, p.Contains("BRAF_1"))
	assert.False(t, p.Contains("ALK_9"))

	regions := p.Regions()
	require.Len(t, regions, 6)
	assert.Equal(t, Region{Chrom: "7", Start: 140453000, End: 140453300, Name: "BRAF_1"}, regions[2])
}

func TestLoad_SkipsHeaderLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.bed")
	content := "track name=panel\n# comment\nchr1\t10\t20\tA1\tx\t+\nchr1\t30\t40\tA2\n\nchr1\t50\t60\tA1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, p.Amplicons())
	assert.Len(t, p.Regions(), 3)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/panel.bed")
	assert.Error(t, err)
}

func TestIntersect(t *testing.T) {
	p := New("test", "BRAF_1", "KRAS_1", "TP53_1")

	tests := []struct {
		name       string
		candidates []string
		want       []string
	}{
		{"nil", nil, nil},
		{"sentinel", []string{"None"}, nil},
		{"off panel", []string{"ALK_9"}, nil},
		{"single", []string{"BRAF_1"}, []string{"BRAF_1"}},
		{"mixed keeps candidate order", []string{"TP53_2", "TP53_1", "BRAF_1", "TP53_1"}, []string{"TP53_1", "BRAF_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Intersect(tt.candidates))
		})
	}
}
