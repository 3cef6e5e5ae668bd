package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/taggo/internal/batch"
)

func TestCSV_Exact(t *testing.T) {
	results := batch.ResultSet{
		{Kind: batch.KindFile, Source: "cat.jpg", Tags: []string{"cat", "orange"}},
		{Kind: batch.KindFile, Source: "dog.jpg", Tags: []string{"dog", "brown"}},
	}
	assert.Equal(t, "image_url;tags\ncat.jpg;cat, orange\ndog.jpg;dog, brown", CSV(results))
}

func TestCSV_ErrorRow(t *testing.T) {
	results := batch.ResultSet{
		{Kind: batch.KindURL, Source: "http://example.com/a.png", Tags: []string{"tag"}},
		{Kind: batch.KindURL, Source: "http://example.com/b.png", Err: "fetch failed: status 404"},
	}
	out := CSV(results)
	assert.Contains(t, out, "http://example.com/a.png;tag\n")
	assert.Contains(t, out, "http://example.com/b.png;ERROR: fetch failed: status 404")
}

func TestCSV_Empty(t *testing.T) {
	assert.Equal(t, "image_url;tags", CSV(nil))
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	results := batch.ResultSet{{Source: "a.png", Tags: []string{"x"}}}
	require.NoError(t, SaveCSV(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "image_url;tags\na.png;x", string(data))
}
