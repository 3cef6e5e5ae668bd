package export

import (
	"archive/zip"
	"bytes"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/testutil"
)

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte)
	for _, f := range zr.File {
		r, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		entries[f.Name] = content
	}
	return entries
}

func TestTextBundle(t *testing.T) {
	results := batch.ResultSet{
		{Source: "cat.jpg", Tags: []string{"cat", "orange"}},
		{Source: "http://example.com/pics/dog.png", Tags: []string{"dog"}},
		{Source: "broken.png", Err: "decode failed"},
	}

	data, err := TextBundle(results)
	require.NoError(t, err)

	entries := readArchive(t, data)
	require.Len(t, entries, 2, "error records are skipped")
	assert.Equal(t, "cat, orange", string(entries["cat.txt"]))
	assert.Equal(t, "dog", string(entries["dog.txt"]))
}

func TestTextBundle_Collisions(t *testing.T) {
	results := batch.ResultSet{
		{Source: "a/img.jpg", Tags: []string{"first"}},
		{Source: "b/img.png", Tags: []string{"second"}},
		{Source: "c/img.webp", Tags: []string{"third"}},
	}

	data, err := TextBundle(results)
	require.NoError(t, err)

	entries := readArchive(t, data)
	assert.Equal(t, "first", string(entries["img.txt"]))
	assert.Equal(t, "second", string(entries["img (1).txt"]))
	assert.Equal(t, "third", string(entries["img (2).txt"]))
}

func TestTextAndImageBundle_OriginalBytes(t *testing.T) {
	img := testutil.GenerateImage(8, 8)
	original := testutil.EncodePNG(t, img)

	results := batch.ResultSet{
		{Source: "http://example.com/cat.png", Tags: []string{"cat"}, Image: img, Data: original, Format: "png"},
	}

	data, err := TextAndImageBundle(results)
	require.NoError(t, err)

	entries := readArchive(t, data)
	require.Len(t, entries, 2)
	assert.Equal(t, "cat", string(entries["cat.txt"]))
	assert.Equal(t, original, entries["cat.png"], "original bytes preserved verbatim")
}

func TestTextAndImageBundle_ReencodesWithoutData(t *testing.T) {
	img := testutil.GenerateImage(8, 8)
	results := batch.ResultSet{
		{Source: "local.jpg", Tags: []string{"tag"}, Image: img},
	}

	data, err := TextAndImageBundle(results)
	require.NoError(t, err)

	entries := readArchive(t, data)
	require.Contains(t, entries, "local.png")
	decoded, err := png.Decode(bytes.NewReader(entries["local.png"]))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestTextAndImageBundle_IndependentCollisions(t *testing.T) {
	img := testutil.GenerateImage(4, 4)
	results := batch.ResultSet{
		{Source: "x/pic.png", Tags: []string{"a"}, Image: img},
		{Source: "y/pic.png", Tags: []string{"b"}, Image: img},
	}

	data, err := TextAndImageBundle(results)
	require.NoError(t, err)

	entries := readArchive(t, data)
	assert.Contains(t, entries, "pic.txt")
	assert.Contains(t, entries, "pic (1).txt")
	assert.Contains(t, entries, "pic.png")
	assert.Contains(t, entries, "pic (1).png")
}

func TestTextAndImageBundle_TextOnlyRecord(t *testing.T) {
	results := batch.ResultSet{
		{Source: "no-image.png", Tags: []string{"tag"}},
	}

	data, err := TextAndImageBundle(results)
	require.NoError(t, err)

	entries := readArchive(t, data)
	require.Len(t, entries, 1)
	assert.Contains(t, entries, "no-image.txt")
}

func TestFormatExtension(t *testing.T) {
	tests := []struct {
		format string
		source string
		want   string
	}{
		{"jpeg", "a.jpg", ".jpg"},
		{"png", "a.png", ".png"},
		{"webp", "a.webp", ".webp"},
		{"", "photo.BMP", ".bmp"},
		{"", "noext", ".png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatExtension(tt.format, tt.source), "format=%q source=%q", tt.format, tt.source)
	}
}

func TestEntryBase(t *testing.T) {
	assert.Equal(t, "cat", entryBase("http://example.com/x/cat.jpg"))
	assert.Equal(t, "dog", entryBase(`C:\pics\dog.png`))
	assert.Equal(t, "archive.tar", entryBase("archive.tar.gz"))
	assert.Equal(t, "untitled", entryBase(""))
}
