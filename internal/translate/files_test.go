package translate

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndSaveFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.txt")

	d := NewDictionary()
	d.Set("anthro", "anthropomorphic")
	d.Set("unwanted", ".")
	require.NoError(t, SaveFile(path, d))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, "anthropomorphic, female", loaded.ApplyString("anthro, unwanted, female"))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadAndSaveCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.csv")

	d := NewDictionary()
	d.Set("feline", "cat, mammal")
	d.Set("unwanted", ".")
	require.NoError(t, SaveCSV(path, d))

	loaded, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	tr, ok := loaded.Lookup("feline")
	require.True(t, ok)
	assert.Equal(t, "cat, mammal", tr)
}

func TestLoadCSV_InvalidHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("only_one_column\n"), 0o600))
	_, err := LoadCSV(path)
	assert.Error(t, err)
}

func TestTranslateTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.txt")
	require.NoError(t, os.WriteFile(path, []byte("anthro, unwanted, female\n\ncat, dog\n"), 0o600))

	d := Parse("anthro: anthropomorphic\nunwanted: .")
	got, err := TranslateTextFile(path, d)
	require.NoError(t, err)
	assert.Equal(t, "anthropomorphic, female\n\ncat, dog\n", got)
}

func TestTranslateCSVFile(t *testing.T) {
	content := "image_url;tags\ncat.jpg;anthro, female\nbad.jpg;ERROR: fetch failed\ndog.jpg;unwanted, dog"
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	d := Parse("anthro: anthropomorphic\nunwanted: .")
	got, err := TranslateCSVFile(path, d)
	require.NoError(t, err)
	assert.Equal(t, "image_url;tags\ncat.jpg;anthropomorphic, female\nbad.jpg;ERROR: fetch failed\ndog.jpg;dog", got)
}

func TestTranslateFolder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("anthro, cat"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("unwanted, dog"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.csv"), []byte("x;y"), 0o600))

	d := Parse("anthro: anthropomorphic\nunwanted: .")
	data, err := TranslateFolder(dir, d)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	contents := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[f.Name] = string(b)
	}
	assert.Equal(t, "anthropomorphic, cat", contents["a.txt"])
	assert.Equal(t, "dog", contents["b.txt"])
}

func TestTranslateFolder_NoTextFiles(t *testing.T) {
	_, err := TranslateFolder(t.TempDir(), NewDictionary())
	assert.Error(t, err)
}
