package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/png"
	"path"
	"strings"

	"github.com/MeKo-Tech/taggo/internal/batch"
)

// namer hands out archive entry names, resolving collisions by appending
// " (n)" before the extension. Each namer tracks one file type so text and
// image entries collide independently.
type namer struct {
	used map[string]bool
}

func newNamer() *namer {
	return &namer{used: make(map[string]bool)}
}

func (n *namer) claim(base, ext string) string {
	name := base + ext
	for i := 1; n.used[name]; i++ {
		name = fmt.Sprintf("%s (%d)%s", base, i, ext)
	}
	n.used[name] = true
	return name
}

// entryBase derives an archive entry base name from a record source:
// the path or URL basename with its extension stripped.
func entryBase(source string) string {
	base := path.Base(strings.ReplaceAll(source, "\\", "/"))
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	if base == "" || base == "/" || base == "." {
		base = "untitled"
	}
	return base
}

// TextBundle builds a zip archive with one .txt file of comma-joined tags
// per successful record. Failure records are skipped.
func TextBundle(results batch.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := newNamer()

	for _, rec := range results {
		if rec.Failed() {
			continue
		}
		if err := writeEntry(zw, names.claim(entryBase(rec.Source), ".txt"), []byte(rec.TagString())); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// TextAndImageBundle builds a zip archive holding, per successful record,
// its tag .txt file and its image: the original encoded bytes when retained,
// otherwise a PNG re-encode of the decoded image. Records with neither are
// treated as text-only. Collision suffixes run independently per file type.
func TextAndImageBundle(results batch.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	textNames := newNamer()
	imageNames := newNamer()

	for _, rec := range results {
		if rec.Failed() {
			continue
		}
		base := entryBase(rec.Source)
		if err := writeEntry(zw, textNames.claim(base, ".txt"), []byte(rec.TagString())); err != nil {
			return nil, err
		}

		data, ext, err := imageBytes(rec)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		if err := writeEntry(zw, imageNames.claim(base, ext), data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// imageBytes picks the encoded representation for a record's image entry.
func imageBytes(rec batch.Record) ([]byte, string, error) {
	if len(rec.Data) > 0 {
		return rec.Data, formatExtension(rec.Format, rec.Source), nil
	}
	if rec.Image == nil {
		return nil, "", nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rec.Image); err != nil {
		return nil, "", fmt.Errorf("encoding %s: %w", rec.Source, err)
	}
	return buf.Bytes(), ".png", nil
}

// formatExtension maps a decoder format name to a file extension, falling
// back to the source's own extension and finally to .png.
func formatExtension(format, source string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "png", "bmp", "webp":
		return "." + format
	}
	if ext := strings.ToLower(path.Ext(source)); ext != "" {
		return ext
	}
	return ".png"
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("creating entry %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing entry %s: %w", name, err)
	}
	return nil
}
