// Package export renders batch result sets into their output artifacts:
// semicolon-delimited CSV, per-item tag text files, and zip bundles with or
// without the source images.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MeKo-Tech/taggo/internal/batch"
)

// csvHeader is the fixed first row of every CSV export.
const csvHeader = "image_url;tags"

// CSV renders one row per record, semicolon-delimited, with no trailing
// newline. Failure records render as "source;ERROR: <message>". Tags
// containing a semicolon are not quoted and will misalign columns; callers
// that care should sanitize the vocabulary.
func CSV(results batch.ResultSet) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	for _, rec := range results {
		b.WriteByte('\n')
		b.WriteString(rec.Source)
		b.WriteByte(';')
		if rec.Failed() {
			b.WriteString("ERROR: ")
			b.WriteString(rec.Err)
		} else {
			b.WriteString(rec.TagString())
		}
	}
	return b.String()
}

// WriteCSV streams the CSV rendering to w.
func WriteCSV(w io.Writer, results batch.ResultSet) error {
	if _, err := io.WriteString(w, CSV(results)); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// SaveCSV writes the CSV rendering to a file.
func SaveCSV(path string, results batch.ResultSet) error {
	f, err := os.Create(path) //nolint:gosec // G304: user-chosen output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteCSV(f, results); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
