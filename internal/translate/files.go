package translate

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LoadFile reads a rule file in the line-oriented text format.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided rule file path is expected
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	return Parse(string(data)), nil
}

// SaveFile writes the dictionary in the line-oriented text format.
func SaveFile(path string, d *Dictionary) error {
	if err := os.WriteFile(path, []byte(d.Format()+"\n"), 0o600); err != nil {
		return fmt.Errorf("save translations: %w", err)
	}
	return nil
}

// LoadCSV reads a two-column CSV (original, translation) with a header row.
// Rows with a blank translation are skipped.
func LoadCSV(path string) (*Dictionary, error) {
	f, err := os.Open(path) //nolint:gosec // G304: user-provided rule file path is expected
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("invalid translation CSV %s: expected at least 2 columns", path)
	}

	d := NewDictionary()
	for _, row := range rows[1:] {
		if len(row) >= 2 && strings.TrimSpace(row[1]) != "" {
			d.Set(row[0], row[1])
		}
	}
	return d, nil
}

// SaveCSV writes the dictionary as a two-column CSV with a header row.
func SaveCSV(path string, d *Dictionary) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"original", "translation"})

	originals := make([]string, 0, d.Len())
	for original := range d.rules {
		originals = append(originals, original)
	}
	sort.Strings(originals)
	for _, original := range originals {
		_ = w.Write([]string{original, d.rules[original]})
	}
	w.Flush()

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("save translations: %w", err)
	}
	return nil
}

// TranslateTextFile applies the dictionary to every line of a tag text file
// and returns the translated content.
func TranslateTextFile(path string, d *Dictionary) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided tag file path is expected
	if err != nil {
		return "", fmt.Errorf("translate %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = d.ApplyString(line)
	}
	return strings.Join(lines, "\n"), nil
}

// TranslateCSVFile applies the dictionary to the tags column of a
// semicolon-delimited export. The header row and error rows pass through
// unchanged.
func TranslateCSVFile(path string, d *Dictionary) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided export path is expected
	if err != nil {
		return "", fmt.Errorf("translate %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		src, tags, found := strings.Cut(line, ";")
		if !found || strings.HasPrefix(tags, "ERROR: ") {
			continue
		}
		lines[i] = src + ";" + d.ApplyString(tags)
	}
	return strings.Join(lines, "\n"), nil
}

// TranslateFolder applies the dictionary to every .txt file in a folder and
// returns a zip archive of the translated files, keeping their names.
func TranslateFolder(dir string, d *Dictionary) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("translate folder: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no .txt files found in %s", dir)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		translated, err := TranslateTextFile(filepath.Join(dir, name), d)
		if err != nil {
			return nil, err
		}
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("translate folder: %w", err)
		}
		if _, err := w.Write([]byte(translated)); err != nil {
			return nil, fmt.Errorf("translate folder: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("translate folder: %w", err)
	}
	return buf.Bytes(), nil
}
