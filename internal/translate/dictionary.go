package translate

import (
	"fmt"
	"sort"
	"strings"
)

// deleteMark is the translation value that removes a tag entirely.
const deleteMark = "."

// Dictionary maps original tags to replacement text. A replacement of "."
// deletes the tag; a tag absent from the dictionary is kept unchanged.
// Replacements may contain commas, expanding one tag into several.
type Dictionary struct {
	rules map[string]string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{rules: make(map[string]string)}
}

// Set adds or replaces a rule. An empty translation removes the rule, keeping
// the original tag untouched on Apply.
func (d *Dictionary) Set(original, translation string) {
	original = strings.TrimSpace(original)
	translation = strings.TrimSpace(translation)
	if original == "" {
		return
	}
	if translation == "" {
		delete(d.rules, original)
		return
	}
	d.rules[original] = translation
}

// Len returns the number of rules.
func (d *Dictionary) Len() int { return len(d.rules) }

// Lookup returns the translation for a tag and whether a rule exists.
func (d *Dictionary) Lookup(tag string) (string, bool) {
	t, ok := d.rules[tag]
	return t, ok
}

// Parse reads the line-oriented rule format:
//
//	original_tag: translation
//
// Lines starting with # are comments. A translation of exactly "." marks the
// tag for deletion; a blank translation keeps the original unchanged.
func Parse(text string) *Dictionary {
	d := NewDictionary()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		original, translation, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		d.Set(original, translation)
	}
	return d
}

// Format renders the dictionary back to rule text with a header comment,
// rules sorted by original tag.
func (d *Dictionary) Format() string {
	lines := []string{
		"# Tag Translations",
		"# Format: original_tag: translation",
		"# Use a period (.) to delete a tag",
		"# Leave empty to keep the original tag",
		"",
	}

	originals := make([]string, 0, len(d.rules))
	for original := range d.rules {
		originals = append(originals, original)
	}
	sort.Strings(originals)

	for _, original := range originals {
		lines = append(lines, fmt.Sprintf("%s: %s", original, d.rules[original]))
	}
	return strings.Join(lines, "\n")
}

// Apply translates a tag list. Deleted tags are dropped, translations may
// expand into multiple tags, and the first occurrence of each resulting tag
// wins, preserving order.
func (d *Dictionary) Apply(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))

	emit := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		out = append(out, tag)
	}

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		translation, ok := d.rules[tag]
		switch {
		case !ok:
			emit(tag)
		case translation == deleteMark:
			// dropped
		default:
			for _, part := range strings.Split(translation, ",") {
				emit(part)
			}
		}
	}
	return out
}

// ApplyString translates a comma-separated tag string.
func (d *Dictionary) ApplyString(tags string) string {
	if strings.TrimSpace(tags) == "" {
		return ""
	}
	return strings.Join(d.Apply(strings.Split(tags, ",")), ", ")
}
