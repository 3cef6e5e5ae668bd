package tagger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Vocabulary is the ordered tag list of the classifier. The position of a tag
// corresponds to the model's class index, so the JSON object's key order is
// significant and must be preserved while loading.
type Vocabulary struct {
	tags []string
}

// LoadVocabulary reads a tags.json file, an object whose keys are raw tag
// names in class-index order. Underscores in tag names are replaced with
// spaces, matching the display form the classifier emits.
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path) //nolint:gosec // G304: vocabulary path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	dec := json.NewDecoder(f)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parse vocabulary: expected object, got %v", tok)
	}

	var tags []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse vocabulary: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse vocabulary: non-string key %v", keyTok)
		}
		// Skip the value; only key order matters.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, fmt.Errorf("parse vocabulary: %w", err)
		}
		tags = append(tags, strings.ReplaceAll(key, "_", " "))
	}

	if len(tags) == 0 {
		return nil, fmt.Errorf("vocabulary %s contains no tags", path)
	}
	return &Vocabulary{tags: tags}, nil
}

// Len returns the number of tags.
func (v *Vocabulary) Len() int { return len(v.tags) }

// Tag returns the tag at class index i.
func (v *Vocabulary) Tag(i int) string { return v.tags[i] }

// Tags returns a copy of all tags in class-index order.
func (v *Vocabulary) Tags() []string {
	out := make([]string, len(v.tags))
	copy(out, v.tags)
	return out
}
