package batch

import (
	"image"
	"strings"
)

// Kind identifies what a result record describes.
type Kind int

const (
	// KindFile is a local image file, keyed by filename or path.
	KindFile Kind = iota
	// KindURL is a remote image.
	KindURL
	// KindInvalid is an input that resolved to neither a URL nor a file.
	KindInvalid
	// KindFolder is a synthetic record describing a folder-level failure.
	KindFolder
)

// String returns a stable name for the kind, also used in JSON output.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindURL:
		return "url"
	case KindInvalid:
		return "invalid"
	case KindFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind as its string name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Record is the outcome for a single input. A record is either
// success-shaped (Tags/Scores set, Err empty) or failure-shaped (Err set,
// nothing else beyond the identifying fields), never both.
type Record struct {
	Kind   Kind      `json:"kind"`
	Source string    `json:"source"`
	Path   string    `json:"path,omitempty"`
	Tags   []string  `json:"tags,omitempty"`
	Scores []float64 `json:"scores,omitempty"`
	Err    string    `json:"error,omitempty"`

	// Retained decode and original bytes for exporters that embed images.
	Image  image.Image `json:"-"`
	Data   []byte      `json:"-"`
	Format string      `json:"-"`
}

// Failed reports whether the record is failure-shaped.
func (r Record) Failed() bool { return r.Err != "" }

// TagString renders the tags as a comma-joined string.
func (r Record) TagString() string { return strings.Join(r.Tags, ", ") }

// ResultSet is an ordered sequence of records matching original input order.
type ResultSet []Record

// Succeeded counts success-shaped records.
func (rs ResultSet) Succeeded() int {
	n := 0
	for _, r := range rs {
		if !r.Failed() {
			n++
		}
	}
	return n
}

// Failed counts failure-shaped records.
func (rs ResultSet) Failed() int { return len(rs) - rs.Succeeded() }
