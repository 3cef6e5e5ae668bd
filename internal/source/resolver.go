package source

import (
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies a raw batch input string.
type Kind int

const (
	// KindInvalid marks inputs that are neither URLs nor existing image files.
	KindInvalid Kind = iota
	// KindURL marks http/https URLs.
	KindURL
	// KindPath marks existing local files with a supported image extension.
	KindPath
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindPath:
		return "path"
	default:
		return "invalid"
	}
}

// SupportedExtensions lists the image file extensions accepted for tagging.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// IsSupportedImage reports whether the path has a supported image extension.
// The comparison is case-insensitive.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// IsURL reports whether the input looks like an http or https URL.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Resolver classifies raw input strings. The filesystem stat function is
// injectable so path classification can be exercised without real files.
type Resolver struct {
	Stat func(string) (os.FileInfo, error)
}

// NewResolver returns a resolver backed by the real filesystem.
func NewResolver() *Resolver {
	return &Resolver{Stat: os.Stat}
}

// Classify determines whether the input is a URL, an existing supported image
// file, or invalid. Classification is total: every input maps to exactly one
// kind.
func (r *Resolver) Classify(input string) Kind {
	if IsURL(input) {
		return KindURL
	}
	if !IsSupportedImage(input) {
		return KindInvalid
	}
	stat := r.Stat
	if stat == nil {
		stat = os.Stat
	}
	info, err := stat(input)
	if err != nil || info.IsDir() {
		return KindInvalid
	}
	return KindPath
}
