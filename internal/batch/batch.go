// Package batch drives the ingestion-and-tagging pipeline: it resolves raw
// inputs, fetches and decodes images, invokes the classifier, and assembles
// per-item records back into original input order.
package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/taggo/internal/fetch"
	"github.com/MeKo-Tech/taggo/internal/source"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// Classifier scores images against a tag vocabulary. Implemented by
// tagger.Tagger; tests substitute fakes.
type Classifier interface {
	Tag(ctx context.Context, img image.Image, threshold float64) (tagger.Prediction, error)
	TagBatch(ctx context.Context, imgs []image.Image, threshold float64) ([]tagger.Prediction, error)
}

// Config holds settings for a batch run.
type Config struct {
	// BatchSize is the number of local images scored per classifier call.
	BatchSize int
	// FetchWorkers bounds the parallel URL fetch pool.
	FetchWorkers int
	// Fetch configures the HTTP fetcher.
	Fetch fetch.Config
}

// DefaultConfig returns the default batch settings.
func DefaultConfig() Config {
	return Config{
		BatchSize:    8,
		FetchWorkers: 4,
		Fetch:        fetch.DefaultConfig(),
	}
}

// Runner executes batch tagging runs against a classifier.
type Runner struct {
	cfg        Config
	classifier Classifier
	fetcher    *fetch.Client
	resolver   *source.Resolver
}

// NewRunner creates a runner with the given classifier and configuration.
func NewRunner(classifier Classifier, cfg Config) *Runner {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.FetchWorkers < 1 {
		cfg.FetchWorkers = 1
	}
	return &Runner{
		cfg:        cfg,
		classifier: classifier,
		fetcher:    fetch.NewClient(cfg.Fetch),
		resolver:   source.NewResolver(),
	}
}

// ProcessFolder tags every supported image in a folder, in directory-listing
// order. A folder-level failure short-circuits into a single synthetic error
// record.
func (r *Runner) ProcessFolder(ctx context.Context, dir string, threshold float64, progress ProgressFunc) ResultSet {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ResultSet{{
			Kind:   KindFolder,
			Source: dir,
			Err:    fmt.Sprintf("error processing folder: %v", err),
		}}
	}

	var names []string
	var items []workItem
	for _, entry := range entries {
		if entry.IsDir() || !source.IsSupportedImage(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
		items = append(items, workItem{
			key:    entry.Name(),
			source: entry.Name(),
			path:   filepath.Join(dir, entry.Name()),
		})
	}

	acc := newAccumulator()
	done := 0
	r.processPaths(ctx, items, threshold, progress, acc, &done, len(items))
	return acc.assemble(names)
}

// ProcessURLs tags images fetched from a list of URLs. Blank and non-URL
// entries are dropped before processing; output order matches the filtered
// input order regardless of fetch completion order.
func (r *Runner) ProcessURLs(ctx context.Context, urls []string, threshold float64, progress ProgressFunc) ResultSet {
	var valid []string
	var items []workItem
	for _, raw := range urls {
		u := strings.TrimSpace(raw)
		if u == "" || !source.IsURL(u) {
			continue
		}
		valid = append(valid, u)
		items = append(items, workItem{key: u, source: u, url: u})
	}

	acc := newAccumulator()
	done := 0
	r.processURLs(ctx, items, threshold, progress, acc, &done, len(items))
	return acc.assemble(valid)
}

// ProcessInputs tags a mixed list of URLs and local paths. Invalid entries
// get an immediate error record with no fetch attempt. Output order matches
// the order of non-blank entries in the input list.
func (r *Runner) ProcessInputs(ctx context.Context, inputs []string, threshold float64, progress ProgressFunc) ResultSet {
	var order []string
	var urlItems, pathItems []workItem
	acc := newAccumulator()

	for _, raw := range inputs {
		input := strings.TrimSpace(raw)
		if input == "" {
			continue
		}
		order = append(order, input)

		switch r.resolver.Classify(input) {
		case source.KindURL:
			urlItems = append(urlItems, workItem{key: input, source: input, url: input})
		case source.KindPath:
			pathItems = append(pathItems, workItem{
				key:    input,
				source: filepath.Base(input),
				path:   input,
			})
		default:
			acc.put(input, Record{
				Kind:   KindInvalid,
				Source: input,
				Err:    "invalid input: not a URL or a readable image file",
			})
		}
	}

	total := len(order)
	done := total - len(urlItems) - len(pathItems) // invalid entries complete immediately

	if done > 0 && progress != nil && !progress(done, total) {
		return acc.assemble(order)
	}
	if stopped := r.processURLs(ctx, urlItems, threshold, progress, acc, &done, total); stopped {
		return acc.assemble(order)
	}
	r.processPaths(ctx, pathItems, threshold, progress, acc, &done, total)
	return acc.assemble(order)
}
