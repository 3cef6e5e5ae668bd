package batch

import (
	"context"
	"image"

	"github.com/MeKo-Tech/taggo/internal/fetch"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// workItem is a single resolved input queued for processing. key is the
// accumulator key, source the display name used in records, and exactly one
// of url or path is set.
type workItem struct {
	key    string
	source string
	url    string
	path   string
}

// fetched pairs a work item with its fetch outcome for the collector.
type fetched struct {
	item workItem
	img  *fetch.Image
	err  error
}

// processURLs fans item fetches out to a worker pool and classifies results
// sequentially as they complete. Progress fires once per finished item, in
// completion order. Returns true when the progress callback requested a stop;
// in-flight fetches are abandoned via context cancellation.
func (r *Runner) processURLs(ctx context.Context, items []workItem, threshold float64, progress ProgressFunc, acc *accumulator, done *int, total int) (stopped bool) {
	if len(items) == 0 {
		return false
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan workItem, len(items))
	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	results := make(chan fetched, len(items))

	workers := r.cfg.FetchWorkers
	if workers > len(items) {
		workers = len(items)
	}
	for range workers {
		go func() {
			for item := range jobs {
				img, err := r.fetcher.FetchURL(fetchCtx, item.url)
				select {
				case results <- fetched{item: item, img: img, err: err}:
				case <-fetchCtx.Done():
					return
				}
			}
		}()
	}

	for range items {
		if ctx.Err() != nil {
			return true
		}
		var res fetched
		select {
		case res = <-results:
		case <-ctx.Done():
			return true
		}

		acc.put(res.item.key, r.classifyOne(ctx, res, threshold))
		*done++
		if progress != nil && !progress(*done, total) {
			return true
		}
	}
	return false
}

// processPaths loads and classifies local images in chunks of BatchSize.
// Progress fires once per chunk with the cumulative completed count. A
// classifier failure marks only the items of that chunk as failed.
func (r *Runner) processPaths(ctx context.Context, items []workItem, threshold float64, progress ProgressFunc, acc *accumulator, done *int, total int) (stopped bool) {
	for start := 0; start < len(items); start += r.cfg.BatchSize {
		if ctx.Err() != nil {
			return true
		}

		end := min(start+r.cfg.BatchSize, len(items))
		chunk := items[start:end]

		var loaded []workItem
		var imgs []*fetch.Image
		for _, item := range chunk {
			img, err := fetch.FetchPath(item.path)
			if err != nil {
				acc.put(item.key, Record{
					Kind:   KindFile,
					Source: item.source,
					Path:   item.path,
					Err:    err.Error(),
				})
				continue
			}
			loaded = append(loaded, item)
			imgs = append(imgs, img)
		}

		r.classifyChunk(ctx, loaded, imgs, threshold, acc)

		*done += len(chunk)
		if progress != nil && !progress(*done, total) {
			return true
		}
	}
	return false
}

// classifyOne turns a single fetch outcome into a record.
func (r *Runner) classifyOne(ctx context.Context, res fetched, threshold float64) Record {
	rec := Record{
		Kind:   recordKind(res.item),
		Source: res.item.source,
		Path:   res.item.path,
	}
	if res.err != nil {
		rec.Err = res.err.Error()
		return rec
	}

	pred, err := r.classifier.Tag(ctx, res.img.Decoded, threshold)
	if err != nil {
		rec.Err = err.Error()
		return rec
	}
	rec.Tags = pred.Tags
	rec.Scores = pred.Scores
	rec.Image = res.img.Decoded
	rec.Data = res.img.Data
	rec.Format = res.img.Format
	return rec
}

// classifyChunk scores a chunk of loaded images and stores one record per
// item. On classifier failure every item in the chunk gets an error record.
func (r *Runner) classifyChunk(ctx context.Context, items []workItem, imgs []*fetch.Image, threshold float64, acc *accumulator) {
	if len(items) == 0 {
		return
	}

	decoded := make([]image.Image, len(imgs))
	for i, img := range imgs {
		decoded[i] = img.Decoded
	}

	var preds []tagger.Prediction
	var err error
	if len(decoded) == 1 {
		var pred tagger.Prediction
		pred, err = r.classifier.Tag(ctx, decoded[0], threshold)
		preds = []tagger.Prediction{pred}
	} else {
		preds, err = r.classifier.TagBatch(ctx, decoded, threshold)
	}
	if err != nil {
		for _, item := range items {
			acc.put(item.key, Record{
				Kind:   recordKind(item),
				Source: item.source,
				Path:   item.path,
				Err:    err.Error(),
			})
		}
		return
	}

	for i, item := range items {
		acc.put(item.key, Record{
			Kind:   recordKind(item),
			Source: item.source,
			Path:   item.path,
			Tags:   preds[i].Tags,
			Scores: preds[i].Scores,
			Image:  imgs[i].Decoded,
			Data:   imgs[i].Data,
			Format: imgs[i].Format,
		})
	}
}

func recordKind(item workItem) Kind {
	if item.url != "" {
		return KindURL
	}
	return KindFile
}
