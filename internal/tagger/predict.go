package tagger

import (
	"sort"
	"strings"
)

// maxCandidates caps how many tags a single prediction may carry.
const maxCandidates = 250

// Prediction holds the tags of one image, sorted by descending score, with
// scores aligned by index.
type Prediction struct {
	Tags   []string
	Scores []float64
}

// TagString renders the tags as a comma-joined string.
func (p Prediction) TagString() string {
	return strings.Join(p.Tags, ", ")
}

// selectTags filters a raw score row by threshold and orders the surviving
// tags by descending score. Scores strictly above the threshold survive.
func selectTags(scores []float32, vocab *Vocabulary, threshold float64) Prediction {
	type scored struct {
		idx   int
		score float64
	}

	n := len(scores)
	if vocab.Len() < n {
		n = vocab.Len()
	}

	candidates := make([]scored, 0, 32)
	for i := 0; i < n; i++ {
		if s := float64(scores[i]); s > threshold {
			candidates = append(candidates, scored{idx: i, score: s})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	p := Prediction{
		Tags:   make([]string, len(candidates)),
		Scores: make([]float64, len(candidates)),
	}
	for i, c := range candidates {
		p.Tags[i] = vocab.Tag(c.idx)
		p.Scores[i] = c.score
	}
	return p
}
