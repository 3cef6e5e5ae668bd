package tagger

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/taggo/internal/mempool"
	"github.com/MeKo-Tech/taggo/internal/testutil"
)

func writeVocab(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tags.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadVocabulary_OrderAndUnderscores(t *testing.T) {
	path := writeVocab(t, `{"orange_cat": 0, "dog": 1, "long_haired_dog": 2}`)

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	require.Equal(t, 3, v.Len())
	assert.Equal(t, "orange cat", v.Tag(0))
	assert.Equal(t, "dog", v.Tag(1))
	assert.Equal(t, "long haired dog", v.Tag(2))
	assert.Equal(t, []string{"orange cat", "dog", "long haired dog"}, v.Tags())
}

func TestLoadVocabulary_Empty(t *testing.T) {
	path := writeVocab(t, `{}`)
	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestLoadVocabulary_NotAnObject(t *testing.T) {
	path := writeVocab(t, `["a", "b"]`)
	_, err := LoadVocabulary(path)
	assert.Error(t, err)
}

func TestLoadVocabulary_MissingFile(t *testing.T) {
	_, err := LoadVocabulary(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSelectTags_ThresholdAndOrder(t *testing.T) {
	v := &Vocabulary{tags: []string{"cat", "dog", "bird", "fish"}}
	scores := []float32{0.9, 0.1, 0.95, 0.3}

	p := selectTags(scores, v, 0.2)
	assert.Equal(t, []string{"bird", "cat", "fish"}, p.Tags)
	require.Len(t, p.Scores, 3)
	assert.InDelta(t, 0.95, p.Scores[0], 1e-6)
	assert.InDelta(t, 0.9, p.Scores[1], 1e-6)
	assert.InDelta(t, 0.3, p.Scores[2], 1e-6)
}

func TestSelectTags_StrictlyAbove(t *testing.T) {
	v := &Vocabulary{tags: []string{"cat"}}
	p := selectTags([]float32{0.5}, v, 0.5)
	assert.Empty(t, p.Tags)
}

func TestSelectTags_ScoresBeyondVocabularyIgnored(t *testing.T) {
	v := &Vocabulary{tags: []string{"cat", "dog"}}
	p := selectTags([]float32{0.9, 0.8, 0.99}, v, 0.1)
	assert.Equal(t, []string{"cat", "dog"}, p.Tags)
}

func TestSelectTags_CandidateCap(t *testing.T) {
	tags := make([]string, 300)
	scores := make([]float32, 300)
	for i := range tags {
		tags[i] = "t"
		scores[i] = 0.9
	}
	p := selectTags(scores, &Vocabulary{tags: tags}, 0.1)
	assert.Len(t, p.Tags, maxCandidates)
}

func TestPredictionTagString(t *testing.T) {
	p := Prediction{Tags: []string{"cat", "orange fur", "whiskers"}}
	assert.Equal(t, "cat, orange fur, whiskers", p.TagString())
	assert.Empty(t, Prediction{}.TagString())
}

func TestPreprocess_ShapeAndPadding(t *testing.T) {
	img := testutil.GenerateImage(100, 50)

	data := Preprocess(img)
	require.Len(t, data, Channels*InputSize*InputSize)

	// Wide image: top rows are padding, which normalizes to ~0.
	assert.InDelta(t, 0.0, float64(data[0]), 0.02)

	for _, v := range data {
		assert.GreaterOrEqual(t, float64(v), -1.0)
		assert.LessOrEqual(t, float64(v), 1.0)
	}
}

func TestPreprocess_TransparentPixelsCompositedOverGray(t *testing.T) {
	// Fully transparent red must blend away into the mid-gray canvas, which
	// normalizes to zero in every channel.
	img := image.NewNRGBA(image.Rect(0, 0, InputSize, InputSize))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255 // R; A stays 0
	}

	data := Preprocess(img)
	plane := InputSize * InputSize
	center := (InputSize/2)*InputSize + InputSize/2
	for c := 0; c < Channels; c++ {
		assert.InDelta(t, 0.0, float64(data[c*plane+center]), 0.02, "channel %d", c)
	}
	mempool.PutFloat32(data)
}

func TestPreprocess_SemiTransparentBlend(t *testing.T) {
	// White at 50% alpha over gray 128 lands near 192, about 0.5 normalized.
	img := image.NewNRGBA(image.Rect(0, 0, InputSize, InputSize))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+1] = 255
		img.Pix[i+2] = 255
		img.Pix[i+3] = 128
	}

	data := Preprocess(img)
	center := (InputSize/2)*InputSize + InputSize/2
	assert.InDelta(t, 0.5, float64(data[center]), 0.05)
	mempool.PutFloat32(data)
}

func TestFitDims(t *testing.T) {
	tests := []struct {
		w, h   int
		ew, eh int
	}{
		{768, 768, 384, 384},
		{768, 384, 384, 192},
		{100, 100, 384, 384}, // small images grow
		{1, 3840, 1, 384},
	}
	for _, tt := range tests {
		w, h := fitDims(tt.w, tt.h)
		assert.Equal(t, tt.ew, w, "w for %dx%d", tt.w, tt.h)
		assert.Equal(t, tt.eh, h, "h for %dx%d", tt.w, tt.h)
	}
}

func TestNew_MissingModel(t *testing.T) {
	_, err := New(Config{ModelPath: filepath.Join(t.TempDir(), "missing.onnx")})
	assert.Error(t, err)
}

func TestNew_EmptyModelPath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
