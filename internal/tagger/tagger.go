package tagger

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"

	onnxrt "github.com/yalue/onnxruntime_go"

	"github.com/MeKo-Tech/taggo/internal/mempool"
	"github.com/MeKo-Tech/taggo/internal/models"
	"github.com/MeKo-Tech/taggo/internal/onnx"
)

// Config holds settings for the ONNX-backed tagger.
type Config struct {
	ModelPath  string
	TagsPath   string
	NumThreads int
}

// DefaultConfig returns the tagger configuration with default model paths.
func DefaultConfig() Config {
	return Config{
		ModelPath: models.GetTaggerModelPath(""),
		TagsPath:  models.GetTagsPath(""),
	}
}

// Tagger scores images against a fixed tag vocabulary using a pretrained
// vision classifier. The model outputs gated sigmoid probabilities, so no
// post-activation is applied here.
type Tagger struct {
	config     Config
	vocab      *Vocabulary
	session    *onnxrt.DynamicAdvancedSession
	inputInfo  onnxrt.InputOutputInfo
	outputInfo onnxrt.InputOutputInfo
	mu         sync.RWMutex
}

// New loads the vocabulary and creates the ONNX session.
func New(config Config) (*Tagger, error) {
	if config.ModelPath == "" {
		return nil, errors.New("model path is required")
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("model file not found: %s", config.ModelPath)
	}

	vocab, err := LoadVocabulary(config.TagsPath)
	if err != nil {
		return nil, err
	}

	if err := onnx.EnsureRuntime(); err != nil {
		return nil, err
	}

	inputs, outputs, err := onnxrt.GetInputOutputInfo(config.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(outputs) != 1 {
		return nil, fmt.Errorf("expected 1 output, got %d", len(outputs))
	}
	inputInfo := inputs[0]
	outputInfo := outputs[0]
	if len(inputInfo.Dimensions) != 4 {
		return nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputInfo.Dimensions))
	}

	sessionOptions, err := onnxrt.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		if err := sessionOptions.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session options: %v\n", err)
		}
	}()

	if config.NumThreads > 0 {
		if err := sessionOptions.SetIntraOpNumThreads(config.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxrt.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{inputInfo.Name},
		[]string{outputInfo.Name},
		sessionOptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	slog.Debug("tagger loaded", "model", config.ModelPath, "vocabulary_size", vocab.Len())

	return &Tagger{
		config:     config,
		vocab:      vocab,
		session:    session,
		inputInfo:  inputInfo,
		outputInfo: outputInfo,
	}, nil
}

// Close releases the ONNX session.
func (t *Tagger) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		if err := t.session.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying session: %v\n", err)
		}
		t.session = nil
	}
	return nil
}

// Vocabulary returns the tagger's tag vocabulary.
func (t *Tagger) Vocabulary() *Vocabulary { return t.vocab }

// Tag scores a single image and returns the tags above the threshold, sorted
// by descending score.
func (t *Tagger) Tag(ctx context.Context, img image.Image, threshold float64) (Prediction, error) {
	preds, err := t.TagBatch(ctx, []image.Image{img}, threshold)
	if err != nil {
		return Prediction{}, err
	}
	return preds[0], nil
}

// TagBatch scores multiple images in a single inference call. Predictions are
// returned in input order.
func (t *Tagger) TagBatch(ctx context.Context, imgs []image.Image, threshold float64) ([]Prediction, error) {
	if len(imgs) == 0 {
		return nil, errors.New("no images provided")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	planes := make([][]float32, len(imgs))
	for i, img := range imgs {
		if img == nil {
			return nil, fmt.Errorf("image %d is nil", i)
		}
		planes[i] = Preprocess(img)
	}

	tensor, err := onnx.NewBatchImageTensor(planes, Channels, InputSize, InputSize)
	for _, plane := range planes {
		mempool.PutFloat32(plane)
	}
	if err != nil {
		return nil, err
	}

	scores, classes, err := t.runInference(tensor)
	if err != nil {
		return nil, err
	}

	preds := make([]Prediction, len(imgs))
	for i := range imgs {
		row := scores[i*classes : (i+1)*classes]
		preds[i] = selectTags(row, t.vocab, threshold)
	}
	return preds, nil
}

// runInference executes the session and copies out the [N, classes] scores.
func (t *Tagger) runInference(tensor onnx.Tensor) ([]float32, int, error) {
	t.mu.RLock()
	session := t.session
	t.mu.RUnlock()
	if session == nil {
		return nil, 0, errors.New("tagger session is nil")
	}

	inputTensor, err := onnxrt.NewTensor(onnxrt.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	outputs := []onnxrt.Value{nil}
	if err := session.Run([]onnxrt.Value{inputTensor}, outputs); err != nil {
		return nil, 0, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				_ = o.Destroy()
			}
		}
	}()

	floatTensor, ok := outputs[0].(*onnxrt.Tensor[float32])
	if !ok {
		return nil, 0, fmt.Errorf("expected float32 tensor, got %T", outputs[0])
	}

	shape := outputs[0].GetShape()
	if len(shape) != 2 || shape[0] != tensor.Shape[0] {
		return nil, 0, fmt.Errorf("unexpected output shape %v", shape)
	}

	data := floatTensor.GetData()
	scores := make([]float32, len(data))
	copy(scores, data)
	return scores, int(shape[1]), nil
}
