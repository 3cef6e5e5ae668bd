package models

import (
	"fmt"
	"os"
	"path/filepath"
)

// Model file name constants to avoid typos and ensure consistency.
const (
	// TaggerModel is the pretrained vision classifier exported to ONNX.
	TaggerModel = "vit_tagger_v2.onnx"

	// TagsVocabulary maps raw tag names to class indices.
	TagsVocabulary = "tags.json"
)

// DefaultModelsDir is the default models directory.
const DefaultModelsDir = "models"

// EnvModelsDir is the environment variable overriding the models directory.
const EnvModelsDir = "TAGGO_MODELS_DIR"

// ResolveModelsDir returns the models directory, preferring the explicit
// argument, then the environment variable, then the default.
func ResolveModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	return DefaultModelsDir
}

// GetTaggerModelPath returns the path to the classifier model file.
func GetTaggerModelPath(modelsDir string) string {
	return filepath.Join(ResolveModelsDir(modelsDir), TaggerModel)
}

// GetTagsPath returns the path to the tag vocabulary file.
func GetTagsPath(modelsDir string) string {
	return filepath.Join(ResolveModelsDir(modelsDir), TagsVocabulary)
}

// ValidateModelsDir checks that the models directory exists and contains the
// required files.
func ValidateModelsDir(modelsDir string) error {
	dir := ResolveModelsDir(modelsDir)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("models directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("models path is not a directory: %s", dir)
	}
	for _, name := range []string{TaggerModel, TagsVocabulary} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return fmt.Errorf("missing model file %s in %s: %w", name, dir, err)
		}
	}
	return nil
}
