package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.InDelta(t, 0.2, cfg.Tagger.Threshold, 1e-9)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSec)
	assert.Equal(t, 500, cfg.Fetch.MinDelayMs)
	assert.Equal(t, 8, cfg.Batch.BatchSize)
	assert.Equal(t, 4, cfg.Batch.FetchWorkers)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)

	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"threshold too high", func(c *Config) { c.Tagger.Threshold = 1.5 }, "tagger.threshold"},
		{"threshold negative", func(c *Config) { c.Tagger.Threshold = -0.1 }, "tagger.threshold"},
		{"negative threads", func(c *Config) { c.Tagger.NumThreads = -1 }, "tagger.num_threads"},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSec = 0 }, "fetch.timeout_sec"},
		{"negative delay", func(c *Config) { c.Fetch.MinDelayMs = -1 }, "fetch.min_delay_ms"},
		{"zero batch size", func(c *Config) { c.Batch.BatchSize = 0 }, "batch.batch_size"},
		{"zero workers", func(c *Config) { c.Batch.FetchWorkers = 0 }, "batch.fetch_workers"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"zero rate limit", func(c *Config) { c.Server.RateLimit = 0 }, "server.rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToTaggerConfig_ResolvesModelPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelsDir = "/opt/models"

	tc := cfg.ToTaggerConfig()
	assert.Equal(t, filepath.Join("/opt/models", "vit_tagger_v2.onnx"), tc.ModelPath)
	assert.Equal(t, filepath.Join("/opt/models", "tags.json"), tc.TagsPath)
}

func TestToTaggerConfig_ExplicitPathsWin(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tagger.ModelPath = "/custom/model.onnx"
	cfg.Tagger.TagsPath = "/custom/tags.json"

	tc := cfg.ToTaggerConfig()
	assert.Equal(t, "/custom/model.onnx", tc.ModelPath)
	assert.Equal(t, "/custom/tags.json", tc.TagsPath)
}

func TestToFetchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.TimeoutSec = 3
	cfg.Fetch.MinDelayMs = 250
	cfg.Fetch.MaxBytesMB = 2

	fc := cfg.ToFetchConfig()
	assert.Equal(t, 3*time.Second, fc.Timeout)
	assert.Equal(t, 250*time.Millisecond, fc.MinDelay)
	assert.Equal(t, int64(2<<20), fc.MaxBytes)
}

func TestToBatchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Batch.BatchSize = 16
	cfg.Batch.FetchWorkers = 2

	bc := cfg.ToBatchConfig()
	assert.Equal(t, 16, bc.BatchSize)
	assert.Equal(t, 2, bc.FetchWorkers)
}

func writeYAML(t *testing.T, path string, doc map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func freshLoader() *Loader {
	return &Loader{v: viper.New()}
}

func TestLoader_Defaults(t *testing.T) {
	cfg, err := freshLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Batch.BatchSize, cfg.Batch.BatchSize)
	assert.Equal(t, DefaultConfig().Output.Format, cfg.Output.Format)
}

func TestLoader_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taggo.yaml")
	writeYAML(t, path, map[string]any{
		"log_level": "debug",
		"tagger":    map[string]any{"threshold": 0.35},
		"batch":     map[string]any{"batch_size": 32},
	})

	cfg, err := freshLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.35, cfg.Tagger.Threshold, 1e-9)
	assert.Equal(t, 32, cfg.Batch.BatchSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4, cfg.Batch.FetchWorkers)
}

func TestLoader_WithFile_Missing(t *testing.T) {
	_, err := freshLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoader_WithFile_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taggo.yaml")
	writeYAML(t, path, map[string]any{
		"tagger": map[string]any{"threshold": 2.0},
	})

	_, err := freshLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("TAGGO_LOG_LEVEL", "warn")
	t.Setenv("TAGGO_BATCH_BATCH_SIZE", "3")

	cfg, err := freshLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Batch.BatchSize)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))

	cfg, err := freshLoader().LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestGetConfigSearchPaths(t *testing.T) {
	paths := GetConfigSearchPaths()
	assert.Contains(t, paths, ".")
	assert.Contains(t, paths, "/etc/taggo")
}
