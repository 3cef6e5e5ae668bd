// Package config defines the taggo application configuration and its
// loading from files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/MeKo-Tech/taggo/internal/batch"
	"github.com/MeKo-Tech/taggo/internal/fetch"
	"github.com/MeKo-Tech/taggo/internal/models"
	"github.com/MeKo-Tech/taggo/internal/tagger"
)

// Config represents the complete configuration for the taggo application.
// It covers all commands (tag, batch, urls, translate, serve) and supports
// loading from configuration files, environment variables, and flags.
type Config struct {
	// Global settings
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Tagger TaggerConfig `mapstructure:"tagger" yaml:"tagger" json:"tagger"`
	Fetch  FetchConfig  `mapstructure:"fetch" yaml:"fetch" json:"fetch"`
	Batch  BatchConfig  `mapstructure:"batch" yaml:"batch" json:"batch"`
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// TaggerConfig contains classifier settings.
type TaggerConfig struct {
	ModelPath  string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	TagsPath   string  `mapstructure:"tags_path" yaml:"tags_path" json:"tags_path"`
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	NumThreads int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// FetchConfig contains remote image retrieval settings.
type FetchConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	MinDelayMs int `mapstructure:"min_delay_ms" yaml:"min_delay_ms" json:"min_delay_ms"`
	MaxBytesMB int `mapstructure:"max_bytes_mb" yaml:"max_bytes_mb" json:"max_bytes_mb"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	BatchSize    int `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size"`
	FetchWorkers int `mapstructure:"fetch_workers" yaml:"fetch_workers" json:"fetch_workers"`
}

// OutputConfig contains output artifact settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string  `mapstructure:"host" yaml:"host" json:"host"`
	Port            int     `mapstructure:"port" yaml:"port" json:"port"`
	MaxUploadMB     int     `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int     `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int     `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RateLimit       float64 `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
	RateBurst       int     `mapstructure:"rate_burst" yaml:"rate_burst" json:"rate_burst"`
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() Config {
	return Config{
		ModelsDir: models.ResolveModelsDir(""),
		LogLevel:  "info",
		Verbose:   false,
		Tagger: TaggerConfig{
			Threshold:  0.2,
			NumThreads: 0,
		},
		Fetch: FetchConfig{
			TimeoutSec: 10,
			MinDelayMs: 500,
			MaxBytesMB: 50,
		},
		Batch: BatchConfig{
			BatchSize:    8,
			FetchWorkers: 4,
		},
		Output: OutputConfig{
			Format: "csv",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			MaxUploadMB:     50,
			TimeoutSec:      60,
			ShutdownTimeout: 10,
			RateLimit:       10,
			RateBurst:       20,
		},
	}
}

// validFormats are the accepted batch output formats.
var validFormats = []string{"csv", "json", "txt-zip", "full-zip"}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := validateThreshold(c.Tagger.Threshold, "tagger.threshold"); err != nil {
		return err
	}
	if c.Tagger.NumThreads < 0 {
		return fmt.Errorf("tagger.num_threads must be >= 0, got %d", c.Tagger.NumThreads)
	}
	if c.Fetch.TimeoutSec <= 0 {
		return fmt.Errorf("fetch.timeout_sec must be positive, got %d", c.Fetch.TimeoutSec)
	}
	if c.Fetch.MinDelayMs < 0 {
		return fmt.Errorf("fetch.min_delay_ms must be >= 0, got %d", c.Fetch.MinDelayMs)
	}
	if c.Batch.BatchSize < 1 {
		return fmt.Errorf("batch.batch_size must be >= 1, got %d", c.Batch.BatchSize)
	}
	if c.Batch.FetchWorkers < 1 {
		return fmt.Errorf("batch.fetch_workers must be >= 1, got %d", c.Batch.FetchWorkers)
	}
	if !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", validFormats, c.Output.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive, got %v", c.Server.RateLimit)
	}
	return nil
}

// ToTaggerConfig converts to the tagger package configuration, resolving
// model and vocabulary paths against the models directory when unset.
func (c *Config) ToTaggerConfig() tagger.Config {
	cfg := tagger.DefaultConfig()
	cfg.NumThreads = c.Tagger.NumThreads
	cfg.ModelPath = c.Tagger.ModelPath
	if cfg.ModelPath == "" {
		cfg.ModelPath = models.GetTaggerModelPath(c.ModelsDir)
	}
	cfg.TagsPath = c.Tagger.TagsPath
	if cfg.TagsPath == "" {
		cfg.TagsPath = models.GetTagsPath(c.ModelsDir)
	}
	return cfg
}

// ToBatchConfig converts to the batch package configuration.
func (c *Config) ToBatchConfig() batch.Config {
	cfg := batch.DefaultConfig()
	cfg.BatchSize = c.Batch.BatchSize
	cfg.FetchWorkers = c.Batch.FetchWorkers
	cfg.Fetch = c.ToFetchConfig()
	return cfg
}

// ToFetchConfig converts to the fetch package configuration.
func (c *Config) ToFetchConfig() fetch.Config {
	cfg := fetch.DefaultConfig()
	cfg.Timeout = time.Duration(c.Fetch.TimeoutSec) * time.Second
	cfg.MinDelay = time.Duration(c.Fetch.MinDelayMs) * time.Millisecond
	cfg.MaxBytes = int64(c.Fetch.MaxBytesMB) << 20
	return cfg
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func validateThreshold(value float64, name string) error {
	if value < 0.0 || value > 1.0 {
		return fmt.Errorf("%s must be between 0.0 and 1.0, got %v", name, value)
	}
	return nil
}
