package config

import (
	"os"
	"path/filepath"

	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/validation"
)

// Config is the full application configuration supplied to the pipeline.
type Config struct {
	// Language is the expected spoken language code (e.g. "nl", "en").
	Language string `yaml:"language" mapstructure:"language"`
	// Model is the recognition model name (tiny ... large-v3).
	Model string `yaml:"model" mapstructure:"model"`
	// Engine selects the transcription engine ("whispercpp" or "sidecar").
	Engine string `yaml:"engine" mapstructure:"engine"`
	// OutputDir is where finished documents are written.
	// Defaults to the user's Downloads directory.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	// CacheDir holds downloaded model weights, keyed by model name.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
	// TempDir is the parent directory for per-run scratch space.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir"`
	// Timestamps controls whether segment timestamps appear in the document.
	Timestamps bool `yaml:"timestamps" mapstructure:"timestamps"`
	// RevealOutput opens a file browser at the output document on success.
	RevealOutput bool `yaml:"reveal_output" mapstructure:"reveal_output"`

	FFmpeg  FFmpegConfig  `yaml:"ffmpeg" mapstructure:"ffmpeg"`
	Sidecar SidecarConfig `yaml:"sidecar" mapstructure:"sidecar"`
	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
}

// FFmpegConfig configures the external decode tooling.
type FFmpegConfig struct {
	// Binary is the ffmpeg executable (resolved via PATH if bare).
	Binary string `yaml:"binary" mapstructure:"binary"`
	// ProbeBinary is the ffprobe executable.
	ProbeBinary string `yaml:"probe_binary" mapstructure:"probe_binary"`
	// TimeoutSeconds bounds a single extraction. Zero means no timeout.
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// SidecarConfig configures the optional faster-whisper HTTP sidecar engine.
type SidecarConfig struct {
	URL            string `yaml:"url" mapstructure:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// ApplyDefaults applies default values to the configuration.
func (c *Config) ApplyDefaults() {
	if c.Language == "" {
		c.Language = "nl"
	}
	if c.Model == "" {
		c.Model = "medium"
	}
	if c.Engine == "" {
		c.Engine = "whispercpp"
	}
	if c.OutputDir == "" {
		c.OutputDir = defaultDownloadsDir()
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	}
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = "ffmpeg"
	}
	if c.FFmpeg.ProbeBinary == "" {
		c.FFmpeg.ProbeBinary = "ffprobe"
	}
	if c.Sidecar.URL == "" {
		c.Sidecar.URL = "http://localhost:8387"
	}
	if c.Sidecar.TimeoutSeconds == 0 {
		c.Sidecar.TimeoutSeconds = 600
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := validation.New().
		Required("engine", c.Engine).
		OneOf("engine", c.Engine, []string{"whispercpp", "sidecar"}).
		Custom(c.FFmpeg.TimeoutSeconds >= 0, "ffmpeg.timeout_seconds", "must not be negative").
		Custom(c.Sidecar.TimeoutSeconds >= 0, "sidecar.timeout_seconds", "must not be negative").
		Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// defaultDownloadsDir returns the user's Downloads directory, falling back
// to the working directory when the home directory cannot be resolved.
func defaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// defaultCacheDir returns the per-user model cache directory.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "transcriptor", "models")
	}
	return filepath.Join(base, "transcriptor", "models")
}
