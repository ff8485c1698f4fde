// Package whispercpp implements transcription.Engine on top of the
// whisper.cpp command-line binary. Model weights are cached on disk,
// keyed by model name, and downloaded lazily on first use.
package whispercpp

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/process"
	"github.com/kbukum/transcriptor/provider"
	"github.com/kbukum/transcriptor/transcription"
)

const (
	// EngineName is the registered name for the whisper.cpp engine.
	EngineName = "whispercpp"

	defaultBinary = "whisper-cli"
)

// Config holds configuration for the whisper.cpp engine.
type Config struct {
	// Binary is the whisper.cpp executable (resolved via PATH if bare).
	Binary string `json:"binary" yaml:"binary"`
	// CacheDir holds downloaded ggml model files.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
	// Threads caps engine threads. Zero lets the binary decide.
	Threads int `json:"threads,omitempty" yaml:"threads"`
	// DownloadBaseURL overrides where model weights are fetched from.
	DownloadBaseURL string `json:"download_base_url,omitempty" yaml:"download_base_url"`
	// DownloadStatus receives byte-level download progress. May be nil.
	DownloadStatus func(written, total int64) `json:"-" yaml:"-"`
}

// Engine runs whisper.cpp as a subprocess and parses its segment stream.
type Engine struct {
	cfg   Config
	cache *modelCache
	log   *logger.Logger
}

// New creates a whisper.cpp engine.
func New(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	return &Engine{
		cfg:   cfg,
		cache: newModelCache(cfg.CacheDir, cfg.DownloadBaseURL, cfg.DownloadStatus),
		log:   logger.WithComponent("engine." + EngineName),
	}
}

func init() {
	transcription.RegisterFactory(EngineName, Factory())
}

// Factory returns a provider.Factory that creates whisper.cpp engines
// from a generic config map.
func Factory() provider.Factory[transcription.Engine] {
	return func(cfg map[string]any) (transcription.Engine, error) {
		wc := Config{}
		if v, ok := cfg["binary"].(string); ok {
			wc.Binary = v
		}
		if v, ok := cfg["cache_dir"].(string); ok {
			wc.CacheDir = v
		}
		if v, ok := cfg["threads"].(int); ok {
			wc.Threads = v
		}
		if v, ok := cfg["download_base_url"].(string); ok {
			wc.DownloadBaseURL = v
		}
		if v, ok := cfg["download_status"].(func(int64, int64)); ok {
			wc.DownloadStatus = v
		}
		return New(wc), nil
	}
}

// Name returns the engine name.
func (e *Engine) Name() string { return EngineName }

// IsAvailable checks if the whisper.cpp binary is on the path.
func (e *Engine) IsAvailable(_ context.Context) bool {
	_, err := exec.LookPath(e.cfg.Binary)
	return err == nil
}

// LoadModel ensures the named model's weights are in the local cache,
// downloading them on first use.
func (e *Engine) LoadModel(ctx context.Context, model string) error {
	if _, ok := transcription.Models[model]; !ok {
		return errors.ModelLoadFailed(model, fmt.Errorf("unknown model name"))
	}
	path, err := e.cache.Ensure(ctx, model)
	if err != nil {
		return err
	}
	e.log.Debug("model ready", logger.Fields(logger.FieldModel, model, "path", path))
	return nil
}

// Transcribe runs whisper.cpp over the audio file, streaming segments as
// the engine decodes them. Progress is derived from each segment's end
// time against the known audio duration.
func (e *Engine) Transcribe(ctx context.Context, req transcription.Request, onProgress transcription.ProgressFunc) ([]transcription.Segment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := e.LoadModel(ctx, req.Model); err != nil {
		return nil, err
	}
	modelPath, err := e.cache.Ensure(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-m", modelPath,
		"-l", req.Language,
		"-f", req.AudioPath,
	}
	if e.cfg.Threads > 0 {
		args = append(args, "-t", fmt.Sprintf("%d", e.cfg.Threads))
	}

	tracker := transcription.NewTracker(onProgress)
	var segments []transcription.Segment

	start := time.Now()
	result, err := process.Stream(ctx, process.Command{
		Binary: e.cfg.Binary,
		Args:   args,
	}, process.StreamStdout, func(line string) {
		seg, ok := parseSegmentLine(line)
		if !ok {
			return
		}
		segments = append(segments, seg)
		if req.Duration > 0 {
			tracker.Emit(seg.End/req.Duration, seg.End)
		}
	})
	if err != nil {
		// Cancellation propagates as-is so the session can map it; any
		// other failure mid-decode is an inference error.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stderr := ""
		if result != nil {
			stderr = lastLine(result.Stderr)
		}
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("%w: %s", err, stderr))
	}

	segments = transcription.Resequence(segments)
	total := req.Duration
	if n := len(segments); n > 0 && segments[n-1].End > total {
		total = segments[n-1].End
	}
	tracker.Finish(total)

	e.log.Info("transcription complete", logger.Fields(
		logger.FieldModel, req.Model,
		logger.FieldLanguage, req.Language,
		"segments", len(segments),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return segments, nil
}
