// Package media prepares user-supplied input for the recognition engine.
// Audio files pass through untouched; video containers have their audio
// track extracted to a 16 kHz mono WAV with ffmpeg. Every run also gets
// the media duration probed up front for time estimates and progress.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/wav"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/process"
	"github.com/kbukum/transcriptor/resilience"
)

const (
	// targetSampleRate is the sample rate the recognition engine expects.
	targetSampleRate = 16000

	// defaultMaxPassThroughBytes is the size above which audio input is
	// re-encoded instead of passed through, keeping engine memory bounded.
	defaultMaxPassThroughBytes = 500 << 20
)

// NormalizedAudio is the pipeline-internal audio handle produced by a
// Normalizer. When Extracted is true the file lives in the run's work
// directory and is removed with it; otherwise Path is the user's input.
type NormalizedAudio struct {
	Path       string
	Duration   float64
	SampleRate int
	Extracted  bool
}

// ProgressFunc receives the extraction fraction in [0,1].
type ProgressFunc func(fraction float64)

// Config holds configuration for the Normalizer.
type Config struct {
	// FFmpegBinary is the ffmpeg executable (resolved via PATH if bare).
	FFmpegBinary string `json:"ffmpeg_binary" yaml:"ffmpeg_binary"`
	// FFprobeBinary is the ffprobe executable.
	FFprobeBinary string `json:"ffprobe_binary" yaml:"ffprobe_binary"`
	// MaxPassThroughBytes re-encodes audio inputs larger than this.
	MaxPassThroughBytes int64 `json:"max_pass_through_bytes,omitempty" yaml:"max_pass_through_bytes"`
	// ExtractTimeout bounds a single extraction attempt. Zero means
	// no limit.
	ExtractTimeout time.Duration `json:"extract_timeout,omitempty" yaml:"extract_timeout"`
}

// Normalizer turns arbitrary supported media into engine-ready audio.
type Normalizer struct {
	cfg Config
	log *logger.Logger
}

// New creates a Normalizer.
func New(cfg Config) *Normalizer {
	if cfg.FFmpegBinary == "" {
		cfg.FFmpegBinary = "ffmpeg"
	}
	if cfg.FFprobeBinary == "" {
		cfg.FFprobeBinary = "ffprobe"
	}
	if cfg.MaxPassThroughBytes == 0 {
		cfg.MaxPassThroughBytes = defaultMaxPassThroughBytes
	}
	return &Normalizer{cfg: cfg, log: logger.WithComponent("media")}
}

// Normalize prepares inputPath for transcription. Extracted artifacts are
// written into workDir, which the caller owns and removes after the run.
// onProgress may be nil.
func (n *Normalizer) Normalize(ctx context.Context, inputPath, workDir string, onProgress ProgressFunc) (*NormalizedAudio, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, errors.InvalidInput("input", fmt.Sprintf("cannot read %q: %v", inputPath, err))
	}

	kind := Classify(inputPath)
	if kind == KindUnsupported {
		return nil, errors.UnsupportedFormat(inputPath, strings.ToLower(filepath.Ext(inputPath)))
	}

	// Extension checks alone let a renamed text file through; for WAV
	// the header is cheap to verify before running any external tool.
	if strings.EqualFold(filepath.Ext(inputPath), ".wav") && wavSampleRate(inputPath) == 0 {
		return nil, errors.UnsupportedFormat(inputPath, ".wav").
			WithDetail("reason", "not a valid WAV file")
	}

	duration, err := n.probeDuration(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	if kind == KindAudio {
		if info.Size() <= n.cfg.MaxPassThroughBytes {
			n.log.Debug("audio input passed through", logger.Fields("path", inputPath, "duration_s", duration))
			return &NormalizedAudio{
				Path:       inputPath,
				Duration:   duration,
				SampleRate: wavSampleRate(inputPath),
			}, nil
		}
		n.log.Info("audio input exceeds pass-through limit, re-encoding",
			logger.Fields("path", inputPath, "size", info.Size()))
	}

	return n.extract(ctx, inputPath, workDir, duration, onProgress)
}

// extract pulls the audio track out of src into a 16 kHz mono WAV in
// workDir. A failed decode is retried once before surfacing.
func (n *Normalizer) extract(ctx context.Context, src, workDir string, duration float64, onProgress ProgressFunc) (*NormalizedAudio, error) {
	dst := filepath.Join(workDir, strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))+".wav")

	cfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		RetryIf:        resilience.RetryIfRetryable,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			n.log.Warn("audio extraction failed, retrying",
				logger.Fields("attempt", attempt, "backoff_ms", backoff.Milliseconds(), "error", err.Error()))
		},
	}

	err := resilience.RetryFunc(ctx, cfg, func() error {
		return n.runExtract(ctx, src, dst, duration, onProgress)
	})
	if err != nil {
		_ = os.Remove(dst)
		return nil, err
	}

	return &NormalizedAudio{
		Path:       dst,
		Duration:   duration,
		SampleRate: targetSampleRate,
		Extracted:  true,
	}, nil
}

func (n *Normalizer) runExtract(ctx context.Context, src, dst string, duration float64, onProgress ProgressFunc) error {
	// A tool timeout is an extraction failure; only the caller's own
	// cancellation propagates as such.
	parent := ctx
	if n.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.ExtractTimeout)
		defer cancel()
	}

	args := []string{
		"-v", "error",
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(targetSampleRate),
		"-ac", "1",
		"-y",
		"-progress", "pipe:2",
		dst,
	}

	_, err := process.Stream(ctx, process.Command{
		Binary: n.cfg.FFmpegBinary,
		Args:   args,
	}, process.StreamStderr, func(line string) {
		if onProgress == nil || duration <= 0 {
			return
		}
		if sec, ok := parseProgressLine(line); ok {
			fraction := sec / duration
			if fraction > 1 {
				fraction = 1
			}
			onProgress(fraction)
		}
	})
	if err != nil {
		_ = os.Remove(dst)
		if parent.Err() != nil {
			return parent.Err()
		}
		if ctx.Err() == context.DeadlineExceeded {
			// Keep the deadline out of the cause chain so the retry
			// predicate does not read it as caller cancellation.
			err = fmt.Errorf("timed out after %s", n.cfg.ExtractTimeout)
		}
		return errors.ExtractionFailed(n.cfg.FFmpegBinary, err)
	}
	return nil
}

// parseProgressLine extracts elapsed output time in seconds from one
// key=value line of ffmpeg's -progress stream.
func parseProgressLine(line string) (float64, bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return 0, false
	}
	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds in current ffmpeg releases.
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return float64(us) / 1e6, true
	default:
		return 0, false
	}
}

// wavSampleRate reads the sample rate from a WAV header; zero when the
// file is not a parseable WAV.
func wavSampleRate(path string) int {
	if strings.ToLower(filepath.Ext(path)) != ".wav" {
		return 0
	}
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0
	}
	return int(dec.SampleRate)
}

// IsEngineReady returns true when path is a WAV already in the format
// the engine expects (16 kHz, mono, 16-bit PCM).
func IsEngineReady(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return false
	}
	return dec.BitDepth == 16 && dec.NumChans == 1 && dec.SampleRate == targetSampleRate
}
