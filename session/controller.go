// Package session orchestrates one transcription run end to end:
// normalize the input, transcribe it, assemble the document. The
// controller owns the run's temporary work directory and guarantees its
// removal on every exit path.
package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/transcriptor/document"
	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/media"
	"github.com/kbukum/transcriptor/progress"
	"github.com/kbukum/transcriptor/transcription"
	"github.com/kbukum/transcriptor/validation"
)

// Request is what the external layer hands the controller.
type Request struct {
	// InputPath is the media file to transcribe.
	InputPath string `json:"input_path" validate:"required"`
	// Language is the expected spoken language code.
	Language string `json:"language" validate:"required"`
	// Model is the recognition model name.
	Model string `json:"model" validate:"required"`
	// OutputDir is where the document lands.
	OutputDir string `json:"output_dir" validate:"required"`
}

// Result summarizes a successful run.
type Result struct {
	Document *document.OutputDocument
	Segments int
	Duration float64
	Elapsed  time.Duration
}

// ProgressSink receives phase-scoped progress. *progress.Reporter
// satisfies it; nil disables reporting.
type ProgressSink interface {
	Observe(phase progress.Phase, fraction float64)
	Done()
}

// Controller drives the run state machine.
type Controller struct {
	normalizer *media.Normalizer
	engine     transcription.Engine
	assembler  *document.Assembler
	sink       ProgressSink
	log        *logger.Logger
	tempParent string

	runID string
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithTempParent overrides where per-run scratch directories are created.
func WithTempParent(dir string) Option {
	return func(c *Controller) {
		if dir != "" {
			c.tempParent = dir
		}
	}
}

// New creates a Controller. sink may be nil.
func New(normalizer *media.Normalizer, engine transcription.Engine, assembler *document.Assembler, sink ProgressSink, opts ...Option) *Controller {
	c := &Controller{
		normalizer: normalizer,
		engine:     engine,
		assembler:  assembler,
		sink:       sink,
		log:        logger.WithComponent("session"),
		tempParent: os.TempDir(),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the run's current lifecycle state.
func (c *Controller) State() State { return c.state }

// RunID returns the unique identifier of the current run, empty before
// Run is called.
func (c *Controller) RunID() string { return c.runID }

// Run executes the full pipeline for one request. On success the
// produced document path is in the Result; on failure the returned error
// carries the failed stage and error kind, and all temporary artifacts
// are already removed.
func (c *Controller) Run(ctx context.Context, req Request) (*Result, error) {
	if c.state != StateIdle {
		return nil, errors.Internal(fmt.Errorf("controller reused; state %s", c.state))
	}
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	if _, ok := transcription.Languages[req.Language]; !ok {
		return nil, errors.InvalidInput("language", fmt.Sprintf("unknown language code %q", req.Language))
	}

	c.runID = uuid.NewString()
	log := c.log.WithFields(logger.Fields(logger.FieldRunID, c.runID))
	started := time.Now()

	workDir := filepath.Join(c.tempParent, "transcriptor-"+c.runID)
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return nil, c.fail(ctx, errors.Internal(fmt.Errorf("create work directory: %w", err)))
	}
	// Every exit path, including panics unwinding through here, drops
	// the run's temporary artifacts.
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("work directory cleanup failed", logger.Fields("dir", workDir, "error", err.Error()))
		}
	}()

	// Normalizing
	c.state = StateNormalizing
	log.Info("run started", logger.Fields(
		logger.FieldInput, req.InputPath,
		logger.FieldModel, req.Model,
		logger.FieldLanguage, req.Language,
		logger.FieldEngine, c.engine.Name(),
	))

	audio, err := c.normalizer.Normalize(ctx, req.InputPath, workDir, func(f float64) {
		c.observe(progress.PhaseNormalize, f)
	})
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	c.observe(progress.PhaseNormalize, 1)

	if !audio.Extracted && !media.IsEngineReady(audio.Path) {
		log.Debug("input not in engine-native format; engine decodes it internally",
			logger.Fields("path", audio.Path, "sample_rate", audio.SampleRate))
	}
	if info, ok := transcription.Models[req.Model]; ok && audio.Duration > 0 {
		estimate := time.Duration(audio.Duration * info.RealTimeFactor * float64(time.Second))
		log.Info("processing time estimate", logger.Fields(
			"audio_seconds", audio.Duration,
			"estimate", estimate.Round(time.Second).String(),
		))
	}

	// Transcribing
	c.state = StateTranscribing
	if err := c.engine.LoadModel(ctx, req.Model); err != nil {
		return nil, c.fail(ctx, err)
	}
	c.observe(progress.PhaseModelLoad, 1)

	segments, err := c.engine.Transcribe(ctx, transcription.Request{
		AudioPath: audio.Path,
		Language:  req.Language,
		Model:     req.Model,
		Duration:  audio.Duration,
	}, func(p transcription.Progress) {
		c.observe(progress.PhaseTranscribe, p.Fraction)
	})
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	// Assembling
	c.state = StateAssembling
	out, err := c.assembler.Assemble(segments, document.Metadata{
		SourceFile: req.InputPath,
		Duration:   audio.Duration,
		Model:      req.Model,
		Language:   req.Language,
		Generated:  time.Now(),
	}, req.OutputDir)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	c.observe(progress.PhaseAssemble, 1)
	if c.sink != nil {
		c.sink.Done()
	}

	c.state = StateDone
	elapsed := time.Since(started)
	log.Info("run complete", logger.Fields(
		logger.FieldOutput, out.Path,
		"segments", len(segments),
		logger.FieldDuration, elapsed.Milliseconds(),
	))

	return &Result{
		Document: out,
		Segments: len(segments),
		Duration: audio.Duration,
		Elapsed:  elapsed,
	}, nil
}

// fail moves the run to its failure terminal state. Cancellation wins
// over whatever error the interrupted stage surfaced.
func (c *Controller) fail(ctx context.Context, err error) error {
	stage := c.state.String()

	if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
		c.state = StateCancelled
		c.log.Warn("run cancelled", logger.Fields(logger.FieldRunID, c.runID, logger.FieldStage, stage))
		return errors.Cancelled(stage)
	}

	c.state = StateFailed
	var ae *errors.AppError
	if !stderrors.As(err, &ae) {
		ae = errors.Internal(err)
	}
	ae = ae.WithStage(stage)
	c.log.Error("run failed", logger.Fields(
		logger.FieldRunID, c.runID,
		logger.FieldStage, ae.Stage,
		"code", string(errors.Code(ae)),
		logger.FieldError, ae.Error(),
	))
	return ae
}

func (c *Controller) observe(phase progress.Phase, fraction float64) {
	if c.sink != nil {
		c.sink.Observe(phase, fraction)
	}
}
