package session

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kbukum/transcriptor/document"
	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/media"
	"github.com/kbukum/transcriptor/progress"
	"github.com/kbukum/transcriptor/transcription"
)

// fakeEngine is a scriptable transcription.Engine.
type fakeEngine struct {
	loadErr      error
	transcribeFn func(ctx context.Context, req transcription.Request, onProgress transcription.ProgressFunc) ([]transcription.Segment, error)
}

func (e *fakeEngine) Name() string                     { return "fake" }
func (e *fakeEngine) IsAvailable(context.Context) bool { return true }

func (e *fakeEngine) LoadModel(_ context.Context, _ string) error { return e.loadErr }

func (e *fakeEngine) Transcribe(ctx context.Context, req transcription.Request, onProgress transcription.ProgressFunc) ([]transcription.Segment, error) {
	return e.transcribeFn(ctx, req, onProgress)
}

// recordingSink captures phase observations.
type recordingSink struct {
	phases []progress.Phase
	done   bool
}

func (s *recordingSink) Observe(p progress.Phase, _ float64) { s.phases = append(s.phases, p) }
func (s *recordingSink) Done()                               { s.done = true }

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// testNormalizer builds a media.Normalizer backed by fake tools that
// report an 8s duration and extract by writing the destination file.
func testNormalizer(t *testing.T) *media.Normalizer {
	t.Helper()
	binDir := t.TempDir()
	writeScript(t, binDir, "ffprobe", "echo 8.0\n")
	writeScript(t, binDir, "ffmpeg", `
for last; do :; done
echo "out_time_us=8000000" >&2
printf 'RIFF' > "$last"
`)
	return media.New(media.Config{
		FFmpegBinary:  filepath.Join(binDir, "ffmpeg"),
		FFprobeBinary: filepath.Join(binDir, "ffprobe"),
	})
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("media bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func happyEngine() *fakeEngine {
	return &fakeEngine{
		transcribeFn: func(_ context.Context, req transcription.Request, onProgress transcription.ProgressFunc) ([]transcription.Segment, error) {
			segs := []transcription.Segment{
				{Start: 0, End: 4, Text: "eerste zin"},
				{Start: 4, End: 8, Text: "tweede zin"},
			}
			if onProgress != nil {
				onProgress(transcription.Progress{Fraction: 0.5, SegmentEnd: 4})
				onProgress(transcription.Progress{Fraction: 1.0, SegmentEnd: 8})
			}
			return segs, nil
		},
	}
}

// workDirGone asserts the run's temp directory no longer exists.
func workDirGone(t *testing.T, c *Controller) {
	t.Helper()
	if c.RunID() == "" {
		return
	}
	dir := filepath.Join(os.TempDir(), "transcriptor-"+c.RunID())
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("work directory %s still exists", dir)
	}
}

func TestRunVideoToDocument(t *testing.T) {
	outDir := t.TempDir()
	sink := &recordingSink{}
	c := New(testNormalizer(t), happyEngine(), document.New(document.Config{Timestamps: true}), sink)

	res, err := c.Run(context.Background(), Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "nl",
		Model:     "tiny",
		OutputDir: outDir,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.State() != StateDone {
		t.Errorf("state = %s, want done", c.State())
	}
	want := filepath.Join(outDir, "lecture.docx")
	if res.Document.Path != want {
		t.Errorf("document path = %q, want %q", res.Document.Path, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("document missing: %v", err)
	}
	if res.Segments != 2 || res.Duration != 8.0 {
		t.Errorf("result = %+v", res)
	}
	if !sink.done {
		t.Error("sink.Done not called on success")
	}
	// Phases advance in pipeline order.
	lastPhase := progress.PhaseNormalize
	for _, p := range sink.phases {
		if p < lastPhase {
			t.Fatalf("phase order regressed: %v", sink.phases)
		}
		lastPhase = p
	}
	workDirGone(t, c)
}

func TestRunUnsupportedInput(t *testing.T) {
	outDir := t.TempDir()
	c := New(testNormalizer(t), happyEngine(), document.New(document.Config{}), nil)

	_, err := c.Run(context.Background(), Request{
		InputPath: writeInput(t, "notes.txt"),
		Language:  "nl",
		Model:     "tiny",
		OutputDir: outDir,
	})
	if !errors.Is(err, errors.ErrCodeUnsupportedFormat) {
		t.Fatalf("Code = %s, want UNSUPPORTED_FORMAT", errors.Code(err))
	}
	if errors.Stage(err) != "normalizing" {
		t.Errorf("Stage = %q, want normalizing", errors.Stage(err))
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s, want failed", c.State())
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("no document may be produced, found %d entries", len(entries))
	}
	workDirGone(t, c)
}

func TestRunModelLoadFailure(t *testing.T) {
	engine := happyEngine()
	engine.loadErr = errors.ModelLoadFailed("giant-v9", stderrors.New("unknown model name"))
	outDir := t.TempDir()
	c := New(testNormalizer(t), engine, document.New(document.Config{}), nil)

	_, err := c.Run(context.Background(), Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "nl",
		Model:     "giant-v9",
		OutputDir: outDir,
	})
	if !errors.Is(err, errors.ErrCodeModelLoadFailed) {
		t.Fatalf("Code = %s, want MODEL_LOAD_FAILED", errors.Code(err))
	}
	if errors.Stage(err) != "transcribing" {
		t.Errorf("Stage = %q, want transcribing", errors.Stage(err))
	}
	if c.State() != StateFailed {
		t.Errorf("state = %s, want failed", c.State())
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("no document may be produced, found %d entries", len(entries))
	}
	workDirGone(t, c)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := &fakeEngine{
		transcribeFn: func(ctx context.Context, _ transcription.Request, _ transcription.ProgressFunc) ([]transcription.Segment, error) {
			cancel() // user hits interrupt mid-transcription
			return nil, ctx.Err()
		},
	}
	outDir := t.TempDir()
	c := New(testNormalizer(t), engine, document.New(document.Config{}), nil)

	_, err := c.Run(ctx, Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "nl",
		Model:     "tiny",
		OutputDir: outDir,
	})
	if !errors.Is(err, errors.ErrCodeCancelled) {
		t.Fatalf("Code = %s, want CANCELLED", errors.Code(err))
	}
	if c.State() != StateCancelled {
		t.Errorf("state = %s, want cancelled", c.State())
	}
	if got := errors.ExitCode(err); got != errors.ExitCancelled {
		t.Errorf("exit code = %d, want %d", got, errors.ExitCancelled)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("cancelled run may not produce a document, found %d entries", len(entries))
	}
	workDirGone(t, c)
}

func TestRunInferenceFailure(t *testing.T) {
	engine := &fakeEngine{
		transcribeFn: func(context.Context, transcription.Request, transcription.ProgressFunc) ([]transcription.Segment, error) {
			return nil, errors.InferenceFailed("fake", stderrors.New("decoder blew up"))
		},
	}
	c := New(testNormalizer(t), engine, document.New(document.Config{}), nil)

	_, err := c.Run(context.Background(), Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "nl",
		Model:     "tiny",
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, errors.ErrCodeInferenceFailed) {
		t.Fatalf("Code = %s, want INFERENCE_FAILED", errors.Code(err))
	}
	if got := errors.ExitCode(err); got != errors.ExitFailed {
		t.Errorf("exit code = %d, want %d", got, errors.ExitFailed)
	}
	workDirGone(t, c)
}

func TestRunUnknownLanguage(t *testing.T) {
	c := New(testNormalizer(t), happyEngine(), document.New(document.Config{}), nil)
	_, err := c.Run(context.Background(), Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "xx",
		Model:     "tiny",
		OutputDir: t.TempDir(),
	})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Code = %s, want INVALID_INPUT", errors.Code(err))
	}
}

func TestRunMissingFields(t *testing.T) {
	c := New(testNormalizer(t), happyEngine(), document.New(document.Config{}), nil)
	_, err := c.Run(context.Background(), Request{Language: "nl", Model: "tiny"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunUsesConfiguredTempParent(t *testing.T) {
	parent := t.TempDir()
	c := New(testNormalizer(t), happyEngine(), document.New(document.Config{}), nil, WithTempParent(parent))

	if _, err := c.Run(context.Background(), Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "nl",
		Model:     "tiny",
		OutputDir: t.TempDir(),
	}); err != nil {
		t.Fatal(err)
	}

	entries, _ := os.ReadDir(parent)
	if len(entries) != 0 {
		t.Errorf("scratch space not cleaned up under configured parent: %d entries", len(entries))
	}
}

func TestControllerIsSingleUse(t *testing.T) {
	c := New(testNormalizer(t), happyEngine(), document.New(document.Config{}), nil)
	req := Request{
		InputPath: writeInput(t, "lecture.mp4"),
		Language:  "nl",
		Model:     "tiny",
		OutputDir: t.TempDir(),
	}
	if _, err := c.Run(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Run(context.Background(), req); err == nil {
		t.Fatal("second Run on the same controller must fail")
	}
}
