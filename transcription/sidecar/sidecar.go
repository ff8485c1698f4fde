// Package sidecar implements transcription.Engine against a
// faster-whisper HTTP sidecar process. The sidecar owns the model
// weights; this engine only uploads audio and maps the response.
package sidecar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/transcriptor/errors"
	"github.com/kbukum/transcriptor/logger"
	"github.com/kbukum/transcriptor/provider"
	"github.com/kbukum/transcriptor/transcription"
)

const (
	// EngineName is the registered name for the sidecar engine.
	EngineName = "sidecar"

	defaultURL     = "http://localhost:8387"
	defaultTimeout = 30 * time.Minute
)

// Config holds configuration for the sidecar engine.
type Config struct {
	URL         string        `json:"url" yaml:"url"`
	Device      string        `json:"device,omitempty" yaml:"device"`
	ComputeType string        `json:"compute_type,omitempty" yaml:"compute_type"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// Engine talks to a faster-whisper sidecar over HTTP.
type Engine struct {
	cfg    Config
	client *http.Client
	log    *logger.Logger
}

// New creates a sidecar engine.
func New(cfg Config) *Engine {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Engine{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger.WithComponent("engine." + EngineName),
	}
}

func init() {
	transcription.RegisterFactory(EngineName, Factory())
}

// Factory returns a provider.Factory that creates sidecar engines from
// a generic config map.
func Factory() provider.Factory[transcription.Engine] {
	return func(cfg map[string]any) (transcription.Engine, error) {
		sc := Config{}
		if v, ok := cfg["url"].(string); ok {
			sc.URL = v
		}
		if v, ok := cfg["device"].(string); ok {
			sc.Device = v
		}
		if v, ok := cfg["compute_type"].(string); ok {
			sc.ComputeType = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			sc.Timeout = v
		}
		return New(sc), nil
	}
}

// Name returns the engine name.
func (e *Engine) Name() string { return EngineName }

// IsAvailable checks if the sidecar is reachable.
func (e *Engine) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// LoadModel asks the sidecar to load the named model into memory so the
// first transcription does not pay the load cost.
func (e *Engine) LoadModel(ctx context.Context, model string) error {
	if _, ok := transcription.Models[model]; !ok {
		return errors.ModelLoadFailed(model, fmt.Errorf("unknown model name"))
	}

	body, _ := json.Marshal(map[string]string{
		"model":        model,
		"device":       e.cfg.Device,
		"compute_type": e.cfg.ComputeType,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL+"/models/load", bytes.NewReader(body))
	if err != nil {
		return errors.ModelLoadFailed(model, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.ModelLoadFailed(model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return errors.ModelLoadFailed(model, fmt.Errorf("sidecar status %d: %s", resp.StatusCode, msg))
	}
	return nil
}

// Transcribe uploads the audio file and maps the sidecar's JSON response
// to transcript segments. The sidecar answers in one shot, so progress is
// coarse: per-segment fractions are replayed from the response, then the
// final 1.0 once the result is in hand.
func (e *Engine) Transcribe(ctx context.Context, req transcription.Request, onProgress transcription.ProgressFunc) ([]transcription.Segment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := e.LoadModel(ctx, req.Model); err != nil {
		return nil, err
	}

	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("read audio file: %w", err))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("create form file: %w", err))
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("write audio data: %w", err))
	}

	_ = writer.WriteField("model", req.Model)
	_ = writer.WriteField("language", req.Language)
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("sidecar request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("sidecar status %d: %s", resp.StatusCode, msg))
	}

	var result sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.InferenceFailed(EngineName, fmt.Errorf("decode sidecar response: %w", err))
	}

	segments := transcription.Resequence(toSegments(&result))

	tracker := transcription.NewTracker(onProgress)
	total := req.Duration
	if n := len(segments); n > 0 && segments[n-1].End > total {
		total = segments[n-1].End
	}
	if total > 0 {
		for _, seg := range segments {
			tracker.Emit(seg.End/total, seg.End)
		}
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

// --- internal sidecar API response types ---

type sidecarResponse struct {
	Text     string           `json:"text"`
	Segments []sidecarSegment `json:"segments"`
	Language string           `json:"language"`
}

type sidecarSegment struct {
	Text        string  `json:"text"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	AvgLogprob  float64 `json:"avg_logprob,omitempty"`
	Probability float64 `json:"probability,omitempty"`
}

func toSegments(resp *sidecarResponse) []transcription.Segment {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: seg.Probability,
		}
	}
	return segments
}
