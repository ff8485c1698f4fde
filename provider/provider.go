package provider

import "context"

// Provider is implemented by every pluggable backend in the pipeline,
// most notably the transcription engines selected by name from
// configuration.
type Provider interface {
	// Name returns the name the backend was registered under.
	Name() string
	// IsAvailable reports whether the backend can take work right now,
	// e.g. its binary is on PATH or its service answers a health check.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a backend from its configuration map. The map keys are
// backend-specific; unknown keys are ignored.
type Factory[T Provider] func(cfg map[string]any) (T, error)
