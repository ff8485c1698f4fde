package transcription

import (
	"context"

	"github.com/kbukum/transcriptor/provider"
	"github.com/kbukum/transcriptor/validation"
)

// Engine is the interface that transcription backends must implement.
type Engine interface {
	provider.Provider // embeds Name() and IsAvailable()

	// LoadModel ensures the named model is present and loadable,
	// fetching it into the local cache on first use.
	LoadModel(ctx context.Context, model string) error

	// Transcribe runs recognition over the audio and returns the ordered
	// transcript segments. onProgress may be nil; when set it receives
	// monotonically non-decreasing progress that reaches 1.0 exactly
	// once, at successful completion. No progress fires after an error.
	Transcribe(ctx context.Context, req Request, onProgress ProgressFunc) ([]Segment, error)
}

// Validate checks a Request before it is handed to an engine.
// Model names are deliberately not checked here: an unknown model is the
// engine's ModelLoadFailed, not an input validation error.
func (r Request) Validate() error {
	return validation.Validate(r)
}

var defaultRegistry = provider.NewRegistry[Engine]()

// RegisterFactory registers an engine factory under a name.
// Engine packages call this from init().
func RegisterFactory(name string, factory provider.Factory[Engine]) {
	defaultRegistry.RegisterFactory(name, factory)
}

// NewEngine returns the engine registered under name, constructing it
// on first use and reusing the cached instance afterwards. An engine is
// configured once per process; later calls ignore cfg.
func NewEngine(name string, cfg map[string]any) (Engine, error) {
	if eng, ok := defaultRegistry.Get(name); ok {
		return eng, nil
	}
	eng, err := defaultRegistry.Create(name, cfg)
	if err != nil {
		return nil, err
	}
	defaultRegistry.Set(name, eng)
	return eng, nil
}

// Engines returns the sorted names of all registered engines.
func Engines() []string {
	return defaultRegistry.List()
}
