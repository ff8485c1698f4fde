// Package progress renders pipeline progress as a single in-place
// terminal bar. Each pipeline phase owns a fixed window of the overall
// bar so the display moves steadily from 0 to 100% across the whole run
// instead of restarting per stage.
package progress

import (
	"math"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/kbukum/transcriptor/logger"
)

// scale is the bar's internal resolution.
const scale = 1000

// Phase identifies a pipeline stage for progress mapping.
type Phase int

const (
	// PhaseNormalize covers media probing and audio extraction.
	PhaseNormalize Phase = iota
	// PhaseModelLoad covers model download and load.
	PhaseModelLoad
	// PhaseTranscribe covers recognition.
	PhaseTranscribe
	// PhaseAssemble covers document rendering and the final write.
	PhaseAssemble
)

// window returns the phase's share of the overall bar.
func (p Phase) window() (lo, hi float64) {
	switch p {
	case PhaseNormalize:
		return 0, 0.15
	case PhaseModelLoad:
		return 0.15, 0.25
	case PhaseTranscribe:
		return 0.25, 0.90
	case PhaseAssemble:
		return 0.90, 1.0
	default:
		return 0, 0
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseNormalize:
		return "preparing audio"
	case PhaseModelLoad:
		return "loading model"
	case PhaseTranscribe:
		return "transcribing"
	case PhaseAssemble:
		return "writing document"
	default:
		return "working"
	}
}

// renderTarget is the subset of the terminal bar the Reporter drives.
type renderTarget interface {
	Set(int) error
	Describe(string)
	Finish() error
}

// Reporter maps per-phase fractions onto one monotonic overall bar.
// Rendering faults are logged and swallowed; they never reach the
// pipeline.
type Reporter struct {
	bar   renderTarget
	log   *logger.Logger
	last  int
	phase Phase
}

// NewReporter creates a Reporter rendering to stderr.
func NewReporter() *Reporter {
	bar := progressbar.NewOptions(
		scale,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(PhaseNormalize.String()),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
	)
	return newReporter(bar)
}

func newReporter(bar renderTarget) *Reporter {
	return &Reporter{
		bar:   bar,
		log:   logger.WithComponent("progress"),
		phase: PhaseNormalize,
	}
}

// Observe records a phase-local fraction in [0,1] and advances the bar.
// The overall position never moves backwards, so out-of-order or
// repeated snapshots render as a stall rather than a regression.
func (r *Reporter) Observe(phase Phase, fraction float64) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	if phase != r.phase {
		r.phase = phase
		r.bar.Describe(phase.String())
	}

	lo, hi := phase.window()
	overall := int(math.Round((lo + fraction*(hi-lo)) * scale))
	if overall <= r.last {
		return
	}
	r.last = overall

	if err := r.bar.Set(overall); err != nil {
		r.log.Debug("progress render fault ignored", logger.Fields("error", err.Error()))
	}
}

// Done drives the bar to 100% and finalizes the line. Call only on a
// successful run; a failed or cancelled run leaves the bar where it was.
func (r *Reporter) Done() {
	r.last = scale
	if err := r.bar.Set(scale); err != nil {
		r.log.Debug("progress render fault ignored", logger.Fields("error", err.Error()))
	}
	if err := r.bar.Finish(); err != nil {
		r.log.Debug("progress render fault ignored", logger.Fields("error", err.Error()))
	}
}

// Fraction returns the overall position in [0,1], for tests and logs.
func (r *Reporter) Fraction() float64 {
	return float64(r.last) / scale
}
