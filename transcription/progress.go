package transcription

// maxPartialFraction is the ceiling for intermediate progress; 1.0 is
// reserved for Finish so it is emitted exactly once.
const maxPartialFraction = 0.999

// Tracker enforces the progress contract on behalf of an engine: values
// are clamped monotonically non-decreasing, intermediate values stay
// below 1.0, and Finish emits exactly 1.0 exactly once. After Finish no
// further snapshots are delivered.
type Tracker struct {
	fn       ProgressFunc
	last     float64
	finished bool
}

// NewTracker wraps a ProgressFunc. fn may be nil; emissions then become
// no-ops, which keeps engine code free of nil checks.
func NewTracker(fn ProgressFunc) *Tracker {
	return &Tracker{fn: fn}
}

// Emit reports an intermediate progress snapshot.
func (t *Tracker) Emit(fraction, segmentEnd float64) {
	if t.fn == nil || t.finished {
		return
	}
	if fraction > maxPartialFraction {
		fraction = maxPartialFraction
	}
	if fraction < t.last {
		fraction = t.last
	}
	t.last = fraction
	t.fn(Progress{Fraction: fraction, SegmentEnd: segmentEnd})
}

// Finish reports successful completion as exactly 1.0. Subsequent calls
// to Emit or Finish are no-ops.
func (t *Tracker) Finish(totalSeconds float64) {
	if t.fn == nil || t.finished {
		return
	}
	t.finished = true
	t.last = 1.0
	t.fn(Progress{Fraction: 1.0, SegmentEnd: totalSeconds})
}

// Last returns the most recently emitted fraction.
func (t *Tracker) Last() float64 { return t.last }
