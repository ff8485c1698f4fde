package transcription

// Request holds parameters for a transcription call.
type Request struct {
	// AudioPath is the path to the normalized audio file to transcribe.
	AudioPath string `json:"audio_path" validate:"required"`
	// Language is the expected language of the audio (e.g. "nl").
	Language string `json:"language" validate:"required"`
	// Model is the recognition model to use.
	Model string `json:"model" validate:"required"`
	// Duration is the audio duration in seconds, used for progress
	// estimation. Zero means unknown.
	Duration float64 `json:"duration,omitempty"`
}

// Segment represents a time-aligned portion of a transcript.
// Segments are immutable once emitted by an engine.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// Confidence is the engine's confidence in [0,1], if reported.
	Confidence float64 `json:"confidence,omitempty"`
}

// Progress is an ephemeral snapshot of how far a run has advanced.
// Fraction is monotonically non-decreasing over the life of one run and
// reaches 1.0 exactly once, at successful completion.
type Progress struct {
	// Fraction is the completed share of the run in [0,1].
	Fraction float64 `json:"fraction"`
	// SegmentEnd is the end time in seconds of the most recently
	// processed audio.
	SegmentEnd float64 `json:"segment_end"`
}

// ProgressFunc receives progress snapshots. It executes synchronously on
// the engine's reporting point and must not block materially.
type ProgressFunc func(Progress)

// ModelInfo describes a recognition model's size/speed trade-off.
type ModelInfo struct {
	// Name is the model tag.
	Name string
	// Params is a human-readable parameter count.
	Params string
	// RealTimeFactor estimates processing seconds per audio second on CPU.
	RealTimeFactor float64
}

// Models is the catalog of supported recognition models.
var Models = map[string]ModelInfo{
	"tiny":     {Name: "tiny", Params: "39M", RealTimeFactor: 0.6},
	"base":     {Name: "base", Params: "74M", RealTimeFactor: 1.0},
	"small":    {Name: "small", Params: "244M", RealTimeFactor: 1.6},
	"medium":   {Name: "medium", Params: "769M", RealTimeFactor: 3.0},
	"large":    {Name: "large", Params: "1550M", RealTimeFactor: 5.0},
	"large-v3": {Name: "large-v3", Params: "1550M", RealTimeFactor: 5.0},
}

// Languages maps supported language codes to display names.
var Languages = map[string]string{
	"nl": "Nederlands",
	"en": "English",
	"fr": "Francais",
	"de": "Deutsch",
	"es": "Espanol",
	"it": "Italiano",
	"pt": "Portugues",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
}
