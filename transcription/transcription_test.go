package transcription

import (
	"context"
	"testing"

	"github.com/kbukum/transcriptor/errors"
)

func TestResequenceSortsByStart(t *testing.T) {
	segments := []Segment{
		{Start: 10, End: 15, Text: "third"},
		{Start: 0, End: 5, Text: "first"},
		{Start: 5, End: 10, Text: "second"},
	}

	got := Resequence(segments)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Start <= got[i-1].Start {
			t.Errorf("starts not strictly increasing: %v then %v", got[i-1], got[i])
		}
		if got[i].Start < got[i-1].End {
			t.Errorf("segments overlap: %v then %v", got[i-1], got[i])
		}
	}
	if got[0].Text != "first" || got[2].Text != "third" {
		t.Errorf("order wrong: %v", got)
	}
}

func TestResequenceClampsOverlap(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 8, Text: "long"},
		{Start: 5, End: 12, Text: "overlapping"},
	}
	got := Resequence(segments)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].End > got[1].Start {
		t.Errorf("overlap not clamped: %v", got)
	}
}

func TestResequenceMergesDuplicateStart(t *testing.T) {
	segments := []Segment{
		{Start: 2, End: 4, Text: "hello"},
		{Start: 2, End: 6, Text: "world"},
	}
	got := Resequence(segments)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 merged segment", len(got))
	}
	if got[0].Text != "hello world" || got[0].End != 6 {
		t.Errorf("merged = %+v", got[0])
	}
}

func TestResequenceDropsEmptyText(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "  "},
		{Start: 1, End: 2, Text: "kept"},
	}
	got := Resequence(segments)
	if len(got) != 1 || got[0].Text != "kept" {
		t.Errorf("got %v", got)
	}
}

func TestResequenceSwapsInvertedBounds(t *testing.T) {
	got := Resequence([]Segment{{Start: 5, End: 2, Text: "backwards"}})
	if len(got) != 1 || got[0].Start != 2 || got[0].End != 5 {
		t.Errorf("got %v", got)
	}
}

func TestTrackerMonotonic(t *testing.T) {
	var seen []float64
	tr := NewTracker(func(p Progress) { seen = append(seen, p.Fraction) })

	tr.Emit(0.1, 3)
	tr.Emit(0.5, 15)
	tr.Emit(0.3, 9) // regression, must be clamped up
	tr.Emit(0.8, 24)
	tr.Finish(30)

	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Errorf("progress regressed: %v", seen)
		}
	}
	if seen[len(seen)-1] != 1.0 {
		t.Errorf("last fraction = %v, want exactly 1.0", seen[len(seen)-1])
	}
}

func TestTrackerFinishExactlyOnce(t *testing.T) {
	ones := 0
	tr := NewTracker(func(p Progress) {
		if p.Fraction == 1.0 {
			ones++
		}
	})

	tr.Emit(1.5, 10) // over-report must not reach 1.0
	tr.Finish(10)
	tr.Finish(10)
	tr.Emit(0.9, 9) // after Finish, silence

	if ones != 1 {
		t.Errorf("1.0 emitted %d times, want 1", ones)
	}
}

func TestTrackerIntermediateBelowOne(t *testing.T) {
	var max float64
	tr := NewTracker(func(p Progress) {
		if p.Fraction > max {
			max = p.Fraction
		}
	})
	tr.Emit(2.0, 10)
	if max >= 1.0 {
		t.Errorf("intermediate progress reached %v, must stay below 1.0", max)
	}
}

func TestTrackerNilFunc(t *testing.T) {
	tr := NewTracker(nil)
	tr.Emit(0.5, 1)
	tr.Finish(2)
	// no panic is the assertion
}

func TestRequestValidate(t *testing.T) {
	ok := Request{AudioPath: "/tmp/a.wav", Language: "nl", Model: "tiny"}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := Request{}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Code = %s", errors.Code(err))
	}
}

func TestRequestValidateAllowsUnknownModel(t *testing.T) {
	// Unknown models are the engine's ModelLoadFailed, not invalid input.
	req := Request{AudioPath: "/tmp/a.wav", Language: "nl", Model: "giant-v9"}
	if err := req.Validate(); err != nil {
		t.Errorf("unknown model should pass request validation, got %v", err)
	}
}

type stubEngine struct{ name string }

func (s stubEngine) Name() string                       { return s.name }
func (s stubEngine) IsAvailable(_ context.Context) bool { return true }

func (s stubEngine) LoadModel(_ context.Context, _ string) error {
	return nil
}
func (s stubEngine) Transcribe(_ context.Context, _ Request, _ ProgressFunc) ([]Segment, error) {
	return nil, nil
}

func TestNewEngineReusesInstance(t *testing.T) {
	created := 0
	RegisterFactory("stub-reuse", func(cfg map[string]any) (Engine, error) {
		created++
		return stubEngine{name: "stub-reuse"}, nil
	})

	first, err := NewEngine("stub-reuse", map[string]any{"threads": 2})
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewEngine("stub-reuse", nil)
	if err != nil {
		t.Fatal(err)
	}
	if created != 1 {
		t.Errorf("factory ran %d times, want 1", created)
	}
	if first != second {
		t.Error("NewEngine returned a fresh instance instead of the cached one")
	}
}

func TestNewEngineUnknownName(t *testing.T) {
	if _, err := NewEngine("no-such-engine", nil); err == nil {
		t.Fatal("expected error for unregistered engine")
	}
}

func TestModelCatalog(t *testing.T) {
	for _, name := range []string{"tiny", "base", "small", "medium", "large", "large-v3"} {
		info, ok := Models[name]
		if !ok {
			t.Errorf("model %s missing from catalog", name)
			continue
		}
		if info.RealTimeFactor <= 0 {
			t.Errorf("model %s has no real-time factor", name)
		}
	}
	if _, ok := Models["giant-v9"]; ok {
		t.Error("giant-v9 should not be in the catalog")
	}
}
