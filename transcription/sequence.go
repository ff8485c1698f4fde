package transcription

import (
	"sort"
	"strings"
)

// Resequence normalizes engine-native segment output into the ordered
// form the rest of the pipeline relies on: strictly increasing start
// times, non-overlapping spans, no empty text. Engines call this before
// returning; callers can assume its postconditions.
func Resequence(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, s := range segments {
		s.Text = strings.TrimSpace(s.Text)
		if s.Text == "" {
			continue
		}
		if s.End < s.Start {
			s.Start, s.End = s.End, s.Start
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	// Clamp overlaps against the previous segment and drop exact
	// duplicates of a start time so ordering is strict.
	result := out[:0]
	for _, s := range out {
		if len(result) > 0 {
			prev := &result[len(result)-1]
			if s.Start <= prev.Start {
				// Same position: keep the earlier segment, append text.
				prev.Text = prev.Text + " " + s.Text
				if s.End > prev.End {
					prev.End = s.End
				}
				continue
			}
			if s.Start < prev.End {
				prev.End = s.Start
			}
		}
		result = append(result, s)
	}
	return result
}
