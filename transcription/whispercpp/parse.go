package whispercpp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kbukum/transcriptor/transcription"
)

// whisper.cpp prints one decoded segment per line:
//
//	[00:00:00.000 --> 00:00:04.280]   Dames en heren, welkom.
var segmentLineRe = regexp.MustCompile(
	`^\[(\d{2,}):(\d{2}):(\d{2})\.(\d{3}) --> (\d{2,}):(\d{2}):(\d{2})\.(\d{3})\]\s*(.*)$`,
)

// parseSegmentLine parses a single segment line. Non-segment output
// (banners, timing summaries) returns ok=false.
func parseSegmentLine(line string) (transcription.Segment, bool) {
	m := segmentLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return transcription.Segment{}, false
	}
	return transcription.Segment{
		Start: clockToSeconds(m[1], m[2], m[3], m[4]),
		End:   clockToSeconds(m[5], m[6], m[7], m[8]),
		Text:  strings.TrimSpace(m[9]),
	}, true
}

func clockToSeconds(h, m, s, ms string) float64 {
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	ss, _ := strconv.Atoi(s)
	mmm, _ := strconv.Atoi(ms)
	return float64(hh)*3600 + float64(mm)*60 + float64(ss) + float64(mmm)/1000
}

// lastLine returns the final non-empty line of a byte stream, used to
// surface the most relevant part of a failing tool's stderr.
func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
