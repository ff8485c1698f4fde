package media

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies an input file by its container family.
type Kind int

const (
	// KindUnsupported marks files that are neither audio nor video.
	KindUnsupported Kind = iota
	// KindAudio marks recognized audio containers.
	KindAudio
	// KindVideo marks recognized video containers.
	KindVideo
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".ogg":  true,
	".flac": true,
	".aac":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".flv":  true,
	".wmv":  true,
}

// Classify reports the container kind of a path by its extension.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case audioExtensions[ext]:
		return KindAudio
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindUnsupported
	}
}

// Extensions returns the sorted supported extensions for help text.
func Extensions() []string {
	out := make([]string, 0, len(audioExtensions)+len(videoExtensions))
	for ext := range audioExtensions {
		out = append(out, ext)
	}
	for ext := range videoExtensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
