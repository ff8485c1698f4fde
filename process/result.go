package process

import "time"

// Result is what a finished tool run leaves behind.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error. ffmpeg writes its progress
	// stream here, so it can be sizeable.
	Stderr []byte
	// ExitCode is the tool's exit code, or -1 when it was killed.
	ExitCode int
	// Duration is the wall-clock time the tool ran.
	Duration time.Duration
}
