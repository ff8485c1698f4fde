package process

import (
	"io"
	"time"
)

// Command describes one invocation of an external tool such as ffmpeg,
// ffprobe, or whisper-cli.
type Command struct {
	// Binary is the executable path, or a bare name resolved via PATH.
	Binary string
	// Args are the command-line arguments, excluding the binary itself.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra key=value entries appended to os.Environ.
	Env []string
	// Stdin feeds the tool's standard input. May be nil.
	Stdin io.Reader
	// GracePeriod is how long a cancelled tool gets between SIGTERM and
	// SIGKILL. Defaults to 5 seconds if zero.
	GracePeriod time.Duration
}
