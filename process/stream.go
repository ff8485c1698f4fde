package process

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"time"
)

// OutputStream selects which process stream a LineFunc receives.
type OutputStream int

const (
	// StreamStdout delivers standard output lines.
	StreamStdout OutputStream = iota
	// StreamStderr delivers standard error lines.
	StreamStderr
)

// LineFunc is invoked for every line the subprocess writes to the
// selected stream, while the process is still running. It must not block
// materially; it runs on the reader goroutine.
type LineFunc func(line string)

// Stream executes a subprocess and delivers one stream line-by-line to fn
// as the process produces output. The other stream is captured whole.
// Long-running tools report progress on stderr or stdout incrementally;
// this is how ffmpeg -progress and whisper segment output are observed.
//
// Kill semantics match Run: SIGTERM to the process group on context
// cancellation, SIGKILL after the grace period.
func Stream(ctx context.Context, cmd Command, which OutputStream, fn LineFunc) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}
	if fn == nil {
		return Run(ctx, cmd)
	}

	c := newCmd(ctx, cmd)

	var captured bytes.Buffer
	var pipe io.ReadCloser
	var err error

	switch which {
	case StreamStdout:
		pipe, err = c.StdoutPipe()
		c.Stderr = &captured
	case StreamStderr:
		pipe, err = c.StderrPipe()
		c.Stdout = &captured
	default:
		return nil, fmt.Errorf("process: unknown output stream %d", which)
	}
	if err != nil {
		return nil, fmt.Errorf("process: open pipe: %w", err)
	}

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("process: start: %w", err)
	}

	var streamed bytes.Buffer
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		streamed.WriteString(line)
		streamed.WriteByte('\n')
		fn(line)
	}

	waitErr := c.Wait()
	duration := time.Since(start)

	result := &Result{
		ExitCode: exitCode(c),
		Duration: duration,
	}
	switch which {
	case StreamStdout:
		result.Stdout = streamed.Bytes()
		result.Stderr = captured.Bytes()
	case StreamStderr:
		result.Stdout = captured.Bytes()
		result.Stderr = streamed.Bytes()
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("process: killed by context: %w", ctx.Err())
		}
		return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, waitErr)
	}

	return result, nil
}
