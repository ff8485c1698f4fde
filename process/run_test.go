package process_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/transcriptor/process"
)

func TestRunEcho(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"hello", "world"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", result.ExitCode)
	}
	out := strings.TrimSpace(string(result.Stdout))
	if out != "hello world" {
		t.Fatalf("expected 'hello world', got %q", out)
	}
}

func TestRunStdin(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "cat",
		Stdin:  strings.NewReader("from stdin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := string(result.Stdout)
	if out != "from stdin" {
		t.Fatalf("expected 'from stdin', got %q", out)
	}
}

func TestRunExitCode(t *testing.T) {
	result, err := process.Run(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "exit 42"},
	})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 42 {
		t.Fatalf("expected exit code 42, got %d", result.ExitCode)
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := process.Run(ctx, process.Command{
		Binary:      "sleep",
		Args:        []string{"10"},
		GracePeriod: 500 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error from context cancellation")
	}
	if result.Duration > 5*time.Second {
		t.Fatalf("process took too long to kill: %v", result.Duration)
	}
}

func TestRunEmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	if err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestStreamStdout(t *testing.T) {
	var lines []string
	result, err := process.Stream(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo one; echo two; echo err >&2"},
	}, process.StreamStdout, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("streamed lines = %v", lines)
	}
	if strings.TrimSpace(string(result.Stderr)) != "err" {
		t.Fatalf("captured stderr = %q", result.Stderr)
	}
}

func TestStreamStderr(t *testing.T) {
	var lines []string
	result, err := process.Stream(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo progress=1 >&2; echo progress=2 >&2; echo done"},
	}, process.StreamStderr, func(line string) {
		lines = append(lines, line)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("streamed lines = %v", lines)
	}
	if strings.TrimSpace(string(result.Stdout)) != "done" {
		t.Fatalf("captured stdout = %q", result.Stdout)
	}
}

func TestStreamDeliversWhileRunning(t *testing.T) {
	first := make(chan struct{})
	var once bool
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, err := process.Stream(context.Background(), process.Command{
			Binary: "sh",
			Args:   []string{"-c", "echo early; sleep 0.5; echo late"},
		}, process.StreamStdout, func(line string) {
			if !once {
				once = true
				close(first)
			}
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}()

	select {
	case <-first:
		// First line arrived before the process exited.
	case <-time.After(400 * time.Millisecond):
		t.Fatal("first line not delivered while process was still running")
	}
	<-done
}

func TestStreamExitCode(t *testing.T) {
	result, err := process.Stream(context.Background(), process.Command{
		Binary: "sh",
		Args:   []string{"-c", "echo partial; exit 3"},
	}, process.StreamStdout, func(string) {})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", result.ExitCode)
	}
	if strings.TrimSpace(string(result.Stdout)) != "partial" {
		t.Fatalf("stdout should still carry streamed lines, got %q", result.Stdout)
	}
}

func TestStreamNilFuncFallsBack(t *testing.T) {
	result, err := process.Stream(context.Background(), process.Command{
		Binary: "echo",
		Args:   []string{"plain"},
	}, process.StreamStdout, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(string(result.Stdout)) != "plain" {
		t.Fatalf("stdout = %q", result.Stdout)
	}
}
