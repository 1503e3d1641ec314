package toolrun

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Invocation describes one external tool run.
type Invocation struct {
	Tool    string
	Args    []string
	Dir     string
	Timeout time.Duration
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
}

// Outcome carries the captured streams and exit status of a finished run.
type Outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

// Run executes the tool, capturing both streams into the outcome. In verbose
// mode the streams are additionally tee'd to the invocation writers. A
// positive Timeout bounds the run; past it the process is killed and the
// outcome reports TimedOut.
func Run(ctx context.Context, inv Invocation) (Outcome, error) {
	if inv.Stdout == nil {
		inv.Stdout = io.Discard
	}
	if inv.Stderr == nil {
		inv.Stderr = io.Discard
	}
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, inv.Tool, inv.Args...)
	cmd.Dir = inv.Dir

	var stdoutBuf, stderrBuf strings.Builder
	if inv.Verbose {
		cmd.Stdout = io.MultiWriter(inv.Stdout, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(inv.Stderr, &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	start := time.Now()
	err := cmd.Run()
	out := Outcome{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		ExitCode: exitCode(err),
		TimedOut: err != nil && ctx.Err() == context.DeadlineExceeded,
		Duration: time.Since(start),
	}
	return out, err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// Tail returns the last max lines of s, dropping a trailing newline.
func Tail(s string, max int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-max:], "\n")
}
