package toolrun

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-based fixtures are not portable to windows")
	}
}

func TestRunCapturesStreams(t *testing.T) {
	skipOnWindows(t)

	out, err := Run(context.Background(), Invocation{
		Tool: "/bin/sh",
		Args: []string{"-c", "echo up; echo down >&2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out.Stdout) != "up" {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	if strings.TrimSpace(out.Stderr) != "down" {
		t.Fatalf("stderr = %q", out.Stderr)
	}
	if out.ExitCode != 0 {
		t.Fatalf("exit code = %d", out.ExitCode)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	out, err := Run(context.Background(), Invocation{
		Tool: "/bin/sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if out.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", out.ExitCode)
	}
	if out.TimedOut {
		t.Fatal("TimedOut set on a plain failure")
	}
	if !strings.Contains(out.Stderr, "broken") {
		t.Fatalf("stderr = %q", out.Stderr)
	}
}

func TestRunTimeout(t *testing.T) {
	skipOnWindows(t)

	out, err := Run(context.Background(), Invocation{
		Tool:    "/bin/sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected the deadline to kill the process")
	}
	if !out.TimedOut {
		t.Fatal("TimedOut not set")
	}
}

func TestRunVerboseTee(t *testing.T) {
	skipOnWindows(t)

	var tee strings.Builder
	out, err := Run(context.Background(), Invocation{
		Tool:    "/bin/sh",
		Args:    []string{"-c", "echo visible"},
		Verbose: true,
		Stdout:  &tee,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(tee.String(), "visible") {
		t.Fatalf("tee missed output: %q", tee.String())
	}
	if !strings.Contains(out.Stdout, "visible") {
		t.Fatalf("capture missed output: %q", out.Stdout)
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"empty", "", 3, ""},
		{"under limit", "a\nb\n", 3, "a\nb"},
		{"over limit", "a\nb\nc\nd\n", 2, "c\nd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tail(tt.input, tt.max); got != tt.want {
				t.Fatalf("Tail(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}
