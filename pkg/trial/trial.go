// Package trial executes a single external command under wall-clock timing.
// Every benchmark measurement starts life as one of these results.
package trial

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// ErrTextLimit caps the error text carried into persisted measurements.
// Sync tools can dump pages of diagnostics; the history keeps the head.
const ErrTextLimit = 200

// Result contains the outcome of one timed command execution.
type Result struct {
	Command    string
	Args       []string
	DurationMs float64
	Stdout     string
	Stderr     string
	ExitCode   int
	TimedOut   bool
	Err        error
}

// Options configures command execution.
type Options struct {
	Dir     string        // Working directory
	Timeout time.Duration // Command timeout (0 for no timeout)
}

// Run executes a command and measures its wall-clock duration. The duration
// is always populated, including for failed commands, since a failure's
// duration still gets recorded. Timing uses the monotonic clock.
func Run(command string, args []string, opts *Options) *Result {
	if opts == nil {
		opts = &Options{}
	}

	result := &Result{
		Command: command,
		Args:    args,
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result.DurationMs = float64(duration) / float64(time.Millisecond)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Err = err
		result.TimedOut = ctx.Err() == context.DeadlineExceeded
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	return result
}

// Success reports whether the command ran and exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// ErrText returns the failure text for persistence, truncated to
// ErrTextLimit characters. Stderr wins over the exec error because tools
// put the useful diagnostics there; an empty string means success.
func (r *Result) ErrText() string {
	if r.Success() {
		return ""
	}

	text := r.Stderr
	if text == "" && r.Err != nil {
		text = r.Err.Error()
	}
	if len(text) > ErrTextLimit {
		text = text[:ErrTextLimit]
	}
	return text
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	status := "success"
	if !r.Success() {
		status = fmt.Sprintf("failed (exit code %d)", r.ExitCode)
	}

	return fmt.Sprintf("%s %v: %s (%.1fms)", r.Command, r.Args, status, r.DurationMs)
}
