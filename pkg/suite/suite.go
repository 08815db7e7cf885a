// Package suite runs sequential functional checks against a sync tool
// installation and reports pass/fail results. Checks run in order and share
// nothing; one failure never stops the rest.
package suite

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/dsync-tools/syncbench/pkg/remote"
	"github.com/dsync-tools/syncbench/pkg/trial"
)

// Failure kinds. A passed check has an empty kind. Timeouts are kept
// distinct from ordinary failures so a hung tool reads differently from a
// broken one.
const (
	KindFailed  = "failed"
	KindTimeout = "timeout"
)

// detailDisplayLimit caps failure detail in the summary table.
const detailDisplayLimit = 60

// CheckResult is the outcome of one check
type CheckResult struct {
	Name     string
	Passed   bool
	Duration time.Duration
	Kind     string
	Detail   string
}

// Runner executes checks sequentially and accumulates their results
type Runner struct {
	Verbose bool
	Timeout time.Duration // hard limit per command; zero means none
	Log     zerolog.Logger

	results []CheckResult
}

// Run executes a command as a check. The check passes when the command
// exits zero within the timeout.
func (r *Runner) Run(name, command string, args ...string) bool {
	start := time.Now()
	res := trial.Run(command, args, &trial.Options{Timeout: r.Timeout})

	result := CheckResult{
		Name:     name,
		Passed:   res.Success(),
		Duration: time.Since(start),
	}
	if !result.Passed {
		result.Kind = KindFailed
		result.Detail = res.ErrText()
		if res.TimedOut {
			result.Kind = KindTimeout
			result.Detail = fmt.Sprintf("no result within %s", r.Timeout)
		}
	}

	r.record(result)
	return result.Passed
}

// RunFunc executes an in-process check. It passes when fn returns nil. The
// command timeout does not apply to fn itself, only to commands fn runs.
func (r *Runner) RunFunc(name string, fn func() error) bool {
	start := time.Now()
	err := fn()

	result := CheckResult{
		Name:     name,
		Passed:   err == nil,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Kind = KindFailed
		result.Detail = err.Error()
	}

	r.record(result)
	return result.Passed
}

// RunRemote executes a shell command on the target as a check, under the
// same per-command timeout as local commands.
func (r *Runner) RunRemote(name string, target *remote.Target, command string) bool {
	return r.Run(name, "ssh", target.Addr(), command)
}

func (r *Runner) record(result CheckResult) {
	r.results = append(r.results, result)

	switch {
	case !result.Passed:
		r.Log.Error().
			Str("check", result.Name).
			Str("kind", result.Kind).
			Str("detail", result.Detail).
			Msg("check failed")
	case r.Verbose:
		r.Log.Info().
			Str("check", result.Name).
			Dur("took", result.Duration).
			Msg("check passed")
	}
}

// Results returns all recorded results in execution order
func (r *Runner) Results() []CheckResult {
	return r.results
}

// Summary writes the check table with pass/fail totals and reports whether
// every check passed.
func (r *Runner) Summary(w io.Writer) bool {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Suite Results")

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Check\tStatus\tTime\tDetail")

	passed := 0
	for _, result := range r.results {
		status := "PASS"
		detail := ""
		switch {
		case result.Passed:
			passed++
		case result.Kind == KindTimeout:
			status = "TIMEOUT"
			detail = firstLine(result.Detail)
		default:
			status = "FAIL"
			detail = firstLine(result.Detail)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			result.Name, status, result.Duration.Round(time.Millisecond), detail)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d/%d checks passed\n", passed, len(r.results))
	return passed == len(r.results)
}

// firstLine keeps failure detail table-safe
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > detailDisplayLimit {
		s = s[:detailDisplayLimit]
	}
	return s
}
