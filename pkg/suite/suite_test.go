package suite

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRunner() *Runner {
	return &Runner{Log: zerolog.Nop()}
}

func TestRunPass(t *testing.T) {
	r := newTestRunner()

	if !r.Run("exit zero", "sh", "-c", "exit 0") {
		t.Error("Run should pass for a zero exit")
	}

	results := r.Results()
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if !results[0].Passed || results[0].Kind != "" {
		t.Errorf("Passed result should have empty kind, got %+v", results[0])
	}
	if results[0].Name != "exit zero" {
		t.Errorf("Name = %q, want 'exit zero'", results[0].Name)
	}
}

func TestRunFail(t *testing.T) {
	r := newTestRunner()

	if r.Run("exit nonzero", "sh", "-c", "echo broken >&2; exit 1") {
		t.Error("Run should fail for a nonzero exit")
	}

	result := r.Results()[0]
	if result.Kind != KindFailed {
		t.Errorf("Kind = %q, want %q", result.Kind, KindFailed)
	}
	if !strings.Contains(result.Detail, "broken") {
		t.Errorf("Detail should carry stderr, got %q", result.Detail)
	}
}

func TestRunTimeout(t *testing.T) {
	r := newTestRunner()
	r.Timeout = 100 * time.Millisecond

	start := time.Now()
	if r.Run("hang", "sleep", "5") {
		t.Error("Run should fail on timeout")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Timeout did not kill the command, took %v", elapsed)
	}

	result := r.Results()[0]
	if result.Kind != KindTimeout {
		t.Errorf("Kind = %q, want %q", result.Kind, KindTimeout)
	}
}

func TestRunFunc(t *testing.T) {
	r := newTestRunner()

	if !r.RunFunc("ok", func() error { return nil }) {
		t.Error("RunFunc should pass when fn returns nil")
	}
	if r.RunFunc("bad", func() error { return errors.New("tree mismatch") }) {
		t.Error("RunFunc should fail when fn returns an error")
	}

	results := r.Results()
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[1].Kind != KindFailed || results[1].Detail != "tree mismatch" {
		t.Errorf("Failed func result wrong: %+v", results[1])
	}
}

func TestResultsOrder(t *testing.T) {
	r := newTestRunner()
	r.Run("first", "sh", "-c", "exit 0")
	r.RunFunc("second", func() error { return nil })
	r.Run("third", "sh", "-c", "exit 1")

	want := []string{"first", "second", "third"}
	results := r.Results()
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("Result %d = %q, want %q", i, results[i].Name, name)
		}
	}
}

func TestSummary(t *testing.T) {
	r := newTestRunner()
	r.Run("good", "sh", "-c", "exit 0")
	r.Run("bad", "sh", "-c", "echo oops >&2; exit 1")
	r.RunFunc("fine", func() error { return nil })

	var buf bytes.Buffer
	if r.Summary(&buf) {
		t.Error("Summary should return false with a failing check")
	}

	out := buf.String()
	for _, want := range []string{"Suite Results", "good", "PASS", "bad", "FAIL", "oops", "2/3 checks passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary missing %q:\n%s", want, out)
		}
	}
}

func TestSummaryAllPassed(t *testing.T) {
	r := newTestRunner()
	r.Run("one", "sh", "-c", "exit 0")
	r.Run("two", "sh", "-c", "exit 0")

	var buf bytes.Buffer
	if !r.Summary(&buf) {
		t.Error("Summary should return true when every check passed")
	}
	if !strings.Contains(buf.String(), "2/2 checks passed") {
		t.Errorf("Summary missing totals:\n%s", buf.String())
	}
}

func TestSummaryTimeoutStatus(t *testing.T) {
	r := newTestRunner()
	r.Timeout = 100 * time.Millisecond
	r.Run("hang", "sleep", "5")

	var buf bytes.Buffer
	r.Summary(&buf)

	if !strings.Contains(buf.String(), "TIMEOUT") {
		t.Errorf("Summary should mark timeouts distinctly:\n%s", buf.String())
	}
}

func TestSummaryDetailSingleLine(t *testing.T) {
	r := newTestRunner()
	r.RunFunc("multiline", func() error {
		return errors.New("first line\nsecond line that should not appear")
	})

	var buf bytes.Buffer
	r.Summary(&buf)

	out := buf.String()
	if !strings.Contains(out, "first line") {
		t.Errorf("Summary missing first detail line:\n%s", out)
	}
	if strings.Contains(out, "second line") {
		t.Errorf("Summary should keep detail to one line:\n%s", out)
	}
}
