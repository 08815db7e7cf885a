// Package compare classifies performance changes between benchmark runs.
// It also owns the speedup ratio shared with the reporter, so the number a
// comparison classifies and the number a report prints can never drift.
package compare

import "github.com/dsync-tools/syncbench/pkg/bench"

// Threshold is the percentage change below which a difference is treated
// as noise. Run-to-run variance on warm caches sits well inside it.
const Threshold = 5.0

// Verdict classifies one duration change.
type Verdict int

const (
	Neutral Verdict = iota
	Better
	Worse
	NotComputable
)

// String returns the verdict as it appears in reports.
func (v Verdict) String() string {
	switch v {
	case Better:
		return "better"
	case Worse:
		return "worse"
	case NotComputable:
		return "N/A"
	default:
		return "neutral"
	}
}

// ChangePct returns the percentage change from before to after. The second
// return is false when before is zero, where the ratio is undefined.
func ChangePct(before, after float64) (float64, bool) {
	if before == 0 {
		return 0, false
	}
	return ((after / before) - 1) * 100, true
}

// Classify buckets a percentage change: improvements beyond the threshold
// are better, regressions beyond it worse, anything else neutral.
func Classify(pct float64) Verdict {
	switch {
	case pct < -Threshold:
		return Better
	case pct > Threshold:
		return Worse
	default:
		return Neutral
	}
}

// Speedup returns how many times faster the candidate is than the
// baseline. The second return is false when the candidate duration is
// zero.
func Speedup(baselineMs, candidateMs float64) (float64, bool) {
	if candidateMs == 0 {
		return 0, false
	}
	return baselineMs / candidateMs, true
}

// Delta is the change of one (scenario, op, tool) cell between two runs.
type Delta struct {
	Scenario   string
	Op         string
	Tool       string
	BeforeMs   float64
	AfterMs    float64
	ChangePct  float64
	Computable bool
	Verdict    Verdict
}

type key struct {
	scenario, op, tool string
}

// Runs matches the later run's measurements against the earlier run's by
// (scenario, op, tool) and returns one delta per matched cell, in the
// later run's order. Cells with no earlier counterpart are skipped; cells
// whose earlier duration is zero come back not-computable instead of
// dividing by zero.
func Runs(earlier, later []bench.Measurement) []Delta {
	lookup := make(map[key]bench.Measurement, len(earlier))
	for _, m := range earlier {
		lookup[key{m.Scenario, m.Op, m.Tool}] = m
	}

	var deltas []Delta
	for _, m := range later {
		before, found := lookup[key{m.Scenario, m.Op, m.Tool}]
		if !found {
			continue
		}

		d := Delta{
			Scenario: m.Scenario,
			Op:       m.Op,
			Tool:     m.Tool,
			BeforeMs: before.DurationMs,
			AfterMs:  m.DurationMs,
		}

		if pct, ok := ChangePct(before.DurationMs, m.DurationMs); ok {
			d.ChangePct = pct
			d.Computable = true
			d.Verdict = Classify(pct)
		} else {
			d.Verdict = NotComputable
		}

		deltas = append(deltas, d)
	}

	return deltas
}
