// Package report renders benchmark results, history, and comparisons as
// text tables. Rendering is pure: everything is derived from the records
// passed in, nothing is read from disk here.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dsync-tools/syncbench/pkg/bench"
	"github.com/dsync-tools/syncbench/pkg/compare"
)

// errDisplayLimit truncates error text in tables; the full (already
// capped) text lives in the history record.
const errDisplayLimit = 30

type groupKey struct {
	scenario, op string
}

// group indexes measurements by (scenario, op), remembering tool order of
// first appearance within each cell.
type group struct {
	byTool map[string]bench.Measurement
	tools  []string
}

func groupResults(results []bench.Measurement) (map[groupKey]*group, []groupKey) {
	groups := make(map[groupKey]*group)
	for _, m := range results {
		k := groupKey{m.Scenario, m.Op}
		g, ok := groups[k]
		if !ok {
			g = &group{byTool: make(map[string]bench.Measurement)}
			groups[k] = g
		}
		if _, seen := g.byTool[m.Tool]; !seen {
			g.tools = append(g.tools, m.Tool)
		}
		g.byTool[m.Tool] = m
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].scenario != keys[j].scenario {
			return keys[i].scenario < keys[j].scenario
		}
		return keys[i].op < keys[j].op
	})

	return groups, keys
}

// Results prints the measurement table for one run, grouped by scenario
// and phase with one row per tool. Error records show the failure text in
// place of numbers.
func Results(w io.Writer, results []bench.Measurement) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Benchmark Results")
	fmt.Fprintln(w)

	groups, keys := groupResults(results)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tOperation\tTool\tTime (ms)\tMB/s\tFiles/s")
	fmt.Fprintln(tw, "--------\t---------\t----\t---------\t----\t-------")

	for _, k := range keys {
		g := groups[k]
		for _, tool := range g.tools {
			m := g.byTool[tool]
			if m.Failed() {
				fmt.Fprintf(tw, "%s\t%s\t%s\tERROR: %s\t\t\n",
					k.scenario, k.op, tool, truncate(m.Err, errDisplayLimit))
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\t%.1f\n",
				k.scenario, k.op, tool, m.DurationMs, m.ThroughputMBps, m.FilesPerSec)
		}
	}
	tw.Flush()
}

// Summary prints one speedup line per (scenario, phase) where both the
// candidate and the baseline succeeded. No line is emitted when either
// side failed or is missing; a half-measured cell has nothing honest to
// say about relative speed.
func Summary(w io.Writer, results []bench.Measurement, candidate, baseline string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %s vs %s\n", candidate, baseline)
	fmt.Fprintln(w)

	groups, keys := groupResults(results)

	for _, k := range keys {
		g := groups[k]
		cand, haveCand := g.byTool[candidate]
		base, haveBase := g.byTool[baseline]
		if !haveCand || !haveBase || cand.Failed() || base.Failed() {
			continue
		}

		speedup, ok := compare.Speedup(base.DurationMs, cand.DurationMs)
		if !ok {
			continue
		}

		if speedup >= 1 {
			fmt.Fprintf(w, "%s/%s: %s is %.2fx FASTER\n", k.scenario, k.op, candidate, speedup)
		} else {
			fmt.Fprintf(w, "%s/%s: %s is %.2fx SLOWER\n", k.scenario, k.op, candidate, 1/speedup)
		}
	}
}

// History prints the most recent runs, newest last, with a side-by-side
// duration and speedup table per run.
func History(w io.Writer, runs []bench.Run, candidate, baseline string) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No benchmark history found.")
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent Benchmark History")
	fmt.Fprintln(w)

	for _, run := range runs {
		cpu := run.System.CPU
		if cpu == "" {
			cpu = "unknown"
		}
		fmt.Fprintf(w, "Date: %s | Commit: %s | Transport: %s\n",
			run.Timestamp, run.Git.Commit, run.Transport)
		fmt.Fprintf(w, "System: %s (%d cores)\n\n", truncate(cpu, 30), run.System.Cores)

		groups, keys := groupResults(run.Results)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Scenario\tOperation\t%s (ms)\t%s (ms)\tSpeedup\n", candidate, baseline)

		for _, k := range keys {
			g := groups[k]
			cand, haveCand := g.byTool[candidate]
			base, haveBase := g.byTool[baseline]

			speedupStr := "N/A"
			if haveCand && haveBase && cand.DurationMs > 0 && base.DurationMs > 0 {
				speedup, _ := compare.Speedup(base.DurationMs, cand.DurationMs)
				if speedup >= 1 {
					speedupStr = fmt.Sprintf("%.2fx", speedup)
				} else {
					speedupStr = fmt.Sprintf("%.2fx slower", 1/speedup)
				}
			}

			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				k.scenario, k.op, msOrDash(cand, haveCand), msOrDash(base, haveBase), speedupStr)
		}
		tw.Flush()
		fmt.Fprintln(w)
	}
}

// Comparison prints the classified deltas between two runs, earlier as
// the baseline and later as the run under judgment.
func Comparison(w io.Writer, earlier, later bench.Run) {
	fmt.Fprintf(w, "\nComparing: %s -> %s\n", earlier.Git.Commit, later.Git.Commit)
	fmt.Fprintf(w, "  Before: %s (%s)\n", earlier.Timestamp, earlier.Transport)
	fmt.Fprintf(w, "  After:  %s (%s)\n\n", later.Timestamp, later.Transport)

	deltas := compare.Runs(earlier.Results, later.Results)
	if len(deltas) == 0 {
		fmt.Fprintln(w, "No comparable measurements between these runs.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tOp\tTool\tBefore\tAfter\tChange")
	fmt.Fprintln(tw, "--------\t--\t----\t------\t-----\t------")

	for _, d := range deltas {
		change := "N/A"
		if d.Computable {
			change = fmt.Sprintf("%+.1f%%", d.ChangePct)
			switch d.Verdict {
			case compare.Better, compare.Worse:
				change += " (" + d.Verdict.String() + ")"
			}
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%.1f\t%s\n",
			d.Scenario, d.Op, d.Tool, d.BeforeMs, d.AfterMs, change)
	}
	tw.Flush()
}

func msOrDash(m bench.Measurement, present bool) string {
	if !present {
		return "-"
	}
	return fmt.Sprintf("%.1f", m.DurationMs)
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
