// Package bench holds the benchmark's measurement model and the phase
// orchestrator that produces measurements by driving the sync tools
// through initial, incremental, and delta syncs.
package bench

import (
	"math"
	"sort"
)

// Phase identifiers, in execution order.
const (
	OpInitial     = "initial"
	OpIncremental = "incremental"
	OpDelta       = "delta"
)

// Measurement is one timed result: a single (scenario, tool, phase) cell.
// The JSON keys are the persisted history format and must not change.
type Measurement struct {
	Scenario       string  `json:"scenario"`
	Tool           string  `json:"tool"`
	Op             string  `json:"op"`
	DurationMs     float64 `json:"ms"`
	Files          int     `json:"files"`
	Bytes          int64   `json:"bytes"`
	ThroughputMBps float64 `json:"mbps"`
	FilesPerSec    float64 `json:"fps"`
	Err            string  `json:"err,omitempty"`
}

// Failed reports whether this is an error record.
func (m Measurement) Failed() bool {
	return m.Err != ""
}

// Derive returns a copy with the throughput fields recomputed from the raw
// duration, byte, and file counts. Both stay zero for a zero duration or an
// error record. The derived fields are functions of the raw ones and are
// never set any other way.
func (m Measurement) Derive() Measurement {
	m.ThroughputMBps = 0
	m.FilesPerSec = 0

	if m.DurationMs > 0 && m.Err == "" {
		seconds := m.DurationMs / 1000
		m.ThroughputMBps = (float64(m.Bytes) / 1e6) / seconds
		m.FilesPerSec = float64(m.Files) / seconds
	}

	return m
}

// Round returns a copy with the persisted precision applied: duration to
// one decimal place, throughput to two, files/sec to one. Applied once,
// just before a measurement is written out.
func (m Measurement) Round() Measurement {
	m.DurationMs = roundTo(m.DurationMs, 1)
	m.ThroughputMBps = roundTo(m.ThroughputMBps, 2)
	m.FilesPerSec = roundTo(m.FilesPerSec, 1)
	return m
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Median returns the upper median: the element at index len/2 of the
// sorted durations. For odd counts that is the true median; for even
// counts the upper of the two middle values. No interpolation, so the
// result is always a duration that actually occurred. Zero for no input.
func Median(durations []float64) float64 {
	if len(durations) == 0 {
		return 0
	}

	sorted := append([]float64(nil), durations...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}
