package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dsync-tools/syncbench/pkg/bench"
	"github.com/dsync-tools/syncbench/pkg/gitinfo"
	"github.com/dsync-tools/syncbench/pkg/sysinfo"
)

func openTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "archive_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	db, err := Open(filepath.Join(tempDir, "test.db"))
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open archive: %v", err)
	}

	return db, func() {
		db.Close()
		os.RemoveAll(tempDir)
	}
}

func sampleRun(ts, commit string, results ...bench.Measurement) bench.Run {
	run := bench.Run{
		Timestamp: ts,
		Transport: bench.TransportLocal,
		Versions:  map[string]string{"dsync": "0.3.1", "rsync": "3.2.7"},
		Notes:     "archive test",
		Results:   results,
	}
	run.System = sysinfo.Info{
		OS: "linux", OSVersion: "6.1.0", Arch: "amd64",
		Host: "benchhost", Cores: 8, CPU: "Test CPU", GoVersion: "go1.24.2",
	}
	run.Git = gitinfo.Info{Commit: commit, Branch: "main", Dirty: false}
	return run
}

func measurement(scenario, op, tool string, ms float64) bench.Measurement {
	return bench.Measurement{
		Scenario: scenario, Op: op, Tool: tool,
		DurationMs: ms, Files: 100, Bytes: 102400,
	}.Derive()
}

func TestOpenIsIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "archive_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	path := filepath.Join(tempDir, "test.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	db.Close()

	// Reopening an existing archive must not fail on the schema
	db, err = Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen archive: %v", err)
	}
	db.Close()
}

func TestRecordAndListRuns(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	older := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 100))
	newer := sampleRun("2026-08-02 10:00:00", "def5678",
		measurement("small_files", bench.OpInitial, "dsync", 90))

	for _, run := range []bench.Run{older, newer} {
		if _, err := db.RecordRun(run); err != nil {
			t.Fatalf("Failed to record run: %v", err)
		}
	}

	runs, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}

	// Most recent first
	if runs[0].Timestamp != "2026-08-02 10:00:00" {
		t.Errorf("Expected newest run first, got ts %s", runs[0].Timestamp)
	}
	if runs[0].Commit != "def5678" {
		t.Errorf("Expected commit def5678, got %s", runs[0].Commit)
	}
	if runs[0].Host != "benchhost" || runs[0].Cores != 8 || runs[0].OS != "linux" {
		t.Errorf("System fields not preserved: %+v", runs[0])
	}
	if runs[0].Versions["rsync"] != "3.2.7" {
		t.Errorf("Versions not preserved: %v", runs[0].Versions)
	}
	if runs[0].Notes != "archive test" {
		t.Errorf("Notes not preserved: %s", runs[0].Notes)
	}
}

func TestListRunsLimit(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	timestamps := []string{
		"2026-08-01 10:00:00",
		"2026-08-02 10:00:00",
		"2026-08-03 10:00:00",
	}
	for _, ts := range timestamps {
		run := sampleRun(ts, "abc1234", measurement("small_files", bench.OpInitial, "dsync", 100))
		if _, err := db.RecordRun(run); err != nil {
			t.Fatalf("Failed to record run: %v", err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs with limit, got %d", len(runs))
	}
	if runs[0].Timestamp != "2026-08-03 10:00:00" || runs[1].Timestamp != "2026-08-02 10:00:00" {
		t.Errorf("Limit should keep the most recent runs, got %s, %s",
			runs[0].Timestamp, runs[1].Timestamp)
	}
}

func TestGetRun(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	run := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 100))

	runID, err := db.RecordRun(run)
	if err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	row, err := db.GetRun(runID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if row.ID != runID || row.Commit != "abc1234" || row.Transport != bench.TransportLocal {
		t.Errorf("Unexpected run row: %+v", row)
	}
	if row.Versions["dsync"] != "0.3.1" {
		t.Errorf("Versions not preserved: %v", row.Versions)
	}

	if _, err := db.GetRun(runID + 99); err == nil {
		t.Error("Expected error for missing run ID")
	}
}

func TestResultsForRun(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	failed := bench.Measurement{
		Scenario: "large_file", Op: bench.OpInitial, Tool: "dsync",
		DurationMs: 5, Err: "sync exploded",
	}.Derive()

	run := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 100),
		measurement("small_files", bench.OpIncremental, "dsync", 20),
		failed,
	)

	runID, err := db.RecordRun(run)
	if err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	results, err := db.ResultsForRun(runID)
	if err != nil {
		t.Fatalf("Failed to load results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 measurements, got %d", len(results))
	}

	// Insertion order preserved
	if results[0].Op != bench.OpInitial || results[1].Op != bench.OpIncremental {
		t.Errorf("Measurement order not preserved: %s, %s", results[0].Op, results[1].Op)
	}
	if results[2].Err != "sync exploded" {
		t.Errorf("Error text not preserved: %q", results[2].Err)
	}
	if results[0].Files != 100 || results[0].Bytes != 102400 {
		t.Errorf("Counts not preserved: %+v", results[0])
	}
}

func TestRecordRunStoresRoundedValues(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	run := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 123.456789))

	runID, err := db.RecordRun(run)
	if err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	results, err := db.ResultsForRun(runID)
	if err != nil {
		t.Fatalf("Failed to load results: %v", err)
	}
	if results[0].DurationMs != 123.5 {
		t.Errorf("Expected rounded duration 123.5, got %v", results[0].DurationMs)
	}
}

func TestRecordRunRejectsDuplicateKey(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	run := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 100))

	if _, err := db.RecordRun(run); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	if _, err := db.RecordRun(run); err == nil {
		t.Error("Recording the same (ts, transport) twice should fail")
	}
}

func TestBestDurations(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	failed := bench.Measurement{
		Scenario: "large_file", Op: bench.OpInitial, Tool: "dsync",
		DurationMs: 5, Err: "boom",
	}.Derive()

	older := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 100),
		measurement("small_files", bench.OpInitial, "rsync", 150),
		measurement("mixed", bench.OpInitial, "dsync", 250),
		failed,
	)
	newer := sampleRun("2026-08-02 10:00:00", "def5678",
		measurement("small_files", bench.OpInitial, "dsync", 80))

	for _, run := range []bench.Run{older, newer} {
		if _, err := db.RecordRun(run); err != nil {
			t.Fatalf("Failed to record run: %v", err)
		}
	}

	best, err := db.BestDurations("", "")
	if err != nil {
		t.Fatalf("Failed to query best durations: %v", err)
	}
	// Error records never qualify, so large_file contributes no cell
	if len(best) != 3 {
		t.Fatalf("Expected 3 cells, got %d", len(best))
	}

	// Ordered by scenario, op, tool
	if best[0].Scenario != "mixed" {
		t.Errorf("Expected mixed first, got %s", best[0].Scenario)
	}

	cell := best[1]
	if cell.Scenario != "small_files" || cell.Tool != "dsync" {
		t.Fatalf("Unexpected cell: %+v", cell)
	}
	if cell.DurationMs != 80 {
		t.Errorf("Expected best duration 80, got %v", cell.DurationMs)
	}
	if cell.Commit != "def5678" || cell.Timestamp != "2026-08-02 10:00:00" {
		t.Errorf("Best duration should carry the winning run, got %+v", cell)
	}
}

func TestBestDurationsFilters(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	run := sampleRun("2026-08-01 10:00:00", "abc1234",
		measurement("small_files", bench.OpInitial, "dsync", 100),
		measurement("small_files", bench.OpDelta, "dsync", 30),
		measurement("mixed", bench.OpInitial, "dsync", 250),
	)
	if _, err := db.RecordRun(run); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}

	tests := []struct {
		name     string
		scenario string
		op       string
		want     int
	}{
		{"all", "", "", 3},
		{"scenario only", "small_files", "", 2},
		{"op only", "", bench.OpDelta, 1},
		{"scenario and op", "small_files", bench.OpDelta, 1},
		{"no match", "nope", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, err := db.BestDurations(tt.scenario, tt.op)
			if err != nil {
				t.Fatalf("Failed to query best durations: %v", err)
			}
			if len(best) != tt.want {
				t.Errorf("Expected %d cells, got %d", tt.want, len(best))
			}
		})
	}
}

func TestBackfillIsIdempotent(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	runs := []bench.Run{
		sampleRun("2026-08-01 10:00:00", "abc1234",
			measurement("small_files", bench.OpInitial, "dsync", 100)),
		sampleRun("2026-08-02 10:00:00", "def5678",
			measurement("small_files", bench.OpInitial, "dsync", 90)),
	}

	imported, err := db.Backfill(runs)
	if err != nil {
		t.Fatalf("Failed to backfill: %v", err)
	}
	if imported != 2 {
		t.Errorf("Expected 2 imported, got %d", imported)
	}

	imported, err = db.Backfill(runs)
	if err != nil {
		t.Fatalf("Failed to backfill again: %v", err)
	}
	if imported != 0 {
		t.Errorf("Second backfill should import nothing, got %d", imported)
	}

	runs = append(runs, sampleRun("2026-08-03 10:00:00", "fed9876",
		measurement("small_files", bench.OpInitial, "dsync", 85)))

	imported, err = db.Backfill(runs)
	if err != nil {
		t.Fatalf("Failed to backfill new run: %v", err)
	}
	if imported != 1 {
		t.Errorf("Expected only the new run imported, got %d", imported)
	}

	all, err := db.ListRuns(0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 archived runs, got %d", len(all))
	}
}
