// Package archive mirrors the JSONL benchmark history into SQLite for
// ad-hoc querying. The JSONL log stays the source of truth; every row here
// is derived from it and can be rebuilt at any time with Backfill.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dsync-tools/syncbench/pkg/bench"
)

// DB wraps the SQLite archive connection
type DB struct {
	conn *sql.DB
}

// Open opens or creates the archive database and initializes the schema
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	// Enable WAL mode for better concurrency
	// WAL allows multiple readers while one writer is active
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set busy timeout to 5 seconds
	// If database is locked, retry for up to 5 seconds before failing
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the archive connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// RecordRun archives one benchmark run with all its measurements.
// Measurements are stored rounded, matching their JSONL representation.
func (db *DB) RecordRun(run bench.Run) (int64, error) {
	run = run.Rounded()

	versions, err := json.Marshal(run.Versions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal versions: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO runs (ts, transport, host, os, os_version, arch, cores, cpu, commit_hash, branch, dirty, versions, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Timestamp, run.Transport, run.System.Host, run.System.OS, run.System.OSVersion,
		run.System.Arch, run.System.Cores, run.System.CPU,
		run.Git.Commit, run.Git.Branch, run.Git.Dirty,
		string(versions), run.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	for _, m := range run.Results {
		_, err := tx.Exec(`
			INSERT INTO measurements (run_id, scenario, op, tool, duration_ms, file_count, total_bytes, throughput_mbps, files_per_sec, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, m.Scenario, m.Op, m.Tool, m.DurationMs, m.Files, m.Bytes,
			m.ThroughputMBps, m.FilesPerSec, m.Err,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert measurement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// ListRuns lists archived runs, most recent first (limit 0 = all)
func (db *DB) ListRuns(limit int) ([]*RunRow, error) {
	query := `SELECT id, ts, transport, host, os, os_version, arch, cores, cpu, commit_hash, branch, dirty, versions, notes
		FROM runs ORDER BY ts DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRow
	for rows.Next() {
		var row RunRow
		var versions string

		err := rows.Scan(
			&row.ID, &row.Timestamp, &row.Transport, &row.Host,
			&row.OS, &row.OSVersion, &row.Arch, &row.Cores, &row.CPU,
			&row.Commit, &row.Branch, &row.Dirty, &versions, &row.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if versions != "" {
			if err := json.Unmarshal([]byte(versions), &row.Versions); err != nil {
				return nil, fmt.Errorf("failed to decode versions for run %d: %w", row.ID, err)
			}
		}

		runs = append(runs, &row)
	}

	return runs, rows.Err()
}

// GetRun returns one archived run by ID
func (db *DB) GetRun(id int64) (*RunRow, error) {
	var row RunRow
	var versions string

	err := db.conn.QueryRow(`
		SELECT id, ts, transport, host, os, os_version, arch, cores, cpu, commit_hash, branch, dirty, versions, notes
		FROM runs WHERE id = ?`, id,
	).Scan(
		&row.ID, &row.Timestamp, &row.Transport, &row.Host,
		&row.OS, &row.OSVersion, &row.Arch, &row.Cores, &row.CPU,
		&row.Commit, &row.Branch, &row.Dirty, &versions, &row.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}

	if versions != "" {
		if err := json.Unmarshal([]byte(versions), &row.Versions); err != nil {
			return nil, fmt.Errorf("failed to decode versions for run %d: %w", row.ID, err)
		}
	}

	return &row, nil
}

// ResultsForRun returns the measurements archived for one run, in insertion order
func (db *DB) ResultsForRun(runID int64) ([]bench.Measurement, error) {
	rows, err := db.conn.Query(`
		SELECT scenario, op, tool, duration_ms, file_count, total_bytes, throughput_mbps, files_per_sec, error
		FROM measurements WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var results []bench.Measurement
	for rows.Next() {
		var m bench.Measurement

		err := rows.Scan(
			&m.Scenario, &m.Op, &m.Tool, &m.DurationMs, &m.Files, &m.Bytes,
			&m.ThroughputMBps, &m.FilesPerSec, &m.Err,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}

		results = append(results, m)
	}

	return results, rows.Err()
}

// BestDurations returns the fastest non-error measurement per
// (scenario, op, tool) cell across the whole archive. Empty scenario or op
// matches everything. SQLite resolves the bare r.ts and r.commit_hash
// columns from the row that wins MIN().
func (db *DB) BestDurations(scenario, op string) ([]*BestDuration, error) {
	rows, err := db.conn.Query(`
		SELECT m.scenario, m.op, m.tool, MIN(m.duration_ms), r.ts, r.commit_hash
		FROM measurements m
		JOIN runs r ON r.id = m.run_id
		WHERE m.error = '' AND m.duration_ms > 0
		  AND (? = '' OR m.scenario = ?)
		  AND (? = '' OR m.op = ?)
		GROUP BY m.scenario, m.op, m.tool
		ORDER BY m.scenario, m.op, m.tool`,
		scenario, scenario, op, op,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query best durations: %w", err)
	}
	defer rows.Close()

	var best []*BestDuration
	for rows.Next() {
		var b BestDuration

		err := rows.Scan(&b.Scenario, &b.Op, &b.Tool, &b.DurationMs, &b.Timestamp, &b.Commit)
		if err != nil {
			return nil, fmt.Errorf("failed to scan best duration: %w", err)
		}

		best = append(best, &b)
	}

	return best, rows.Err()
}

// hasRun reports whether a run with this (ts, transport) key is archived
func (db *DB) hasRun(ts, transport string) (bool, error) {
	var exists bool
	err := db.conn.QueryRow(
		`SELECT COUNT(*) > 0 FROM runs WHERE ts = ? AND transport = ?`,
		ts, transport,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for run: %w", err)
	}
	return exists, nil
}

// Backfill imports history runs that are not yet archived. Safe to repeat:
// runs already present, keyed by (ts, transport), are skipped. Returns the
// number of runs imported.
func (db *DB) Backfill(runs []bench.Run) (int, error) {
	imported := 0
	for _, run := range runs {
		present, err := db.hasRun(run.Timestamp, run.Transport)
		if err != nil {
			return imported, err
		}
		if present {
			continue
		}

		if _, err := db.RecordRun(run); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
