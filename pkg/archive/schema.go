package archive

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    ts TEXT NOT NULL,
    transport TEXT NOT NULL,
    host TEXT NOT NULL,
    os TEXT NOT NULL,
    os_version TEXT,
    arch TEXT NOT NULL,
    cores INTEGER NOT NULL,
    cpu TEXT,
    commit_hash TEXT NOT NULL,
    branch TEXT NOT NULL,
    dirty INTEGER NOT NULL DEFAULT 0,
    versions TEXT,
    notes TEXT,
    UNIQUE (ts, transport)
);

CREATE TABLE IF NOT EXISTS measurements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    scenario TEXT NOT NULL,
    op TEXT NOT NULL,
    tool TEXT NOT NULL,
    duration_ms REAL NOT NULL,
    file_count INTEGER NOT NULL,
    total_bytes INTEGER NOT NULL,
    throughput_mbps REAL NOT NULL,
    files_per_sec REAL NOT NULL,
    error TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_measurements_run ON measurements(run_id);
CREATE INDEX IF NOT EXISTS idx_measurements_cell ON measurements(scenario, op, tool);
CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(ts);
`
