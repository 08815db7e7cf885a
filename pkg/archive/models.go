package archive

// RunRow is one archived benchmark run, flattened for querying
type RunRow struct {
	ID        int64
	Timestamp string
	Transport string
	Host      string
	OS        string
	OSVersion string
	Arch      string
	Cores     int
	CPU       string
	Commit    string
	Branch    string
	Dirty     bool
	Versions  map[string]string // tool name -> version string
	Notes     string
}

// BestDuration is the fastest non-error measurement ever archived for one
// (scenario, op, tool) cell, with the run that achieved it
type BestDuration struct {
	Scenario   string
	Op         string
	Tool       string
	DurationMs float64
	Timestamp  string
	Commit     string
}
