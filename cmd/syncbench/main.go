package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/dsync-tools/syncbench/pkg/archive"
	"github.com/dsync-tools/syncbench/pkg/bench"
	"github.com/dsync-tools/syncbench/pkg/config"
	"github.com/dsync-tools/syncbench/pkg/gitinfo"
	"github.com/dsync-tools/syncbench/pkg/history"
	"github.com/dsync-tools/syncbench/pkg/logx"
	"github.com/dsync-tools/syncbench/pkg/remote"
	"github.com/dsync-tools/syncbench/pkg/report"
	"github.com/dsync-tools/syncbench/pkg/scenario"
	"github.com/dsync-tools/syncbench/pkg/sysinfo"
	"github.com/dsync-tools/syncbench/pkg/tools"
)

var version = "dev" // Set by -ldflags during build

func main() {
	var (
		showVersion  bool
		showHelp     bool
		debug        bool
		quick        bool
		scenarioName string
		scenarioFile string
		sshTarget    string
		iterations   int
		notes        string
		showHistory  bool
		limit        int
		compareRuns  bool
		historyFile  string
		noArchive    bool
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	pflag.BoolVar(&quick, "quick", false, "Run the reduced quick scenario set")
	pflag.StringVar(&scenarioName, "scenario", "", "Run a single scenario by name")
	pflag.StringVar(&scenarioFile, "scenarios", "", "Load scenarios from a YAML file")
	pflag.StringVar(&sshTarget, "ssh", "", "Benchmark over SSH to user@host")
	pflag.IntVar(&iterations, "iterations", 0, "Trials per measurement (default from config)")
	pflag.StringVar(&notes, "notes", "", "Notes to record with this run")
	pflag.BoolVar(&showHistory, "history", false, "Show recent benchmark history and exit")
	pflag.IntVar(&limit, "limit", 10, "Number of history runs to show")
	pflag.BoolVar(&compareRuns, "compare", false, "Compare the two most recent runs and exit")
	pflag.StringVar(&historyFile, "history-file", "", "Path to the history file (default from config)")
	pflag.BoolVar(&noArchive, "no-archive", false, "Skip mirroring results into the SQLite archive")

	pflag.Parse()

	if showVersion {
		fmt.Printf("syncbench version %s\n", version)
		os.Exit(0)
	}
	if showHelp {
		printHelp()
		os.Exit(0)
	}

	log := logx.New(debug)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if iterations < 1 {
		iterations = cfg.Iterations
	}
	if historyFile == "" {
		historyFile = cfg.HistoryFile()
	}

	store := history.NewStore(historyFile, log)
	candidate := tools.Candidate(cfg.ToolCommand)
	baseline := tools.Baseline(cfg.BaselineCommand)

	if showHistory {
		runs, err := store.Load(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
			os.Exit(1)
		}
		report.History(os.Stdout, runs, candidate.Name, baseline.Name)
		os.Exit(0)
	}

	if compareRuns {
		earlier, later, ok, err := store.LastTwo()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: need at least two runs in history to compare")
			os.Exit(1)
		}
		report.Comparison(os.Stdout, earlier, later)
		os.Exit(0)
	}

	scenarios, err := selectScenarios(quick, scenarioFile, scenarioName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// The sync tool must exist before any workload is generated
	if _, err := candidate.Resolve(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: sync tool '%s' not found in PATH\n", candidate.Command)
		os.Exit(1)
	}

	toolSet := []tools.Tool{candidate}
	haveBaseline := true
	if _, err := baseline.Resolve(); err != nil {
		haveBaseline = false
		log.Warn().Str("command", baseline.Command).Msg("baseline tool not found; running candidate only")
	} else {
		toolSet = append(toolSet, baseline)
	}

	var target *remote.Target
	transport := bench.TransportLocal
	if sshTarget != "" {
		target, err = remote.Parse(sshTarget)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := target.Check(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		transport = bench.TransportSSH
		if target.IsLoopback() {
			transport = bench.TransportSSHSimulated
		}
	}

	versions := map[string]string{candidate.Name: candidate.Version()}
	if haveBaseline {
		versions[baseline.Name] = baseline.Version()
	}

	sys := sysinfo.Collect()
	git := gitinfo.Collect(".")

	fmt.Printf("syncbench %s | %s transport | %d iterations\n", version, transport, iterations)
	fmt.Printf("%s %s", candidate.Name, versions[candidate.Name])
	if haveBaseline {
		fmt.Printf(" vs %s %s", baseline.Name, versions[baseline.Name])
	}
	fmt.Printf("\nHost: %s | Commit: %s\n\n", sys.Host, git.Commit)

	orch := &bench.Orchestrator{
		Tools:      toolSet,
		Iterations: iterations,
		Remote:     target,
		RemoteBase: fmt.Sprintf("%s_%d", cfg.RemoteBase, os.Getpid()),
		Log:        log,
	}

	run := bench.Run{
		Timestamp: bench.Now(),
		System:    sys,
		Git:       git,
		Versions:  versions,
		Transport: transport,
		Notes:     notes,
	}

	for _, sc := range scenarios {
		results, err := orch.RunScenario(sc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error running scenario %s: %v\n", sc.Name, err)
			os.Exit(1)
		}
		run.Results = append(run.Results, results...)
	}

	report.Results(os.Stdout, run.Results)
	if haveBaseline {
		fmt.Println()
		report.Summary(os.Stdout, run.Results, candidate.Name, baseline.Name)
	}

	if err := store.Append(run); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving history: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nResults saved to %s\n", historyFile)

	if !noArchive {
		mirrorToArchive(cfg.ArchiveFile(), run, log)
	}
}

// selectScenarios resolves the flag combination into the scenario list for
// this run. A scenario file replaces the builtin set; --scenario narrows
// whichever set is in effect to one entry.
func selectScenarios(quick bool, file, name string) ([]scenario.Scenario, error) {
	var scenarios []scenario.Scenario
	var err error

	switch {
	case file != "":
		scenarios, err = scenario.LoadFile(file)
		if err != nil {
			return nil, err
		}
	case quick:
		scenarios = scenario.Quick()
	default:
		scenarios = scenario.Builtin()
	}

	if name == "" {
		return scenarios, nil
	}
	for _, sc := range scenarios {
		if sc.Name == name {
			return []scenario.Scenario{sc}, nil
		}
	}
	return nil, fmt.Errorf("unknown scenario '%s' (available: %s)",
		name, strings.Join(scenarioNames(scenarios), ", "))
}

func scenarioNames(scenarios []scenario.Scenario) []string {
	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	return names
}

// mirrorToArchive copies the run into the SQLite archive. The archive is a
// derived convenience; a mirror failure must never fail a benchmark whose
// history is already saved.
func mirrorToArchive(path string, run bench.Run, log zerolog.Logger) {
	db, err := archive.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("archive unavailable; skipping mirror")
		return
	}
	defer db.Close()

	if _, err := db.RecordRun(run); err != nil {
		log.Warn().Err(err).Msg("failed to mirror run into archive")
	}
}

func printHelp() {
	fmt.Printf("syncbench - Benchmark a sync tool against an rsync baseline\n\n")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Generates synthetic file trees and measures initial, incremental, and\n")
	fmt.Printf("  delta sync times for the configured sync tool and an rsync baseline.\n")
	fmt.Printf("  Every run appends to a JSONL history used for regression comparison.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  syncbench [OPTIONS]\n\n")

	fmt.Printf("OPTIONS:\n")
	fmt.Printf("  --quick              Run the reduced quick scenario set\n")
	fmt.Printf("  --scenario NAME      Run a single scenario by name\n")
	fmt.Printf("  --scenarios FILE     Load scenarios from a YAML file\n")
	fmt.Printf("  --ssh USER@HOST      Benchmark over SSH (loopback hosts record as ssh-simulated)\n")
	fmt.Printf("  --iterations N       Trials per measurement (default %d)\n", config.DefaultIterations)
	fmt.Printf("  --notes TEXT         Notes to record with this run\n")
	fmt.Printf("  --history            Show recent benchmark history and exit\n")
	fmt.Printf("  --limit N            Number of history runs to show (default 10)\n")
	fmt.Printf("  --compare            Compare the two most recent runs and exit\n")
	fmt.Printf("  --history-file PATH  Path to the history file\n")
	fmt.Printf("  --no-archive         Skip the SQLite archive mirror\n")
	fmt.Printf("  -d, --debug          Enable debug output\n")
	fmt.Printf("  -V, --version        Show version\n")
	fmt.Printf("  -h, --help           Show this help message\n\n")

	fmt.Printf("SCENARIOS:\n")
	fmt.Printf("  %s\n\n", strings.Join(scenario.Names(), ", "))

	fmt.Printf("CONFIGURATION:\n")
	fmt.Printf("  Reads ~/.syncbench.yaml (override with SYNCBENCH_CONFIG). The sync tool,\n")
	fmt.Printf("  baseline, history path, archive path, and remote base directory can\n")
	fmt.Printf("  also be set via SYNCBENCH_TOOL, SYNCBENCH_BASELINE, SYNCBENCH_HISTORY,\n")
	fmt.Printf("  SYNCBENCH_ARCHIVE, and SYNCBENCH_REMOTE_BASE.\n\n")

	fmt.Printf("EXAMPLES:\n")
	fmt.Printf("  # Full benchmark, local transport\n")
	fmt.Printf("  syncbench\n\n")
	fmt.Printf("  # Quick smoke benchmark with a note\n")
	fmt.Printf("  syncbench --quick --notes \"after delta rewrite\"\n\n")
	fmt.Printf("  # One scenario over SSH\n")
	fmt.Printf("  syncbench --scenario small_files --ssh user@nas\n\n")
	fmt.Printf("  # Inspect history, then compare the last two runs\n")
	fmt.Printf("  syncbench --history --limit 5\n")
	fmt.Printf("  syncbench --compare\n")
}
