package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/dsync-tools/syncbench/pkg/archive"
	"github.com/dsync-tools/syncbench/pkg/config"
	"github.com/dsync-tools/syncbench/pkg/history"
	"github.com/dsync-tools/syncbench/pkg/logx"
	"github.com/dsync-tools/syncbench/pkg/report"
)

var version = "dev" // Set by -ldflags during build

func main() {
	// Define global flags
	var (
		showVersion bool
		showHelp    bool
		debug       bool
		dbPath      string
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	pflag.BoolVarP(&debug, "verbose", "v", false, "Enable verbose output (alias for --debug)")
	pflag.StringVar(&dbPath, "db", "", "Path to SQLite archive (default from config)")

	// Stop parsing at first non-flag argument (the subcommand)
	pflag.CommandLine.SetInterspersed(false)
	pflag.Parse()

	// Handle version
	if showVersion {
		fmt.Printf("syncbench-query version %s\n", version)
		os.Exit(0)
	}

	// Get subcommand
	args := pflag.Args()
	if len(args) == 0 || showHelp {
		printHelp()
		os.Exit(0)
	}

	subcommand := args[0]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Use config archive if not overridden
	if dbPath == "" {
		dbPath = cfg.ArchiveFile()
	}

	// Open archive
	db, err := archive.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// Execute subcommand
	switch subcommand {
	case "runs":
		handleRuns(db, args[1:], debug)
	case "results":
		handleResults(db, args[1:], debug)
	case "best":
		handleBest(db, args[1:], debug)
	case "backfill":
		handleBackfill(db, cfg, args[1:], debug)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand '%s'\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func handleRuns(db *archive.DB, args []string, debug bool) {
	fs := pflag.NewFlagSet("runs", pflag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of runs to display (0 = all)")

	fs.Parse(args)

	runs, err := db.ListRuns(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found in archive")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDate\tTransport\tCommit\tHost\tNotes")
	fmt.Fprintln(w, "--\t----\t---------\t------\t----\t-----")

	for _, run := range runs {
		// A trailing * marks a run from a dirty working tree
		commit := run.Commit
		if run.Dirty {
			commit += "*"
		}

		notes := run.Notes
		if len(notes) > 40 {
			notes = notes[:37] + "..."
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.Timestamp, run.Transport, commit, run.Host, notes)
	}
	w.Flush()

	if debug {
		fmt.Printf("\nTotal runs: %d\n", len(runs))
	}
}

func handleResults(db *archive.DB, args []string, debug bool) {
	fs := pflag.NewFlagSet("results", pflag.ExitOnError)

	fs.Parse(args)

	var run *archive.RunRow

	if fs.NArg() > 0 {
		id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid run ID '%s'\n", fs.Arg(0))
			os.Exit(1)
		}

		run, err = db.GetRun(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: run %d not found\n", id)
			os.Exit(1)
		}
	} else {
		// Default to the most recent run
		runs, err := db.ListRuns(1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Println("No runs found in archive")
			return
		}
		run = runs[0]
	}

	results, err := db.ResultsForRun(run.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting results: %v\n", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Printf("No results found for run %d\n", run.ID)
		return
	}

	fmt.Printf("Run %d | %s | %s transport | commit %s\n",
		run.ID, run.Timestamp, run.Transport, run.Commit)
	report.Results(os.Stdout, results)

	if debug {
		fmt.Printf("\nTotal measurements: %d\n", len(results))
	}
}

func handleBest(db *archive.DB, args []string, debug bool) {
	fs := pflag.NewFlagSet("best", pflag.ExitOnError)
	scenarioName := fs.String("scenario", "", "Only this scenario")
	op := fs.String("op", "", "Only this operation (initial, incremental, delta)")

	fs.Parse(args)

	best, err := db.BestDurations(*scenarioName, *op)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying best durations: %v\n", err)
		os.Exit(1)
	}

	if len(best) == 0 {
		fmt.Println("No measurements found in archive")
		return
	}

	fmt.Printf("Best durations on record:\n\n")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Scenario\tOperation\tTool\tBest (ms)\tDate\tCommit")
	fmt.Fprintln(w, "--------\t---------\t----\t---------\t----\t------")

	for _, b := range best {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\n",
			b.Scenario, b.Op, b.Tool, b.DurationMs, b.Timestamp, b.Commit)
	}
	w.Flush()

	if debug {
		fmt.Printf("\nTotal cells: %d\n", len(best))
	}
}

func handleBackfill(db *archive.DB, cfg *config.Config, args []string, debug bool) {
	fs := pflag.NewFlagSet("backfill", pflag.ExitOnError)
	historyPath := fs.String("history", "", "Path to JSONL history file (default from config)")

	fs.Parse(args)

	path := *historyPath
	if path == "" {
		path = cfg.HistoryFile()
	}

	store := history.NewStore(path, logx.New(debug))

	runs, err := store.LoadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading history: %v\n", err)
		os.Exit(1)
	}

	if len(runs) == 0 {
		fmt.Printf("No runs found in %s\n", path)
		return
	}

	imported, err := db.Backfill(runs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error backfilling archive: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Imported %d of %d runs (%d already archived)\n",
		imported, len(runs), len(runs)-imported)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: syncbench-query [OPTIONS] COMMAND [ARGS...]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  runs         List archived benchmark runs\n")
	fmt.Fprintf(os.Stderr, "  results      Show measurements for a run (latest if no ID given)\n")
	fmt.Fprintf(os.Stderr, "  best         Show the fastest duration on record per cell\n")
	fmt.Fprintf(os.Stderr, "  backfill     Import JSONL history runs missing from the archive\n")
}

func printHelp() {
	fmt.Printf("syncbench-query - Query the syncbench SQLite archive\n\n")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Query archived benchmark runs: list runs, inspect the measurements\n")
	fmt.Printf("  of a single run, and find the fastest duration ever recorded for\n")
	fmt.Printf("  each scenario, operation, and tool.\n\n")
	fmt.Printf("  The JSONL history file is the source of truth; the archive is a\n")
	fmt.Printf("  queryable mirror and can be rebuilt from it with 'backfill'.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  syncbench-query [OPTIONS] COMMAND [ARGS...]\n\n")

	fmt.Printf("COMMANDS:\n")
	fmt.Printf("  runs         List archived benchmark runs\n")
	fmt.Printf("  results      Show measurements for a run (latest if no ID given)\n")
	fmt.Printf("  best         Show the fastest duration on record per cell\n")
	fmt.Printf("  backfill     Import JSONL history runs missing from the archive\n\n")

	fmt.Printf("GLOBAL OPTIONS:\n")
	fmt.Printf("  -h, --help         Show this help message\n")
	fmt.Printf("  -V, --version      Show version\n")
	fmt.Printf("  -d, --debug        Enable debug output\n")
	fmt.Printf("  -v, --verbose      Enable verbose output (alias for --debug)\n")
	fmt.Printf("  --db PATH          Path to SQLite archive\n\n")

	fmt.Printf("EXAMPLES:\n")
	fmt.Printf("  # List the 20 most recent archived runs\n")
	fmt.Printf("  syncbench-query runs\n\n")

	fmt.Printf("  # Show the measurements of the latest run\n")
	fmt.Printf("  syncbench-query results\n\n")

	fmt.Printf("  # Show the measurements of run 5\n")
	fmt.Printf("  syncbench-query results 5\n\n")

	fmt.Printf("  # Fastest delta sync on record for each scenario and tool\n")
	fmt.Printf("  syncbench-query best --op delta\n\n")

	fmt.Printf("  # Rebuild the archive from the JSONL history\n")
	fmt.Printf("  syncbench-query backfill\n\n")

	fmt.Printf("For command-specific help:\n")
	fmt.Printf("  syncbench-query COMMAND --help\n\n")
}
