package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/dsync-tools/syncbench/pkg/config"
	"github.com/dsync-tools/syncbench/pkg/logx"
	"github.com/dsync-tools/syncbench/pkg/remote"
	"github.com/dsync-tools/syncbench/pkg/scenario"
	"github.com/dsync-tools/syncbench/pkg/suite"
	"github.com/dsync-tools/syncbench/pkg/tools"
	"github.com/dsync-tools/syncbench/pkg/verify"
	"github.com/dsync-tools/syncbench/pkg/workload"
)

var version = "dev" // Set by -ldflags during build

// smokeScenario is the small tree every functional check syncs. Big enough
// to cover nested directories, small enough to keep the suite fast.
var smokeScenario = scenario.Scenario{
	Name:   "suite_smoke",
	Files:  30,
	SizeKB: 1,
	Dirs:   5,
	Depth:  2,
}

func main() {
	var (
		showVersion bool
		showHelp    bool
		debug       bool
		verbose     bool
		localOnly   bool
		sshTarget   string
		timeoutSecs int
	)

	pflag.BoolVarP(&showVersion, "version", "V", false, "Show version and exit")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show this help message")
	pflag.BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Log each check as it passes")
	pflag.BoolVar(&localOnly, "local-only", false, "Skip remote checks even when --ssh is given")
	pflag.StringVar(&sshTarget, "ssh", "", "Also run remote checks against user@host")
	pflag.IntVar(&timeoutSecs, "timeout", 60, "Per-command timeout in seconds")

	pflag.Parse()

	// Handle version
	if showVersion {
		fmt.Printf("syncbench-suite version %s\n", version)
		os.Exit(0)
	}

	// Handle help
	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if timeoutSecs < 1 {
		fmt.Fprintf(os.Stderr, "Error: --timeout must be at least 1 second\n")
		os.Exit(1)
	}

	log := logx.New(debug)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	candidate := tools.Candidate(cfg.ToolCommand)
	baseline := tools.Baseline(cfg.BaselineCommand)

	// Resolve the remote target before running anything
	var target *remote.Target
	if sshTarget != "" && !localOnly {
		target, err = remote.Parse(sshTarget)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("syncbench-suite %s | checking %s", version, cfg.ToolCommand)
	if target != nil {
		fmt.Printf(" | remote %s", target.Addr())
	}
	fmt.Printf("\n")

	runner := &suite.Runner{
		Verbose: verbose,
		Timeout: time.Duration(timeoutSecs) * time.Second,
		Log:     log,
	}

	// Without the tool there is nothing left to check
	ok := runner.RunFunc(candidate.Name+" resolves in PATH", func() error {
		_, err := candidate.Resolve()
		return err
	})
	if !ok {
		runner.Summary(os.Stdout)
		os.Exit(1)
	}

	runner.Run(candidate.Name+" accepts --version", candidate.Command, "--version")
	runner.Run(candidate.Name+" accepts --help", candidate.Command, "--help")
	runner.RunFunc(baseline.Name+" resolves in PATH", func() error {
		_, err := baseline.Resolve()
		return err
	})

	workDir, err := os.MkdirTemp("", "syncbench_suite")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating work directory: %v\n", err)
		os.Exit(1)
	}

	srcDir := filepath.Join(workDir, "source")
	destDir := filepath.Join(workDir, "dest")
	baselineDir := filepath.Join(workDir, "dest_baseline")

	runner.RunFunc("generate smoke workload", func() error {
		files, totalBytes, err := workload.Generate(srcDir, smokeScenario)
		if err != nil {
			return err
		}
		log.Debug().Int("files", files).Str("size", verify.FormatSize(totalBytes)).
			Msg("workload ready")
		return nil
	})

	// Local roundtrip: an exact tree reproduction, twice, then with changes
	runner.Run("initial sync", candidate.Command, candidate.Invocation(srcDir, destDir)...)
	runner.RunFunc("sync reproduces source tree", func() error {
		return treeMatches(srcDir, destDir)
	})

	runner.Run("repeat sync", candidate.Command, candidate.Invocation(srcDir, destDir)...)
	runner.RunFunc("repeat sync leaves tree intact", func() error {
		return treeMatches(srcDir, destDir)
	})

	runner.RunFunc("mutate source files", func() error {
		_, err := workload.Mutate(srcDir, 20)
		return err
	})
	runner.Run("delta sync", candidate.Command, candidate.Invocation(srcDir, destDir)...)
	runner.RunFunc("delta sync propagates changes", func() error {
		return treeMatches(srcDir, destDir)
	})

	// Baseline parity: rsync's invocation shape against a fresh destination
	runner.Run("baseline sync", baseline.Command, baseline.Invocation(srcDir, baselineDir)...)
	runner.RunFunc("baseline reproduces source tree", func() error {
		return treeMatches(srcDir, baselineDir)
	})

	if target != nil {
		remoteDir := fmt.Sprintf("%s_suite_%d", cfg.RemoteBase, os.Getpid())

		reachable := runner.RunFunc("remote "+target.Addr()+" reachable", target.Check)
		if reachable {
			runner.RunFunc("create remote scratch dir", func() error {
				return target.MakeDir(remoteDir)
			})
			runner.Run("remote sync", candidate.Command,
				candidate.Invocation(srcDir, target.Qualify(remoteDir))...)
			runner.RunRemote("remote tree listing", target, "ls "+remoteDir)
			runner.RunFunc("remove remote scratch dir", func() error {
				return target.RemoveDir(remoteDir)
			})
		}
	}

	allPassed := runner.Summary(os.Stdout)

	os.RemoveAll(workDir)

	if !allPassed {
		os.Exit(1)
	}
}

// treeMatches fails with the difference count and the first mismatch when
// dest is not an exact reproduction of source.
func treeMatches(source, dest string) error {
	diffs, err := verify.DiffDirs(source, dest)
	if err != nil {
		return err
	}
	if len(diffs) > 0 {
		d := diffs[0]
		return fmt.Errorf("%d differences, first: %s %s", len(diffs), d.ChangeType, d.Path)
	}
	return nil
}

func printHelp() {
	fmt.Printf("syncbench-suite - Functional smoke suite for the sync tool\n\n")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Printf("DESCRIPTION:\n")
	fmt.Printf("  Runs a sequence of functional checks against the configured sync\n")
	fmt.Printf("  tool: flag handling, local sync roundtrips verified by checksum,\n")
	fmt.Printf("  change propagation, baseline parity, and optional remote syncs\n")
	fmt.Printf("  over SSH. Every command runs under a hard timeout; a check that\n")
	fmt.Printf("  produces no result in time is reported as TIMEOUT, not a hang.\n\n")
	fmt.Printf("  Exits 0 when every check passes, 1 otherwise.\n\n")

	fmt.Printf("USAGE:\n")
	fmt.Printf("  syncbench-suite [OPTIONS]\n\n")

	fmt.Printf("OPTIONS:\n")
	fmt.Printf("  -h, --help         Show this help message\n")
	fmt.Printf("  -V, --version      Show version\n")
	fmt.Printf("  -d, --debug        Enable debug output\n")
	fmt.Printf("  -v, --verbose      Log each check as it passes\n")
	fmt.Printf("  --local-only       Skip remote checks even when --ssh is given\n")
	fmt.Printf("  --ssh USER@HOST    Also run remote checks against this target\n")
	fmt.Printf("  --timeout SECONDS  Per-command timeout (default 60)\n\n")

	fmt.Printf("CONFIGURATION:\n")
	fmt.Printf("  The tool and baseline commands come from ~/.syncbench.yaml or the\n")
	fmt.Printf("  SYNCBENCH_TOOL and SYNCBENCH_BASELINE environment variables.\n\n")

	fmt.Printf("EXAMPLES:\n")
	fmt.Printf("  # Local checks only\n")
	fmt.Printf("  syncbench-suite --local-only\n\n")

	fmt.Printf("  # Include remote checks, log every pass\n")
	fmt.Printf("  syncbench-suite --ssh user@nas.local --verbose\n\n")

	fmt.Printf("  # Tight timeout for CI\n")
	fmt.Printf("  syncbench-suite --timeout 30\n\n")
}
