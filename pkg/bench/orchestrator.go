package bench

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dsync-tools/syncbench/pkg/remote"
	"github.com/dsync-tools/syncbench/pkg/scenario"
	"github.com/dsync-tools/syncbench/pkg/tools"
	"github.com/dsync-tools/syncbench/pkg/trial"
	"github.com/dsync-tools/syncbench/pkg/workload"
)

// deltaMutatePercent is the share of files modified before the delta phase.
const deltaMutatePercent = 10

// Orchestrator drives one or more sync tools through the benchmark phases.
// Execution is strictly sequential: one tool, one iteration, one subprocess
// at a time, so measurements never contend with each other.
type Orchestrator struct {
	Tools      []tools.Tool   // candidate first, then baseline if present
	Iterations int            // trials per (tool, phase); median is kept
	Remote     *remote.Target // nil for local transport
	RemoteBase string         // remote scratch directory, used when Remote is set
	Log        zerolog.Logger
}

// RunScenario generates the scenario's tree in a scratch directory and runs
// every phase for every tool against it, returning the measurements in
// phase-major order. All tools sync the identical tree in each phase: every
// tool finishes a phase before the next phase (and the mutation ahead of
// delta) begins.
//
// The scratch directory is removed on every exit path. Remote scratch
// removal is best effort; failures are logged and never abort the scenario.
func (o *Orchestrator) RunScenario(sc scenario.Scenario) ([]Measurement, error) {
	if len(o.Tools) == 0 {
		return nil, fmt.Errorf("no tools to benchmark")
	}

	tmpDir, err := os.MkdirTemp("", "syncbench")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			o.Log.Warn().Err(err).Str("dir", tmpDir).Msg("failed to remove scratch directory")
		}
	}()

	run := &scenarioRun{
		o:      o,
		name:   sc.Name,
		tmpDir: tmpDir,
		source: filepath.Join(tmpDir, "source"),
		iters:  max(o.Iterations, 1),
	}

	if err := os.Mkdir(run.source, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	files, totalBytes, err := workload.Generate(run.source, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to generate workload: %w", err)
	}
	o.Log.Info().
		Str("scenario", sc.Name).
		Int("files", files).
		Int64("bytes", totalBytes).
		Msg("generated workload")

	if o.Remote != nil {
		if err := o.Remote.RemoveDir(o.RemoteBase); err != nil {
			o.Log.Warn().Err(err).Msg("failed to clear remote scratch")
		}
		if err := o.Remote.MakeDir(o.RemoteBase); err != nil {
			return nil, fmt.Errorf("failed to create remote scratch %s: %w", o.RemoteBase, err)
		}
		defer func() {
			if err := o.Remote.RemoveDir(o.RemoteBase); err != nil {
				o.Log.Warn().Err(err).Str("dir", o.RemoteBase).Msg("failed to remove remote scratch")
			}
		}()
	}

	var results []Measurement

	o.Log.Info().Str("scenario", sc.Name).Msg("testing initial sync")
	for _, tool := range o.Tools {
		results = append(results, run.initial(tool, files, totalBytes))
	}

	o.Log.Info().Str("scenario", sc.Name).Msg("testing incremental sync")
	for _, tool := range o.Tools {
		if m, ok := run.steady(tool, OpIncremental, files, 0); ok {
			results = append(results, m)
		}
	}

	modified, err := workload.Mutate(run.source, deltaMutatePercent)
	if err != nil {
		return nil, fmt.Errorf("failed to mutate workload: %w", err)
	}
	modifiedBytes := int64(modified) * int64(sc.SizeKB) * 1024
	o.Log.Info().
		Str("scenario", sc.Name).
		Int("modified", modified).
		Msg("testing delta sync")
	for _, tool := range o.Tools {
		if m, ok := run.steady(tool, OpDelta, modified, modifiedBytes); ok {
			results = append(results, m)
		}
	}

	return results, nil
}

// scenarioRun carries the per-scenario paths so the phase methods stay
// readable.
type scenarioRun struct {
	o      *Orchestrator
	name   string
	tmpDir string
	source string
	iters  int
}

// initial measures the first full sync into an empty destination. The
// destination is cleared before every iteration so each trial copies the
// whole tree. A failure on the very first iteration produces an error
// measurement and abandons the phase for this tool; later failures are
// dropped and the median covers the iterations that succeeded.
func (r *scenarioRun) initial(tool tools.Tool, files int, bytes int64) Measurement {
	var durations []float64

	for i := 0; i < r.iters; i++ {
		r.clearDest(tool)

		res := r.sync(tool)
		r.logTrial(tool, OpInitial, i, res)

		if res.Success() {
			durations = append(durations, res.DurationMs)
		} else if i == 0 {
			return Measurement{
				Scenario:   r.name,
				Tool:       tool.Name,
				Op:         OpInitial,
				DurationMs: res.DurationMs,
				Files:      files,
				Bytes:      bytes,
				Err:        res.ErrText(),
			}.Derive()
		}
	}

	return Measurement{
		Scenario:   r.name,
		Tool:       tool.Name,
		Op:         OpInitial,
		DurationMs: Median(durations),
		Files:      files,
		Bytes:      bytes,
	}.Derive()
}

// steady measures re-syncs into an already-populated destination, used for
// both the incremental and delta phases. Failed iterations are excluded;
// with no successful iteration at all there is nothing truthful to record
// and no measurement is returned.
func (r *scenarioRun) steady(tool tools.Tool, op string, files int, bytes int64) (Measurement, bool) {
	var durations []float64

	for i := 0; i < r.iters; i++ {
		res := r.sync(tool)
		r.logTrial(tool, op, i, res)

		if res.Success() {
			durations = append(durations, res.DurationMs)
		}
	}

	if len(durations) == 0 {
		r.o.Log.Warn().
			Str("scenario", r.name).
			Str("tool", tool.Name).
			Str("op", op).
			Msg("no successful iterations; measurement dropped")
		return Measurement{}, false
	}

	return Measurement{
		Scenario:   r.name,
		Tool:       tool.Name,
		Op:         op,
		DurationMs: Median(durations),
		Files:      files,
		Bytes:      bytes,
	}.Derive(), true
}

func (r *scenarioRun) sync(tool tools.Tool) *trial.Result {
	return trial.Run(tool.Command, tool.Invocation(r.source, r.dest(tool)), nil)
}

func (r *scenarioRun) dest(tool tools.Tool) string {
	if r.o.Remote != nil {
		return r.o.Remote.Qualify(r.remotePath(tool))
	}
	return filepath.Join(r.tmpDir, "dest_"+tool.Name)
}

func (r *scenarioRun) remotePath(tool tools.Tool) string {
	return r.o.RemoteBase + "/" + tool.Name
}

// clearDest empties a tool's destination ahead of an initial-sync trial.
// A failed clear is logged and the trial proceeds; the sync itself will
// surface any real damage.
func (r *scenarioRun) clearDest(tool tools.Tool) {
	var err error
	if r.o.Remote != nil {
		err = r.o.Remote.RemoveDir(r.remotePath(tool))
	} else {
		err = os.RemoveAll(r.dest(tool))
	}
	if err != nil {
		r.o.Log.Warn().Err(err).Str("tool", tool.Name).Msg("failed to clear destination")
	}
}

func (r *scenarioRun) logTrial(tool tools.Tool, op string, iteration int, res *trial.Result) {
	r.o.Log.Debug().
		Str("scenario", r.name).
		Str("tool", tool.Name).
		Str("op", op).
		Int("iteration", iteration).
		Float64("ms", res.DurationMs).
		Bool("ok", res.Success()).
		Msg("trial")
}
