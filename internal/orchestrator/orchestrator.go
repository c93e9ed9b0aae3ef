// Package orchestrator runs the analysis phase: for each materialized
// mutant directory, it runs a build+test command inside that directory
// (already an isolated copy of the project) under a timeout, and
// classifies the outcome.
package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/materializer"
	"mutacore.dev/mutacore/internal/model"
	"mutacore.dev/mutacore/pkg"
)

// Options configure a single analysis run.
type Options struct {
	// Jobs bounds how many mutants are analyzed concurrently. Zero means
	// runtime.NumCPU().
	Jobs int
	// Timeout is the per-mutant wall-clock budget.
	Timeout time.Duration
	// Command, if set, overrides DefaultCommand for every mutant.
	Command string
	// SurvivalThreshold stops the run early once the observed survival
	// rate exceeds it (spec default 0.75).
	SurvivalThreshold float64
	// TimeoutCountsAsKilled controls whether a timed-out mutant counts
	// toward the killed bucket. The analyze command sets it from
	// analyze.timeout_counts_as_killed, default true: a hung process after
	// a mutation is itself a signal the suite caught something.
	TimeoutCountsAsKilled bool
}

// Progress is reported to an optional callback after every mutant
// finishes, for a live progress view to consume.
type Progress struct {
	Completed int
	Total     int
	Killed    int
	Survived  int
	Outcome   model.MutantOutcome
}

// Orchestrator runs the bounded-concurrency analysis pass over a set of
// materialized mutant directories.
type Orchestrator struct {
	fs         adapter.FilesystemAdapter
	proc       adapter.ProcessRunnerAdapter
	opts       Options
	onProgress func(Progress)
}

// New constructs an Orchestrator.
func New(fs adapter.FilesystemAdapter, proc adapter.ProcessRunnerAdapter, opts Options) *Orchestrator {
	if opts.Timeout <= 0 {
		opts.Timeout = 1000 * time.Millisecond
	}

	if opts.SurvivalThreshold <= 0 {
		opts.SurvivalThreshold = 0.75
	}

	return &Orchestrator{fs: fs, proc: proc, opts: opts}
}

// OnProgress registers a callback invoked after each mutant completes.
// Not safe to call concurrently with Run.
func (o *Orchestrator) OnProgress(fn func(Progress)) {
	o.onProgress = fn
}

// Result is the outcome of a full analysis run over one mutant folder.
type Result struct {
	RunID        int
	Total        int
	Killed       int
	Survived     int
	BuildFailed  int
	TimedOut     int
	SurvivalRate float64
	StoppedEarly bool
	Outcomes     pkg.FileSpill[model.MutantOutcome]
}

// Run analyzes every mutant directory found under folder (directories
// named muts-*), bounded by Options.Jobs concurrent workers, stopping
// early if the running survival rate exceeds SurvivalThreshold.
func (o *Orchestrator) Run(ctx context.Context, folder model.Path, runID int) (Result, error) {
	dirs, err := o.mutantDirs(folder)
	if err != nil {
		return Result{}, err
	}

	if len(dirs) == 0 {
		return Result{}, model.NewError(model.KindInvalidInput, "no mutant directories found under "+string(folder), nil)
	}

	outcomes, err := pkg.NewFileSpill[model.MutantOutcome]()
	if err != nil {
		return Result{}, model.NewError(model.KindStorage, "creating outcomes spill", err)
	}

	jobs := o.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)

	var (
		mu           sync.Mutex
		killed       int
		survived     int
		buildFailed  int
		timedOut     int
		stoppedEarly bool
		completed    int
	)

	total := len(dirs)

	for i, dir := range dirs {
		i, dir := i, dir

		mu.Lock()
		exceeded := total > 0 && survived+timedOut > 0 && float64(survived+timedOut)/float64(total) > o.opts.SurvivalThreshold
		mu.Unlock()

		if exceeded {
			stoppedEarly = true

			break
		}

		group.Go(func() error {
			outcome, err := o.analyzeOne(groupCtx, dir, runID, i+1)
			if err != nil {
				return err
			}

			if err := outcomes.Append(outcome); err != nil {
				return model.NewError(model.KindStorage, "appending outcome", err)
			}

			mu.Lock()
			switch outcome.Status {
			case model.Killed:
				killed++
			case model.Survived:
				survived++
			case model.BuildFailed:
				buildFailed++
			case model.TimedOut:
				if o.opts.TimeoutCountsAsKilled {
					killed++
				} else {
					timedOut++
				}
			}

			completed++
			progress := Progress{Completed: completed, Total: total, Killed: killed, Survived: survived, Outcome: outcome}
			mu.Unlock()

			if o.onProgress != nil {
				o.onProgress(progress)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	denominator := killed + survived + timedOut
	rate := 0.0

	if denominator > 0 {
		rate = float64(survived+timedOut) / float64(denominator)
		if o.opts.TimeoutCountsAsKilled {
			rate = float64(survived) / float64(denominator)
		}
	}

	return Result{
		RunID:        runID,
		Total:        total,
		Killed:       killed,
		Survived:     survived,
		BuildFailed:  buildFailed,
		TimedOut:     timedOut,
		SurvivalRate: rate,
		StoppedEarly: stoppedEarly,
		Outcomes:     outcomes,
	}, nil
}

// mutantDirs finds immediate subdirectories of folder whose name starts
// with "muts", mirroring find_mutation_folders.
func (o *Orchestrator) mutantDirs(folder model.Path) ([]model.Path, error) {
	entries, err := os.ReadDir(string(folder))
	if err != nil {
		return nil, model.NewError(model.KindIo, "reading mutant folder", err)
	}

	var dirs []model.Path

	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "muts") {
			dirs = append(dirs, o.fs.JoinPath(string(folder), e.Name()))
		}
	}

	return dirs, nil
}

// analyzeOne runs the build+test command inside a single mutant
// directory and classifies the result.
func (o *Orchestrator) analyzeOne(ctx context.Context, dir model.Path, runID, mutantOrdinal int) (model.MutantOutcome, error) {
	metaPath := o.fs.JoinPath(string(dir), "mutation.json")

	metaBytes, err := o.fs.ReadFile(metaPath)
	if err != nil {
		return model.MutantOutcome{}, model.NewError(model.KindIo, "reading mutant metadata", err)
	}

	var meta materializer.Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return model.MutantOutcome{}, model.NewError(model.KindParse, "parsing mutant metadata", err)
	}

	command := o.opts.Command
	if command == "" {
		command = DefaultCommand(meta.File, jobsHint(o.opts.Jobs))
	}

	slog.Debug("analyzing mutant", "dir", dir, "mutant_id", meta.MutantID, "command", command)

	buildCmd, testCmd := splitBuildAndTest(command)

	start := time.Now()

	if buildCmd != "" {
		output, _, timedOut, err := o.proc.RunCommand(ctx, string(dir), buildCmd, o.opts.Timeout)
		if err != nil {
			status := model.BuildFailed
			if timedOut {
				status = model.TimedOut
			}

			return model.MutantOutcome{
				RunID:      runID,
				MutantID:   meta.MutantID,
				Status:     status,
				ElapsedMS:  time.Since(start).Milliseconds(),
				LogExcerpt: excerpt(output),
			}, nil
		}
	}

	remaining := o.opts.Timeout - time.Since(start)
	if remaining <= 0 {
		remaining = time.Millisecond
	}

	output, _, timedOut, testErr := o.proc.RunCommand(ctx, string(dir), testCmd, remaining)

	return model.MutantOutcome{
		RunID:      runID,
		MutantID:   meta.MutantID,
		Status:     classify(testErr, timedOut),
		ElapsedMS:  time.Since(start).Milliseconds(),
		LogExcerpt: excerpt(output),
	}, nil
}

func jobsHint(jobs int) int {
	if jobs <= 0 {
		return 0
	}

	return jobs
}

// splitBuildAndTest separates a "build && test..." command into its
// build step and the rest, so a build failure can be classified
// separately from a test failure. A command with no "&&" has no
// separate build step (e.g. a functional test script run directly).
func splitBuildAndTest(command string) (build, test string) {
	idx := strings.Index(command, "&&")
	if idx < 0 {
		return "", command
	}

	return strings.TrimSpace(command[:idx]), strings.TrimSpace(command[idx+2:])
}

// classify maps the test step's result to an outcome status. A non-nil
// error with no timeout means the test command failed, which for
// mutation testing purposes means the suite caught the mutation: it is
// "killed". A successful exit means nothing noticed; the mutant
// "survived".
func classify(err error, timedOut bool) model.OutcomeStatus {
	if timedOut {
		return model.TimedOut
	}

	if err != nil {
		return model.Killed
	}

	return model.Survived
}

func excerpt(output string) string {
	const maxLen = 4000

	if len(output) <= maxLen {
		return output
	}

	return output[len(output)-maxLen:]
}
