package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/materializer"
	"mutacore.dev/mutacore/internal/model"
	"mutacore.dev/mutacore/internal/orchestrator"
	"mutacore.dev/mutacore/internal/report"
	"mutacore.dev/mutacore/internal/storage"
)

var (
	analyzeFolder            string
	analyzeCommand           string
	analyzeJobs              int
	analyzeTimeoutSecs       int
	analyzeSurvivalThreshold float64
	analyzeSQLitePath        string
	analyzeUseSQLite         bool
	analyzeRunID             int
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build and test every materialized mutant, reporting the survival rate",
		Long: `analyze runs a build+test command inside every "muts-*" directory found
under --folder (or the current directory), classifies each mutant as
killed, survived, build-failed, or timed out, and exits nonzero when
the observed survival rate exceeds --survival-threshold.`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeFolder, "folder", "f", "", "directory containing muts-* mutant directories (default: current directory)")
	cmd.Flags().StringVarP(&analyzeCommand, "command", "c", "", "build+test command to run inside each mutant directory (default: derived per file)")
	cmd.Flags().IntVarP(&analyzeJobs, jobsFlagName, "j", viper.GetInt(jobsConfigKey), "concurrent mutant workers (0 = auto)")
	cmd.Flags().IntVarP(&analyzeTimeoutSecs, timeoutFlagName, "t", viper.GetInt(timeoutConfigKey), "per-mutant timeout in seconds")
	cmd.Flags().Float64Var(&analyzeSurvivalThreshold, survivalThresholdFlagName, viper.GetFloat64(survivalThresholdConfig), "maximum tolerable survival rate before failing the run")
	cmd.Flags().StringVar(&analyzeSQLitePath, "sqlite", "", "read/write run state from a SQLite database at this path (default mutacore.db if flag given with no value)")
	cmd.Flags().IntVar(&analyzeRunID, "run-id", 0, "run ID to record outcomes against (required with --sqlite)")

	cmd.Flags().Lookup("sqlite").NoOptDefVal = "mutacore.db"

	bindFlagToConfig(cmd.Flags().Lookup(jobsFlagName), jobsConfigKey)
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), timeoutConfigKey)
	bindFlagToConfig(cmd.Flags().Lookup(survivalThresholdFlagName), survivalThresholdConfig)

	return cmd
}

func init() {
	rootCmd.AddCommand(newAnalyzeCmd())
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	configureLogger(logFileFlag, verboseFlag)

	cmd.SilenceUsage = true

	if cmd.Flags().Changed("sqlite") {
		analyzeUseSQLite = true
	}

	folder := analyzeFolder
	if folder == "" {
		folder = "."
	}

	fs := adapter.NewLocalFilesystemAdapter()
	proc := adapter.NewLocalProcessRunnerAdapter()

	store, err := openAnalyzeStorage()
	if err != nil {
		return exitCode(1, err)
	}

	defer func() { _ = store.Close() }()

	threshold := viper.GetFloat64(survivalThresholdConfig)

	opts := orchestrator.Options{
		Jobs:                  viper.GetInt(jobsConfigKey),
		Timeout:               timeoutFromConfig(),
		Command:               analyzeCommand,
		SurvivalThreshold:     threshold,
		TimeoutCountsAsKilled: viper.GetBool(timeoutCountsKilledConfig),
	}

	orch := orchestrator.New(fs, proc, opts)

	view := report.NewProgressView(cmd.OutOrStdout(), countMutantDirs(folder))
	orch.OnProgress(func(p orchestrator.Progress) { view.Update(p) })

	ctx := context.Background()

	result, err := orch.Run(ctx, model.Path(folder), analyzeRunID)
	if err != nil {
		return exitCode(1, err)
	}

	if err := view.Finish(); err != nil {
		return exitCode(1, err)
	}

	fileOf, survivorMeta, err := loadMutantMetadata(fs, model.Path(folder), result)
	if err != nil {
		return exitCode(1, err)
	}

	var outcomes []model.MutantOutcome

	if err := result.Outcomes.Range(func(_ uint64, o model.MutantOutcome) error {
		outcomes = append(outcomes, o)

		if analyzeUseSQLite {
			return store.RecordOutcome(ctx, analyzeRunID, o)
		}

		return nil
	}); err != nil {
		return exitCode(1, err)
	}

	summary := report.Summarize(outcomes, fileOf, result.SurvivalRate)
	cmd.Print(report.RenderTable(summary))

	if err := store.FinalizeRun(ctx, analyzeRunID, storage.RunSummary{
		Total: result.Total, Killed: result.Killed, Survived: result.Survived,
		BuildFailed: result.BuildFailed, TimedOut: result.TimedOut,
		SurvivalRate: result.SurvivalRate, FinishedAt: timeNowUTC(),
	}); err != nil {
		return exitCode(1, err)
	}

	if len(survivorMeta) > 0 {
		byFile := map[model.Path][]materializer.Metadata{}

		for _, meta := range survivorMeta {
			byFile[meta.File] = append(byFile[meta.File], meta)
		}

		for file, metas := range byFile {
			survivorReport := report.BuildSurvivorReport(file, 1-result.SurvivalRate, metas[0].ContentHash, metas, timeNowUTC())

			if err := report.WriteSurvivorReport("diff_not_killed.json", survivorReport); err != nil {
				return exitCode(1, err)
			}
		}
	}

	if result.SurvivalRate > threshold {
		os.Exit(3)
	}

	return nil
}

// timeNowUTC is isolated so tests can stub it; production always wants
// the wall clock.
var timeNowUTC = func() time.Time { return time.Now().UTC() }

func loadMutantMetadata(fs adapter.FilesystemAdapter, folder model.Path, result orchestrator.Result) (map[int]model.Path, []materializer.Metadata, error) {
	entries, err := os.ReadDir(string(folder))
	if err != nil {
		return nil, nil, model.NewError(model.KindIo, "reading mutant folder", err)
	}

	survivedIDs := map[int]bool{}

	if err := result.Outcomes.Range(func(_ uint64, o model.MutantOutcome) error {
		if o.Status == model.Survived {
			survivedIDs[o.MutantID] = true
		}

		return nil
	}); err != nil {
		return nil, nil, err
	}

	fileOf := map[int]model.Path{}

	var survivors []materializer.Metadata

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		metaPath := fs.JoinPath(string(folder), e.Name(), "mutation.json")

		raw, err := fs.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta materializer.Metadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}

		fileOf[meta.MutantID] = meta.File

		if survivedIDs[meta.MutantID] {
			survivors = append(survivors, meta)
		}
	}

	return fileOf, survivors, nil
}

func countMutantDirs(folder string) int {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0
	}

	n := 0

	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "muts") {
			n++
		}
	}

	return n
}

func openAnalyzeStorage() (storage.Storage, error) {
	if !analyzeUseSQLite {
		return storage.NewNoopStorage(), nil
	}

	path := analyzeSQLitePath
	if path == "" {
		path = "mutacore.db"
	}

	return storage.Open(path)
}
