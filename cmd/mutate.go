package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/arid"
	"mutacore.dev/mutacore/internal/materializer"
	"mutacore.dev/mutacore/internal/model"
	"mutacore.dev/mutacore/internal/operator"
	"mutacore.dev/mutacore/internal/selection"
	"mutacore.dev/mutacore/internal/storage"
)

var (
	mutatePR                  string
	mutateFile                string
	mutateRange               []int
	mutateCoverage            string
	mutateSkipLines           string
	mutateOneMutant           bool
	mutateTestOnly            bool
	mutateOnlySecurity        bool
	mutateDisableAstFiltering bool
	mutateExpertRules         []string
	mutateSQLitePath          string
	mutateUseSQLite           bool
)

func newMutateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutate",
		Short: "Generate mutants for a PR diff or a single file",
		Long: `mutate selects candidate lines from a PR diff or a single file, runs the
mutation operator catalog over them, and materializes each accepted
mutant as a self-contained directory under the current working
directory, ready for "mutacore analyze".`,
		RunE: runMutate,
	}

	cmd.Flags().StringVarP(&mutatePR, "pr", "p", "", "pull request number to diff against the upstream default branch")
	cmd.Flags().StringVarP(&mutateFile, "file", "f", "", "single file to mutate every non-trivial line of")
	cmd.Flags().IntSliceVarP(&mutateRange, "range", "r", nil, "inclusive line range \"lo,hi\" to restrict targets to")
	cmd.Flags().StringVarP(&mutateCoverage, "cov", "c", "", "lcov .info coverage file to intersect targets against")
	cmd.Flags().StringVar(&mutateSkipLines, "skip-lines", "", "JSON file mapping paths to line numbers to skip")
	cmd.Flags().BoolVar(&mutateOneMutant, "one-mutant", false, "keep only the first mutation a line admits")
	cmd.Flags().BoolVarP(&mutateTestOnly, "test-only", "t", false, "restrict targets to unit/functional test files")
	cmd.Flags().BoolVarP(&mutateOnlySecurity, "only-security-mutations", "s", false, "restrict the operator catalog to the security subset")
	cmd.Flags().BoolVar(&mutateDisableAstFiltering, "disable-ast-filtering", false, "skip the arid-region filter and mutate every candidate line")
	cmd.Flags().StringArrayVar(&mutateExpertRules, "add-expert-rule", nil, "additional arid-filter regex, appended at lowest priority (repeatable)")
	cmd.Flags().StringVar(&mutateSQLitePath, "sqlite", "", "persist the run to a SQLite database at this path (default mutacore.db if flag given with no value)")

	cmd.Flags().Lookup("sqlite").NoOptDefVal = "mutacore.db"

	return cmd
}

func init() {
	rootCmd.AddCommand(newMutateCmd())
}

func runMutate(cmd *cobra.Command, _ []string) error {
	configureLogger(logFileFlag, verboseFlag)

	cmd.SilenceUsage = true

	if mutateFile == "" && mutatePR == "" {
		return exitCode(2, model.NewError(model.KindInvalidInput, "one of --pr or --file is required", nil))
	}

	if mutateFile != "" && mutatePR != "" {
		return exitCode(2, model.NewError(model.KindInvalidInput, "--pr and --file are mutually exclusive", nil))
	}

	if cmd.Flags().Changed("sqlite") {
		mutateUseSQLite = true
	}

	fs := adapter.NewLocalFilesystemAdapter()
	git := adapter.NewLocalGitAdapter(upstreamRef)
	cov := adapter.NewLocalCoverageAdapter()

	cwd, err := os.Getwd()
	if err != nil {
		return exitCode(1, model.NewError(model.KindIo, "resolving working directory", err))
	}

	repoRoot, err := fs.FindProjectRoot(model.Path(cwd))
	if err != nil {
		return exitCode(2, model.NewError(model.KindInvalidInput, "resolving repository root", err))
	}

	opts := selection.Options{
		PRRef:        mutatePR,
		File:         model.Path(mutateFile),
		CoveragePath: model.Path(mutateCoverage),
		TestOnly:     mutateTestOnly,
	}

	if len(mutateRange) == 2 {
		rng := model.LineRange{Lo: mutateRange[0], Hi: mutateRange[1]}
		if !rng.Valid() {
			return exitCode(2, model.NewError(model.KindInvalidInput, "invalid --range: lo must be positive and lo <= hi", nil))
		}
		opts.Range = &rng
	}

	if mutateSkipLines != "" {
		skip, err := adapter.LoadSkipLines(mutateSkipLines)
		if err != nil {
			return exitCode(2, err)
		}

		opts.SkipLines = skip
	}

	expertise := arid.DefaultExpertise()

	for i, pattern := range mutateExpertRules {
		if err := expertise.AddFunctionRule(fmt.Sprintf("expert-rule-%d", i), pattern); err != nil {
			return exitCode(2, model.NewError(model.KindInvalidInput, "invalid --add-expert-rule pattern: "+pattern, err))
		}
	}

	store, err := openStorage()
	if err != nil {
		return exitCode(1, err)
	}

	defer func() { _ = store.Close() }()

	ctx := context.Background()

	runCommit := mutatePR
	if runCommit == "" {
		runCommit = mutateFile
	}

	runID, err := store.BeginRun(ctx, storage.RunParams{CommitHash: runCommit, PRNumber: prNumberOrZero(mutatePR)})
	if err != nil {
		return exitCode(1, err)
	}

	scope := model.ScopeFile
	switch {
	case mutatePR != "":
		scope = model.ScopePR
	case opts.Range != nil:
		scope = model.ScopeRange
	}

	pipeline := selection.New(fs, git, cov)

	targets, err := pipeline.Select(ctx, repoRoot, opts)
	if err != nil {
		var typed *model.Error
		if errors.As(err, &typed) && typed.Kind == model.KindInvalidInput {
			return exitCode(2, err)
		}

		return exitCode(1, err)
	}

	engine := operator.NewEngine(operator.Options{OnlySecurity: mutateOnlySecurity, OneMutantPerLine: mutateOneMutant})
	filter := arid.NewFilter(expertise)

	baseDir := model.Path(cwd)
	mz := materializer.New(fs, repoRoot, baseDir)

	mutantID := 0
	accepted := 0

	for _, target := range targets {
		content, err := fs.ReadFile(target.File)
		if err != nil {
			return exitCode(1, model.NewError(model.KindIo, "reading target file", err).WithLocation(target.File, 0, ""))
		}

		fileLines := splitLinesNoEnding(string(content))
		hash, err := fs.HashFile(target.File)

		if err != nil {
			return exitCode(1, model.NewError(model.KindIo, "hashing target file", err).WithLocation(target.File, 0, ""))
		}

		for _, lineNo := range target.Lines {
			if lineNo < 1 || lineNo > len(fileLines) {
				continue
			}

			text := fileLines[lineNo-1]

			if arid.ShouldSkipLiteral(text) {
				continue
			}

			if !mutateDisableAstFiltering && filter.IsArid(fileLines, lineNo-1) {
				continue
			}

			candidates := engine.Generate(target.File, target.Kind, lineNo, text)

			for _, candidate := range candidates {
				mutantID++

				am := model.AcceptedMutant{
					MutantID:    mutantID,
					ContentHash: hash,
					Candidate:   candidate,
					RunID:       runID,
					SourceScope: scope,
				}

				if _, err := mz.Materialize(am); err != nil {
					return exitCode(1, err)
				}

				if err := store.RecordMutant(ctx, runID, am); err != nil {
					return exitCode(1, err)
				}

				accepted++

				if mutateOneMutant {
					break
				}
			}
		}
	}

	cmd.Printf("generated %d mutants (run %d)\n", accepted, runID)

	return nil
}

func splitLinesNoEnding(content string) []string {
	if content == "" {
		return nil
	}

	var lines []string

	start := 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			end := i
			if end > start && content[end-1] == '\r' {
				end--
			}

			lines = append(lines, content[start:end])
			start = i + 1
		}
	}

	if start < len(content) {
		lines = append(lines, content[start:])
	}

	return lines
}

func openStorage() (storage.Storage, error) {
	if !mutateUseSQLite {
		return storage.NewNoopStorage(), nil
	}

	path := mutateSQLitePath
	if path == "" {
		path = "mutacore.db"
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func prNumberOrZero(pr string) int {
	n := 0

	for _, c := range pr {
		if c < '0' || c > '9' {
			return 0
		}

		n = n*10 + int(c-'0')
	}

	return n
}

func exitCode(code int, err error) error {
	if err == nil {
		return nil
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)

	return err
}
