// Package selection composes the PR-diff, file, range, coverage,
// skip-lines, and test-only inputs into the final, deduplicated set of
// (file, line) targets the operator engine runs against.
package selection

import (
	"context"
	"sort"
	"strings"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/lineutil"
	"mutacore.dev/mutacore/internal/model"
)

// Options captures every optional input the selection pipeline composes,
// applied in the fixed order Select documents.
type Options struct {
	// PRRef selects the base set from a PR's diff against the upstream
	// default branch. Mutually exclusive with File; one of the two is
	// required.
	PRRef string
	// File selects the base set as every non-trivial line of a single
	// file, ignoring PRRef.
	File model.Path
	// Range, when non-nil, intersects the base set to an inclusive
	// 1-indexed line span.
	Range *model.LineRange
	// CoveragePath, when non-empty, intersects the base set against
	// lines an lcov .info report marks as hit.
	CoveragePath model.Path
	// SkipLines subtracts specific line numbers per file, on top of the
	// built-in exclude list.
	SkipLines map[model.Path][]int
	// TestOnly restricts the base set to unit-test and functional-test
	// files instead of production code.
	TestOnly bool
}

// Target is one file's final, filtered set of mutable line numbers.
type Target struct {
	File  model.Path
	Kind  model.FileKind
	Lines []int
}

// Pipeline resolves Options into a concrete set of Targets.
type Pipeline struct {
	fs  adapter.FilesystemAdapter
	git adapter.GitAdapter
	cov adapter.CoverageAdapter
}

// New constructs a Pipeline from its collaborators.
func New(fs adapter.FilesystemAdapter, git adapter.GitAdapter, cov adapter.CoverageAdapter) *Pipeline {
	return &Pipeline{fs: fs, git: git, cov: cov}
}

// excludedPathSubstrings mirrors the built-in file-type skip list a PR
// diff selection applies before any user-supplied skip-lines: doc
// changes, fuzz harnesses, benchmarks, generic util code, and sanitizer
// suppression lists never carry meaningful mutation targets.
var excludedPathSubstrings = []string{
	"doc",
	"fuzz",
	"bench",
	"util",
	"sanitizer_supressions",
}

func isExcludedPath(path string) bool {
	if strings.HasSuffix(path, ".txt") {
		return true
	}

	for _, s := range excludedPathSubstrings {
		if strings.Contains(path, s) {
			return true
		}
	}

	return false
}

// ClassifyFileKind partitions a path into production, unit-test, or
// functional-test code, mirroring the is_unit_test / ".py" distinction
// used to pick an operator catalog and select a build+test command.
func ClassifyFileKind(path model.Path) model.FileKind {
	p := string(path)

	switch {
	case strings.HasSuffix(p, ".py"):
		return model.KindFunctionalTest
	case strings.Contains(p, "test") && !strings.Contains(p, "util"):
		return model.KindUnitTest
	default:
		return model.KindProduction
	}
}

func isTestKind(kind model.FileKind) bool {
	return kind == model.KindUnitTest || kind == model.KindFunctionalTest
}

// Select resolves opts against repoRoot, returning the final, ordered
// Targets. Composition order: base set (PR diff or single file), the
// test_only partition, range intersection, coverage intersection,
// skip-lines subtraction, then the trivial-line drop.
func (p *Pipeline) Select(ctx context.Context, repoRoot model.Path, opts Options) ([]Target, error) {
	base, err := p.baseSet(ctx, repoRoot, opts)
	if err != nil {
		return nil, err
	}

	var coverage map[model.Path][]int

	if opts.CoveragePath != "" {
		coverage, err = p.cov.ParseCoverageFile(opts.CoveragePath)
		if err != nil {
			return nil, model.NewError(model.KindIo, "reading coverage report", err)
		}
	}

	targets := make([]Target, 0, len(base))

	for file, lines := range base {
		kind := ClassifyFileKind(file)

		if opts.TestOnly && !isTestKind(kind) {
			continue
		}

		if !opts.TestOnly && isTestKind(kind) {
			continue
		}

		lines = intersectRange(lines, opts.Range)
		lines = intersectCoverage(lines, file, coverage)
		lines = subtractSkip(lines, opts.SkipLines[file])

		content, err := p.fs.ReadFile(file)
		if err != nil {
			return nil, model.NewError(model.KindIo, "reading source for selection", err).WithLocation(file, 0, "")
		}

		lines = dropTrivial(string(content), lines)

		if len(lines) == 0 {
			continue
		}

		targets = append(targets, Target{File: file, Kind: kind, Lines: lines})
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].File < targets[j].File })

	return targets, nil
}

// baseSet resolves step 1 of the composition order: every changed line
// of every changed file for a PR ref, or every non-trivial-eligible line
// of a single file.
func (p *Pipeline) baseSet(ctx context.Context, repoRoot model.Path, opts Options) (map[model.Path][]int, error) {
	if opts.File != "" {
		content, err := p.fs.ReadFile(opts.File)
		if err != nil {
			return nil, model.NewError(model.KindIo, "reading target file", err).WithLocation(opts.File, 0, "")
		}

		all := allLineNumbers(string(content))

		return map[model.Path][]int{opts.File: all}, nil
	}

	if opts.PRRef == "" {
		return nil, model.NewError(model.KindInvalidInput, "one of --pr or --file is required", nil)
	}

	files, err := p.git.ChangedFiles(ctx, repoRoot, opts.PRRef)
	if err != nil {
		return nil, err
	}

	base := make(map[model.Path][]int, len(files))

	for _, f := range files {
		if isExcludedPath(string(f)) {
			continue
		}

		lines, err := p.git.ChangedLines(ctx, repoRoot, f)
		if err != nil {
			return nil, err
		}

		if len(lines) == 0 {
			continue
		}

		base[f] = lines
	}

	return base, nil
}

func allLineNumbers(content string) []int {
	n := len(sourceLines(content))

	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}

	return out
}

// sourceLines splits content into lines without trailing newlines,
// dropping the empty final element a trailing "\n" would otherwise
// produce so line counts match a 1-indexed editor's view of the file.
func sourceLines(content string) []string {
	if content == "" {
		return nil
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}

func intersectRange(lines []int, r *model.LineRange) []int {
	if r == nil {
		return lines
	}

	out := lines[:0:0]

	for _, l := range lines {
		if r.Contains(l) {
			out = append(out, l)
		}
	}

	return out
}

func intersectCoverage(lines []int, file model.Path, coverage map[model.Path][]int) []int {
	if coverage == nil {
		return lines
	}

	covered, ok := coverageForFile(file, coverage)
	if !ok {
		return nil
	}

	set := make(map[int]bool, len(covered))
	for _, l := range covered {
		set[l] = true
	}

	out := lines[:0:0]

	for _, l := range lines {
		if set[l] {
			out = append(out, l)
		}
	}

	return out
}

// coverageForFile finds the coverage entry whose key path is a substring
// match of file, mirroring the Rust selector's `file.contains(path)`
// lookup against absolute .info paths.
func coverageForFile(file model.Path, coverage map[model.Path][]int) ([]int, bool) {
	if lines, ok := coverage[file]; ok {
		return lines, true
	}

	for path, lines := range coverage {
		if strings.Contains(string(file), string(path)) {
			return lines, true
		}
	}

	return nil, false
}

func subtractSkip(lines []int, skip []int) []int {
	if len(skip) == 0 {
		return lines
	}

	skipSet := make(map[int]bool, len(skip))
	for _, l := range skip {
		skipSet[l] = true
	}

	out := lines[:0:0]

	for _, l := range lines {
		if !skipSet[l] {
			out = append(out, l)
		}
	}

	return out
}

func dropTrivial(content string, lines []int) []int {
	fileLines := sourceLines(content)

	out := lines[:0:0]

	for _, l := range lines {
		if l < 1 || l > len(fileLines) {
			continue
		}

		if lineutil.IsTrivial(fileLines[l-1]) {
			continue
		}

		out = append(out, l)
	}

	return out
}
