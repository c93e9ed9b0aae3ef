// Package materializer writes accepted mutants to disk as self-contained
// directories: the mutated source tree plus a JSON sidecar describing
// what changed, ready for the analysis phase to pick up independently
// and in any order.
package materializer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/model"
)

// Metadata is the JSON sidecar written alongside each mutant directory.
type Metadata struct {
	MutantID    int            `json:"mutant_id"`
	RunID       int            `json:"run_id"`
	ContentHash string         `json:"content_hash"`
	File        model.Path     `json:"file"`
	Line        int            `json:"line"`
	OperatorID  string         `json:"operator_id"`
	Category    model.Category `json:"category"`
	Scope       model.Scope    `json:"scope"`
	Diff        string         `json:"diff"`
	Original    string         `json:"original_line"`
	Mutated     string         `json:"mutated_line"`
}

// Materializer writes AcceptedMutant values to a target directory as
// mutant-per-directory trees.
type Materializer struct {
	fs      adapter.FilesystemAdapter
	baseDir model.Path
	// sourceRoot is the project root the mutated file's path is relative
	// to; every mutant tree is a full copy of the project with just that
	// one file swapped in.
	sourceRoot model.Path
}

// New constructs a Materializer that writes mutant directories under
// baseDir, each one a copy of the tree rooted at sourceRoot.
func New(fs adapter.FilesystemAdapter, sourceRoot, baseDir model.Path) *Materializer {
	return &Materializer{fs: fs, baseDir: baseDir, sourceRoot: sourceRoot}
}

// DirName builds the directory name a mutant materializes to:
// muts-<scope>-<file-stem>-<run-id>-<mutant-id>.
func DirName(scope model.Scope, file model.Path, runID, mutantID int) string {
	stem := filepath.Base(string(file))
	stem = stem[:len(stem)-len(filepath.Ext(stem))]

	return fmt.Sprintf("muts-%s-%s-%d-%d", scope, stem, runID, mutantID)
}

// Materialize writes a single accepted mutant's directory. It copies the
// full source tree to a temporary sibling directory, overwrites the
// mutated file, writes the metadata sidecar, then renames the temporary
// directory into place — so a reader never observes a half-written
// mutant directory, and a name collision from a prior run fails fast
// instead of silently overwriting.
func (mz *Materializer) Materialize(am model.AcceptedMutant) (model.Path, error) {
	finalName := DirName(am.SourceScope, am.Candidate.File, am.RunID, am.MutantID)
	finalPath := mz.fs.JoinPath(string(mz.baseDir), finalName)

	if _, err := mz.fs.FileInfo(finalPath); err == nil {
		return "", model.NewError(model.KindIo, "mutant directory already exists: "+string(finalPath), nil)
	}

	tmpPath := mz.fs.JoinPath(string(mz.baseDir), "."+finalName+".tmp")
	_ = mz.fs.RemoveAll(tmpPath)

	if err := mz.fs.CopyDir(mz.sourceRoot, tmpPath); err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "copying source tree for mutant", err).WithLocation(am.Candidate.File, am.Candidate.Line, am.Candidate.OperatorID)
	}

	relFile, err := mz.fs.RelPath(mz.sourceRoot, am.Candidate.File)
	if err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "resolving mutant file path", err)
	}

	targetFile := mz.fs.JoinPath(string(tmpPath), string(relFile))

	original, err := mz.fs.ReadFile(am.Candidate.File)
	if err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "reading original source for mutant", err)
	}

	mutated, err := mutateFileContent(string(original), am.Candidate.Line, am.Candidate.MutatedLine)
	if err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", err
	}

	if err := mz.fs.WriteFile(targetFile, []byte(mutated), 0o644); err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "writing mutated file", err)
	}

	diff, err := unifiedDiff(am.Candidate.OriginalLine, am.Candidate.MutatedLine, string(am.Candidate.File))
	if err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "building mutant diff", err)
	}

	meta := Metadata{
		MutantID:    am.MutantID,
		RunID:       am.RunID,
		ContentHash: am.ContentHash,
		File:        am.Candidate.File,
		Line:        am.Candidate.Line,
		OperatorID:  am.Candidate.OperatorID,
		Category:    am.Candidate.Category,
		Scope:       am.SourceScope,
		Diff:        diff,
		Original:    am.Candidate.OriginalLine,
		Mutated:     am.Candidate.MutatedLine,
	}

	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "marshaling mutant metadata", err)
	}

	metaPath := mz.fs.JoinPath(string(tmpPath), "mutation.json")
	if err := mz.fs.WriteFile(metaPath, metaBytes, 0o644); err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "writing mutant metadata", err)
	}

	if err := os.Rename(string(tmpPath), string(finalPath)); err != nil {
		_ = mz.fs.RemoveAll(tmpPath)
		return "", model.NewError(model.KindIo, "renaming mutant directory into place", err)
	}

	return finalPath, nil
}

// mutateFileContent rewrites lineNo (1-indexed) of source to newLine.
func mutateFileContent(source string, lineNo int, newLine string) (string, error) {
	lines := splitKeepEnds(source)
	if lineNo < 1 || lineNo > len(lines) {
		return "", model.NewError(model.KindInvalidInput, fmt.Sprintf("line %d out of range (file has %d lines)", lineNo, len(lines)), nil)
	}

	ending := lineEnding(lines[lineNo-1])
	lines[lineNo-1] = newLine + ending

	out := ""
	for _, l := range lines {
		out += l
	}

	return out, nil
}

func splitKeepEnds(s string) []string {
	var lines []string

	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}

	if start < len(s) {
		lines = append(lines, s[start:])
	}

	return lines
}

func lineEnding(line string) string {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return "\n"
	}

	return ""
}

func unifiedDiff(before, after, filename string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: filename,
		ToFile:   filename + " (mutated)",
		Context:  0,
	}

	return difflib.GetUnifiedDiffString(diff)
}
