package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"mutacore.dev/mutacore/internal/model"
)

// GitAdapter abstracts the git plumbing the PR-diff line selection step
// needs: which files a PR touched, and which lines within them changed.
type GitAdapter interface {
	// ChangedFiles returns the files a PR's HEAD differs from the
	// upstream default branch on, after fetching and checking out (or
	// rebasing onto) the PR ref.
	ChangedFiles(ctx context.Context, repoRoot model.Path, prRef string) ([]model.Path, error)

	// ChangedLines returns the 1-indexed line numbers a diff against the
	// upstream default branch touched within file.
	ChangedLines(ctx context.Context, repoRoot model.Path, file model.Path) ([]int, error)

	// Restore discards working-tree edits to path. The materializer
	// writes mutants into copies of the tree, so no command calls it.
	Restore(ctx context.Context, repoRoot model.Path, path model.Path) error

	// Diff returns the unified diff of path against the index.
	Diff(ctx context.Context, repoRoot model.Path, path model.Path) (string, error)
}

// LocalGitAdapter runs git as a subprocess via os/exec.
type LocalGitAdapter struct {
	// UpstreamRef is the ref PR diffs and changed-line detection are
	// computed against, e.g. "upstream/master".
	UpstreamRef string
}

// NewLocalGitAdapter constructs a LocalGitAdapter against upstreamRef.
func NewLocalGitAdapter(upstreamRef string) *LocalGitAdapter {
	if upstreamRef == "" {
		upstreamRef = "upstream/master"
	}

	return &LocalGitAdapter{UpstreamRef: upstreamRef}
}

func (a *LocalGitAdapter) run(ctx context.Context, repoRoot model.Path, args ...string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = string(repoRoot)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, model.NewError(model.KindGit, fmt.Sprintf("git %s: %s", strings.Join(args, " "), stderr.String()), err)
	}

	text := strings.TrimRight(stdout.String(), "\n")
	if text == "" {
		return nil, nil
	}

	return strings.Split(text, "\n"), nil
}

// ChangedFiles fetches and checks out (or rebases onto) the PR ref when
// prRef is non-empty, then returns the files that differ from
// UpstreamRef.
func (a *LocalGitAdapter) ChangedFiles(ctx context.Context, repoRoot model.Path, prRef string) ([]model.Path, error) {
	if prRef != "" {
		localBranch := "pr/" + prRef
		fetchArgs := []string{"fetch", "upstream", fmt.Sprintf("pull/%s/head:%s", prRef, localBranch)}

		if _, err := a.run(ctx, repoRoot, fetchArgs...); err != nil {
			if _, rebaseErr := a.run(ctx, repoRoot, "rebase", localBranch); rebaseErr != nil {
				return nil, rebaseErr
			}
		} else if _, err := a.run(ctx, repoRoot, "checkout", localBranch); err != nil {
			return nil, err
		}
	}

	lines, err := a.run(ctx, repoRoot, "diff", "--name-only", a.UpstreamRef+"...HEAD")
	if err != nil {
		return nil, err
	}

	out := make([]model.Path, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.Path(l))
	}

	return out, nil
}

var hunkHeaderPattern = regexp.MustCompile(`@@.*\+(\d+)(?:,(\d+))?.*@@`)

// ChangedLines returns every line number a unified, zero-context diff
// against UpstreamRef touched in file.
func (a *LocalGitAdapter) ChangedLines(ctx context.Context, repoRoot model.Path, file model.Path) ([]int, error) {
	lines, err := a.run(ctx, repoRoot, "diff", "--unified=0", a.UpstreamRef+"...HEAD", "--", string(file))
	if err != nil {
		return nil, err
	}

	var touched []int

	for _, line := range lines {
		if !strings.HasPrefix(line, "@@") {
			continue
		}

		match := hunkHeaderPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		start, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, model.NewError(model.KindGit, "invalid line number in diff hunk header: "+line, err)
		}

		count := 1
		if match[2] != "" {
			count, err = strconv.Atoi(match[2])
			if err != nil {
				return nil, model.NewError(model.KindGit, "invalid line count in diff hunk header: "+line, err)
			}
		}

		for i := 0; i < count; i++ {
			touched = append(touched, start+i)
		}
	}

	return touched, nil
}

// Restore discards working-tree edits to path via `git checkout --`.
func (a *LocalGitAdapter) Restore(ctx context.Context, repoRoot model.Path, path model.Path) error {
	_, err := a.run(ctx, repoRoot, "checkout", "--", string(path))
	return err
}

// Diff returns the unified diff of path against the index.
func (a *LocalGitAdapter) Diff(ctx context.Context, repoRoot model.Path, path model.Path) (string, error) {
	lines, err := a.run(ctx, repoRoot, "diff", "--", string(path))
	if err != nil {
		return "", err
	}

	return strings.Join(lines, "\n"), nil
}
