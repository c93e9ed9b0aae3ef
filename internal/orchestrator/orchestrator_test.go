package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/materializer"
	"mutacore.dev/mutacore/internal/model"
)

// fakeProcessRunner answers RunCommand from a map keyed by command,
// so tests can exercise build-fail/test-fail/survive/timeout branches
// without shelling out to a real compiler.
type fakeProcessRunner struct {
	results map[string]fakeResult
}

type fakeResult struct {
	output   string
	timedOut bool
	err      error
}

func (f *fakeProcessRunner) RunCommand(_ context.Context, _, command string, _ time.Duration) (string, time.Duration, bool, error) {
	r, ok := f.results[command]
	if !ok {
		return "", 0, false, nil
	}

	return r.output, 0, r.timedOut, r.err
}

func writeMutantDir(t *testing.T, baseDir, name string, meta materializer.Metadata) model.Path {
	t.Helper()

	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	b, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "mutation.json"), b, 0o644); err != nil {
		t.Fatalf("writing mutation.json: %v", err)
	}

	return model.Path(dir)
}

func TestOrchestrator_Run_ClassifiesSurvivedAndKilled(t *testing.T) {
	baseDir := t.TempDir()

	writeMutantDir(t, baseDir, "muts-file-wallet-1-1", materializer.Metadata{MutantID: 1, File: "src/wallet.cpp"})
	writeMutantDir(t, baseDir, "muts-file-wallet-1-2", materializer.Metadata{MutantID: 2, File: "src/wallet.cpp"})

	proc := &fakeProcessRunner{results: map[string]fakeResult{
		"true": {},
	}}

	fs := adapter.NewLocalFilesystemAdapter()

	orc := New(fs, proc, Options{Jobs: 2, Command: "true", SurvivalThreshold: 1.0})

	result, err := orc.Run(context.Background(), model.Path(baseDir), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}

	if result.Survived != 2 {
		t.Errorf("survived = %d, want 2 (command always succeeds => mutant survives)", result.Survived)
	}

	if result.Killed != 0 {
		t.Errorf("killed = %d, want 0", result.Killed)
	}
}

func TestOrchestrator_Run_BuildFailureClassifiedSeparatelyFromTestFailure(t *testing.T) {
	baseDir := t.TempDir()

	writeMutantDir(t, baseDir, "muts-file-wallet-1-1", materializer.Metadata{MutantID: 1, File: "src/wallet.cpp"})

	proc := &fakeProcessRunner{results: map[string]fakeResult{
		"make build": {err: errBoom, output: "compile error"},
	}}

	fs := adapter.NewLocalFilesystemAdapter()
	orc := New(fs, proc, Options{Jobs: 1, Command: "make build && run tests", SurvivalThreshold: 1.0})

	result, err := orc.Run(context.Background(), model.Path(baseDir), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.BuildFailed != 1 {
		t.Errorf("build_failed = %d, want 1", result.BuildFailed)
	}

	if result.Killed != 0 || result.Survived != 0 {
		t.Errorf("expected only build_failed, got killed=%d survived=%d", result.Killed, result.Survived)
	}
}

func TestOrchestrator_Run_TestFailureIsKilled(t *testing.T) {
	baseDir := t.TempDir()

	writeMutantDir(t, baseDir, "muts-file-wallet-1-1", materializer.Metadata{MutantID: 1, File: "src/wallet.cpp"})

	proc := &fakeProcessRunner{results: map[string]fakeResult{
		"make build": {},
		"run tests":  {err: errBoom, output: "assertion failed"},
	}}

	fs := adapter.NewLocalFilesystemAdapter()
	orc := New(fs, proc, Options{Jobs: 1, Command: "make build && run tests", SurvivalThreshold: 1.0})

	result, err := orc.Run(context.Background(), model.Path(baseDir), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Killed != 1 {
		t.Errorf("killed = %d, want 1", result.Killed)
	}
}

func TestOrchestrator_Run_NoMutantDirsIsError(t *testing.T) {
	baseDir := t.TempDir()

	fs := adapter.NewLocalFilesystemAdapter()
	proc := &fakeProcessRunner{}

	orc := New(fs, proc, Options{})

	if _, err := orc.Run(context.Background(), model.Path(baseDir), 1); err == nil {
		t.Error("expected error for empty mutant folder")
	}
}

func TestOrchestrator_Run_ReportsProgress(t *testing.T) {
	baseDir := t.TempDir()

	writeMutantDir(t, baseDir, "muts-file-wallet-1-1", materializer.Metadata{MutantID: 1, File: "src/wallet.cpp"})

	proc := &fakeProcessRunner{results: map[string]fakeResult{"true": {}}}
	fs := adapter.NewLocalFilesystemAdapter()

	orc := New(fs, proc, Options{Jobs: 1, Command: "true", SurvivalThreshold: 1.0})

	var seen []Progress

	orc.OnProgress(func(p Progress) {
		seen = append(seen, p)
	})

	if _, err := orc.Run(context.Background(), model.Path(baseDir), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 1 {
		t.Fatalf("got %d progress callbacks, want 1", len(seen))
	}

	if seen[0].Completed != 1 || seen[0].Total != 1 {
		t.Errorf("progress = %+v, want Completed=1 Total=1", seen[0])
	}
}

func TestSplitBuildAndTest(t *testing.T) {
	build, test := splitBuildAndTest("cmake --build build && ctest")
	if build != "cmake --build build" || test != "ctest" {
		t.Errorf("got build=%q test=%q", build, test)
	}

	build, test = splitBuildAndTest("./build/test/functional/foo.py")
	if build != "" || test != "./build/test/functional/foo.py" {
		t.Errorf("got build=%q test=%q, want empty build", build, test)
	}
}

func TestClassify(t *testing.T) {
	if classify(nil, false) != model.Survived {
		t.Error("nil error, no timeout should survive")
	}

	if classify(errBoom, false) != model.Killed {
		t.Error("non-nil error should be killed")
	}

	if classify(errBoom, true) != model.TimedOut {
		t.Error("timeout should take priority over error classification")
	}
}

var errBoom = &model.Error{Kind: model.KindProcess, Message: "boom"}
