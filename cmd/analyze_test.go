package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutacore.dev/mutacore/internal/adapter"
	"mutacore.dev/mutacore/internal/materializer"
	"mutacore.dev/mutacore/internal/model"
	"mutacore.dev/mutacore/internal/orchestrator"
	"mutacore.dev/mutacore/pkg"
)

func TestCountMutantDirs(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.Mkdir(filepath.Join(dir, "muts-file-1-1-src.cpp"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "muts-file-1-2-src.cpp"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "unrelated"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "muts-not-a-dir"), []byte("x"), 0o644))

	assert.Equal(t, 2, countMutantDirs(dir))
}

func TestCountMutantDirs_MissingFolder(t *testing.T) {
	assert.Equal(t, 0, countMutantDirs(filepath.Join(t.TempDir(), "does-not-exist")))
}

func TestLoadMutantMetadata(t *testing.T) {
	dir := t.TempDir()

	writeMeta := func(name string, meta materializer.Metadata) {
		mutDir := filepath.Join(dir, name)
		require.NoError(t, os.Mkdir(mutDir, 0o755))
		raw, err := json.Marshal(meta)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(mutDir, "mutation.json"), raw, 0o644))
	}

	writeMeta("muts-1", materializer.Metadata{MutantID: 1, File: model.Path("src/a.cpp")})
	writeMeta("muts-2", materializer.Metadata{MutantID: 2, File: model.Path("src/b.cpp")})

	outcomes, err := pkg.NewFileSpill[model.MutantOutcome]()
	require.NoError(t, err)
	t.Cleanup(func() { _ = outcomes.Close() })

	require.NoError(t, outcomes.Append(model.MutantOutcome{MutantID: 1, Status: model.Survived}))
	require.NoError(t, outcomes.Append(model.MutantOutcome{MutantID: 2, Status: model.Killed}))

	fs := adapter.NewLocalFilesystemAdapter()

	fileOf, survivors, err := loadMutantMetadata(fs, model.Path(dir), orchestrator.Result{Outcomes: outcomes})
	require.NoError(t, err)

	assert.Equal(t, model.Path("src/a.cpp"), fileOf[1])
	assert.Equal(t, model.Path("src/b.cpp"), fileOf[2])

	require.Len(t, survivors, 1)
	assert.Equal(t, 1, survivors[0].MutantID)
}

func TestNewAnalyzeCmd_Flags(t *testing.T) {
	cmd := newAnalyzeCmd()

	for _, name := range []string{"folder", "command", "jobs", "timeout", "survival-threshold", "sqlite", "run-id"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag %q", name)
	}

	assert.Equal(t, "mutacore.db", cmd.Flags().Lookup("sqlite").NoOptDefVal)
}
