package adapter

import (
	"os"
	"path/filepath"
	"testing"

	"mutacore.dev/mutacore/internal/model"
)

func TestLocalCoverageAdapter_ParseCoverageFile(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "coverage.info")

	content := "SF:/path/to/file1.cpp\n" +
		"DA:1,5\n" +
		"DA:2,0\n" +
		"DA:3,10\n" +
		"SF:/path/to/file2.cpp\n" +
		"DA:10,1\n" +
		"DA:11,0\n"

	if err := os.WriteFile(infoPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	a := NewLocalCoverageAdapter()

	result, err := a.ParseCoverageFile(model.Path(infoPath))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(result), result)
	}

	assertLines(t, result["/path/to/file1.cpp"], []int{1, 3})
	assertLines(t, result["/path/to/file2.cpp"], []int{10})
}

func TestLocalCoverageAdapter_TrimsToSrcPrefix(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "coverage.info")

	content := "SF:/home/build/bitcoin/src/wallet/wallet.cpp\nDA:42,3\n"
	if err := os.WriteFile(infoPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	a := NewLocalCoverageAdapter()

	result, err := a.ParseCoverageFile(model.Path(infoPath))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertLines(t, result["src/wallet/wallet.cpp"], []int{42})
}

func assertLines(t *testing.T, got []int, want []int) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
