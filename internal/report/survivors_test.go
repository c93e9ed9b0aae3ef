package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mutacore.dev/mutacore/internal/materializer"
)

func TestBuildSurvivorReport_GroupsByLine(t *testing.T) {
	survivors := []materializer.Metadata{
		{MutantID: 1, Line: 42, OperatorID: "eq_neq_swap", Diff: "-a == b\n+a != b"},
		{MutantID: 2, Line: 42, OperatorID: "relational_lt_gt_swap", Diff: "-a < b\n+a > b"},
		{MutantID: 3, Line: 50, OperatorID: "bool_negate", Diff: "-true\n+false"},
	}

	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	r := BuildSurvivorReport("src/wallet.cpp", 0.4, "abc123", survivors, now)

	if r.Filename != "src/wallet.cpp" || r.MutationScore != 0.4 || r.CommitHash != "abc123" {
		t.Errorf("unexpected report header: %+v", r)
	}

	if len(r.SurvivorsByLine[42]) != 2 {
		t.Errorf("line 42 = %d entries, want 2", len(r.SurvivorsByLine[42]))
	}

	if len(r.SurvivorsByLine[50]) != 1 {
		t.Errorf("line 50 = %d entries, want 1", len(r.SurvivorsByLine[50]))
	}
}

func TestBuildSurvivorReport_EmptyWhenNoSurvivors(t *testing.T) {
	r := BuildSurvivorReport("src/wallet.cpp", 1.0, "abc123", nil, time.Now())

	if len(r.SurvivorsByLine) != 0 {
		t.Errorf("expected empty survivors map for a 100%% kill rate, got %v", r.SurvivorsByLine)
	}
}

func TestWriteSurvivorReport_SkipsWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diff_not_killed.json")

	if err := WriteSurvivorReport(path, SurvivorReport{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected no file to be written for an empty report")
	}
}

func TestWriteSurvivorReport_AppendsAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diff_not_killed.json")

	first := BuildSurvivorReport("a.cpp", 0.5, "hash1", []materializer.Metadata{{MutantID: 1, Line: 1}}, time.Now())
	second := BuildSurvivorReport("b.cpp", 0.75, "hash2", []materializer.Metadata{{MutantID: 2, Line: 2}}, time.Now())

	if err := WriteSurvivorReport(path, first); err != nil {
		t.Fatalf("first write: %v", err)
	}

	if err := WriteSurvivorReport(path, second); err != nil {
		t.Fatalf("second write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}

	var all []SurvivorReport
	if err := json.Unmarshal(raw, &all); err != nil {
		t.Fatalf("unmarshaling: %v", err)
	}

	if len(all) != 2 {
		t.Fatalf("got %d reports, want 2", len(all))
	}

	if all[0].Filename != "a.cpp" || all[1].Filename != "b.cpp" {
		t.Errorf("unexpected report order: %+v", all)
	}
}
