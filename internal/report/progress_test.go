package report

import (
	"bytes"
	"strings"
	"testing"

	"mutacore.dev/mutacore/internal/model"
	"mutacore.dev/mutacore/internal/orchestrator"
)

func TestPlainProgressView_Update(t *testing.T) {
	var buf bytes.Buffer

	v := &plainProgressView{output: &buf, total: 2}

	v.Update(orchestrator.Progress{Completed: 1, Total: 2, Outcome: model.MutantOutcome{MutantID: 5, Status: model.Killed}})
	v.Update(orchestrator.Progress{Completed: 2, Total: 2, Outcome: model.MutantOutcome{MutantID: 6, Status: model.Survived}})

	out := buf.String()

	if !strings.Contains(out, "[1/2] mutant 5") || !strings.Contains(out, "[2/2] mutant 6") {
		t.Errorf("unexpected output: %q", out)
	}

	if err := v.Finish(); err != nil {
		t.Errorf("Finish returned error: %v", err)
	}
}

func TestNewProgressView_NonTerminalReturnsPlainView(t *testing.T) {
	var buf bytes.Buffer

	v := NewProgressView(&buf, 3)
	if _, ok := v.(*plainProgressView); !ok {
		t.Errorf("expected plainProgressView for a non-*os.File writer, got %T", v)
	}
}

func TestStyleStatus(t *testing.T) {
	if got := styleStatus(model.Killed); !strings.Contains(got, "killed") {
		t.Errorf("styleStatus(Killed) = %q, want it to contain %q", got, "killed")
	}

	if got := styleStatus(model.Survived); !strings.Contains(got, "survived") {
		t.Errorf("styleStatus(Survived) = %q, want it to contain %q", got, "survived")
	}
}
