package adapter

import (
	"context"
	"testing"
	"time"
)

func TestLocalProcessRunnerAdapter_RunCommand(t *testing.T) {
	a := NewLocalProcessRunnerAdapter()

	output, elapsed, timedOut, err := a.RunCommand(context.Background(), t.TempDir(), "echo hello", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if timedOut {
		t.Errorf("expected no timeout for a fast command")
	}

	if elapsed <= 0 {
		t.Errorf("expected a positive elapsed duration")
	}

	if got := output; got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
}

func TestLocalProcessRunnerAdapter_Timeout(t *testing.T) {
	a := NewLocalProcessRunnerAdapter()

	_, _, timedOut, err := a.RunCommand(context.Background(), t.TempDir(), "sleep 2", 50*time.Millisecond)
	if err == nil {
		t.Fatalf("expected an error for a killed process")
	}

	if !timedOut {
		t.Errorf("expected timedOut=true when the command exceeds its timeout")
	}
}
