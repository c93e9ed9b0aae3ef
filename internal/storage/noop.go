package storage

import (
	"context"

	"mutacore.dev/mutacore/internal/model"
)

// NoopStorage discards every call. Used when the run is invoked without
// --sqlite.
type NoopStorage struct{}

// NewNoopStorage constructs a NoopStorage.
func NewNoopStorage() *NoopStorage {
	return &NoopStorage{}
}

func (NoopStorage) BeginRun(context.Context, RunParams) (int, error) { return 0, nil }

func (NoopStorage) RecordMutant(context.Context, int, model.AcceptedMutant) error { return nil }

func (NoopStorage) RecordOutcome(context.Context, int, model.MutantOutcome) error { return nil }

func (NoopStorage) FinalizeRun(context.Context, int, RunSummary) error { return nil }

func (NoopStorage) Close() error { return nil }
