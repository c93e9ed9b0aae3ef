package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"mutacore.dev/mutacore/internal/model"
)

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS projects (
	id             INTEGER PRIMARY KEY,
	name           TEXT NOT NULL,
	repository_url TEXT,
	UNIQUE(name),
	UNIQUE(repository_url)
);

CREATE TABLE IF NOT EXISTS runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id     INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	commit_hash    TEXT NOT NULL,
	pr_number      INTEGER,
	tool_version   TEXT,
	created_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	finished_at    TIMESTAMP,
	total          INTEGER NOT NULL DEFAULT 0,
	killed         INTEGER NOT NULL DEFAULT 0,
	survived       INTEGER NOT NULL DEFAULT 0,
	build_failed   INTEGER NOT NULL DEFAULT 0,
	timed_out      INTEGER NOT NULL DEFAULT 0,
	survival_rate  REAL
);

CREATE INDEX IF NOT EXISTS idx_runs_project_created ON runs(project_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_commit ON runs(commit_hash);

CREATE TABLE IF NOT EXISTS mutants (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	mutant_id    INTEGER NOT NULL,
	file_path    TEXT NOT NULL,
	line         INTEGER NOT NULL,
	operator     TEXT NOT NULL,
	category     TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	diff         TEXT NOT NULL,
	UNIQUE(run_id, mutant_id)
);

CREATE INDEX IF NOT EXISTS idx_mutants_run ON mutants(run_id);
CREATE INDEX IF NOT EXISTS idx_mutants_file ON mutants(file_path);
CREATE INDEX IF NOT EXISTS idx_mutants_operator ON mutants(operator);

CREATE TABLE IF NOT EXISTS outcomes (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	mutant_id    INTEGER NOT NULL,
	status       TEXT NOT NULL
		CHECK (status IN ('killed','survived','build_failed','timed_out','skipped')),
	elapsed_ms   INTEGER NOT NULL,
	log_excerpt  TEXT,
	failing_test TEXT,
	recorded_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(run_id, mutant_id)
);

CREATE INDEX IF NOT EXISTS idx_outcomes_run_status ON outcomes(run_id, status);

INSERT OR IGNORE INTO projects (id, name, repository_url)
VALUES (1, 'Bitcoin Core', 'https://github.com/bitcoin/bitcoin');
`

// SQLiteStorage persists runs, mutants, and outcomes to a local SQLite
// database, opened and schema-initialized on construction.
type SQLiteStorage struct {
	db        *sql.DB
	projectID int64
}

// Open opens (creating if absent) a SQLite database at path and ensures
// its schema exists.
func Open(path string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, model.NewError(model.KindStorage, "creating database directory", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, model.NewError(model.KindStorage, "opening database", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, model.NewError(model.KindStorage, "initializing schema", err)
	}

	return &SQLiteStorage{db: db, projectID: 1}, nil
}

// BeginRun inserts a new run row scoped to the Bitcoin Core project and
// returns its assigned run ID.
func (s *SQLiteStorage) BeginRun(ctx context.Context, params RunParams) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (project_id, commit_hash, pr_number, tool_version) VALUES (?, ?, ?, ?)`,
		s.projectID, params.CommitHash, nullableInt(params.PRNumber), params.ToolVersion,
	)
	if err != nil {
		return 0, model.NewError(model.KindStorage, "beginning run", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, model.NewError(model.KindStorage, "reading new run id", err)
	}

	return int(id), nil
}

// RecordMutant inserts one accepted mutant's identity and diff.
func (s *SQLiteStorage) RecordMutant(ctx context.Context, runID int, mutant model.AcceptedMutant) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mutants (run_id, mutant_id, file_path, line, operator, category, content_hash, diff)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, mutant.MutantID, string(mutant.Candidate.File), mutant.Candidate.Line,
		mutant.Candidate.OperatorID, string(mutant.Candidate.Category), mutant.ContentHash,
		diffPlaceholder(mutant),
	)
	if err != nil {
		return model.NewError(model.KindStorage, "recording mutant", err).WithLocation(mutant.Candidate.File, mutant.Candidate.Line, mutant.Candidate.OperatorID)
	}

	return nil
}

// RecordOutcome inserts the analysis result for a previously recorded
// mutant.
func (s *SQLiteStorage) RecordOutcome(ctx context.Context, runID int, outcome model.MutantOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, mutant_id, status, elapsed_ms, log_excerpt, failing_test)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, outcome.MutantID, string(outcome.Status), outcome.ElapsedMS, outcome.LogExcerpt, outcome.FailingTest,
	)
	if err != nil {
		return model.NewError(model.KindStorage, "recording outcome", err)
	}

	return nil
}

// FinalizeRun writes the run's terminal aggregate counts.
func (s *SQLiteStorage) FinalizeRun(ctx context.Context, runID int, summary RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, killed = ?, survived = ?, build_failed = ?, timed_out = ?, survival_rate = ?
		 WHERE id = ?`,
		summary.FinishedAt, summary.Total, summary.Killed, summary.Survived, summary.BuildFailed, summary.TimedOut, summary.SurvivalRate,
		runID,
	)
	if err != nil {
		return model.NewError(model.KindStorage, "finalizing run", err)
	}

	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func nullableInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: int64(v), Valid: true}
}

// diffPlaceholder builds a two-line "-original"/"+mutated" diff from the
// candidate's before/after line text, or "" when both are empty.
func diffPlaceholder(mutant model.AcceptedMutant) string {
	if mutant.Candidate.OriginalLine == "" && mutant.Candidate.MutatedLine == "" {
		return ""
	}

	return "-" + mutant.Candidate.OriginalLine + "\n+" + mutant.Candidate.MutatedLine
}
