package model

import "strconv"

// Category is the mutation operator taxonomy from the operator catalog.
type Category string

const (
	CategoryArithmetic        Category = "arithmetic"
	CategoryRelational        Category = "relational"
	CategoryLogical           Category = "logical"
	CategoryBitwise           Category = "bitwise"
	CategoryConstant          Category = "constant"
	CategoryBoundary          Category = "boundary"
	CategoryStatementDeletion Category = "statement-deletion"
	CategorySecurity          Category = "security"
)

// ColumnSpan is the half-open byte range within a line's text that an
// operator's match occupies.
type ColumnSpan struct {
	Start int
	End   int
}

// Candidate is a pre-filter mutation: the operator engine's raw output
// before the arid filter and one-mutant-per-line dedup run.
type Candidate struct {
	File             Path
	Line             int
	Column           ColumnSpan
	OperatorID       string
	Category         Category
	OriginalFragment string
	MutatedFragment  string
	// OriginalLine and MutatedLine hold the full line text before/after
	// the rewrite, needed for the round-trip invariant and materializer
	// metadata.
	OriginalLine string
	MutatedLine  string
}

// Key returns the 5-tuple identity used to coalesce duplicate candidates
// within a run: (file, line, column span, operator, mutated fragment).
func (c Candidate) Key() string {
	return string(c.File) + "|" +
		strconv.Itoa(c.Line) + "|" +
		strconv.Itoa(c.Column.Start) + "-" + strconv.Itoa(c.Column.End) + "|" +
		c.OperatorID + "|" +
		c.MutatedFragment
}

// AcceptedMutant is a Candidate that survived the arid filter (when
// enabled) and the one-mutant-per-line dedup (when enabled). It carries a
// stable identity for the lifetime of the run.
type AcceptedMutant struct {
	MutantID    int
	ContentHash string
	Candidate   Candidate
	RunID       int
	SourceScope Scope
}

// Scope names how a run's targets were selected, used by the
// materializer to name mutant directories.
type Scope string

const (
	ScopePR    Scope = "pr"
	ScopeFile  Scope = "file"
	ScopeRange Scope = "range"
)
