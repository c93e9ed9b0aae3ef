package model

import "time"

// Run is a top-level mutation-generation session.
type Run struct {
	RunID     int
	StartedAt time.Time
	PRRef     string
	File      Path
	Range     *LineRange
	Operators []string
	Accepted  int
}

// LineRange is an inclusive, 1-indexed line range.
type LineRange struct {
	Lo int
	Hi int
}

// Valid reports whether the range is non-empty and well-formed.
func (r LineRange) Valid() bool {
	return r.Lo > 0 && r.Lo <= r.Hi
}

// Contains reports whether line falls within the range.
func (r LineRange) Contains(line int) bool {
	return line >= r.Lo && line <= r.Hi
}
