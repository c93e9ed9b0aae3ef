// Package arid approximates the arid(N) node-aridity check: a
// conservative recursive rule that decides whether a line's content is
// "dead weight" (logging, bookkeeping, scaffolding) that mutation would
// waste a build-and-test cycle confirming. Without a real parser there
// are no nodes, only lines and a brace-balance approximation of
// compound/simple structure.
package arid

import "regexp"

// Rule is a single expert pattern: a named category and the regex that
// recognizes it.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Expertise is the catalog of patterns that mark a line as arid on sight,
// mirroring the function/variable/statement/namespace pattern groups.
type Expertise struct {
	FunctionCalls []Rule
	Variables     []Rule
	Statements    []Rule
	Namespaces    []Rule
}

// DefaultExpertise returns the built-in catalog. Callers may append their
// own rules via AddFunctionRule for project-specific scaffolding.
func DefaultExpertise() *Expertise {
	return &Expertise{
		FunctionCalls: []Rule{
			{"capacity-hint", regexp.MustCompile(`\.(reserve|resize)\(`)},
			{"stream-output", regexp.MustCompile(`std::(cout|cerr)\s*<<`)},
			{"printf-family", regexp.MustCompile(`\bprintf\s*\(`)},
			{"log-family", regexp.MustCompile(`\b(LogPrintf|LogPrint|LogDebug)\s*\(`)},
			{"debug-trace", regexp.MustCompile(`\b(DEBUG_|TRACE_)\w*\s*\(`)},
			{"fuzz-guard", regexp.MustCompile(`\bG_FUZZING\b`)},
			{"raw-alloc", regexp.MustCompile(`\b(malloc|calloc|realloc|free)\s*\(`)},
			{"thread-primitive", regexp.MustCompile(`std::(thread|mutex|lock_guard)\b`)},
			{"clock-read", regexp.MustCompile(`\.now\(\)|steady_clock|high_resolution_clock`)},
		},
		Variables: []Rule{
			{"time-named", regexp.MustCompile(`\w*_time\b`)},
			{"duration-named", regexp.MustCompile(`\w*_duration\b`)},
			{"span-named", regexp.MustCompile(`\w*_(start|end)\b`)},
			{"diagnostic-named", regexp.MustCompile(`\w*_(debug|log|trace)\b`)},
			{"scratch-named", regexp.MustCompile(`\b(temp|tmp|scratch)_\w*`)},
		},
		Statements: []Rule{
			{"comment", regexp.MustCompile(`^\s*(//|/\*|\*)`)},
			{"preprocessor", regexp.MustCompile(`^\s*#`)},
			{"empty-statement", regexp.MustCompile(`^\s*;\s*$`)},
			{"namespace-decl", regexp.MustCompile(`^\s*(namespace|using namespace)\b`)},
			{"forward-decl", regexp.MustCompile(`^\s*(class|struct)\s+\w+\s*;\s*$`)},
		},
		Namespaces: defaultNamespacePatterns(),
	}
}

// AddFunctionRule appends a user-supplied expert rule to the
// function-call catalog at lowest priority (consulted last).
func (e *Expertise) AddFunctionRule(name, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}

	e.FunctionCalls = append(e.FunctionCalls, Rule{Name: name, Pattern: re})

	return nil
}

// defaultNamespacePatterns recognizes lines that consist solely of a
// using-namespace declaration, never a line that merely references the
// namespace (e.g. "std::vector<int> v;" must stay mutable).
func defaultNamespacePatterns() []Rule {
	return []Rule{
		{"std", regexp.MustCompile(`^\s*using\s+namespace\s+std\s*;\s*$`)},
		{"boost", regexp.MustCompile(`^\s*using\s+namespace\s+boost\s*;\s*$`)},
		{"testing", regexp.MustCompile(`^\s*using\s+namespace\s+testing\s*;\s*$`)},
		{"gtest", regexp.MustCompile(`^\s*using\s+namespace\s+gtest\s*;\s*$`)},
	}
}
