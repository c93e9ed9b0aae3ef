package arid

import "strings"

// doNotMutateSubstrings is a fast literal prefilter applied before the
// regex catalog even runs: any line containing one of these substrings
// is assertion or logging scaffolding and is skipped outright.
var doNotMutateSubstrings = []string{
	"assert",
	"Assume",
	"CHECK_NONFATAL",
	"LogPrintf",
	"LogPrint",
	"LogDebug",
	"strprintf",
	"G_FUZZING",
	"self.log",
}

// skipIfContainSubstrings mirrors get_skip_if_contain_patterns: lines
// naming these identifiers are skipped regardless of file kind, because
// mutating them reliably produces a build failure rather than a useful
// mutant (fuzz-determinism toggles, known unstable counters, RPC schema
// declarations).
var skipIfContainSubstrings = []string{
	"EnableFuzzDeterminism",
	"nLostUnk",
	"RPCArg::Type::",
}

// ShouldSkipLiteral reports whether line contains a do-not-mutate or
// skip-if-contain substring and should never reach the operator engine.
func ShouldSkipLiteral(line string) bool {
	for _, s := range doNotMutateSubstrings {
		if strings.Contains(line, s) {
			return true
		}
	}

	for _, s := range skipIfContainSubstrings {
		if strings.Contains(line, s) {
			return true
		}
	}

	return false
}
