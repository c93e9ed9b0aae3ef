package arid

import "strings"

// Filter decides whether a candidate line sits inside an arid region of
// the file and should be dropped rather than mutated.
type Filter struct {
	expertise *Expertise
	cache     map[int]bool
	cacheFor  []string
}

// NewFilter builds a filter over the given expertise. Pass
// DefaultExpertise() unless the caller has appended expert rules.
func NewFilter(expertise *Expertise) *Filter {
	return &Filter{
		expertise: expertise,
		cache:     make(map[int]bool),
	}
}

// IsArid reports whether lines[lineIndex] (0-indexed) is arid: a simple
// line is arid if any expert pattern recognizes it; a compound line
// (opens a brace block) is arid only if every line in the block it
// opens is itself arid — mirroring the all-children-arid rule for
// compound nodes, approximated by brace balance since there is no parse
// tree to walk.
func (f *Filter) IsArid(lines []string, lineIndex int) bool {
	// Cached verdicts belong to one lines slice; a different slice (another
	// file) starts a fresh cache.
	if !sameLines(f.cacheFor, lines) {
		f.cache = make(map[int]bool)
		f.cacheFor = lines
	}

	if cached, ok := f.cache[lineIndex]; ok {
		return cached
	}

	result := f.evaluate(lines, lineIndex)
	f.cache[lineIndex] = result

	return result
}

func sameLines(a, b []string) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

func (f *Filter) evaluate(lines []string, lineIndex int) bool {
	if lineIndex < 0 || lineIndex >= len(lines) {
		return false
	}

	line := lines[lineIndex]

	if isNamespaceLine(line) || matchesAny(f.expertise.Namespaces, line) {
		return true
	}

	if matchesAny(f.expertise.Statements, line) {
		return true
	}

	if matchesAny(f.expertise.FunctionCalls, line) && !opensBlock(line) {
		return true
	}

	if matchesAny(f.expertise.Variables, line) && !opensBlock(line) {
		return true
	}

	if !opensBlock(line) {
		// A simple line with no expert match is conservatively treated
		// as not arid: the default for unknown simple nodes is to mutate.
		return false
	}

	// Compound: arid only if the whole block it opens is arid too.
	blockEnd := matchingBraceLine(lines, lineIndex)
	if blockEnd < 0 {
		return false
	}

	for i := lineIndex + 1; i < blockEnd; i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}

		if !f.evaluate(lines, i) {
			return false
		}
	}

	return true
}

func matchesAny(rules []Rule, line string) bool {
	for _, r := range rules {
		if r.Pattern.MatchString(line) {
			return true
		}
	}

	return false
}

func isNamespaceLine(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "namespace ") || strings.HasPrefix(t, "using namespace ")
}

func opensBlock(line string) bool {
	return strings.Contains(line, "{") && !strings.Contains(line, "}")
}

// matchingBraceLine returns the index of the line whose brace count
// balances the opening brace on lines[openIndex], or -1 if the block
// never closes within the file (defensive: malformed or truncated
// source should never be treated as arid).
func matchingBraceLine(lines []string, openIndex int) int {
	depth := 0

	for i := openIndex; i < len(lines); i++ {
		depth += strings.Count(lines[i], "{")
		depth -= strings.Count(lines[i], "}")

		if depth == 0 {
			return i
		}
	}

	return -1
}

// ShouldMutate is the inverse of IsArid: true when the line is not arid
// (and therefore worth the cost of mutating).
func (f *Filter) ShouldMutate(lines []string, lineIndex int) bool {
	return !f.IsArid(lines, lineIndex)
}
