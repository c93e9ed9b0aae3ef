// Package lineutil provides the brace-balanced, string/comment-aware line
// scanner shared by the operator engine and the selection pipeline. No real C++ parse is attempted; spec.md explicitly
// rules one out. This is the "minimal tokenizer sufficient for these
// checks" it calls for.
package lineutil

import "strings"

// IsTrivial reports whether a line can never admit a mutation: empty,
// comment-only, a preprocessor directive, or brace-only punctuation.
func IsTrivial(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return true
	}

	if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "/*") || strings.HasPrefix(t, "*") {
		return true
	}

	if strings.HasPrefix(t, "#") {
		return true
	}

	switch t {
	case "{", "}", "};", "){", ");":
		return true
	}

	return isBraceOnly(t)
}

func isBraceOnly(t string) bool {
	for _, r := range t {
		switch r {
		case '{', '}', '(', ')', ';', ' ', '\t':
		default:
			return false
		}
	}

	return true
}
