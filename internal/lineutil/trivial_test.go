package lineutil

import "testing"

func TestIsTrivial(t *testing.T) {
	cases := []struct {
		name string
		line string
		want bool
	}{
		{"empty", "", true},
		{"whitespace", "   \t", true},
		{"line comment", "// a note", true},
		{"block comment open", "/* start", true},
		{"continuation star", " * still a comment", true},
		{"preprocessor", "#include <vector>", true},
		{"brace only", "    {", true},
		{"close brace semicolon", "};", true},
		{"real statement", "if (a < b) return 1;", false},
		{"assignment", "int x = 5;", false},
		{"function call", "DoSomething(x, y);", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTrivial(tc.line); got != tc.want {
				t.Errorf("IsTrivial(%q) = %v, want %v", tc.line, got, tc.want)
			}
		})
	}
}
