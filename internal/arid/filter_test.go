package arid

import "testing"

func TestFilter_SimpleLineArid(t *testing.T) {
	f := NewFilter(DefaultExpertise())

	lines := []string{
		"vec.reserve(100);",
		"int total = calculate_sum(a, b);",
	}

	if !f.IsArid(lines, 0) {
		t.Errorf("expected reserve() call to be arid")
	}

	if f.IsArid(lines, 1) {
		t.Errorf("expected calculate_sum call to not be arid")
	}
}

func TestFilter_CompoundAridOnlyIfAllChildrenArid(t *testing.T) {
	f := NewFilter(DefaultExpertise())

	allArid := []string{
		"void LogState() {",
		"    LogPrintf(\"state=%d\", s);",
		"    vec.reserve(10);",
		"}",
	}

	if !f.IsArid(allArid, 0) {
		t.Errorf("expected block with all-arid children to be arid")
	}

	mixed := []string{
		"void ProcessBlock() {",
		"    vec.reserve(10);",
		"    total = total + 1;",
		"}",
	}

	if f.IsArid(mixed, 0) {
		t.Errorf("expected block with a non-arid child to not be arid")
	}
}

func TestFilter_NamespaceAndStatementsAreArid(t *testing.T) {
	f := NewFilter(DefaultExpertise())

	lines := []string{
		"namespace wallet {",
		"// a comment",
		"#include <vector>",
		";",
	}

	for i := range lines {
		if !f.IsArid(lines, i) {
			t.Errorf("expected line %d (%q) to be arid", i, lines[i])
		}
	}
}

func TestFilter_NamespaceReferenceIsNotArid(t *testing.T) {
	f := NewFilter(DefaultExpertise())

	lines := []string{
		"using namespace std;",
		"std::vector<int> v = GetItems();",
		"bool ok = std::all_of(v.begin(), v.end(), pred);",
	}

	if !f.IsArid(lines, 0) {
		t.Errorf("expected a bare using-namespace declaration to be arid")
	}

	if f.IsArid(lines, 1) {
		t.Errorf("expected a line merely referencing std:: to not be arid")
	}

	if f.IsArid(lines, 2) {
		t.Errorf("expected a line merely referencing std:: to not be arid")
	}
}

func TestFilter_ShouldMutateIsInverse(t *testing.T) {
	f := NewFilter(DefaultExpertise())

	lines := []string{"int total = a + b;"}
	if !f.ShouldMutate(lines, 0) {
		t.Errorf("expected a plain assignment to be mutate-eligible")
	}
}

func TestShouldSkipLiteral(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{`assert(x > 0);`, true},
		{`LogPrintf("done\n");`, true},
		{`if (EnableFuzzDeterminism()) return;`, true},
		{`int balance = GetBalance();`, false},
	}

	for _, tc := range cases {
		if got := ShouldSkipLiteral(tc.line); got != tc.want {
			t.Errorf("ShouldSkipLiteral(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}
