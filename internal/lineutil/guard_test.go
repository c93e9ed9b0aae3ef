package lineutil

import "testing"

func TestScanLine_StringLiteralGuard(t *testing.T) {
	text := `LogPrintf("value == %d", x == 1);`
	mask, open := ScanLine(text, false)
	if open {
		t.Fatalf("expected block comment not open at end of line")
	}

	stringStart := indexOf(text, `"value == %d"`)
	if IsCode(mask, stringStart, stringStart+2) {
		t.Errorf("expected quoted text to not be classified as code")
	}

	codeEq := lastIndexOf(text, "==")
	if !IsCode(mask, codeEq, codeEq+2) {
		t.Errorf("expected the real == comparison to be classified as code")
	}
}

func TestScanLine_LineCommentGuard(t *testing.T) {
	text := `x = 1; // was x == 2 before`
	mask, _ := ScanLine(text, false)

	codeEq := indexOf(text, "=")
	if !IsCode(mask, codeEq, codeEq+1) {
		t.Errorf("expected assignment before // to be code")
	}

	commentEq := lastIndexOf(text, "==")
	if IsCode(mask, commentEq, commentEq+2) {
		t.Errorf("expected == inside the comment to not be code")
	}
}

func TestScanLine_BlockCommentCarriesAcrossLines(t *testing.T) {
	_, open := ScanLine("/* starts here, x == 1", false)
	if !open {
		t.Fatalf("expected block comment left open")
	}

	line := "still inside x == 2 */ real_code == 3"
	mask, open := ScanLine(line, true)
	if open {
		t.Fatalf("expected block comment closed by end of second line")
	}

	closingEq := lastIndexOf(line, "==")
	if !IsCode(mask, closingEq, closingEq+2) {
		t.Errorf("expected code after closing */ to be classified as code")
	}
}

func TestScanLine_Preprocessor(t *testing.T) {
	mask, open := ScanLine(`#define LIMIT 100`, false)
	if open {
		t.Fatalf("preprocessor lines never leave a block comment open")
	}

	if IsCode(mask, 0, len(mask.Kinds)) {
		t.Errorf("expected entire preprocessor line to be non-code")
	}
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}

	return -1
}

func lastIndexOf(s, substr string) int {
	last := -1
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			last = i
		}
	}

	return last
}
