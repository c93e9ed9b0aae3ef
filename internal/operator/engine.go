package operator

import (
	"mutacore.dev/mutacore/internal/lineutil"
	"mutacore.dev/mutacore/internal/model"
)

// Engine walks a source line against the operator catalog and returns the
// candidates each operator's regex admits.
type Engine struct {
	registry         *Registry
	onlySecurity     bool
	oneMutantPerLine bool
}

// Options configure how the engine walks the catalog.
type Options struct {
	// OnlySecurity restricts generation to the security operator subset.
	OnlySecurity bool
	// OneMutantPerLine keeps only the first candidate a line admits,
	// in catalog order.
	OneMutantPerLine bool
}

// NewEngine builds an engine over the full catalog.
func NewEngine(opts Options) *Engine {
	return &Engine{
		registry:         NewRegistry(),
		onlySecurity:     opts.OnlySecurity,
		oneMutantPerLine: opts.OneMutantPerLine,
	}
}

// Generate returns every candidate a line admits, in deterministic
// catalog order, honoring string/comment/preprocessor guards and the
// test-only restriction.
func (e *Engine) Generate(file model.Path, kind model.FileKind, lineNo int, text string) []model.Candidate {
	if lineutil.IsTrivial(text) {
		return nil
	}

	mask, _ := lineutil.ScanLine(text, false)

	ops := e.registry.All()
	if e.onlySecurity {
		ops = e.registry.OnlySecurity()
	}

	var out []model.Candidate

	for _, op := range ops {
		if op.TestOnly && kind == model.KindProduction {
			continue
		}

		loc := op.Pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		start, end := loc[0], loc[1]
		if !lineutil.IsCode(mask, start, end) {
			continue
		}

		match := text[start:end]
		groups := submatchStrings(text, loc)

		mutatedFragment := op.Rewrite(match, groups)
		mutatedLine := text[:start] + mutatedFragment + text[end:]

		if mutatedLine == text {
			continue
		}

		out = append(out, model.Candidate{
			File:             file,
			Line:             lineNo,
			Column:           model.ColumnSpan{Start: start, End: end},
			OperatorID:       op.ID,
			Category:         model.Category(op.Category),
			OriginalFragment: match,
			MutatedFragment:  mutatedFragment,
			OriginalLine:     text,
			MutatedLine:      mutatedLine,
		})

		if e.oneMutantPerLine {
			break
		}
	}

	return out
}

func submatchStrings(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)

	for i := range groups {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo < 0 || hi < 0 {
			continue
		}

		groups[i] = text[lo:hi]
	}

	return groups
}
