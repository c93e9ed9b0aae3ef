package report

import (
	"encoding/json"
	"os"
	"time"

	"mutacore.dev/mutacore/internal/materializer"
	"mutacore.dev/mutacore/internal/model"
)

// SurvivorEntry is one surviving mutant's record within a file's group,
// the Go shape of the original tool's MutantInfo.
type SurvivorEntry struct {
	MutantID int    `json:"mutant_id"`
	Commit   string `json:"commit"`
	Diff     string `json:"diff"`
	Operator string `json:"operator"`
	Status   string `json:"status"`
}

// SurvivorReport is the JSON document for one file's surviving mutants;
// analyze writes one per file that has survivors, and a 100% kill rate
// writes nothing, matching the original tool's skip-on-perfect-score
// behavior.
type SurvivorReport struct {
	Filename        string                  `json:"filename"`
	MutationScore   float64                 `json:"mutation_score"`
	Date            string                  `json:"date"`
	CommitHash      string                  `json:"commit_hash"`
	SurvivorsByLine map[int][]SurvivorEntry `json:"survivors_by_line"`
}

// BuildSurvivorReport groups surviving mutants by source line, the way
// report.rs's parse_diffs_to_json keys diffs by the hunk's starting
// line so a reviewer can jump straight to the weak spot.
func BuildSurvivorReport(filename model.Path, score float64, commitHash string, survivors []materializer.Metadata, now time.Time) SurvivorReport {
	report := SurvivorReport{
		Filename:        string(filename),
		MutationScore:   score,
		Date:            now.Format("02/01/2006 15:04:05"),
		CommitHash:      commitHash,
		SurvivorsByLine: map[int][]SurvivorEntry{},
	}

	for _, meta := range survivors {
		entry := SurvivorEntry{
			MutantID: meta.MutantID,
			Commit:   commitHash,
			Diff:     meta.Diff,
			Operator: meta.OperatorID,
			Status:   "alive",
		}

		report.SurvivorsByLine[meta.Line] = append(report.SurvivorsByLine[meta.Line], entry)
	}

	return report
}

// WriteSurvivorReport appends report to a JSON array file at path,
// creating it if absent, skipping the write entirely when there are no
// surviving mutants to record.
func WriteSurvivorReport(path string, r SurvivorReport) error {
	if len(r.SurvivorsByLine) == 0 {
		return nil
	}

	var all []SurvivorReport

	if existing, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(existing, &all); err != nil {
			return model.NewError(model.KindParse, "parsing existing survivor report", err)
		}
	} else if !os.IsNotExist(err) {
		return model.NewError(model.KindIo, "reading existing survivor report", err)
	}

	all = append(all, r)

	out, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return model.NewError(model.KindIo, "marshaling survivor report", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return model.NewError(model.KindIo, "writing survivor report", err)
	}

	return nil
}
