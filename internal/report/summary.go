package report

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"

	"mutacore.dev/mutacore/internal/model"
)

// Summary aggregates a completed analysis run's outcomes per file, the
// shape the final table consumes.
type Summary struct {
	Total        int
	Killed       int
	Survived     int
	BuildFailed  int
	TimedOut     int
	SurvivalRate float64
	PerFile      map[model.Path]FileTally
}

// FileTally counts one file's outcomes.
type FileTally struct {
	Total    int
	Killed   int
	Survived int
}

// RenderTable builds a plain-text summary table, one row per file plus
// a totals footer, in the teacher's tablewriter idiom.
func RenderTable(s Summary) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"File", "Killed", "Survived", "Total"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_CENTER,
	})

	files := make([]model.Path, 0, len(s.PerFile))
	for f := range s.PerFile {
		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	for _, f := range files {
		t := s.PerFile[f]
		table.Append([]string{string(f), fmt.Sprintf("%d", t.Killed), fmt.Sprintf("%d", t.Survived), fmt.Sprintf("%d", t.Total)})
	}

	table.SetFooter([]string{
		"Total",
		fmt.Sprintf("%d", s.Killed),
		fmt.Sprintf("%d", s.Survived),
		fmt.Sprintf("%d", s.Total),
	})

	table.Render()

	buf.WriteString(fmt.Sprintf("\nsurvival rate: %.2f%% (build failed: %d, timed out: %d)\n",
		s.SurvivalRate*100, s.BuildFailed, s.TimedOut))

	return buf.String()
}

// Summarize builds a Summary from a run's recorded outcomes, resolving
// each outcome's file through a lookup built at materialization time
// (mutant ID -> file).
func Summarize(outcomes []model.MutantOutcome, fileOf map[int]model.Path, survivalRate float64) Summary {
	s := Summary{SurvivalRate: survivalRate, PerFile: map[model.Path]FileTally{}}

	for _, o := range outcomes {
		s.Total++

		switch o.Status {
		case model.Killed:
			s.Killed++
		case model.Survived:
			s.Survived++
		case model.BuildFailed:
			s.BuildFailed++
		case model.TimedOut:
			s.TimedOut++
		}

		file := fileOf[o.MutantID]

		t := s.PerFile[file]
		t.Total++

		if o.Status == model.Killed {
			t.Killed++
		} else if o.Status == model.Survived {
			t.Survived++
		}

		s.PerFile[file] = t
	}

	return s
}
