package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/talentfit/cv-ranker/internal/matching"
	"github.com/talentfit/cv-ranker/internal/profile"
	"github.com/talentfit/cv-ranker/internal/ranking"
)

func testResult() *ranking.Result {
	return &ranking.Result{
		Entries: []ranking.Entry{
			{
				Candidate: &profile.CandidateProfile{Name: "Jane Doe"},
				Score: &matching.MatchScore{
					FinalScore: 0.85,
					ComponentScores: map[string]float64{
						profile.ComponentSkills:      0.9,
						profile.ComponentExperience:  0.8,
						profile.ComponentEducation:   0.85,
						profile.ComponentPreferences: 1.0,
					},
				},
			},
			{
				Candidate: &profile.CandidateProfile{Name: "John Roe"},
				Score: &matching.MatchScore{
					FinalScore:              0,
					Disqualified:            true,
					DisqualificationReasons: []string{"missing mandatory skill: Python"},
					ComponentScores: map[string]float64{
						profile.ComponentSkills:      0.2,
						profile.ComponentExperience:  0.5,
						profile.ComponentEducation:   0.6,
						profile.ComponentPreferences: 1.0,
					},
				},
			},
		},
		Failures: []ranking.Failure{
			{Candidate: "Broken", Reason: `profile "Broken" is missing required field "skills"`},
		},
	}
}

func TestExportExcel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.xlsx")
	job := &profile.JobProfile{Title: "ML Engineer"}

	if err := ExportExcel(path, job, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Ranking" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	title, err := f.GetCellValue("Summary", "B3")
	if err != nil {
		t.Fatalf("reading job title cell: %v", err)
	}
	if title != "ML Engineer" {
		t.Fatalf("job title cell = %q", title)
	}

	name, err := f.GetCellValue("Ranking", "B2")
	if err != nil {
		t.Fatalf("reading candidate cell: %v", err)
	}
	if name != "Jane Doe" {
		t.Fatalf("first ranked candidate = %q, want Jane Doe", name)
	}

	reasons, err := f.GetCellValue("Ranking", "I3")
	if err != nil {
		t.Fatalf("reading reasons cell: %v", err)
	}
	if reasons != "missing mandatory skill: Python" {
		t.Fatalf("disqualification reasons cell = %q", reasons)
	}
}

func TestExportExcelAppendsExtension(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "report")
	job := &profile.JobProfile{Title: "t"}

	if err := ExportExcel(base, job, &ranking.Result{}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := os.Stat(base + ".xlsx"); err != nil {
		t.Fatalf("expected %s.xlsx to exist: %v", base, err)
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	name, err := DumpToTmpFile(testResult())
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}

	var decoded ranking.Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("dump is not valid JSON: %v", err)
	}
	if len(decoded.Entries) != 2 || len(decoded.Failures) != 1 {
		t.Fatalf("dump lost entries: %d entries, %d failures", len(decoded.Entries), len(decoded.Failures))
	}
	if decoded.Entries[0].Candidate.Name != "Jane Doe" {
		t.Fatalf("unexpected first entry: %q", decoded.Entries[0].Candidate.Name)
	}
}
