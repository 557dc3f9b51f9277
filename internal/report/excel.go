// Package report renders a ranking result for human consumption: an Excel
// workbook for recruiters and a JSON dump for audit.
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/talentfit/cv-ranker/internal/profile"
	"github.com/talentfit/cv-ranker/internal/ranking"
)

// Score bands used for row color coding.
const (
	bandHigh   = 0.7
	bandMedium = 0.4
)

// ExportExcel writes the ranking to an xlsx workbook with a summary sheet and
// a ranked-candidates sheet.
func ExportExcel(path string, job *profile.JobProfile, result *ranking.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	summarySheet := "Summary"
	rankingSheet := "Ranking"

	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(rankingSheet); err != nil {
		return fmt.Errorf("creating ranking sheet: %w", err)
	}

	if err := writeSummarySheet(f, summarySheet, job, result); err != nil {
		return fmt.Errorf("writing summary sheet: %w", err)
	}
	if err := writeRankingSheet(f, rankingSheet, result); err != nil {
		return fmt.Errorf("writing ranking sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	return nil
}

func writeSummarySheet(f *excelize.File, sheet string, job *profile.JobProfile, result *ranking.Result) error {
	f.SetColWidth(sheet, "A", "A", 28)
	f.SetColWidth(sheet, "B", "B", 60)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", "Candidate Ranking Report")
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	f.MergeCell(sheet, "A1", "B1")

	disqualified := 0
	var total float64
	for _, entry := range result.Entries {
		if entry.Score.Disqualified {
			disqualified++
			continue
		}
		total += entry.Score.FinalScore
	}
	qualified := len(result.Entries) - disqualified
	average := 0.0
	if qualified > 0 {
		average = total / float64(qualified)
	}

	rows := []struct {
		label string
		value any
	}{
		{"Job title:", job.Title},
		{"Generated:", time.Now().Format("2006-01-02 15:04:05")},
		{"Candidates ranked:", len(result.Entries)},
		{"Qualified:", qualified},
		{"Disqualified:", disqualified},
		{"Scoring failures:", len(result.Failures)},
		{"Average score (qualified):", fmt.Sprintf("%.3f", average)},
	}
	for i, row := range rows {
		cellA := fmt.Sprintf("A%d", i+3)
		f.SetCellValue(sheet, cellA, row.label)
		f.SetCellStyle(sheet, cellA, cellA, labelStyle)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+3), row.value)
	}

	if len(result.Failures) > 0 {
		start := len(rows) + 4
		f.SetCellValue(sheet, fmt.Sprintf("A%d", start), "Failed candidates:")
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", start), fmt.Sprintf("A%d", start), labelStyle)
		for i, failure := range result.Failures {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", start+1+i), failure.Candidate)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", start+1+i), failure.Reason)
		}
	}

	return nil
}

func writeRankingSheet(f *excelize.File, sheet string, result *ranking.Result) error {
	widths := map[string]float64{"A": 8, "B": 26, "C": 12, "D": 12, "E": 12, "F": 12, "G": 14, "H": 14, "I": 50}
	for col, width := range widths {
		f.SetColWidth(sheet, col, col, width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	highStyle, err := bandStyle(f, "C6EFCE")
	if err != nil {
		return err
	}
	mediumStyle, err := bandStyle(f, "FFEB9C")
	if err != nil {
		return err
	}
	lowStyle, err := bandStyle(f, "FFC7CE")
	if err != nil {
		return err
	}
	disqualifiedStyle, err := bandStyle(f, "D9D9D9")
	if err != nil {
		return err
	}

	headers := []string{"Rank", "Candidate", "Final", "Skills", "Experience", "Education", "Preferences", "Disqualified", "Reasons"}
	for col, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+col)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for i, entry := range result.Entries {
		row := i + 2
		score := entry.Score
		components := score.ComponentScores

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Candidate.Name)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("%.3f", score.FinalScore))
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("%.3f", components[profile.ComponentSkills]))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("%.3f", components[profile.ComponentExperience]))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("%.3f", components[profile.ComponentEducation]))
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("%.3f", components[profile.ComponentPreferences]))
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), score.Disqualified)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), strings.Join(score.DisqualificationReasons, "; "))

		style := lowStyle
		switch {
		case score.Disqualified:
			style = disqualifiedStyle
		case score.FinalScore >= bandHigh:
			style = highStyle
		case score.FinalScore >= bandMedium:
			style = mediumStyle
		}
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), style)
	}

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func bandStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}
