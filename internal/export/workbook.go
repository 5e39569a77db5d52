package export

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/realview-labs/realview/internal/benchmark"
	"github.com/realview-labs/realview/internal/inspection"
)

// WorkbookBytes renders cases and the benchmark summary as an XLSX workbook
// for reviewers who work outside the web UI. Sheets: Findings, Summary,
// Leaderboards, At Risk.
func WorkbookBytes(cases []*inspection.CaseRecord, summary *benchmark.Summary) ([]byte, error) {
	f := excelize.NewFile()

	if err := writeFindingsSheet(f, cases); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return nil, err
	}
	if err := writeLeaderboardSheet(f, summary); err != nil {
		return nil, err
	}
	if err := writeAtRiskSheet(f, summary); err != nil {
		return nil, err
	}

	// Drop the default sheet so Findings opens first.
	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex("Findings"); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveWorkbook writes the reviewer workbook to path.
func SaveWorkbook(path string, cases []*inspection.CaseRecord, summary *benchmark.Summary) error {
	data, err := WorkbookBytes(cases, summary)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeFindingsSheet(f *excelize.File, cases []*inspection.CaseRecord) error {
	const sheet = "Findings"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{
		"Property",
		"Room Type",
		"Feature",
		"Severity",
		"Confidence",
		"Evidence",
		"Source File",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, record := range cases {
		for _, room := range record.Rooms {
			for _, feature := range room.ConfirmedFeatures {
				write := func(col int, v any) {
					cell, _ := excelize.CoordinatesToCellName(col, row)
					_ = f.SetCellValue(sheet, cell, v)
				}
				write(1, record.PropertyID)
				write(2, room.RoomType)
				write(3, feature.FeatureID)
				write(4, string(feature.Severity))
				write(5, feature.Confidence)
				write(6, feature.Evidence)
				write(7, feature.SourceFile)
				row++
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "C", 18)
	_ = f.SetColWidth(sheet, "D", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 48)
	_ = f.SetColWidth(sheet, "G", "G", 24)
	return nil
}

func writeSummarySheet(f *excelize.File, summary *benchmark.Summary) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][2]any{
		{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Properties", summary.Properties},
		{"Total Images", summary.Funnel.TotalImages},
		{"Failed Images", summary.Funnel.FailedImages},
		{"Kitchen/Bathroom Images", summary.Funnel.TargetRoomImages},
		{"Noise Reduction", fmt.Sprintf("%.1f%%", summary.Funnel.NoiseReduction*100)},
		{"Actionability Rate", fmt.Sprintf("%.1f%%", summary.ActionabilityRate*100)},
		{"Correct", summary.Classification.Correct},
		{"False Positives", summary.Classification.FalsePositives},
		{"False Negatives", summary.Classification.FalseNegatives},
		{"Precision", fmt.Sprintf("%.1f%%", summary.Classification.Precision*100)},
		{"Recall", fmt.Sprintf("%.1f%%", summary.Classification.Recall*100)},
		{"Feature Agreements", summary.FeatureFeedback.Agreements},
		{"Feature Disagreements", summary.FeatureFeedback.Disagreements},
		{"Mean Pass1 Confidence", summary.AvgPass1Confidence},
		{"Mean Pass2 Confidence", summary.AvgPass2Confidence},
	}
	for i, r := range rows {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		_ = f.SetCellValue(sheet, labelCell, r[0])
		_ = f.SetCellValue(sheet, valueCell, r[1])
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 22)
	return nil
}

func writeLeaderboardSheet(f *excelize.File, summary *benchmark.Summary) error {
	const sheet = "Leaderboards"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Room Type", "Feature", "Count"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, room := range inspection.TargetRoomTypes {
		for _, fc := range summary.Leaderboards[room] {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			write(1, room)
			write(2, fc.FeatureID)
			write(3, fc.Count)
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 18)
	return nil
}

func writeAtRiskSheet(f *excelize.File, summary *benchmark.Summary) error {
	const sheet = "At Risk"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Rank", "Property", "High Severity", "Total Detections"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	// Highlight rows that carry high-severity findings.
	highFill, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFC7CE"}},
	})
	if err != nil {
		return err
	}

	for i, risk := range summary.AtRisk {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, i+1)
		write(2, risk.PropertyID)
		write(3, risk.HighSeverity)
		write(4, risk.TotalDetections)

		if risk.HighSeverity > 0 {
			start, _ := excelize.CoordinatesToCellName(1, i+2)
			end, _ := excelize.CoordinatesToCellName(len(headers), i+2)
			_ = f.SetCellStyle(sheet, start, end, highFill)
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 16)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	return nil
}
