package interfaces

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	dataset "analyzer-training/internal/dataset/domain"
)

// BuildProcessedXLSX renders the build summary and the processed rows as a workbook.
func BuildProcessedXLSX(summary dataset.BuildSummary, rows []dataset.ProcessedRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	summarySheet := "summary"
	rowsSheet := "processed"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(rowsSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Processed Dataset")
	_ = f.SetCellValue(summarySheet, "A3", "Build")
	_ = f.SetCellValue(summarySheet, "B3", summary.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Window")
	_ = f.SetCellValue(summarySheet, "B4", summary.Window)
	_ = f.SetCellValue(summarySheet, "A5", "Rows")
	_ = f.SetCellValue(summarySheet, "B5", summary.Rows)
	_ = f.SetCellValue(summarySheet, "A6", "Dropped samples")
	_ = f.SetCellValue(summarySheet, "B6", summary.Dropped)
	_ = f.SetCellValue(summarySheet, "A7", "Current issues")
	_ = f.SetCellValue(summarySheet, "B7", summary.CurrentIssues)
	_ = f.SetCellValue(summarySheet, "A8", "Voltage issues")
	_ = f.SetCellValue(summarySheet, "B8", summary.VoltageIssues)
	_ = f.SetCellValue(summarySheet, "A9", "Voltage THD")
	_ = f.SetCellValue(summarySheet, "B9", summary.VoltageTHD)

	for i, name := range dataset.ProcessedHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(rowsSheet, cell, name)
	}
	for i, row := range rows {
		line := i + 2
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("A%d", line), row.Current)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("B%d", line), flag(row.CurrentIssue))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("C%d", line), row.Voltage)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("D%d", line), flag(row.VoltageIssue))
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("E%d", line), row.ActivePower)
		_ = f.SetCellValue(rowsSheet, fmt.Sprintf("F%d", line), row.Frequency)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildSummaryPDF renders a one-page report for a build.
func BuildSummaryPDF(summary dataset.BuildSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, fmt.Sprintf("Dataset Build: %s", summary.Kind))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Build: %s", summary.ID),
		fmt.Sprintf("Started: %s", summary.StartedAt.Format(time.RFC3339)),
		fmt.Sprintf("Duration: %s", summary.Duration().Round(time.Millisecond)),
		fmt.Sprintf("Rows: %d", summary.Rows),
	}
	if summary.Window != "" {
		lines = append(lines, fmt.Sprintf("Window: %s", summary.Window))
	}
	switch summary.Kind {
	case dataset.KindProcessed:
		lines = append(lines,
			fmt.Sprintf("Records: %d", summary.Records),
			fmt.Sprintf("Dropped samples: %d", summary.Dropped),
			fmt.Sprintf("Current issues: %d", summary.CurrentIssues),
			fmt.Sprintf("Voltage issues: %d", summary.VoltageIssues),
			fmt.Sprintf("Voltage THD: %.6f", summary.VoltageTHD),
		)
	case dataset.KindSynthetic:
		lines = append(lines,
			fmt.Sprintf("Seed: %d", summary.Seed),
			fmt.Sprintf("Anomalies: %d", summary.Anomalies),
		)
	}
	for _, line := range lines {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	if len(summary.Lengths) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 6, "Series", "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, "Samples", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		names := make([]string, 0, len(summary.Lengths))
		for name := range summary.Lengths {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pdf.CellFormat(50, 6, name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%d", summary.Lengths[name]), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
	}

	if len(summary.Artifacts) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Artifacts")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		for _, artifact := range summary.Artifacts {
			pdf.Cell(0, 5, artifact)
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flag(v bool) int {
	if v {
		return 1
	}
	return 0
}
