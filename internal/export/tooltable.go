package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const toolSheet = "Tools"

var toolColumns = []string{"Tool", "Label", "Diameter (mm)", "Spindle (RPM)", "Direction", "Horiz Feed (mm/s)", "Vert Feed (mm/s)", "Operations"}

// WriteToolTable writes the job's tool controllers to an XLSX workbook with
// one row per tool.
func WriteToolTable(path string, s JobSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", toolSheet); err != nil {
		return fmt.Errorf("failed to name tool sheet: %w", err)
	}

	for col, title := range toolColumns {
		if err := setCell(f, col+1, 1, title); err != nil {
			return err
		}
	}
	for i, t := range s.Tools {
		row := i + 2
		values := []any{t.Number, t.Label, t.Diameter, t.SpindleSpeed, t.SpindleDir, t.HorizFeed, t.VertFeed, t.Operations}
		for col, v := range values {
			if err := setCell(f, col+1, row, v); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write tool table: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(toolSheet, cell, v)
}
