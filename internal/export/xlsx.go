package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// ExportHistoryXLSX writes the print history to an Excel workbook. Filament
// details are resolved through the given lookup; records referencing
// deleted spools keep their row with an empty filament column.
func ExportHistoryXLSX(path string, prints []model.PrintRecord, filaments []model.Filament, disp model.DisplayContext) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Print History"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	widths := []float64{22, 32, 26, 14, 14, 30}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headers := []string{"Date", "Print", "Filament", "Weight (g)", "Price", "G-code File"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s1", columns[i])
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header %s: %w", h, err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	byID := make(map[string]model.Filament, len(filaments))
	for _, fil := range filaments {
		byID[fil.ID] = fil
	}

	for i, p := range prints {
		row := i + 2

		filamentLabel := ""
		if fil, ok := byID[p.FilamentID]; ok {
			filamentLabel = fmt.Sprintf("%s %s", fil.Brand, fil.Type)
		}
		price := ""
		if p.Price != nil {
			price = disp.Format(*p.Price)
		}
		gcodeFile := ""
		if p.GCodeFile != nil {
			gcodeFile = *p.GCodeFile
		}

		values := []interface{}{p.Timestamp, p.PrintName, filamentLabel, p.WeightUsed, price, gcodeFile}
		for j, v := range values {
			cell := fmt.Sprintf("%s%d", columns[j], row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	return f.SaveAs(path)
}
