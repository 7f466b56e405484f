// Package importer provides CSV and Excel import functionality for filament
// spool lists. It supports automatic delimiter detection, flexible column
// mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// SpoolRow is one parsed inventory row, ready to be added through the
// store's add-filament path.
type SpoolRow struct {
	Color        string
	Brand        string
	Type         string
	WeightG      int
	WithoutSpool bool
}

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Spools   []SpoolRow
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Color        int
	Brand        int
	Type         int
	Weight       int
	WithoutSpool int
}

// headerAliases maps canonical column names to their accepted aliases (all
// lowercase).
var headerAliases = map[string][]string{
	"color":         {"color", "colour", "hex", "color code"},
	"brand":         {"brand", "manufacturer", "maker", "marka"},
	"type":          {"type", "material", "filament", "filament type"},
	"weight":        {"weight", "weight g", "grams", "g", "initial weight", "waga"},
	"without_spool": {"without spool", "net", "net weight", "no spool", "bez szpuli"},
}

// DetectCSVDelimiter reads the file content and determines the most likely
// CSV delimiter. It tries comma, semicolon, tab, and pipe. The delimiter
// that produces the most consistent (non-one) column count across lines
// wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		score *= firstCols

		if score > bestScore {
			bestScore = score
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a row to determine which columns hold which
// fields. Returns the mapping and true if a header was detected, or a
// default positional mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Color:        -1,
		Brand:        -1,
		Type:         -1,
		Weight:       -1,
		WithoutSpool: -1,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					switch role {
					case "color":
						if mapping.Color == -1 {
							mapping.Color = i
						}
					case "brand":
						if mapping.Brand == -1 {
							mapping.Brand = i
						}
					case "type":
						if mapping.Type == -1 {
							mapping.Type = i
						}
					case "weight":
						if mapping.Weight == -1 {
							mapping.Weight = i
						}
					case "without_spool":
						if mapping.WithoutSpool == -1 {
							mapping.WithoutSpool = i
						}
					}
				}
			}
		}
	}

	if !isHeader {
		// Fall back to positional mapping: Color, Brand, Type, Weight,
		// WithoutSpool
		return ColumnMapping{
			Color:        0,
			Brand:        1,
			Type:         2,
			Weight:       3,
			WithoutSpool: 4,
		}, false
	}

	return mapping, true
}

// parseBool recognizes the flag spellings used in exported sheets.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "tak":
		return true, true
	case "", "false", "no", "n", "0", "nie", "-":
		return false, true
	default:
		return false, false
	}
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a SpoolRow from a row using the given column mapping.
// Returns the spool, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (SpoolRow, string, string) {
	brand := getCell(row, mapping.Brand)
	if brand == "" {
		return SpoolRow{}, fmt.Sprintf("%s: Missing brand value", rowLabel), ""
	}

	materialType := getCell(row, mapping.Type)
	if materialType == "" {
		return SpoolRow{}, fmt.Sprintf("%s: Missing material type", rowLabel), ""
	}

	weightStr := getCell(row, mapping.Weight)
	if weightStr == "" {
		return SpoolRow{}, fmt.Sprintf("%s: Missing weight value", rowLabel), ""
	}
	weight, err := strconv.Atoi(weightStr)
	if err != nil {
		return SpoolRow{}, fmt.Sprintf("%s: Invalid weight '%s'", rowLabel, weightStr), ""
	}
	if weight <= 0 {
		return SpoolRow{}, fmt.Sprintf("%s: Weight must be positive", rowLabel), ""
	}

	spool := SpoolRow{
		Color:   getCell(row, mapping.Color),
		Brand:   model.ToUpper(brand),
		Type:    model.ToUpper(materialType),
		WeightG: weight,
	}
	if spool.Color == "" {
		spool.Color = "#808080"
	}

	var warning string
	flagStr := getCell(row, mapping.WithoutSpool)
	if flagStr != "" {
		flag, ok := parseBool(flagStr)
		if ok {
			spool.WithoutSpool = flag
		} else {
			warning = fmt.Sprintf("%s: Unknown without-spool flag '%s', assuming gross weight", rowLabel, flagStr)
		}
	}

	return spool, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports spools from a CSV file. It automatically detects the
// delimiter and maps columns by header names. Supports comma, semicolon,
// tab, and pipe delimiters.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports spools from a CSV reader with a specific
// delimiter. This is useful for testing or when the delimiter is already
// known.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports spools from an Excel (.xlsx) file. Reads the first
// sheet and auto-detects column mapping from headers.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into spools.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		spool, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Spools = append(result.Spools, spool)
	}

	if len(result.Spools) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}

	return result
}
