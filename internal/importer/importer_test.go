package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── Delimiter Detection Tests ───

func TestDetectCommaDelimiter(t *testing.T) {
	data := []byte("color,brand,type,weight\n#FF0000,ESUN,PLA,1000\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma, got %q", got)
	}
}

func TestDetectSemicolonDelimiter(t *testing.T) {
	data := []byte("color;brand;type;weight\n#FF0000;ESUN;PLA;1000\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon, got %q", got)
	}
}

func TestDetectTabDelimiter(t *testing.T) {
	data := []byte("color\tbrand\ttype\tweight\n#FF0000\tESUN\tPLA\t1000\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab, got %q", got)
	}
}

// ─── Column Detection Tests ───

func TestDetectColumnsByHeader(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Brand", "Material", "Weight g", "Colour"})
	if !hasHeader {
		t.Fatal("expected header detection")
	}
	if mapping.Brand != 0 || mapping.Type != 1 || mapping.Weight != 2 || mapping.Color != 3 {
		t.Errorf("unexpected mapping: %+v", mapping)
	}
	if mapping.WithoutSpool != -1 {
		t.Errorf("absent column should stay unmapped, got %d", mapping.WithoutSpool)
	}
}

func TestDetectColumnsPolishAliases(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"marka", "material", "waga", "bez szpuli"})
	if !hasHeader {
		t.Fatal("expected header detection for Polish aliases")
	}
	if mapping.Brand != 0 || mapping.Weight != 2 || mapping.WithoutSpool != 3 {
		t.Errorf("unexpected mapping: %+v", mapping)
	}
}

func TestDetectColumnsPositionalFallback(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"#FF0000", "ESUN", "PLA", "1000"})
	if hasHeader {
		t.Fatal("data row should not be treated as a header")
	}
	if mapping.Color != 0 || mapping.Brand != 1 || mapping.Type != 2 || mapping.Weight != 3 || mapping.WithoutSpool != 4 {
		t.Errorf("unexpected positional mapping: %+v", mapping)
	}
}

// ─── CSV Import Tests ───

func TestImportCSVWithHeader(t *testing.T) {
	csvData := "brand,type,weight,color,without spool\n" +
		"esun,pla,1000,#FF0000,yes\n" +
		"devil,petg,1200,,no\n"

	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Spools) != 2 {
		t.Fatalf("expected 2 spools, got %d", len(result.Spools))
	}

	first := result.Spools[0]
	if first.Brand != "ESUN" || first.Type != "PLA" || first.WeightG != 1000 || !first.WithoutSpool {
		t.Errorf("unexpected first spool: %+v", first)
	}
	second := result.Spools[1]
	if second.Color != "#808080" {
		t.Errorf("missing color should default to grey, got %q", second.Color)
	}
	if second.WithoutSpool {
		t.Error("'no' flag should mean gross weight")
	}
}

func TestImportCSVHeadless(t *testing.T) {
	csvData := "#FF0000,ESUN,PLA,1000\n#00FF00,DEVIL,PETG,1200,tak\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Spools) != 2 {
		t.Fatalf("expected 2 spools, got %d (errors: %v)", len(result.Spools), result.Errors)
	}
	if !result.Spools[1].WithoutSpool {
		t.Error("'tak' should parse as true")
	}
}

func TestImportCSVRowErrors(t *testing.T) {
	csvData := "brand,type,weight\n" +
		"ESUN,PLA,1000\n" +
		",PLA,500\n" +
		"DEVIL,,500\n" +
		"DEVIL,PETG,not-a-number\n" +
		"DEVIL,PETG,-5\n"

	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Spools) != 1 {
		t.Errorf("expected 1 valid spool, got %d", len(result.Spools))
	}
	if len(result.Errors) != 4 {
		t.Errorf("expected 4 row errors, got %d: %v", len(result.Errors), result.Errors)
	}
}

func TestImportCSVUnknownFlagWarns(t *testing.T) {
	csvData := "brand,type,weight,without spool\nESUN,PLA,1000,maybe\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Spools) != 1 {
		t.Fatalf("expected the row to import, errors: %v", result.Errors)
	}
	if result.Spools[0].WithoutSpool {
		t.Error("unknown flag should fall back to gross weight")
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected a warning, got %v", result.Warnings)
	}
}

func TestImportCSVSkipsEmptyRows(t *testing.T) {
	csvData := "brand,type,weight\nESUN,PLA,1000\n,,\nDEVIL,PETG,500\n"
	result := ImportCSVFromReader(strings.NewReader(csvData), ',')
	if len(result.Spools) != 2 {
		t.Errorf("expected 2 spools with the blank row skipped, got %d", len(result.Spools))
	}
	if len(result.Errors) != 0 {
		t.Errorf("blank row should not count as an error: %v", result.Errors)
	}
}

func TestImportCSVFileWithSemicolons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spools.csv")
	content := "brand;type;weight\nESUN;PLA;1000\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if len(result.Spools) != 1 {
		t.Fatalf("expected 1 spool, errors: %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a delimiter warning for semicolons")
	}
}

func TestImportCSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) == 0 {
		t.Error("expected an error for an empty file")
	}
}

// ─── Excel Import Tests ───

func TestImportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spools.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "brand")
	f.SetCellValue(sheet, "B1", "type")
	f.SetCellValue(sheet, "C1", "weight")
	f.SetCellValue(sheet, "D1", "color")
	f.SetCellValue(sheet, "A2", "esun")
	f.SetCellValue(sheet, "B2", "pla")
	f.SetCellValue(sheet, "C2", 1000)
	f.SetCellValue(sheet, "D2", "#FF0000")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	result := ImportExcel(path)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Spools) != 1 {
		t.Fatalf("expected 1 spool, got %d", len(result.Spools))
	}
	spool := result.Spools[0]
	if spool.Brand != "ESUN" || spool.Type != "PLA" || spool.WeightG != 1000 {
		t.Errorf("unexpected spool: %+v", spool)
	}
}

func TestImportExcelMissingFile(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "nope.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected an error for a missing file")
	}
}
