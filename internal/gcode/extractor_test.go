package gcode

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// ─── Time Extraction Tests ───

func TestParseCuraTimeSeconds(t *testing.T) {
	path := writeTemp(t, "part.gcode", ";FLAVOR:Marlin\n;TIME:7200\n;Layer height: 0.2\n")
	res := Parse(path)
	if !approx(res.TimeHours, 2.0) {
		t.Errorf("expected 2.0 hours, got %v", res.TimeHours)
	}
}

func TestParsePrusaEstimatedTime(t *testing.T) {
	path := writeTemp(t, "part.gcode",
		"; estimated printing time (normal mode) = 2h 36m 30s\n")
	res := Parse(path)
	want := 2.0 + 36.0/60.0 + 30.0/3600.0
	if !approx(res.TimeHours, want) {
		t.Errorf("expected %v hours, got %v", want, res.TimeHours)
	}
}

func TestParseEstimatedTimeMinutesOnly(t *testing.T) {
	path := writeTemp(t, "part.gcode", "; estimated printing time = 45m\n")
	res := Parse(path)
	if !approx(res.TimeHours, 0.75) {
		t.Errorf("expected 0.75 hours, got %v", res.TimeHours)
	}
}

func TestParseTimeElapsed(t *testing.T) {
	path := writeTemp(t, "part.gcode", ";TIME_ELAPSED:5400.5\n")
	res := Parse(path)
	if !approx(res.TimeHours, 5400.5/3600.0) {
		t.Errorf("expected %v hours, got %v", 5400.5/3600.0, res.TimeHours)
	}
}

func TestParseBinaryTimeMillisecondHeuristic(t *testing.T) {
	// Values above the threshold are milliseconds, below are seconds.
	path := writeTemp(t, "part.bgcode", "print_time:7200000")
	res := Parse(path)
	if !approx(res.TimeHours, 2.0) {
		t.Errorf("large value should be read as ms: expected 2.0 hours, got %v", res.TimeHours)
	}

	path = writeTemp(t, "small.bgcode", "print_time:7200")
	res = Parse(path)
	if !approx(res.TimeHours, 2.0) {
		t.Errorf("small value should be read as seconds: expected 2.0 hours, got %v", res.TimeHours)
	}
}

func TestParseFilenameTimeFallback(t *testing.T) {
	// No readable content: the filename pattern is the only source.
	res := Parse(filepath.Join(t.TempDir(), "benchy_2h36m.gcode"))
	if !approx(res.TimeHours, 2.6) {
		t.Errorf("expected 2.6 hours from filename, got %v", res.TimeHours)
	}
}

func TestParseContentTimeWinsOverFilename(t *testing.T) {
	path := writeTemp(t, "benchy_9h0m.gcode", ";TIME:3600\n")
	res := Parse(path)
	if !approx(res.TimeHours, 1.0) {
		t.Errorf("content time should win over filename, got %v", res.TimeHours)
	}
}

// ─── Weight Extraction Tests ───

func TestParseWeightGrams(t *testing.T) {
	path := writeTemp(t, "part.gcode", "; filament used [g] = 35.79\n")
	res := Parse(path)
	if !approx(res.FilamentWeightG, 35.79) {
		t.Errorf("expected 35.79 g, got %v", res.FilamentWeightG)
	}
	if res.FilamentWeightsG != nil {
		t.Errorf("single-tool job should not report per-tool weights")
	}
}

func TestParseWeightMulticolor(t *testing.T) {
	path := writeTemp(t, "part.gcode", "; total filament weight [g] : 30.98,1.12\n")
	res := Parse(path)
	if !approx(res.FilamentWeightG, 32.10) {
		t.Errorf("expected total 32.10 g, got %v", res.FilamentWeightG)
	}
	if len(res.FilamentWeightsG) != 2 ||
		!approx(res.FilamentWeightsG[0], 30.98) || !approx(res.FilamentWeightsG[1], 1.12) {
		t.Errorf("expected per-tool weights [30.98 1.12], got %v", res.FilamentWeightsG)
	}
}

func TestParseWeightFromLength(t *testing.T) {
	path := writeTemp(t, "part.gcode", ";Filament used: 3.5m\n")
	res := Parse(path)
	if !approx(res.FilamentWeightG, 3.5*2.7) {
		t.Errorf("expected %v g from length, got %v", 3.5*2.7, res.FilamentWeightG)
	}
}

func TestParseWeightFirstPatternWins(t *testing.T) {
	path := writeTemp(t, "part.gcode",
		"; filament used [g] = 10.0\n;Weight: 99.0 g\n")
	res := Parse(path)
	if !approx(res.FilamentWeightG, 10.0) {
		t.Errorf("earlier pattern should win, got %v", res.FilamentWeightG)
	}
}

// ─── Material Extraction Tests ───

func TestParseMaterialType(t *testing.T) {
	path := writeTemp(t, "part.gcode", "; filament_type = PETG\n")
	res := Parse(path)
	if res.MaterialType != "PETG" {
		t.Errorf("expected PETG, got %q", res.MaterialType)
	}
}

func TestParseMaterialSynonyms(t *testing.T) {
	path := writeTemp(t, "part.gcode", "; filament_type = POLYCARBONATE\n")
	res := Parse(path)
	if res.MaterialType != "PC" {
		t.Errorf("POLYCARBONATE should normalize to PC, got %q", res.MaterialType)
	}

	path = writeTemp(t, "part2.gcode", "; material = pet\n")
	res = Parse(path)
	if res.MaterialType != "PETG" {
		t.Errorf("PET should normalize to PETG, got %q", res.MaterialType)
	}
}

func TestParseFilenameMaterialFallback(t *testing.T) {
	res := Parse(filepath.Join(t.TempDir(), "vase_petg_1h10m.gcode"))
	if res.MaterialType != "PETG" {
		t.Errorf("expected PETG from filename, got %q", res.MaterialType)
	}

	// PETG takes priority over the PET synonym scan.
	res = Parse(filepath.Join(t.TempDir(), "box_PET.gcode"))
	if res.MaterialType != "PETG" {
		t.Errorf("expected PET in filename to map to PETG, got %q", res.MaterialType)
	}
}

// ─── Degradation Tests ───

func TestParseMissingFileNeverErrors(t *testing.T) {
	res := Parse(filepath.Join(t.TempDir(), "nothing-here.gcode"))
	if res.TimeHours != 0 || res.FilamentWeightG != 0 || res.MaterialType != "" {
		t.Errorf("missing file with no filename hints should yield a zero result, got %+v", res)
	}
}

func TestParseEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.gcode", "")
	res := Parse(path)
	if res.TimeHours != 0 || res.FilamentWeightG != 0 {
		t.Errorf("empty file should yield zero metadata, got %+v", res)
	}
}
