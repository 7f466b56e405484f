package gcode

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Result holds the metadata extracted from a sliced G-code file. A zero
// field means the value was not found; extraction never fails outright.
type Result struct {
	TimeHours        float64
	FilamentWeightG  float64
	FilamentWeightsG []float64 // per-tool weights for multicolor jobs
	MaterialType     string
}

// bgcodeHeadSize is how much of a binary .bgcode file is scanned for
// readable metadata.
const bgcodeHeadSize = 131072

// gramsPerMeter converts filament length to mass for 1.75 mm filament.
// Approximate; actual density varies by material.
const gramsPerMeter = 2.7

type weightUnit int

const (
	unitGram weightUnit = iota
	unitMeter
)

// timePattern is one entry of an ordered time cascade. hms patterns capture
// up to three groups (hours, minutes, seconds); the rest capture a single
// seconds value. msThreshold, when positive, reinterprets large single-group
// values as milliseconds.
type timePattern struct {
	re          *regexp.Regexp
	hms         bool
	msThreshold float64
}

type weightPattern struct {
	re   *regexp.Regexp
	unit weightUnit
}

// Pattern cascades are ordered: the first match wins. Binary and text files
// carry metadata in different shapes, so each format has its own lists.
var (
	binaryTimePatterns = []timePattern{
		{re: regexp.MustCompile(`(?i)estimated printing time \(normal mode\)\s*=\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?`), hms: true},
		{re: regexp.MustCompile(`(?i)estimated printing time\s*=\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?`), hms: true},
		{re: regexp.MustCompile(`(?i)print_time\s*[:=]\s*(\d+)`), msThreshold: 10000},
		{re: regexp.MustCompile(`(?i)time\s*[:=]\s*(\d+)`), msThreshold: 10000},
	}

	textTimePatterns = []timePattern{
		{re: regexp.MustCompile(`(?i);TIME:(\d+)`)},
		{re: regexp.MustCompile(`(?i); estimated printing time \(normal mode\)\s*=\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?`), hms: true},
		{re: regexp.MustCompile(`(?i); estimated printing time \(silent mode\)\s*=\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?`), hms: true},
		{re: regexp.MustCompile(`(?i); estimated printing time\s*=\s*(?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?`), hms: true},
		{re: regexp.MustCompile(`(?i);Print time: (?:(\d+)h\s*)?(?:(\d+)m\s*)?(?:(\d+)s)?`), hms: true},
		{re: regexp.MustCompile(`(?i);TIME_ELAPSED:([\d.]+)`)},
	}

	binaryWeightPatterns = []weightPattern{
		{re: regexp.MustCompile(`(?i)total filament weight\s*\[g\]\s*[:=]\s*([\d.,\s]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i)filament used \[g\]\s*=\s*([\d.]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i)filament_weight["']?\s*[:=]\s*([\d.]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i)weight["']?\s*[:=]\s*([\d.]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i)([\d.]+)\s*g(?:ram)?`), unit: unitGram},
	}

	textWeightPatterns = []weightPattern{
		{re: regexp.MustCompile(`(?i);\s*total filament weight\s*\[g\]\s*[:=]\s*([\d.,\s]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i);\s*filament used \[g\]\s*=\s*([\d.]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i);\s*total filament used \[g\]\s*=\s*([\d.]+)`), unit: unitGram},
		{re: regexp.MustCompile(`(?i);Filament used:\s*([\d.]+)\s*m`), unit: unitMeter},
		{re: regexp.MustCompile(`(?i);Weight:\s*([\d.]+)\s*g`), unit: unitGram},
		{re: regexp.MustCompile(`(?i);Filament weight:\s*([\d.]+)\s*g`), unit: unitGram},
		{re: regexp.MustCompile(`(?i);Filament length:\s*([\d.]+)\s*m`), unit: unitMeter},
	}

	binaryMaterialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)filament_type\s*=\s*(\w+)`),
		regexp.MustCompile(`(?i)filament["']?\s*[:=]\s*["']?(\w+)["']?`),
		regexp.MustCompile(`(?i)material["']?\s*[:=]\s*["']?(\w+)["']?`),
	}

	textMaterialPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i);\s*filament_type\s*[:=]\s*(\w+)`),
		regexp.MustCompile(`(?i);\s*material\s*[:=]\s*(\w+)`),
		regexp.MustCompile(`(?i)filament_type\s*=\s*(\w+)`),
	}

	filenameTimeRe = regexp.MustCompile(`(?i)(\d+)h\s*(\d+)m(?:\s*(\d+)s)?`)
)

// materialSynonyms normalizes material tokens found in file content. Tokens
// outside the map pass through upper-cased.
var materialSynonyms = map[string]string{
	"POLYCARBONATE": "PC",
	"PET":           "PETG",
}

// filenameMaterials is the priority order scanned in filename fallback.
// Only the PET synonym applies there.
var filenameMaterials = []string{
	"PETG", "PLA", "ABS", "ASA", "PP", "TPU", "NYLON", "PA", "PC", "POLYCARBONATE", "PET",
}

// Parse extracts print time, filament weight and material type from a
// G-code file. Binary .bgcode files are scanned for readable metadata in the
// first 128 KiB; text files are read whole. Missing or unreadable files
// degrade to the filename fallbacks instead of returning an error.
func Parse(path string) Result {
	var res Result
	filename := filepath.Base(path)
	binary := strings.HasSuffix(strings.ToLower(path), ".bgcode")

	content, ok := readContent(path, binary)
	if ok {
		if binary {
			res.TimeHours = matchTime(content, binaryTimePatterns)
			res.FilamentWeightG, res.FilamentWeightsG = matchWeight(content, binaryWeightPatterns)
			res.MaterialType = matchMaterial(content, binaryMaterialPatterns)
		} else {
			res.TimeHours = matchTime(content, textTimePatterns)
			res.FilamentWeightG, res.FilamentWeightsG = matchWeight(content, textWeightPatterns)
			res.MaterialType = matchMaterial(content, textMaterialPatterns)
		}
	}

	if res.TimeHours == 0.0 {
		res.TimeHours = filenameTime(filename)
	}
	if res.MaterialType == "" {
		res.MaterialType = filenameMaterial(filename)
	}
	return res
}

func readContent(path string, binary bool) (string, bool) {
	if binary {
		f, err := os.Open(path)
		if err != nil {
			return "", false
		}
		defer f.Close()
		buf := make([]byte, bgcodeHeadSize)
		n, _ := f.Read(buf)
		return string(buf[:n]), true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func matchTime(content string, patterns []timePattern) float64 {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		if p.hms {
			hours := groupInt(m, 1)
			minutes := groupInt(m, 2)
			seconds := groupInt(m, 3)
			return float64(hours) + float64(minutes)/60.0 + float64(seconds)/3600.0
		}
		seconds, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if p.msThreshold > 0 && seconds > p.msThreshold {
			return seconds / 3600000.0
		}
		return seconds / 3600.0
	}
	return 0.0
}

func matchWeight(content string, patterns []weightPattern) (float64, []float64) {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[1])
		if strings.Contains(raw, ",") {
			var weights []float64
			for _, part := range strings.Split(raw, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				w, err := strconv.ParseFloat(part, 64)
				if err != nil {
					continue
				}
				weights = append(weights, w)
			}
			if len(weights) > 0 {
				total := 0.0
				for _, w := range weights {
					total += w
				}
				return total, weights
			}
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if p.unit == unitMeter {
			value *= gramsPerMeter
		}
		return value, nil
	}
	return 0.0, nil
}

func matchMaterial(content string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(content)
		if m == nil {
			continue
		}
		token := strings.ToUpper(strings.TrimSpace(m[1]))
		if normalized, ok := materialSynonyms[token]; ok {
			return normalized
		}
		return token
	}
	return ""
}

// filenameTime parses patterns like "benchy_2h36m.bgcode" into hours.
func filenameTime(filename string) float64 {
	m := filenameTimeRe.FindStringSubmatch(filename)
	if m == nil {
		return 0.0
	}
	hours := groupInt(m, 1)
	minutes := groupInt(m, 2)
	seconds := groupInt(m, 3)
	return float64(hours) + float64(minutes)/60.0 + float64(seconds)/3600.0
}

// filenameMaterial scans the filename for a known material token. PET maps
// to PETG; everything else is taken verbatim.
func filenameMaterial(filename string) string {
	upper := strings.ToUpper(filename)
	for _, material := range filenameMaterials {
		if strings.Contains(upper, material) {
			if material == "PET" {
				return "PETG"
			}
			return material
		}
	}
	return ""
}

func groupInt(m []string, i int) int {
	if i >= len(m) || m[i] == "" {
		return 0
	}
	n, err := strconv.Atoi(m[i])
	if err != nil {
		return 0
	}
	return n
}
