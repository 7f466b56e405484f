package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ToUpper canonicalizes brand and material identifiers: trimmed and
// upper-cased at write time so lookups only ever compare canonical forms.
func ToUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// DefaultSpoolWeightG is the tare weight assumed for brands that never
// declared one.
const DefaultSpoolWeightG = 150

// Brand represents a filament manufacturer with its spool tare weight.
// Names are stored upper-cased and are unique case-insensitively.
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SpoolWeight int    `json:"spool_weight"` // grams
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// NewBrand creates a Brand with a generated ID and an upper-cased name.
func NewBrand(name string, spoolWeightG int) Brand {
	return Brand{
		ID:          uuid.New().String(),
		Name:        ToUpper(name),
		SpoolWeight: spoolWeightG,
		CreatedAt:   time.Now().Format(time.RFC3339),
	}
}

// Filament represents a physical spool lot in inventory. Weights are net
// grams (spool tare already subtracted). CurrentWeight is mutated only by
// the ledger's consume/restore operations, plus the edit path which shifts
// it by the initial-weight delta.
type Filament struct {
	ID            string `json:"id"`
	Color         string `json:"color"` // hex string, e.g. "#FF0000"
	Brand         string `json:"brand"` // upper-cased brand name
	Type          string `json:"type"`  // upper-cased material code
	InitialWeight int    `json:"initial_weight"`
	CurrentWeight int    `json:"current_weight"`
	SpoolWeight   int    `json:"spool_weight"`
	CreatedAt     string `json:"created_at"`
}

// NewFilament creates a full spool with current weight equal to the net
// initial weight.
func NewFilament(color, brand, materialType string, netWeightG, spoolWeightG int) Filament {
	return Filament{
		ID:            uuid.New().String(),
		Color:         color,
		Brand:         ToUpper(brand),
		Type:          ToUpper(materialType),
		InitialWeight: netWeightG,
		CurrentWeight: netWeightG,
		SpoolWeight:   spoolWeightG,
		CreatedAt:     time.Now().Format(time.RFC3339),
	}
}

// PrintRecord is one entry of the append-only print history. Deleting or
// editing a record goes through the ledger so the consumed grams are
// restored or reapplied.
type PrintRecord struct {
	ID         string   `json:"id"`
	FilamentID string   `json:"filament_id"`
	PrintName  string   `json:"print_name"`
	WeightUsed int      `json:"weight_used"` // grams
	Price      *float64 `json:"price"`
	GCodeFile  *string  `json:"gcode_file"`
	Timestamp  string   `json:"timestamp"`
}

// NewPrintRecord creates a history record with a generated ID and the
// current timestamp.
func NewPrintRecord(filamentID, printName string, weightUsedG int, price *float64, gcodeFile *string) PrintRecord {
	return PrintRecord{
		ID:         uuid.New().String(),
		FilamentID: filamentID,
		PrintName:  printName,
		WeightUsed: weightUsedG,
		Price:      price,
		GCodeFile:  gcodeFile,
		Timestamp:  time.Now().Format(time.RFC3339),
	}
}
