package quote

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Knopersikcuo/printmanager/internal/gcode"
	"github.com/Knopersikcuo/printmanager/internal/model"
	"github.com/Knopersikcuo/printmanager/internal/store"
)

// ErrSeparateSave is returned when separate-save commit is requested with
// fewer than two source files.
var ErrSeparateSave = errors.New("separate save requires at least two files")

// MaterialNotConfiguredError is returned when a filament's material has no
// entry in the rate table.
type MaterialNotConfiguredError struct {
	Material string
}

func (e *MaterialNotConfiguredError) Error() string {
	return fmt.Sprintf("material %s is not configured", e.Material)
}

// BrandNotConfiguredError is returned when a filament's brand has no price
// under its material. Configured lists the brands the material does have,
// for the settings hint shown to the user.
type BrandNotConfiguredError struct {
	Brand      string
	Material   string
	Configured []string
}

func (e *BrandNotConfiguredError) Error() string {
	configured := "none"
	if len(e.Configured) > 0 {
		configured = strings.Join(e.Configured, ", ")
	}
	return fmt.Sprintf("brand %s has no price for material %s (configured: %s)", e.Brand, e.Material, configured)
}

// FileResult pairs one input path with its extracted metadata.
type FileResult struct {
	Path   string
	Result gcode.Result
}

// ImportSummary aggregates the extraction results of a batch of G-code
// files. SuccessCount counts files that yielded time or weight, for
// "N of M imported" reporting. MulticolorWeights carries the per-tool
// breakdown of the last multicolor file seen, mirroring how a multicolor
// job replaces the single-weight flow.
type ImportSummary struct {
	Files             []FileResult
	FileCount         int
	SuccessCount      int
	TotalTimeHours    float64
	TotalWeightG      float64
	Materials         []string
	MulticolorWeights []float64
}

// Multicolor reports whether the batch carried a per-tool weight breakdown.
func (s ImportSummary) Multicolor() bool {
	return len(s.MulticolorWeights) > 1
}

// Selection binds one filament spool to the grams it contributes to a job.
type Selection struct {
	Filament model.Filament
	WeightG  float64
}

// QuoteRequest carries everything needed to price one job.
type QuoteRequest struct {
	Selections           []Selection
	PrintTimeHours       float64
	Copies               int
	PostprocessTimeHours float64
}

// CommitRequest records a priced job against the inventory ledger.
type CommitRequest struct {
	Selections []Selection
	PrintName  string
	FinalPrice float64
	GCodeFile  *string
}

// FileJob is one source file's share of a separate-save commit.
type FileJob struct {
	Name       string
	Selections []Selection
	FinalPrice float64
	GCodeFile  *string
}

// Orchestrator glues G-code extraction, rate resolution, pricing and the
// inventory ledger into the quote workflow. It holds no state beyond its
// dependencies; every call reads the current documents.
type Orchestrator struct {
	store *store.Store
	log   *zap.Logger
}

// New creates an Orchestrator. A nil logger disables logging.
func New(st *store.Store, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{store: st, log: log}
}

// ImportFiles extracts metadata from each file independently and sums the
// usable results. A file that yields neither time nor weight counts as a
// failed import but never aborts the batch.
func (o *Orchestrator) ImportFiles(paths []string) ImportSummary {
	summary := ImportSummary{FileCount: len(paths)}
	for _, path := range paths {
		res := gcode.Parse(path)
		summary.Files = append(summary.Files, FileResult{Path: path, Result: res})

		if len(res.FilamentWeightsG) > 0 {
			summary.MulticolorWeights = res.FilamentWeightsG
		}
		if res.TimeHours > 0 || res.FilamentWeightG > 0 {
			summary.SuccessCount++
			summary.TotalTimeHours += res.TimeHours
			summary.TotalWeightG += res.FilamentWeightG
			if res.MaterialType != "" {
				summary.Materials = append(summary.Materials, res.MaterialType)
			}
		}
	}
	o.log.Info("gcode import",
		zap.Int("files", summary.FileCount),
		zap.Int("imported", summary.SuccessCount),
		zap.Float64("total_time_h", summary.TotalTimeHours),
		zap.Float64("total_weight_g", summary.TotalWeightG))
	return summary
}

// ResolveRates turns a filament selection into a material price per kg and
// an hourly rate from the rate table. Multi-filament jobs get the
// gram-weighted average price; the hourly rate is taken from the first
// selection's material.
func ResolveRates(cfg model.Config, selections []Selection) (pricePerKg, hourlyRate float64, err error) {
	totalWeight := 0.0
	weightedSum := 0.0
	first := true

	for _, sel := range selections {
		material := model.ToUpper(sel.Filament.Type)
		rates, ok := cfg.Material(material)
		if !ok {
			return 0, 0, &MaterialNotConfiguredError{Material: material}
		}
		if first {
			hourlyRate = rates.HourlyRate
			first = false
		}
		price, configured, ok := rates.BrandPricePerKg(sel.Filament.Brand)
		if !ok {
			sort.Strings(configured)
			return 0, 0, &BrandNotConfiguredError{
				Brand:      model.ToUpper(sel.Filament.Brand),
				Material:   material,
				Configured: configured,
			}
		}
		weightedSum += price * sel.WeightG
		totalWeight += sel.WeightG
	}

	if totalWeight > 0 {
		pricePerKg = weightedSum / totalWeight
	}
	return pricePerKg, hourlyRate, nil
}

// Quote prices one job from the current configuration: it resolves the
// selection's rates, derives the energy consumption and runs the full
// breakdown.
func (o *Orchestrator) Quote(req QuoteRequest) (model.PriceBreakdown, error) {
	cfg, err := o.store.LoadConfig()
	if err != nil {
		return model.PriceBreakdown{}, err
	}

	pricePerKg, hourlyRate, err := ResolveRates(cfg, req.Selections)
	if err != nil {
		return model.PriceBreakdown{}, err
	}

	totalWeight := 0.0
	for _, sel := range req.Selections {
		totalWeight += sel.WeightG
	}

	energy := model.EnergyConsumptionKWh(
		req.PrintTimeHours,
		cfg.Energy.PrinterPowerWatts,
		cfg.Energy.PreheatMinutes,
		cfg.Energy.PreheatPowerWatts,
		req.Copies,
	)

	breakdown := model.CalculatePrice(model.PriceParams{
		FilamentWeightG:      totalWeight,
		MaterialPricePerKg:   pricePerKg,
		PrintTimeHours:       req.PrintTimeHours,
		HourlyRate:           hourlyRate,
		EnergyConsumptionKWh: energy,
		CostPerKWh:           cfg.Energy.CostPerKWh,
		MarginPercent:        cfg.Pricing.MarginPercent,
		Copies:               req.Copies,
		SetupFee:             cfg.Advanced.SetupFee,
		PostprocessTimeHours: req.PostprocessTimeHours,
		PostprocessRate:      cfg.Advanced.PostprocessRate,
		RiskPercent:          cfg.Advanced.RiskPercent,
		PackagingCost:        cfg.Advanced.PackagingCost,
		ShippingCost:         cfg.Advanced.ShippingCost,
		MinPrice:             cfg.Pricing.MinPrice,
		VATPercent:           cfg.Pricing.VATPercent,
		RoundTo:              cfg.Pricing.RoundTo,
	})
	return breakdown, nil
}

// filamentGroup is the per-filament share of a committed job.
type filamentGroup struct {
	filamentID string
	weightG    float64
}

// groupSelections sums duplicate filament references into one group per
// filament, preserving first-seen order.
func groupSelections(selections []Selection) []filamentGroup {
	var groups []filamentGroup
	index := make(map[string]int)
	for _, sel := range selections {
		if i, ok := index[sel.Filament.ID]; ok {
			groups[i].weightG += sel.WeightG
			continue
		}
		index[sel.Filament.ID] = len(groups)
		groups = append(groups, filamentGroup{filamentID: sel.Filament.ID, weightG: sel.WeightG})
	}
	return groups
}

// Commit writes one history record per distinct filament in the selection,
// consuming each filament's summed grams and splitting the job price in
// proportion to each filament's share. On a mid-commit failure the already
// written records are deleted with their weight restored, so a returned
// error leaves the ledger unchanged.
func (o *Orchestrator) Commit(req CommitRequest) ([]model.PrintRecord, error) {
	groups := groupSelections(req.Selections)

	totalWeight := 0.0
	for _, g := range groups {
		totalWeight += g.weightG
	}

	var records []model.PrintRecord
	rollback := func() {
		for _, r := range records {
			if ok, err := o.store.DeletePrint(r.ID, true); err != nil || !ok {
				o.log.Warn("commit rollback failed, ledger may be inconsistent",
					zap.String("print_id", r.ID), zap.Error(err))
			}
		}
	}

	for _, g := range groups {
		price := 0.0
		if totalWeight > 0 {
			price = (g.weightG / totalWeight) * req.FinalPrice
		}
		record, err := o.store.RecordPrint(g.filamentID, req.PrintName, int(g.weightG), &price, req.GCodeFile)
		if err != nil {
			rollback()
			return nil, err
		}
		records = append(records, record)
	}

	o.log.Info("print committed",
		zap.String("name", req.PrintName),
		zap.Int("records", len(records)),
		zap.Float64("total_weight_g", totalWeight))
	return records, nil
}

// CommitSeparate writes one record set per source file, each named after
// its file. It is only valid for batches of at least two files; callers
// with a single file use Commit.
func (o *Orchestrator) CommitSeparate(jobs []FileJob) ([]model.PrintRecord, error) {
	if len(jobs) < 2 {
		return nil, ErrSeparateSave
	}

	var records []model.PrintRecord
	rollback := func() {
		for _, r := range records {
			if ok, err := o.store.DeletePrint(r.ID, true); err != nil || !ok {
				o.log.Warn("separate-save rollback failed, ledger may be inconsistent",
					zap.String("print_id", r.ID), zap.Error(err))
			}
		}
	}

	for _, job := range jobs {
		set, err := o.Commit(CommitRequest{
			Selections: job.Selections,
			PrintName:  job.Name,
			FinalPrice: job.FinalPrice,
			GCodeFile:  job.GCodeFile,
		})
		if err != nil {
			rollback()
			return nil, err
		}
		records = append(records, set...)
	}
	return records, nil
}

// PrintNameFromPath derives the default print name from a G-code filename.
func PrintNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
