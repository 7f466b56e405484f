package ui

import (
	"fmt"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Knopersikcuo/printmanager/internal/export"
	"github.com/Knopersikcuo/printmanager/internal/model"
	"github.com/Knopersikcuo/printmanager/internal/quote"
)

// Order of the itemized result rows.
var resultRows = []string{
	"Material", "Printer time", "Energy", "Post-processing", "Setup fee",
	"Risk", "Margin", "Packaging", "Shipping", "VAT", "Final price",
}

func (a *App) buildCalculatorPanel() fyne.CanvasObject {
	// Filament selection
	a.filamentSelect = widget.NewSelect(nil, func(selected string) {
		a.onFilamentSelected(selected)
	})
	a.filamentSelect.PlaceHolder = "Select filament"
	a.availableLabel = widget.NewLabel("Available: - g")
	a.refreshCalculatorFilaments()

	// G-code file list
	a.gcodeContainer = container.NewVBox()
	a.refreshGCodeList()

	addFilesBtn := widget.NewButtonWithIcon("Add G-code Files", theme.ContentAddIcon(), func() {
		a.addGCodeFile()
	})
	loadBtn := widget.NewButtonWithIcon("Load Files", theme.DownloadIcon(), func() {
		a.loadGCodeFiles()
	})
	clearBtn := widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), func() {
		a.gcodePaths = nil
		a.refreshGCodeList()
	})

	// Inputs
	a.weightEntry = widget.NewEntry()
	a.weightEntry.SetPlaceHolder("Weight in grams")
	a.timeEntry = widget.NewEntry()
	a.timeEntry.SetPlaceHolder("Print time in hours")
	a.timeEntry.OnChanged = func(string) { a.updateEnergyLabel() }
	a.copiesEntry = widget.NewEntry()
	a.copiesEntry.SetText("1")
	a.copiesEntry.OnChanged = func(string) { a.updateEnergyLabel() }
	a.postprocessEntry = widget.NewEntry()
	a.postprocessEntry.SetPlaceHolder("Post-processing hours (optional)")
	a.energyLabel = widget.NewLabel("-")

	inputs := widget.NewForm(
		widget.NewFormItem("Filament", a.filamentSelect),
		widget.NewFormItem("", a.availableLabel),
		widget.NewFormItem("Weight (g)", a.weightEntry),
		widget.NewFormItem("Print time (h)", a.timeEntry),
		widget.NewFormItem("Copies", a.copiesEntry),
		widget.NewFormItem("Post-processing (h)", a.postprocessEntry),
		widget.NewFormItem("Energy", a.energyLabel),
	)

	// Result rows
	resultBox := container.NewVBox()
	for _, name := range resultRows {
		value := widget.NewLabelWithStyle("-", fyne.TextAlignTrailing, fyne.TextStyle{})
		if name == "Final price" {
			value.TextStyle = fyne.TextStyle{Bold: true}
		}
		a.resultLabels[name] = value
		resultBox.Add(container.NewBorder(nil, nil,
			widget.NewLabel(name), value))
	}

	calculateBtn := widget.NewButtonWithIcon("Calculate", theme.ConfirmIcon(), func() {
		a.calculate()
	})
	executeBtn := widget.NewButtonWithIcon("Execute Print", theme.MediaPlayIcon(), func() {
		a.executePrint()
	})
	quotePDFBtn := widget.NewButtonWithIcon("Quote PDF...", theme.DocumentIcon(), func() {
		a.exportQuotePDF()
	})

	left := container.NewVBox(
		widget.NewCard("Job", "", inputs),
		widget.NewCard("G-code Files", "", container.NewVBox(
			container.NewHBox(addFilesBtn, loadBtn, clearBtn),
			a.gcodeContainer,
		)),
	)
	right := container.NewVBox(
		widget.NewCard("Price Breakdown", "", resultBox),
		container.NewHBox(layout.NewSpacer(), calculateBtn, executeBtn, quotePDFBtn),
	)

	return container.NewVScroll(container.NewGridWithColumns(2, left, right))
}

// refreshCalculatorFilaments reloads the spool dropdown from the store.
func (a *App) refreshCalculatorFilaments() {
	filaments, err := a.store.Filaments()
	if err != nil {
		a.filaments = nil
	} else {
		a.filaments = filaments
	}
	options := make([]string, 0, len(a.filaments))
	for _, f := range a.filaments {
		options = append(options, filamentOption(f))
	}
	if a.filamentSelect != nil {
		a.filamentSelect.Options = options
		a.filamentSelect.Refresh()
	}
}

func filamentOption(f model.Filament) string {
	return fmt.Sprintf("%s %s %s (%d g)", f.Brand, f.Type, f.Color, f.CurrentWeight)
}

func (a *App) onFilamentSelected(selected string) {
	a.multicolor = nil
	for i, f := range a.filaments {
		if filamentOption(f) == selected {
			a.selectedFilament = &a.filaments[i]
			a.availableLabel.SetText(fmt.Sprintf("Available: %d g", f.CurrentWeight))
			return
		}
	}
	a.selectedFilament = nil
	a.availableLabel.SetText("Available: - g")
}

func (a *App) refreshGCodeList() {
	a.gcodeContainer.RemoveAll()
	if len(a.gcodePaths) == 0 {
		a.gcodeContainer.Add(widget.NewLabel("No files added."))
		return
	}
	for i, path := range a.gcodePaths {
		idx := i // capture
		row := container.NewBorder(nil, nil, nil,
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.gcodePaths = append(a.gcodePaths[:idx], a.gcodePaths[idx+1:]...)
				a.refreshGCodeList()
			}),
			widget.NewLabel(filepath.Base(path)),
		)
		a.gcodeContainer.Add(row)
	}
}

func (a *App) addGCodeFile() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		for _, existing := range a.gcodePaths {
			if existing == path {
				return
			}
		}
		a.gcodePaths = append(a.gcodePaths, path)
		a.refreshGCodeList()
	}, a.window)
}

// loadGCodeFiles parses the queued files and fills the job inputs from the
// aggregated metadata. A multicolor breakdown opens the per-slot filament
// selection dialog instead of the single-spool flow.
func (a *App) loadGCodeFiles() {
	if len(a.gcodePaths) == 0 {
		dialog.ShowInformation("Import G-code", "No files to load.", a.window)
		return
	}

	summary := a.orch.ImportFiles(a.gcodePaths)

	if summary.TotalTimeHours > 0 {
		a.timeEntry.SetText(fmt.Sprintf("%.2f", summary.TotalTimeHours))
	}

	if summary.Multicolor() {
		a.showMulticolorDialog(summary)
		return
	}

	a.multicolor = nil
	if summary.TotalWeightG > 0 {
		a.weightEntry.SetText(fmt.Sprintf("%.1f", summary.TotalWeightG))
	}

	if summary.SuccessCount > 0 {
		dialog.ShowInformation("Import G-code",
			fmt.Sprintf("Imported %d of %d files.\nTime: %.2f h\nWeight: %.1f g",
				summary.SuccessCount, summary.FileCount,
				summary.TotalTimeHours, summary.TotalWeightG),
			a.window)
	} else {
		dialog.ShowInformation("Import G-code",
			fmt.Sprintf("No usable data found in %d files.", summary.FileCount), a.window)
	}
}

// showMulticolorDialog asks for one spool per extracted weight slot.
func (a *App) showMulticolorDialog(summary quote.ImportSummary) {
	if len(a.filaments) == 0 {
		dialog.ShowInformation("Multicolor Print", "Add filaments to inventory first.", a.window)
		return
	}

	options := make([]string, 0, len(a.filaments))
	for _, f := range a.filaments {
		options = append(options, filamentOption(f))
	}

	selects := make([]*widget.Select, len(summary.MulticolorWeights))
	items := make([]*widget.FormItem, 0, len(summary.MulticolorWeights))
	for i, w := range summary.MulticolorWeights {
		sel := widget.NewSelect(options, nil)
		selects[i] = sel
		items = append(items, widget.NewFormItem(fmt.Sprintf("Slot %d (%.2f g)", i+1, w), sel))
	}

	form := dialog.NewForm("Multicolor Print", "Apply", "Cancel", items,
		func(ok bool) {
			if !ok {
				a.multicolor = nil
				return
			}
			var selections []quote.Selection
			total := 0.0
			for i, sel := range selects {
				fidx := -1
				for j, f := range a.filaments {
					if filamentOption(f) == sel.Selected {
						fidx = j
						break
					}
				}
				if fidx < 0 {
					dialog.ShowError(fmt.Errorf("select a filament for slot %d", i+1), a.window)
					a.multicolor = nil
					return
				}
				weight := summary.MulticolorWeights[i]
				selections = append(selections, quote.Selection{
					Filament: a.filaments[fidx],
					WeightG:  weight,
				})
				total += weight
			}
			a.multicolor = selections
			a.selectedFilament = nil
			a.weightEntry.SetText(fmt.Sprintf("%.1f", total))

			info := ""
			for _, sel := range selections {
				info += fmt.Sprintf("%s %.2f g\n", sel.Filament.Brand, sel.WeightG)
			}
			a.availableLabel.SetText("Multicolor:\n" + info)
		}, a.window)
	form.Resize(fyne.NewSize(420, 0))
	form.Show()
}

func (a *App) updateEnergyLabel() {
	printTime, err := parseFloatEntry(a.timeEntry)
	if err != nil || printTime <= 0 {
		a.energyLabel.SetText("-")
		return
	}
	copies, err := parseIntEntry(a.copiesEntry)
	if err != nil || copies < 1 {
		copies = 1
	}
	kwh := model.EnergyConsumptionKWh(
		printTime,
		a.cfg.Energy.PrinterPowerWatts,
		a.cfg.Energy.PreheatMinutes,
		a.cfg.Energy.PreheatPowerWatts,
		copies,
	)
	a.energyLabel.SetText(fmt.Sprintf("%.3f kWh", kwh))
}

// currentSelections returns the active filament/weight binding: the
// multicolor slots when set, otherwise the single selected spool with the
// weight entry value.
func (a *App) currentSelections() ([]quote.Selection, error) {
	if len(a.multicolor) > 0 {
		return a.multicolor, nil
	}
	if a.selectedFilament == nil {
		return nil, fmt.Errorf("select a filament first")
	}
	weight, err := parseFloatEntry(a.weightEntry)
	if err != nil || weight <= 0 {
		return nil, fmt.Errorf("enter a valid filament weight")
	}
	return []quote.Selection{{Filament: *a.selectedFilament, WeightG: weight}}, nil
}

func (a *App) quoteRequest() (quote.QuoteRequest, error) {
	selections, err := a.currentSelections()
	if err != nil {
		return quote.QuoteRequest{}, err
	}
	printTime, err := parseFloatEntry(a.timeEntry)
	if err != nil || printTime <= 0 {
		return quote.QuoteRequest{}, fmt.Errorf("enter a valid print time")
	}
	copies, err := parseIntEntry(a.copiesEntry)
	if err != nil || copies < 1 {
		return quote.QuoteRequest{}, fmt.Errorf("enter a valid number of copies")
	}
	postprocess := 0.0
	if a.postprocessEntry.Text != "" {
		postprocess, err = parseFloatEntry(a.postprocessEntry)
		if err != nil || postprocess < 0 {
			return quote.QuoteRequest{}, fmt.Errorf("enter a valid post-processing time")
		}
	}
	return quote.QuoteRequest{
		Selections:           selections,
		PrintTimeHours:       printTime,
		Copies:               copies,
		PostprocessTimeHours: postprocess,
	}, nil
}

func (a *App) calculate() {
	req, err := a.quoteRequest()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	breakdown, err := a.orch.Quote(req)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	a.lastBreakdown = &breakdown

	values := map[string]float64{
		"Material":        breakdown.MaterialCost,
		"Printer time":    breakdown.TimeCost,
		"Energy":          breakdown.EnergyCost,
		"Post-processing": breakdown.PostprocessCost,
		"Setup fee":       breakdown.SetupFee,
		"Risk":            breakdown.RiskAmount,
		"Margin":          breakdown.MarginAmount,
		"Packaging":       breakdown.PackagingCost,
		"Shipping":        breakdown.ShippingCost,
		"VAT":             breakdown.VATAmount,
		"Final price":     breakdown.FinalPrice,
	}
	for name, value := range values {
		a.resultLabels[name].SetText(a.disp.Format(value))
	}
}

// executePrint commits the calculated job against the inventory ledger.
func (a *App) executePrint() {
	if a.lastBreakdown == nil {
		dialog.ShowInformation("Execute Print", "Calculate the price first.", a.window)
		return
	}
	selections, err := a.currentSelections()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	suggested := "Print"
	var gcodeFile *string
	if len(a.gcodePaths) > 0 {
		base := filepath.Base(a.gcodePaths[0])
		gcodeFile = &base
		suggested = quote.PrintNameFromPath(a.gcodePaths[0])
	}

	nameEntry := widget.NewEntry()
	nameEntry.SetText(suggested)

	separateCheck := widget.NewCheck("Save each file as its own record", nil)
	items := []*widget.FormItem{
		widget.NewFormItem("Print name", nameEntry),
	}
	if len(a.gcodePaths) >= 2 && len(a.multicolor) == 0 {
		items = append(items, widget.NewFormItem("", separateCheck))
	}

	form := dialog.NewForm("Execute Print", "Save", "Cancel", items,
		func(ok bool) {
			if !ok {
				return
			}
			name := nameEntry.Text
			if name == "" {
				name = suggested
			}

			var records []model.PrintRecord
			var commitErr error
			if separateCheck.Checked {
				records, commitErr = a.commitSeparate()
			} else {
				records, commitErr = a.orch.Commit(quote.CommitRequest{
					Selections: selections,
					PrintName:  name,
					FinalPrice: a.lastBreakdown.FinalPrice,
					GCodeFile:  gcodeFile,
				})
			}
			if commitErr != nil {
				dialog.ShowError(commitErr, a.window)
				return
			}

			dialog.ShowInformation("Print Recorded",
				fmt.Sprintf("%s saved (%d records, %s).",
					name, len(records), a.disp.Format(a.lastBreakdown.FinalPrice)),
				a.window)
			a.clearCalculator()
		}, a.window)
	form.Resize(fyne.NewSize(500, 0))
	form.Show()
}

// commitSeparate prices and records each queued file as its own job,
// splitting the per-file quote over the single selected spool.
func (a *App) commitSeparate() ([]model.PrintRecord, error) {
	if a.selectedFilament == nil {
		return nil, fmt.Errorf("select a filament first")
	}
	copies, err := parseIntEntry(a.copiesEntry)
	if err != nil || copies < 1 {
		copies = 1
	}

	var jobs []quote.FileJob
	for _, path := range a.gcodePaths {
		summary := a.orch.ImportFiles([]string{path})
		if summary.SuccessCount == 0 {
			continue
		}
		selections := []quote.Selection{{Filament: *a.selectedFilament, WeightG: summary.TotalWeightG}}
		breakdown, err := a.orch.Quote(quote.QuoteRequest{
			Selections:     selections,
			PrintTimeHours: summary.TotalTimeHours,
			Copies:         copies,
		})
		if err != nil {
			return nil, err
		}
		base := filepath.Base(path)
		jobs = append(jobs, quote.FileJob{
			Name:       quote.PrintNameFromPath(path),
			Selections: selections,
			FinalPrice: breakdown.FinalPrice,
			GCodeFile:  &base,
		})
	}
	return a.orch.CommitSeparate(jobs)
}

func (a *App) clearCalculator() {
	a.weightEntry.SetText("")
	a.timeEntry.SetText("")
	a.postprocessEntry.SetText("")
	a.copiesEntry.SetText("1")
	a.gcodePaths = nil
	a.refreshGCodeList()
	a.lastBreakdown = nil
	a.selectedFilament = nil
	a.multicolor = nil
	a.filamentSelect.ClearSelected()
	a.availableLabel.SetText("Available: - g")
	for _, label := range a.resultLabels {
		label.SetText("-")
	}
	a.refreshCalculatorFilaments()
	a.refreshFilamentsList()
	a.refreshHistoryList()
}

func (a *App) exportQuotePDF() {
	if a.lastBreakdown == nil {
		dialog.ShowInformation("Quote PDF", "Calculate the price first.", a.window)
		return
	}
	selections, err := a.currentSelections()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	jobName := "Print"
	if len(a.gcodePaths) > 0 {
		jobName = quote.PrintNameFromPath(a.gcodePaths[0])
	}
	filamentLabel := ""
	totalWeight := 0.0
	for i, sel := range selections {
		if i > 0 {
			filamentLabel += ", "
		}
		filamentLabel += fmt.Sprintf("%s %s", sel.Filament.Brand, sel.Filament.Type)
		totalWeight += sel.WeightG
	}
	printTime, _ := parseFloatEntry(a.timeEntry)
	copies, err := parseIntEntry(a.copiesEntry)
	if err != nil || copies < 1 {
		copies = 1
	}

	info := export.QuoteInfo{
		JobName:        jobName,
		FilamentLabel:  filamentLabel,
		WeightG:        totalWeight,
		PrintTimeHours: printTime,
		Copies:         copies,
	}
	breakdown := *a.lastBreakdown

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if err := export.ExportQuotePDF(path, info, breakdown, a.disp); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		dialog.ShowInformation("Export Complete",
			fmt.Sprintf("Quote saved to %s", path), a.window)
	}, a.window)
}
