package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Knopersikcuo/printmanager/internal/model"
	"github.com/Knopersikcuo/printmanager/internal/store"
)

func (a *App) buildHistoryPanel() fyne.CanvasObject {
	a.historyContainer = container.NewVBox()
	a.refreshHistoryList()

	return container.NewBorder(
		widget.NewLabelWithStyle("Print History", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		nil, nil, nil,
		container.NewVScroll(a.historyContainer),
	)
}

func (a *App) refreshHistoryList() {
	if a.historyContainer == nil {
		return
	}
	a.historyContainer.RemoveAll()

	prints, err := a.store.Prints()
	if err != nil {
		a.historyContainer.Add(widget.NewLabel(fmt.Sprintf("Load failed: %v", err)))
		return
	}
	if len(prints) == 0 {
		a.historyContainer.Add(widget.NewLabel("No prints recorded yet."))
		return
	}

	filaments, _ := a.store.Filaments()
	byID := make(map[string]model.Filament, len(filaments))
	for _, f := range filaments {
		byID[f.ID] = f
	}

	header := container.NewGridWithColumns(7,
		widget.NewLabelWithStyle("Date", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Print", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Filament", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Weight (g)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Price", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
	)
	a.historyContainer.Add(header)
	a.historyContainer.Add(widget.NewSeparator())

	for i := range prints {
		p := prints[i]
		filamentLabel := "-"
		if f, ok := byID[p.FilamentID]; ok {
			filamentLabel = fmt.Sprintf("%s %s", f.Brand, f.Type)
		}
		price := "-"
		if p.Price != nil {
			price = a.disp.Format(*p.Price)
		}

		row := container.NewGridWithColumns(7,
			widget.NewLabel(shortTimestamp(p.Timestamp)),
			widget.NewLabel(p.PrintName),
			widget.NewLabel(filamentLabel),
			widget.NewLabel(fmt.Sprintf("%d", p.WeightUsed)),
			widget.NewLabel(price),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				a.showEditPrintDialog(p)
			}),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.confirmDeletePrint(p)
			}),
		)
		a.historyContainer.Add(row)
	}
}

// shortTimestamp trims an RFC 3339 timestamp down to date and time.
func shortTimestamp(ts string) string {
	if len(ts) >= 16 {
		return ts[:10] + " " + ts[11:16]
	}
	return ts
}

// showEditPrintDialog edits a record; weight or filament changes go through
// the ledger so consumption is reversed and reapplied.
func (a *App) showEditPrintDialog(p model.PrintRecord) {
	filaments, err := a.store.Filaments()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	options := make([]string, 0, len(filaments))
	current := ""
	for _, f := range filaments {
		opt := filamentOption(f)
		options = append(options, opt)
		if f.ID == p.FilamentID {
			current = opt
		}
	}

	nameEntry := widget.NewEntry()
	nameEntry.SetText(p.PrintName)
	filamentSelect := widget.NewSelect(options, nil)
	if current != "" {
		filamentSelect.SetSelected(current)
	}
	weightEntry := widget.NewEntry()
	weightEntry.SetText(fmt.Sprintf("%d", p.WeightUsed))
	priceEntry := widget.NewEntry()
	if p.Price != nil {
		priceEntry.SetText(fmt.Sprintf("%.2f", *p.Price))
	}

	form := dialog.NewForm("Edit Print", "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Print name", nameEntry),
			widget.NewFormItem("Filament", filamentSelect),
			widget.NewFormItem("Weight (g)", weightEntry),
			widget.NewFormItem("Price", priceEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			weight, err := parseIntEntry(weightEntry)
			if err != nil || weight <= 0 {
				dialog.ShowError(fmt.Errorf("enter a valid weight"), a.window)
				return
			}

			opts := store.UpdatePrintOptions{
				PrintName:  &nameEntry.Text,
				WeightUsed: &weight,
			}
			for i, f := range filaments {
				if filamentOption(f) == filamentSelect.Selected {
					opts.FilamentID = &filaments[i].ID
					break
				}
			}
			if priceEntry.Text != "" {
				price, err := parseFloatEntry(priceEntry)
				if err != nil {
					dialog.ShowError(fmt.Errorf("enter a valid price"), a.window)
					return
				}
				opts.Price = &price
			}

			if err := a.store.UpdatePrint(p.ID, opts); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.refreshHistoryList()
			a.refreshFilamentsList()
			a.refreshCalculatorFilaments()
		}, a.window)
	form.Resize(fyne.NewSize(460, 0))
	form.Show()
}

func (a *App) confirmDeletePrint(p model.PrintRecord) {
	restoreCheck := widget.NewCheck("Restore weight to filament", nil)
	restoreCheck.SetChecked(true)

	form := dialog.NewForm("Delete Print", "Delete", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem(fmt.Sprintf("Delete %q?", p.PrintName), widget.NewLabel("")),
			widget.NewFormItem("", restoreCheck),
		},
		func(ok bool) {
			if !ok {
				return
			}
			if _, err := a.store.DeletePrint(p.ID, restoreCheck.Checked); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.refreshHistoryList()
			a.refreshFilamentsList()
			a.refreshCalculatorFilaments()
		}, a.window)
	form.Show()
}
