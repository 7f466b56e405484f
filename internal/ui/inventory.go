package ui

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Knopersikcuo/printmanager/internal/model"
	"github.com/Knopersikcuo/printmanager/internal/store"
)

func (a *App) buildInventoryPanel() fyne.CanvasObject {
	a.filamentsContainer = container.NewVBox()
	a.brandsContainer = container.NewVBox()
	a.refreshFilamentsList()
	a.refreshBrandsList()

	addFilamentBtn := widget.NewButtonWithIcon("Add Filament", theme.ContentAddIcon(), func() {
		a.showFilamentDialog(nil)
	})
	addBrandBtn := widget.NewButtonWithIcon("Add Brand", theme.ContentAddIcon(), func() {
		a.showBrandDialog(nil)
	})

	filamentsPanel := container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Filaments", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			addFilamentBtn,
		),
		nil, nil, nil,
		container.NewVScroll(a.filamentsContainer),
	)
	brandsPanel := container.NewBorder(
		container.NewHBox(
			widget.NewLabelWithStyle("Brands", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			layout.NewSpacer(),
			addBrandBtn,
		),
		nil, nil, nil,
		container.NewVScroll(a.brandsContainer),
	)

	return container.NewGridWithColumns(2, filamentsPanel, brandsPanel)
}

func (a *App) refreshFilamentsList() {
	if a.filamentsContainer == nil {
		return
	}
	a.filamentsContainer.RemoveAll()

	filaments, err := a.store.Filaments()
	if err != nil {
		a.filamentsContainer.Add(widget.NewLabel(fmt.Sprintf("Load failed: %v", err)))
		return
	}
	if len(filaments) == 0 {
		a.filamentsContainer.Add(widget.NewLabel("No filaments yet. Click 'Add Filament' to begin."))
		return
	}

	header := container.NewGridWithColumns(7,
		widget.NewLabelWithStyle("Brand", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Type", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Color", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Weight (g)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
	)
	a.filamentsContainer.Add(header)
	a.filamentsContainer.Add(widget.NewSeparator())

	for i := range filaments {
		f := filaments[i]
		row := container.NewGridWithColumns(7,
			widget.NewLabel(f.Brand),
			widget.NewLabel(f.Type),
			widget.NewLabel(f.Color),
			widget.NewLabel(fmt.Sprintf("%d / %d", f.CurrentWeight, f.InitialWeight)),
			widget.NewButtonWithIcon("", theme.HistoryIcon(), func() {
				a.showFilamentHistory(f)
			}),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				a.showFilamentDialog(&f)
			}),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.confirmDeleteFilament(f)
			}),
		)
		a.filamentsContainer.Add(row)
	}
}

// showFilamentHistory lists the prints recorded against one spool, newest
// first.
func (a *App) showFilamentHistory(f model.Filament) {
	history, err := a.store.FilamentHistory(f.ID)
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}

	box := container.NewVBox()
	if len(history) == 0 {
		box.Add(widget.NewLabel("No prints recorded from this spool."))
	}
	for _, p := range history {
		price := "-"
		if p.Price != nil {
			price = a.disp.Format(*p.Price)
		}
		box.Add(container.NewGridWithColumns(4,
			widget.NewLabel(shortTimestamp(p.Timestamp)),
			widget.NewLabel(p.PrintName),
			widget.NewLabel(fmt.Sprintf("%d g", p.WeightUsed)),
			widget.NewLabel(price),
		))
	}

	content := container.NewVScroll(box)
	content.SetMinSize(fyne.NewSize(480, 280))
	dialog.ShowCustom(
		fmt.Sprintf("History — %s %s", f.Brand, f.Type),
		"Close", content, a.window)
}

// showFilamentDialog adds a spool or edits an existing one.
func (a *App) showFilamentDialog(existing *model.Filament) {
	brandNames, err := a.store.BrandNames()
	if err != nil {
		dialog.ShowError(err, a.window)
		return
	}
	if len(brandNames) == 0 {
		dialog.ShowInformation("Add Filament", "Add a brand first.", a.window)
		return
	}

	brandSelect := widget.NewSelect(brandNames, nil)
	typeSelect := widget.NewSelect(materialCodes(a.cfg), nil)
	colorEntry := widget.NewEntry()
	colorEntry.SetPlaceHolder("#FF0000")
	weightEntry := widget.NewEntry()
	weightEntry.SetPlaceHolder("Weight in grams")
	withoutSpoolCheck := widget.NewCheck("Weight is net (without spool)", nil)

	title := "Add Filament"
	if existing != nil {
		title = "Edit Filament"
		brandSelect.SetSelected(existing.Brand)
		typeSelect.SetSelected(existing.Type)
		colorEntry.SetText(existing.Color)
		weightEntry.SetText(fmt.Sprintf("%d", existing.InitialWeight))
		withoutSpoolCheck.SetChecked(true)
	}

	form := dialog.NewForm(title, "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Brand", brandSelect),
			widget.NewFormItem("Type", typeSelect),
			widget.NewFormItem("Color", colorEntry),
			widget.NewFormItem("Weight (g)", weightEntry),
			widget.NewFormItem("", withoutSpoolCheck),
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
			if brandSelect.Selected == "" || typeSelect.Selected == "" {
				dialog.ShowError(fmt.Errorf("select a brand and a material type"), a.window)
				return
			}

			if existing == nil {
				_, err = a.store.AddFilament(colorEntry.Text, brandSelect.Selected,
					typeSelect.Selected, weight, withoutSpoolCheck.Checked)
			} else {
				err = a.store.UpdateFilament(existing.ID, colorEntry.Text, brandSelect.Selected,
					typeSelect.Selected, weight, withoutSpoolCheck.Checked)
			}
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.reloadConfig()
			a.refreshFilamentsList()
			a.refreshCalculatorFilaments()
		}, a.window)
	form.Resize(fyne.NewSize(420, 0))
	form.Show()
}

func (a *App) confirmDeleteFilament(f model.Filament) {
	dialog.ShowConfirm("Delete Filament",
		fmt.Sprintf("Delete %s %s? History referencing this spool keeps its records.", f.Brand, f.Type),
		func(ok bool) {
			if !ok {
				return
			}
			if _, err := a.store.DeleteFilament(f.ID); err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.refreshFilamentsList()
			a.refreshCalculatorFilaments()
		}, a.window)
}

func (a *App) refreshBrandsList() {
	if a.brandsContainer == nil {
		return
	}
	a.brandsContainer.RemoveAll()

	brands, err := a.store.Brands()
	if err != nil {
		a.brandsContainer.Add(widget.NewLabel(fmt.Sprintf("Load failed: %v", err)))
		return
	}
	if len(brands) == 0 {
		a.brandsContainer.Add(widget.NewLabel("No brands yet. Click 'Add Brand' to begin."))
		return
	}

	header := container.NewGridWithColumns(4,
		widget.NewLabelWithStyle("Name", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Spool (g)", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
		widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{}),
	)
	a.brandsContainer.Add(header)
	a.brandsContainer.Add(widget.NewSeparator())

	for i := range brands {
		b := brands[i]
		row := container.NewGridWithColumns(4,
			widget.NewLabel(b.Name),
			widget.NewLabel(fmt.Sprintf("%d", b.SpoolWeight)),
			widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
				a.showBrandDialog(&b)
			}),
			widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
				a.confirmDeleteBrand(b)
			}),
		)
		a.brandsContainer.Add(row)
	}
}

func (a *App) showBrandDialog(existing *model.Brand) {
	nameEntry := widget.NewEntry()
	nameEntry.SetPlaceHolder("Brand name")
	spoolEntry := widget.NewEntry()
	spoolEntry.SetText(fmt.Sprintf("%d", model.DefaultSpoolWeightG))

	title := "Add Brand"
	if existing != nil {
		title = "Edit Brand"
		nameEntry.SetText(existing.Name)
		spoolEntry.SetText(fmt.Sprintf("%d", existing.SpoolWeight))
	}

	form := dialog.NewForm(title, "Save", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Name", nameEntry),
			widget.NewFormItem("Spool weight (g)", spoolEntry),
		},
		func(ok bool) {
			if !ok {
				return
			}
			spoolWeight, err := parseIntEntry(spoolEntry)
			if err != nil || spoolWeight < 0 {
				dialog.ShowError(fmt.Errorf("enter a valid spool weight"), a.window)
				return
			}
			if nameEntry.Text == "" {
				dialog.ShowError(fmt.Errorf("enter a brand name"), a.window)
				return
			}

			if existing == nil {
				_, err = a.store.AddBrand(nameEntry.Text, spoolWeight)
			} else {
				err = a.store.UpdateBrand(existing.ID, nameEntry.Text, spoolWeight)
			}
			if err != nil {
				dialog.ShowError(err, a.window)
				return
			}
			a.reloadConfig()
			a.refreshBrandsList()
			a.refreshFilamentsList()
		}, a.window)
	form.Resize(fyne.NewSize(380, 0))
	form.Show()
}

func (a *App) confirmDeleteBrand(b model.Brand) {
	dialog.ShowConfirm("Delete Brand",
		fmt.Sprintf("Delete brand %s?", b.Name),
		func(ok bool) {
			if !ok {
				return
			}
			if err := a.store.DeleteBrand(b.ID); err != nil {
				if err == store.ErrBrandInUse {
					dialog.ShowError(fmt.Errorf("brand %s is still used by filaments", b.Name), a.window)
				} else {
					dialog.ShowError(err, a.window)
				}
				return
			}
			a.reloadConfig()
			a.refreshBrandsList()
		}, a.window)
}

// materialCodes lists the configured material codes for type dropdowns.
func materialCodes(cfg model.Config) []string {
	codes := make([]string, 0, len(cfg.Materials))
	for code := range cfg.Materials {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
