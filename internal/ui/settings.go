package ui

import (
	"fmt"
	"sort"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

func (a *App) buildSettingsPanel() fyne.CanvasObject {
	cfg := &a.cfg

	// Helper to create a bound float entry
	floatEntry := func(val *float64) *widget.Entry {
		e := widget.NewEntry()
		e.SetText(fmt.Sprintf("%.2f", *val))
		e.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				*val = v
			}
		}
		return e
	}

	energyGrid := container.NewGridWithColumns(2,
		widget.NewLabel("Cost per kWh"), floatEntry(&cfg.Energy.CostPerKWh),
		widget.NewLabel("Printer power (W)"), floatEntry(&cfg.Energy.PrinterPowerWatts),
		widget.NewLabel("Preheat time (min)"), floatEntry(&cfg.Energy.PreheatMinutes),
		widget.NewLabel("Preheat power (W)"), floatEntry(&cfg.Energy.PreheatPowerWatts),
	)

	pricingGrid := container.NewGridWithColumns(2,
		widget.NewLabel("Margin (%)"), floatEntry(&cfg.Pricing.MarginPercent),
		widget.NewLabel("VAT (%)"), floatEntry(&cfg.Pricing.VATPercent),
		widget.NewLabel("Minimum price"), floatEntry(&cfg.Pricing.MinPrice),
		widget.NewLabel("Round to"), floatEntry(&cfg.Pricing.RoundTo),
	)

	advancedGrid := container.NewGridWithColumns(2,
		widget.NewLabel("Setup fee"), floatEntry(&cfg.Advanced.SetupFee),
		widget.NewLabel("Post-processing rate (per h)"), floatEntry(&cfg.Advanced.PostprocessRate),
		widget.NewLabel("Risk (%)"), floatEntry(&cfg.Advanced.RiskPercent),
		widget.NewLabel("Packaging cost"), floatEntry(&cfg.Advanced.PackagingCost),
		widget.NewLabel("Shipping cost"), floatEntry(&cfg.Advanced.ShippingCost),
	)

	currencySelect := widget.NewSelect(model.CurrencyCodes, func(code string) {
		cfg.Preferences.Currency = code
	})
	currencySelect.SetSelected(cfg.Preferences.Currency)

	// Per-material hourly rates and brand prices
	materialsBox := container.NewVBox()
	for _, code := range materialCodes(*cfg) {
		code := code
		rates := cfg.Materials[code]

		rateEntry := widget.NewEntry()
		rateEntry.SetText(fmt.Sprintf("%.2f", rates.HourlyRate))
		rateEntry.OnChanged = func(text string) {
			if v, err := strconv.ParseFloat(text, 64); err == nil {
				m := cfg.Materials[code]
				m.HourlyRate = v
				cfg.Materials[code] = m
			}
		}

		brandsGrid := container.NewGridWithColumns(2)
		for _, brand := range brandNames(rates) {
			brand := brand
			priceEntry := widget.NewEntry()
			priceEntry.SetText(fmt.Sprintf("%.2f", rates.Brands[brand].PricePerKg))
			priceEntry.OnChanged = func(text string) {
				if v, err := strconv.ParseFloat(text, 64); err == nil {
					cfg.Materials[code].Brands[brand] = model.BrandPrice{PricePerKg: v}
				}
			}
			brandsGrid.Add(widget.NewLabel(brand + " (per kg)"))
			brandsGrid.Add(priceEntry)
		}

		materialsBox.Add(widget.NewCard(code, "",
			container.NewVBox(
				container.NewGridWithColumns(2,
					widget.NewLabel("Hourly rate"), rateEntry,
				),
				brandsGrid,
			),
		))
	}

	saveBtn := widget.NewButtonWithIcon("Save Settings", nil, func() {
		if err := a.store.SaveConfig(a.cfg); err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		a.disp = model.NewDisplayContext(a.cfg.Preferences.Currency)
		a.refreshHistoryList()
		dialog.ShowInformation("Settings", "Settings saved.", a.window)
	})

	return container.NewVScroll(container.NewVBox(
		widget.NewCard("Energy", "", energyGrid),
		widget.NewCard("Pricing", "", pricingGrid),
		widget.NewCard("Advanced", "", advancedGrid),
		widget.NewCard("Preferences", "", container.NewGridWithColumns(2,
			widget.NewLabel("Currency"), currencySelect,
		)),
		widget.NewCard("Materials", "", materialsBox),
		container.NewHBox(layout.NewSpacer(), saveBtn),
	))
}

// brandNames lists a material's configured brands in stable order.
func brandNames(rates model.MaterialRates) []string {
	names := make([]string, 0, len(rates.Brands))
	for name := range rates.Brands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
