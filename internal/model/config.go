package model

// BrandPrice holds the per-kilogram price configured for one brand of a
// material.
type BrandPrice struct {
	PricePerKg float64 `json:"price_per_kg"`
}

// MaterialRates holds the pricing entries for one material code: the machine
// hourly rate and the price per kg for each brand carrying that material.
type MaterialRates struct {
	HourlyRate float64               `json:"hourly_rate"`
	Brands     map[string]BrandPrice `json:"brands"`
}

// EnergySettings holds the electricity model of the shop's printers.
type EnergySettings struct {
	CostPerKWh        float64 `json:"cost_per_kwh"`
	PrinterPowerWatts float64 `json:"printer_power_watts"`
	PreheatMinutes    float64 `json:"preheat_time_minutes"`
	PreheatPowerWatts float64 `json:"preheat_power_watts"`
}

// PricingSettings holds the quote-shaping knobs applied after base costs.
type PricingSettings struct {
	MarginPercent float64 `json:"margin_percent"`
	VATPercent    float64 `json:"vat_percent"`
	MinPrice      float64 `json:"min_price"`
	RoundTo       float64 `json:"round_to"`
}

// AdvancedSettings holds the optional surcharge parameters.
type AdvancedSettings struct {
	SetupFee        float64 `json:"setup_fee"`
	PostprocessRate float64 `json:"postprocess_rate_per_hour"`
	RiskPercent     float64 `json:"risk_percent"`
	PackagingCost   float64 `json:"packaging_cost"`
	ShippingCost    float64 `json:"shipping_cost"`
}

// Preferences holds display preferences.
type Preferences struct {
	Language string `json:"language"`
	Currency string `json:"currency"`
}

// Config is the full application configuration: the material rate table plus
// energy, pricing, advanced and preference settings. It is persisted as one
// JSON document and always loaded merged over DefaultConfig.
type Config struct {
	Materials   map[string]MaterialRates `json:"materials"`
	Energy      EnergySettings           `json:"energy"`
	Pricing     PricingSettings          `json:"pricing"`
	Advanced    AdvancedSettings         `json:"advanced"`
	Preferences Preferences              `json:"preferences"`
}

// DefaultConfig returns the configuration used on first run and as the merge
// base when loading.
func DefaultConfig() Config {
	rates := map[string]float64{
		"PLA":           5.0,
		"PETG":          5.5,
		"ABS":           6.0,
		"ASA":           6.5,
		"PP":            6.0,
		"TPU":           7.0,
		"NYLON":         8.0,
		"PA":            8.0,
		"PC":            9.0,
		"POLYCARBONATE": 9.0,
	}
	materials := make(map[string]MaterialRates, len(rates))
	for code, rate := range rates {
		materials[code] = MaterialRates{HourlyRate: rate, Brands: map[string]BrandPrice{}}
	}
	return Config{
		Materials: materials,
		Energy: EnergySettings{
			CostPerKWh:        0.80,
			PrinterPowerWatts: 130.0,
			PreheatMinutes:    5.0,
			PreheatPowerWatts: 200.0,
		},
		Pricing: PricingSettings{
			MarginPercent: 10.0,
			VATPercent:    23.0,
			MinPrice:      0.0,
			RoundTo:       0.05,
		},
		Advanced: AdvancedSettings{},
		Preferences: Preferences{
			Language: "PL",
			Currency: "PLN",
		},
	}
}

// Material returns the rate entry for a material code, matched on the
// canonical upper-cased form.
func (c Config) Material(code string) (MaterialRates, bool) {
	rates, ok := c.Materials[ToUpper(code)]
	return rates, ok
}

// BrandPricePerKg looks up a brand's price per kg within a material's brand
// map, matching the brand name case-insensitively. The second return lists
// the configured brand names, for diagnostics when the lookup fails.
func (m MaterialRates) BrandPricePerKg(brand string) (float64, []string, bool) {
	want := ToUpper(brand)
	for name, price := range m.Brands {
		if ToUpper(name) == want {
			return price.PricePerKg, nil, true
		}
	}
	names := make([]string, 0, len(m.Brands))
	for name := range m.Brands {
		names = append(names, name)
	}
	return 0, names, false
}
