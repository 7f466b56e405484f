package model

import "math"

// PriceBreakdown holds every line item of a quote. All values are in the
// home currency; display conversion happens in the presentation layer.
type PriceBreakdown struct {
	MaterialCost         float64 `json:"material_cost"`
	TimeCost             float64 `json:"time_cost"`
	EnergyCost           float64 `json:"energy_cost"`
	PostprocessCost      float64 `json:"postprocess_cost"`
	SetupFee             float64 `json:"setup_fee"`
	Subtotal             float64 `json:"subtotal"`
	RiskAmount           float64 `json:"risk_amount"`
	RiskAdjustedCost     float64 `json:"risk_adjusted_cost"`
	MarginAmount         float64 `json:"margin_amount"`
	PriceBeforePackaging float64 `json:"price_before_packaging"`
	PackagingCost        float64 `json:"packaging_cost"`
	ShippingCost         float64 `json:"shipping_cost"`
	PriceBeforeVAT       float64 `json:"price_before_vat"`
	VATAmount            float64 `json:"vat_amount"`
	FinalPrice           float64 `json:"final_price"`
}

// PriceParams collects every input of the full breakdown pipeline.
type PriceParams struct {
	FilamentWeightG      float64
	MaterialPricePerKg   float64
	PrintTimeHours       float64
	HourlyRate           float64
	EnergyConsumptionKWh float64
	CostPerKWh           float64
	MarginPercent        float64
	Copies               int
	SetupFee             float64
	PostprocessTimeHours float64
	PostprocessRate      float64
	RiskPercent          float64
	PackagingCost        float64
	ShippingCost         float64
	MinPrice             float64
	VATPercent           float64
	RoundTo              float64
}

// MaterialCost returns the filament cost for the given weight, per-kg price
// and number of copies.
func MaterialCost(weightG, pricePerKg float64, copies int) float64 {
	weightKg := weightG * float64(copies) / 1000.0
	return weightKg * pricePerKg
}

// PrinterTimeCost returns the machine-time cost including preheat minutes.
// The full breakdown always passes preheat 0: preheat is billed through
// energy only, never through machine time.
func PrinterTimeCost(printTimeHours, hourlyRate, preheatMinutes float64, copies int) float64 {
	preheatHours := preheatMinutes / 60.0
	totalTime := (printTimeHours + preheatHours) * float64(copies)
	return totalTime * hourlyRate
}

// EnergyConsumptionKWh returns the total energy use in kWh. Preheat energy
// counts once per job, not per copy.
func EnergyConsumptionKWh(printTimeHours, printerPowerW, preheatMinutes, preheatPowerW float64, copies int) float64 {
	printEnergy := printTimeHours * float64(copies) * (printerPowerW / 1000.0)
	preheatEnergy := 0.0
	if copies > 0 {
		preheatEnergy = (preheatMinutes / 60.0) * (preheatPowerW / 1000.0)
	}
	return printEnergy + preheatEnergy
}

// EnergyCost returns the monetary cost of the given energy consumption.
func EnergyCost(kwh, costPerKWh float64) float64 {
	return kwh * costPerKWh
}

// PostprocessCost returns the cost of manual post-processing time.
func PostprocessCost(hours, ratePerHour float64) float64 {
	return hours * ratePerHour
}

// ApplyRisk inflates a base cost by a failed-print risk percentage.
func ApplyRisk(baseCost, riskPercent float64) float64 {
	return baseCost * (1 + riskPercent/100.0)
}

// RoundPrice rounds to the nearest multiple of roundTo (e.g. 0.05), using
// round-half-to-even on the quotient. Non-positive roundTo leaves the price
// unchanged.
func RoundPrice(price, roundTo float64) float64 {
	if roundTo <= 0 {
		return price
	}
	return math.RoundToEven(price/roundTo) * roundTo
}

// CalculatePrice runs the full breakdown pipeline. The stage order is part
// of the contract: risk applies to the subtotal, margin to the risk-adjusted
// cost, packaging and shipping are added after margin, the minimum price
// clamps before rounding, and VAT applies to the rounded pre-VAT price.
func CalculatePrice(p PriceParams) PriceBreakdown {
	materialCost := MaterialCost(p.FilamentWeightG, p.MaterialPricePerKg, p.Copies)
	timeCost := PrinterTimeCost(p.PrintTimeHours, p.HourlyRate, 0.0, p.Copies)
	energyCost := EnergyCost(p.EnergyConsumptionKWh, p.CostPerKWh)
	postprocessCost := PostprocessCost(p.PostprocessTimeHours, p.PostprocessRate)

	subtotal := materialCost + timeCost + energyCost + postprocessCost + p.SetupFee

	riskAdjusted := ApplyRisk(subtotal, p.RiskPercent)
	riskAmount := riskAdjusted - subtotal

	marginAmount := riskAdjusted * (p.MarginPercent / 100.0)
	priceBeforePackaging := riskAdjusted + marginAmount

	priceBeforeVAT := priceBeforePackaging + p.PackagingCost + p.ShippingCost

	if p.MinPrice > 0 && priceBeforeVAT < p.MinPrice {
		priceBeforeVAT = p.MinPrice
	}

	priceBeforeVAT = RoundPrice(priceBeforeVAT, p.RoundTo)

	vatAmount := 0.0
	if p.VATPercent > 0 {
		vatAmount = priceBeforeVAT * (p.VATPercent / 100.0)
	}

	return PriceBreakdown{
		MaterialCost:         materialCost,
		TimeCost:             timeCost,
		EnergyCost:           energyCost,
		PostprocessCost:      postprocessCost,
		SetupFee:             p.SetupFee,
		Subtotal:             subtotal,
		RiskAmount:           riskAmount,
		RiskAdjustedCost:     riskAdjusted,
		MarginAmount:         marginAmount,
		PriceBeforePackaging: priceBeforePackaging,
		PackagingCost:        p.PackagingCost,
		ShippingCost:         p.ShippingCost,
		PriceBeforeVAT:       priceBeforeVAT,
		VATAmount:            vatAmount,
		FinalPrice:           priceBeforeVAT + vatAmount,
	}
}
