package model

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestMaterialCost(t *testing.T) {
	tests := []struct {
		name       string
		weightG    float64
		pricePerKg float64
		copies     int
		want       float64
	}{
		{"basic", 100, 120, 1, 12.0},
		{"two copies", 100, 120, 2, 24.0},
		{"fractional weight", 35.79, 100, 1, 3.579},
		{"zero weight", 0, 120, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaterialCost(tt.weightG, tt.pricePerKg, tt.copies)
			if !almostEqual(got, tt.want) {
				t.Errorf("MaterialCost(%v, %v, %d) = %v, want %v",
					tt.weightG, tt.pricePerKg, tt.copies, got, tt.want)
			}
		})
	}
}

func TestPrinterTimeCost(t *testing.T) {
	// 2h at 5/h with 30 min preheat, one copy: 2.5h * 5 = 12.5
	got := PrinterTimeCost(2, 5, 30, 1)
	if !almostEqual(got, 12.5) {
		t.Errorf("expected 12.5, got %v", got)
	}
	// Copies multiply print and preheat time both
	got = PrinterTimeCost(2, 5, 30, 2)
	if !almostEqual(got, 25.0) {
		t.Errorf("expected 25.0, got %v", got)
	}
}

func TestEnergyConsumptionPreheatOncePerJob(t *testing.T) {
	// 1h at 130W, 5 min preheat at 200W
	one := EnergyConsumptionKWh(1, 130, 5, 200, 1)
	two := EnergyConsumptionKWh(1, 130, 5, 200, 2)

	preheat := (5.0 / 60.0) * 0.2
	if !almostEqual(one, 0.13+preheat) {
		t.Errorf("single copy: expected %v, got %v", 0.13+preheat, one)
	}
	// Doubling copies doubles print energy but not preheat energy
	if !almostEqual(two-one, 0.13) {
		t.Errorf("expected second copy to add exactly print energy, got delta %v", two-one)
	}
}

func TestEnergyConsumptionZeroCopies(t *testing.T) {
	got := EnergyConsumptionKWh(1, 130, 5, 200, 0)
	if !almostEqual(got, 0) {
		t.Errorf("expected no energy for zero copies, got %v", got)
	}
}

func TestApplyRisk(t *testing.T) {
	if got := ApplyRisk(100, 10); !almostEqual(got, 110) {
		t.Errorf("expected 110, got %v", got)
	}
	if got := ApplyRisk(100, 0); !almostEqual(got, 100) {
		t.Errorf("expected 100, got %v", got)
	}
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		name    string
		price   float64
		roundTo float64
		want    float64
	}{
		{"nearest five grosze down", 24.464, 0.05, 24.45},
		{"nearest five grosze up", 24.48, 0.05, 24.50},
		{"exact multiple", 24.45, 0.05, 24.45},
		{"zero increment unchanged", 24.464, 0, 24.464},
		{"negative increment unchanged", 24.464, -1, 24.464},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundPrice(tt.price, tt.roundTo)
			if !almostEqual(got, tt.want) {
				t.Errorf("RoundPrice(%v, %v) = %v, want %v", tt.price, tt.roundTo, got, tt.want)
			}
		})
	}
}

func TestCalculatePriceFullScenario(t *testing.T) {
	b := CalculatePrice(PriceParams{
		FilamentWeightG:      100,
		MaterialPricePerKg:   120,
		PrintTimeHours:       2,
		HourlyRate:           5,
		EnergyConsumptionKWh: 0.3,
		CostPerKWh:           0.8,
		MarginPercent:        10,
		Copies:               1,
		VATPercent:           23,
		RoundTo:              0.05,
	})

	if !almostEqual(b.MaterialCost, 12.0) {
		t.Errorf("material cost: expected 12.0, got %v", b.MaterialCost)
	}
	if !almostEqual(b.TimeCost, 10.0) {
		t.Errorf("time cost: expected 10.0, got %v", b.TimeCost)
	}
	if !almostEqual(b.EnergyCost, 0.24) {
		t.Errorf("energy cost: expected 0.24, got %v", b.EnergyCost)
	}
	if !almostEqual(b.Subtotal, 22.24) {
		t.Errorf("subtotal: expected 22.24, got %v", b.Subtotal)
	}
	if !almostEqual(b.MarginAmount, 2.224) {
		t.Errorf("margin: expected 2.224, got %v", b.MarginAmount)
	}
	if !almostEqual(b.PriceBeforeVAT, 24.45) {
		t.Errorf("price before VAT: expected 24.45, got %v", b.PriceBeforeVAT)
	}
	if !almostEqual(b.VATAmount, 5.6235) {
		t.Errorf("VAT: expected 5.6235, got %v", b.VATAmount)
	}
	if !almostEqual(b.FinalPrice, 30.0735) {
		t.Errorf("final price: expected 30.0735, got %v", b.FinalPrice)
	}
}

func TestCalculatePriceMinPriceClampBeforeVAT(t *testing.T) {
	b := CalculatePrice(PriceParams{
		FilamentWeightG:      100,
		MaterialPricePerKg:   120,
		PrintTimeHours:       2,
		HourlyRate:           5,
		EnergyConsumptionKWh: 0.3,
		CostPerKWh:           0.8,
		MarginPercent:        10,
		Copies:               1,
		MinPrice:             50,
		VATPercent:           23,
		RoundTo:              0.05,
	})

	if !almostEqual(b.PriceBeforeVAT, 50.0) {
		t.Errorf("price before VAT: expected clamp to 50, got %v", b.PriceBeforeVAT)
	}
	if !almostEqual(b.FinalPrice, 50*1.23) {
		t.Errorf("final price: expected %v, got %v", 50*1.23, b.FinalPrice)
	}
}

func TestCalculatePriceNoPreheatInTimeCost(t *testing.T) {
	// The breakdown bills preheat through energy only; the time cost is
	// print hours times rate exactly.
	b := CalculatePrice(PriceParams{
		FilamentWeightG:    10,
		MaterialPricePerKg: 100,
		PrintTimeHours:     3,
		HourlyRate:         6,
		Copies:             1,
	})
	if !almostEqual(b.TimeCost, 18.0) {
		t.Errorf("time cost: expected 18.0, got %v", b.TimeCost)
	}
}

func TestCalculatePriceZeroVAT(t *testing.T) {
	b := CalculatePrice(PriceParams{
		FilamentWeightG:    100,
		MaterialPricePerKg: 100,
		Copies:             1,
		RoundTo:            0.05,
	})
	if b.VATAmount != 0 {
		t.Errorf("expected zero VAT, got %v", b.VATAmount)
	}
	if !almostEqual(b.FinalPrice, b.PriceBeforeVAT) {
		t.Errorf("final price should equal pre-VAT price when VAT is zero")
	}
}

func TestCalculatePriceMonotonicity(t *testing.T) {
	base := PriceParams{
		FilamentWeightG:      100,
		MaterialPricePerKg:   120,
		PrintTimeHours:       2,
		HourlyRate:           5,
		EnergyConsumptionKWh: 0.3,
		CostPerKWh:           0.8,
		MarginPercent:        10,
		Copies:               1,
		VATPercent:           23,
		RoundTo:              0.05,
	}

	tests := []struct {
		name string
		bump func(PriceParams, int) PriceParams
	}{
		{"weight", func(p PriceParams, step int) PriceParams {
			p.FilamentWeightG += float64(step) * 25
			return p
		}},
		{"print time", func(p PriceParams, step int) PriceParams {
			p.PrintTimeHours += float64(step) * 0.5
			return p
		}},
		{"copies", func(p PriceParams, step int) PriceParams {
			p.Copies += step
			return p
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := CalculatePrice(base).FinalPrice
			for step := 1; step <= 10; step++ {
				got := CalculatePrice(tt.bump(base, step)).FinalPrice
				if got < prev {
					t.Errorf("step %d: final price dropped from %v to %v", step, prev, got)
				}
				prev = got
			}
		})
	}
}

func TestCalculatePriceAdvancedSurcharges(t *testing.T) {
	b := CalculatePrice(PriceParams{
		FilamentWeightG:      100,
		MaterialPricePerKg:   100, // 10.0
		Copies:               1,
		SetupFee:             5,
		PostprocessTimeHours: 2,
		PostprocessRate:      10, // 20.0
		RiskPercent:          10,
		PackagingCost:        3,
		ShippingCost:         7,
	})
	// subtotal = 10 + 20 + 5 = 35; risk 3.5; margin 0
	if !almostEqual(b.Subtotal, 35.0) {
		t.Errorf("subtotal: expected 35.0, got %v", b.Subtotal)
	}
	if !almostEqual(b.RiskAmount, 3.5) {
		t.Errorf("risk: expected 3.5, got %v", b.RiskAmount)
	}
	if !almostEqual(b.PriceBeforeVAT, 35.0+3.5+3+7) {
		t.Errorf("price before VAT: expected 48.5, got %v", b.PriceBeforeVAT)
	}
}
