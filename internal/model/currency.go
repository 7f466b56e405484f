package model

import "fmt"

// Currency describes one display currency: its conversion rate from the home
// currency (PLN) and how its symbol is placed around the amount.
type Currency struct {
	Code         string
	Symbol       string
	Rate         float64 // home units -> 1 unit of this currency
	SymbolBefore bool
}

// Currencies is the fixed table of supported display currencies. Rates are
// per one PLN.
var Currencies = map[string]Currency{
	"PLN": {Code: "PLN", Symbol: "zł", Rate: 1.0, SymbolBefore: false},
	"EUR": {Code: "EUR", Symbol: "€", Rate: 0.23, SymbolBefore: true},
	"USD": {Code: "USD", Symbol: "$", Rate: 0.25, SymbolBefore: true},
	"GBP": {Code: "GBP", Symbol: "£", Rate: 0.20, SymbolBefore: true},
}

// CurrencyCodes lists the supported codes in the order shown in settings.
var CurrencyCodes = []string{"PLN", "EUR", "USD", "GBP"}

// DisplayContext converts and formats home-currency amounts for one selected
// display currency. Stored values stay in PLN; conversion is display-only.
type DisplayContext struct {
	Currency Currency
}

// NewDisplayContext returns a context for the given code, falling back to PLN
// for unknown codes.
func NewDisplayContext(code string) DisplayContext {
	cur, ok := Currencies[ToUpper(code)]
	if !ok {
		cur = Currencies["PLN"]
	}
	return DisplayContext{Currency: cur}
}

// FromHome converts a home-currency amount into the display currency.
func (d DisplayContext) FromHome(amount float64) float64 {
	return amount * d.Currency.Rate
}

// ToHome converts a display-currency amount back into the home currency.
func (d DisplayContext) ToHome(amount float64) float64 {
	if d.Currency.Rate == 0 {
		return amount
	}
	return amount / d.Currency.Rate
}

// Format converts a home-currency amount and renders it with the currency
// symbol in its conventional position.
func (d DisplayContext) Format(amount float64) string {
	v := d.FromHome(amount)
	if d.Currency.SymbolBefore {
		return fmt.Sprintf("%s%.2f", d.Currency.Symbol, v)
	}
	return fmt.Sprintf("%.2f %s", v, d.Currency.Symbol)
}
