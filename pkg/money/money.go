// Package money holds the currency vocabulary shared by the act catalog and
// the billing engine.
package money

// Currency is an ISO 4217 code. Only Congolese francs and US dollars are
// accepted.
type Currency string

const (
	CDF Currency = "CDF"
	USD Currency = "USD"
)

// Default is the currency applied when none is supplied.
const Default = CDF

// Valid reports whether c is a supported currency.
func Valid(c Currency) bool {
	return c == CDF || c == USD
}

// Currencies lists every supported currency, for totals reporting.
var Currencies = []Currency{CDF, USD}
