package dashboard

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ericksa/lexinegotiate/internal/contract"
)

// DefaultCurrency is used when no clause names a currency symbol.
const DefaultCurrency = "€"

var frenchPrinter = message.NewPrinter(language.French)

// FormatCurrency renders an amount with French grouping, two decimals and a
// trailing currency symbol, e.g. "18 000,00 €".
func FormatCurrency(amount float64, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrency
	}
	return frenchPrinter.Sprint(number.Decimal(amount, number.MinFractionDigits(2), number.MaxFractionDigits(2))) + " " + symbol
}

// Totals are the aggregate exposure and potential savings of an analysis.
type Totals struct {
	Exposure decimal.Decimal
	Savings  decimal.Decimal
	Currency string
	// Derived is set when a total was summed from clause financials because
	// the analysis did not state it.
	Derived bool
}

// ComputeTotals returns the stated totals, deriving missing ones from clause
// financials: exposure sums lifetime costs, savings sums comparison savings.
func ComputeTotals(a *contract.ContractAnalysis) Totals {
	t := Totals{Currency: DefaultCurrency}
	if a == nil {
		return t
	}

	var exposure, savings decimal.Decimal
	currencySet := false
	for _, c := range a.Clauses {
		f := c.DetailedFinancials
		if f == nil {
			continue
		}
		exposure = exposure.Add(decimal.NewFromFloat(f.LifetimeCost))
		savings = savings.Add(decimal.NewFromFloat(f.ComparisonSavings))
		if !currencySet && f.Currency != "" {
			t.Currency = f.Currency
			currencySet = true
		}
	}

	if a.TotalPotentialExposure != nil {
		t.Exposure = decimal.NewFromFloat(*a.TotalPotentialExposure)
	} else {
		t.Exposure = exposure
		t.Derived = true
	}
	if a.TotalPotentialSavings != nil {
		t.Savings = decimal.NewFromFloat(*a.TotalPotentialSavings)
	} else {
		t.Savings = savings
		t.Derived = true
	}
	return t
}

// TotalsView is the formatted form of Totals.
type TotalsView struct {
	Exposure          float64 `json:"exposure"`
	Savings           float64 `json:"savings"`
	ExposureFormatted string  `json:"exposure_formatted"`
	SavingsFormatted  string  `json:"savings_formatted"`
	Currency          string  `json:"currency"`
	Derived           bool    `json:"derived"`
}

// View formats the totals.
func (t Totals) View() TotalsView {
	exposure := t.Exposure.Round(2).InexactFloat64()
	savings := t.Savings.Round(2).InexactFloat64()
	return TotalsView{
		Exposure:          exposure,
		Savings:           savings,
		ExposureFormatted: FormatCurrency(exposure, t.Currency),
		SavingsFormatted:  FormatCurrency(savings, t.Currency),
		Currency:          t.Currency,
		Derived:           t.Derived,
	}
}
