package taxCalculator

import (
	"testing"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTax(t *testing.T) {
	calc := New(DefaultCorporateTaxRate)

	tests := []struct {
		name         string
		income       model.TaxableIncome
		domesticTax  string
		totalTax     string
		afterTaxCash string
	}{
		{
			name:         "foreign dividends with withholding below the rate",
			income:       model.TaxableIncome{ForeignDividends: d("100"), ForeignTaxPaid: d("15")},
			domesticTax:  "5",
			totalTax:     "20",
			afterTaxCash: "80",
		},
		{
			name:         "credit capped at the domestic tax on foreign dividends",
			income:       model.TaxableIncome{ForeignDividends: d("100"), ForeignTaxPaid: d("30")},
			domesticTax:  "0",
			totalTax:     "30",
			afterTaxCash: "70",
		},
		{
			name:         "domestic income",
			income:       model.TaxableIncome{CapitalGains: d("600"), DomesticDividends: d("400")},
			domesticTax:  "200",
			totalTax:     "200",
			afterTaxCash: "800",
		},
		{
			name:         "losses above income",
			income:       model.TaxableIncome{OtherInvestmentIncome: d("50"), DeductibleLosses: d("80")},
			domesticTax:  "0",
			totalTax:     "0",
			afterTaxCash: "50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := calc.Tax(tt.income)
			assert.True(t, res.DomesticTax.Equal(d(tt.domesticTax)), "domestic %s", res.DomesticTax)
			assert.True(t, res.TotalTax.Equal(d(tt.totalTax)), "total %s", res.TotalTax)
			assert.True(t, res.AfterTaxCash.Equal(d(tt.afterTaxCash)), "after tax %s", res.AfterTaxCash)
		})
	}
}

func TestNegativeRateIsZero(t *testing.T) {
	res := New(d("-0.1")).Tax(model.TaxableIncome{DomesticDividends: d("100")})
	assert.True(t, res.TotalTax.IsZero())
}
