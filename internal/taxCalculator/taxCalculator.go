package taxCalculator

import (
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/shopspring/decimal"
)

var DefaultCorporateTaxRate = decimal.RequireFromString("0.20")

type CorporateTaxCalculator struct {
	rate decimal.Decimal
}

func New(rate decimal.Decimal) *CorporateTaxCalculator {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	return &CorporateTaxCalculator{rate: rate}
}

// Tax applies the corporate rate to income net of losses. Foreign withholding
// is credited up to the domestic tax due on the foreign dividends.
func (c *CorporateTaxCalculator) Tax(income model.TaxableIncome) model.TaxResult {
	total := income.CapitalGains.
		Add(income.DomesticDividends).
		Add(income.ForeignDividends).
		Add(income.OtherInvestmentIncome)

	net := decimal.Max(decimal.Zero, total.Sub(income.DeductibleLosses))
	gross := net.Mul(c.rate)

	credit := decimal.Min(income.ForeignTaxPaid, income.ForeignDividends.Mul(c.rate))
	domestic := decimal.Max(decimal.Zero, gross.Sub(credit))
	totalTax := domestic.Add(income.ForeignTaxPaid)

	return model.TaxResult{
		DomesticTax:  domestic,
		TotalTax:     totalTax,
		AfterTaxCash: total.Sub(totalTax),
	}
}
