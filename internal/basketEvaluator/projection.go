package basketEvaluator

import (
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/shopspring/decimal"
)

type ProjectionParams struct {
	InitialValue           decimal.Decimal
	DividendYield          decimal.Decimal
	ForeignWithholdingRate decimal.Decimal
	DividendGrowthRate     decimal.Decimal
	AssetGrowthRate        decimal.Decimal
	Years                  int
}

// Project returns year 0 plus one row per projected year. Each year the
// holdings earn foreign dividends on the opening value, the yield growing by
// DividendGrowthRate a year, the after-tax dividends are reinvested and the
// opening value appreciates by AssetGrowthRate.
func Project(tax TaxCalculator, p ProjectionParams) []model.ProjectionYear {
	years := max(p.Years, 0)
	res := make([]model.ProjectionYear, 0, years+1)

	value := p.InitialValue
	res = append(res, model.ProjectionYear{Year: 0, PortfolioValue: value})

	yield := p.DividendYield
	dividendGrowth := decimal.NewFromInt(1).Add(p.DividendGrowthRate)
	assetGrowth := decimal.NewFromInt(1).Add(p.AssetGrowthRate)

	for year := 1; year <= years; year++ {
		if year > 1 {
			yield = yield.Mul(dividendGrowth)
		}
		dividends := value.Mul(yield)
		withheld := dividends.Mul(p.ForeignWithholdingRate)

		taxes := tax.Tax(model.TaxableIncome{
			ForeignDividends: dividends,
			ForeignTaxPaid:   withheld,
		})

		value = value.Mul(assetGrowth).Add(taxes.AfterTaxCash)
		res = append(res, model.ProjectionYear{
			Year:           year,
			PortfolioValue: value,
			DividendIncome: dividends,
			DomesticTax:    taxes.DomesticTax,
			TotalTax:       taxes.TotalTax,
			AfterTaxCash:   taxes.AfterTaxCash,
		})
	}
	return res
}
