package model

import "github.com/shopspring/decimal"

// TaxableIncome is one year of firm investment income.
type TaxableIncome struct {
	CapitalGains          decimal.Decimal
	DomesticDividends     decimal.Decimal
	ForeignDividends      decimal.Decimal // gross, before withholding
	ForeignTaxPaid        decimal.Decimal
	OtherInvestmentIncome decimal.Decimal
	DeductibleLosses      decimal.Decimal
}

type TaxResult struct {
	DomesticTax  decimal.Decimal // after the foreign tax credit
	TotalTax     decimal.Decimal // domestic plus foreign withholding
	AfterTaxCash decimal.Decimal
}

// EvaluationConfig drives the growth projection of a basket. Rates are fractions.
type EvaluationConfig struct {
	InitialValue           decimal.Decimal `validate:"dgt=0"`
	Years                  int             `validate:"gt=0,lte=100"`
	ForeignWithholdingRate decimal.Decimal `validate:"dgte=0,dlte=1"`
	DividendGrowthRate     decimal.Decimal `validate:"dgte=-1"`
	AssetGrowthRate        decimal.Decimal `validate:"dgte=-1"`
	// UseHistoricalGrowth takes the basket's mean 52-week change as its asset growth rate when known.
	UseHistoricalGrowth bool
}

type ProjectionYear struct {
	Year           int
	PortfolioValue decimal.Decimal
	DividendIncome decimal.Decimal
	DomesticTax    decimal.Decimal
	TotalTax       decimal.Decimal
	AfterTaxCash   decimal.Decimal
}

// BasketEvaluation is the projected after-tax outcome of one basket. Index
// points into the generated baskets, Rank starts at 1 for the best return.
type BasketEvaluation struct {
	Index            int
	Rank             int
	Basket           Basket
	DividendYield    decimal.Decimal
	GrowthRate       decimal.Decimal
	Projection       []ProjectionYear
	FinalValue       decimal.Decimal
	AnnualizedReturn float64
}
