package model

import "github.com/shopspring/decimal"

type Quote struct {
	Ticker        string
	Price         decimal.Decimal
	DividendYield decimal.NullDecimal // fraction, 0.03 means 3%
}

// Fundamentals is the per-ticker snapshot the portfolio generator works on.
// Optional metrics are nil when the provider has no value.
type Fundamentals struct {
	Ticker        string   `json:"ticker"`
	Name          string   `json:"name,omitempty"`
	Sector        string   `json:"sector"`
	Price         *float64 `json:"price,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	EPS           *float64 `json:"eps,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
	EPSGrowth     *float64 `json:"eps_growth,omitempty"`
	ROE           *float64 `json:"roe,omitempty"`
	Week52Change  *float64 `json:"week52_change,omitempty"`
	Week52High    *float64 `json:"week52_high,omitempty"`
	Week52Low     *float64 `json:"week52_low,omitempty"`
}

// HasRequired reports whether every fundamental the generator cannot do without is present.
func (f Fundamentals) HasRequired() bool {
	return f.DividendYield != nil && f.EPS != nil && f.PERatio != nil && f.Beta != nil && f.MarketCap != nil
}

// RefreshResult reports one price refresh run.
type RefreshResult struct {
	Skipped bool
	Updated []string
	Failed  []string
}
