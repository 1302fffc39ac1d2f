package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Firm struct {
	ID          int64
	Name        string
	Cash        decimal.Decimal
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Revenue     decimal.Decimal
	Expenses    decimal.Decimal
	ProfitLoss  decimal.Decimal
	CreatedAt   time.Time
}

// Equity is cash plus the marked-to-market assets.
func (f Firm) Equity() decimal.Decimal {
	return f.Cash.Add(f.Assets)
}

type FirmSummary struct {
	Firm         Firm
	Positions    []Position
	Shareholders []Shareholder
}

type FirmField string

const (
	FirmFieldExpenses    FirmField = "expenses"
	FirmFieldRevenue     FirmField = "revenue"
	FirmFieldLiabilities FirmField = "liabilities"
)
