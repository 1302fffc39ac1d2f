package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position struct {
	ID                   int64
	FirmID               int64
	Ticker               string
	TotalShares          decimal.Decimal
	TotalInvested        decimal.Decimal
	AveragePurchasePrice decimal.Decimal
	CurrentPrice         decimal.NullDecimal
	RealizedProfitLoss   decimal.Decimal
	DividendYield        decimal.NullDecimal
	UpdatedAt            time.Time
}

// Active reports whether the position still holds shares. Retired positions
// are kept for their realized P&L but ignored by every allocation.
func (p Position) Active() bool {
	return p.TotalShares.IsPositive()
}

// MarketValue is shares times current price, ok is false when no price is known.
func (p Position) MarketValue() (value decimal.Decimal, ok bool) {
	if !p.CurrentPrice.Valid || !p.CurrentPrice.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return p.TotalShares.Mul(p.CurrentPrice.Decimal), true
}

func (p Position) UnrealizedProfitLoss() decimal.NullDecimal {
	value, ok := p.MarketValue()
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(value.Sub(p.TotalInvested))
}
