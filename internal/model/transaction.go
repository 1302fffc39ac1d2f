package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Buy  TransactionType = "buy"
	Sell TransactionType = "sell"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Transaction is the immutable record of one buy or sell. Only the sell
// realization fields are written after creation.
type Transaction struct {
	ID                 int64
	FirmID             int64
	Ticker             string
	Shares             decimal.Decimal
	PricePerShare      decimal.Decimal
	TotalValue         decimal.Decimal
	Type               TransactionType
	CostBasis          decimal.NullDecimal
	RealizedProfitLoss decimal.NullDecimal
	PortionOfPosition  decimal.NullDecimal
	Fees               decimal.NullDecimal
	Notes              string
	CreatedAt          time.Time
}

type TransactionRequest struct {
	Ticker        string              `validate:"required"`
	Shares        decimal.Decimal     `validate:"dgt=0"`
	PricePerShare decimal.Decimal     `validate:"dgt=0"`
	Type          TransactionType     `validate:"oneof=buy sell"`
	Fees          decimal.NullDecimal `validate:"omitempty,dgte=0"`
	Notes         string
}

// SellRealization is back-filled into a sell transaction once the position change is known.
type SellRealization struct {
	CostBasis          decimal.Decimal
	RealizedProfitLoss decimal.Decimal
	PortionOfPosition  decimal.Decimal
	Notes              string
}

// RealizedEntry is one sell in the realized P&L history with the running total.
type RealizedEntry struct {
	TransactionID      int64
	Ticker             string
	Shares             decimal.Decimal
	PricePerShare      decimal.Decimal
	CostBasis          decimal.Decimal
	RealizedProfitLoss decimal.Decimal
	Cumulative         decimal.Decimal
	CreatedAt          time.Time
}
