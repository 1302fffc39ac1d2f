package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Position struct {
	ID                   int64               `db:"position_id"`
	FirmID               int64               `db:"firm_id"`
	Ticker               string              `db:"ticker"`
	TotalShares          decimal.Decimal     `db:"total_shares"`
	TotalInvested        decimal.Decimal     `db:"total_invested"`
	AveragePurchasePrice decimal.Decimal     `db:"average_purchase_price"`
	CurrentPrice         decimal.NullDecimal `db:"current_price"`
	RealizedProfitLoss   decimal.Decimal     `db:"realized_profit_loss"`
	DividendYield        decimal.NullDecimal `db:"dividend_yield"`
	DtUpdate             time.Time           `db:"dt_update"`
}

type Transaction struct {
	ID                 int64               `db:"transaction_id"`
	FirmID             int64               `db:"firm_id"`
	Ticker             string              `db:"ticker"`
	Shares             decimal.Decimal     `db:"shares"`
	PricePerShare      decimal.Decimal     `db:"price_per_share"`
	TotalValue         decimal.Decimal     `db:"total_value"`
	TransactionType    string              `db:"transaction_type"`
	CostBasis          decimal.NullDecimal `db:"cost_basis"`
	RealizedProfitLoss decimal.NullDecimal `db:"realized_profit_loss"`
	PortionOfPosition  decimal.NullDecimal `db:"portion_of_position"`
	Fees               decimal.NullDecimal `db:"fees"`
	Notes              *string             `db:"notes"`
	DtCreate           time.Time           `db:"dt_create"`
}
