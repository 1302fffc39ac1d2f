package model

import "github.com/shopspring/decimal"

type WithdrawalStatus string

const (
	WithdrawalCompleted WithdrawalStatus = "completed"
	WithdrawalCancelled WithdrawalStatus = "cancelled"
	WithdrawalFailed    WithdrawalStatus = "failed"
)

type Liquidation struct {
	PositionID int64
	Ticker     string
	Shares     decimal.Decimal
	Price      decimal.Decimal
	Value      decimal.Decimal
}

type WithdrawalPlan struct {
	FirmID          int64
	ShareholderID   int64
	EntitledValue   decimal.Decimal
	IsProfit        bool
	Profit          decimal.Decimal
	ManagementFee   decimal.Decimal
	CashWithdrawal  decimal.Decimal // after the management fee
	Remaining       decimal.Decimal
	Liquidations    []Liquidation
	LiquidatedValue decimal.Decimal
}

// Payout is what leaves the firm: the cash part plus the shortfall raised by
// liquidation. Never more than the entitled value.
func (p WithdrawalPlan) Payout() decimal.Decimal {
	return p.CashWithdrawal.Add(p.Remaining)
}

// Surplus is what whole-share rounding raised above the shortfall, it stays in firm cash.
func (p WithdrawalPlan) Surplus() decimal.Decimal {
	if !p.LiquidatedValue.GreaterThan(p.Remaining) {
		return decimal.Zero
	}
	return p.LiquidatedValue.Sub(p.Remaining)
}

type WithdrawalResult struct {
	Status         WithdrawalStatus
	Plan           WithdrawalPlan
	TransactionIDs []int64
}
