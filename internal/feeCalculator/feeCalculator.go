package feeCalculator

import "github.com/shopspring/decimal"

var DefaultManagementFeeRate = decimal.RequireFromString("0.02")

type ManagementFeeCalculator struct {
	rate decimal.Decimal
}

func New(rate decimal.Decimal) *ManagementFeeCalculator {
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	return &ManagementFeeCalculator{rate: rate}
}

// ManagementFee is rate times profit, a loss pays no fee.
func (c *ManagementFeeCalculator) ManagementFee(profit decimal.Decimal) decimal.Decimal {
	if !profit.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(c.rate)
}
