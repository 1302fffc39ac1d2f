// Package withdrawalPlanner turns a shareholder's stake into a withdrawal plan:
// cash first, then whole-share liquidations spread proportionally over every
// priced position, less the management fee on profit.
package withdrawalPlanner

import (
	"fmt"
	"sort"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type FeeCalculator interface {
	ManagementFee(profit decimal.Decimal) decimal.Decimal
}

func Plan(firm model.Firm, shareholder model.Shareholder, positions []model.Position, fees FeeCalculator) (model.WithdrawalPlan, error) {
	if shareholder.Status != "" && shareholder.Status != model.ShareholderActive {
		return model.WithdrawalPlan{}, fmt.Errorf("%w: shareholder %d is %s", service.ErrInvalidInput, shareholder.ID, shareholder.Status)
	}
	if !shareholder.Ownership.IsPositive() || shareholder.Ownership.GreaterThan(hundred) {
		return model.WithdrawalPlan{}, fmt.Errorf("%w: shareholder %d ownership %s out of (0, 100]",
			service.ErrInvalidInput, shareholder.ID, shareholder.Ownership)
	}

	plan := model.WithdrawalPlan{
		FirmID:        firm.ID,
		ShareholderID: shareholder.ID,
	}

	plan.EntitledValue = firm.Equity().Mul(shareholder.Ownership).Div(hundred)
	plan.IsProfit = plan.EntitledValue.GreaterThan(shareholder.Investment)
	plan.Profit = decimal.Max(decimal.Zero, plan.EntitledValue.Sub(shareholder.Investment))

	cashWithdrawal := decimal.Min(decimal.Max(firm.Cash, decimal.Zero), plan.EntitledValue)
	plan.Remaining = plan.EntitledValue.Sub(cashWithdrawal)

	if plan.Remaining.IsPositive() {
		liquidations, err := liquidate(plan.Remaining, positions)
		if err != nil {
			return model.WithdrawalPlan{}, fmt.Errorf("shareholder %d: %w", shareholder.ID, err)
		}
		plan.Liquidations = liquidations
		for _, l := range liquidations {
			plan.LiquidatedValue = plan.LiquidatedValue.Add(l.Value)
		}
	}

	if plan.IsProfit {
		plan.ManagementFee = fees.ManagementFee(plan.Profit)
		cashWithdrawal = cashWithdrawal.Sub(plan.ManagementFee)
	}
	plan.CashWithdrawal = cashWithdrawal

	return plan, nil
}

// liquidate spreads remaining over the priced positions. Share counts are
// rounded up so the plan never raises less than remaining, at the cost of at
// most one share of over-liquidation per position.
func liquidate(remaining decimal.Decimal, positions []model.Position) ([]model.Liquidation, error) {
	priced := make([]model.Position, 0, len(positions))
	totalAssetsValue := decimal.Zero
	for _, pos := range positions {
		if !pos.Active() {
			continue
		}
		value, ok := pos.MarketValue()
		if !ok {
			continue
		}
		priced = append(priced, pos)
		totalAssetsValue = totalAssetsValue.Add(value)
	}

	if len(priced) == 0 || !totalAssetsValue.IsPositive() {
		return nil, fmt.Errorf("%w: no priced positions to cover shortfall %s", service.ErrDataUnavailable, remaining)
	}
	if totalAssetsValue.LessThan(remaining) {
		return nil, fmt.Errorf("%w: priced positions worth %s cannot cover shortfall %s",
			service.ErrDataUnavailable, totalAssetsValue, remaining)
	}

	sort.Slice(priced, func(i, j int) bool { return priced[i].Ticker < priced[j].Ticker })

	proportion := remaining.Div(totalAssetsValue)
	liquidations := make([]model.Liquidation, 0, len(priced))
	for _, pos := range priced {
		shares := decimal.Min(pos.TotalShares.Mul(proportion).Ceil(), pos.TotalShares)
		if !shares.IsPositive() {
			continue
		}
		price := pos.CurrentPrice.Decimal
		liquidations = append(liquidations, model.Liquidation{
			PositionID: pos.ID,
			Ticker:     pos.Ticker,
			Shares:     shares,
			Price:      price,
			Value:      shares.Mul(price),
		})
	}

	return liquidations, nil
}
