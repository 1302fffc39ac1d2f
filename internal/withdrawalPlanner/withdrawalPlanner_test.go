package withdrawalPlanner

import (
	"testing"

	"github.com/KotFed0t/bearhouse_ledger/internal/feeCalculator"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fees = feeCalculator.New(feeCalculator.DefaultManagementFeeRate)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func position(id int64, ticker, shares, price string) model.Position {
	pos := model.Position{ID: id, Ticker: ticker, TotalShares: d(shares)}
	if price != "" {
		pos.CurrentPrice = decimal.NewNullDecimal(d(price))
	}
	return pos
}

func TestPlanAllCashWithProfit(t *testing.T) {
	firm := model.Firm{ID: 1, Cash: d("500"), Assets: decimal.Zero}
	sh := model.Shareholder{ID: 7, Ownership: d("10"), Investment: d("40"), Status: model.ShareholderActive}

	plan, err := Plan(firm, sh, nil, fees)
	require.NoError(t, err)

	assert.True(t, plan.EntitledValue.Equal(d("50")))
	assert.True(t, plan.IsProfit)
	assert.True(t, plan.Profit.Equal(d("10")))
	assert.True(t, plan.ManagementFee.Equal(d("0.2")))
	// cash first covers the whole entitlement, the fee stays with the firm
	assert.True(t, plan.CashWithdrawal.Equal(d("49.8")))
	assert.True(t, plan.Remaining.IsZero())
	assert.Empty(t, plan.Liquidations)
	assert.True(t, plan.Payout().Equal(d("49.8")))
}

func TestPlanLiquidatesProportionally(t *testing.T) {
	firm := model.Firm{ID: 1, Cash: d("100"), Assets: d("900")}
	sh := model.Shareholder{ID: 3, Ownership: d("50"), Investment: d("600"), Status: model.ShareholderActive}
	positions := []model.Position{
		position(2, "BBB", "20", "20"),
		position(1, "AAA", "10", "50"),
		position(3, "CCC", "5", ""),
		position(4, "DDD", "0", "10"),
	}

	plan, err := Plan(firm, sh, positions, fees)
	require.NoError(t, err)

	assert.True(t, plan.EntitledValue.Equal(d("500")))
	assert.False(t, plan.IsProfit)
	assert.True(t, plan.ManagementFee.IsZero())
	assert.True(t, plan.CashWithdrawal.Equal(d("100")))
	assert.True(t, plan.Remaining.Equal(d("400")))

	require.Len(t, plan.Liquidations, 2)
	assert.Equal(t, "AAA", plan.Liquidations[0].Ticker)
	assert.True(t, plan.Liquidations[0].Shares.Equal(d("5")))
	assert.True(t, plan.Liquidations[0].Value.Equal(d("250")))
	assert.Equal(t, "BBB", plan.Liquidations[1].Ticker)
	assert.True(t, plan.Liquidations[1].Shares.Equal(d("9")))
	assert.True(t, plan.Liquidations[1].Value.Equal(d("180")))

	assert.True(t, plan.LiquidatedValue.GreaterThanOrEqual(plan.Remaining))
	assert.True(t, plan.Payout().Equal(plan.EntitledValue))
	assert.True(t, plan.Surplus().Equal(d("30")))
	for _, l := range plan.Liquidations {
		for _, pos := range positions {
			if pos.Ticker != l.Ticker {
				continue
			}
			exact := pos.TotalShares.Mul(plan.Remaining).Div(d("900"))
			assert.True(t, l.Shares.Sub(exact).LessThan(decimal.NewFromInt(1)))
			assert.True(t, l.Shares.LessThanOrEqual(pos.TotalShares))
		}
	}
}

func TestPlanFeeComesOutOfCashPart(t *testing.T) {
	firm := model.Firm{ID: 1, Cash: d("0"), Assets: d("1000")}
	sh := model.Shareholder{ID: 3, Ownership: d("10"), Investment: d("50"), Status: model.ShareholderActive}
	positions := []model.Position{position(1, "AAA", "100", "10")}

	plan, err := Plan(firm, sh, positions, fees)
	require.NoError(t, err)

	assert.True(t, plan.ManagementFee.Equal(d("1")))
	assert.True(t, plan.CashWithdrawal.Equal(d("-1")))
	assert.True(t, plan.LiquidatedValue.Equal(d("100")))
	assert.True(t, plan.Payout().Equal(d("99")))
}

func TestPlanFailures(t *testing.T) {
	active := model.Shareholder{ID: 1, Ownership: d("50"), Investment: d("10"), Status: model.ShareholderActive}

	t.Run("no priced positions", func(t *testing.T) {
		firm := model.Firm{Cash: d("10"), Assets: d("500")}
		_, err := Plan(firm, active, []model.Position{position(1, "AAA", "10", "")}, fees)
		assert.ErrorIs(t, err, service.ErrDataUnavailable)
	})

	t.Run("priced positions do not cover the shortfall", func(t *testing.T) {
		firm := model.Firm{Cash: d("10"), Assets: d("500")}
		_, err := Plan(firm, active, []model.Position{position(1, "AAA", "1", "10")}, fees)
		assert.ErrorIs(t, err, service.ErrDataUnavailable)
	})

	t.Run("withdrawn shareholder", func(t *testing.T) {
		sh := active
		sh.Status = model.ShareholderWithdrawn
		_, err := Plan(model.Firm{Cash: d("10")}, sh, nil, fees)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("ownership out of range", func(t *testing.T) {
		sh := active
		sh.Ownership = d("120")
		_, err := Plan(model.Firm{Cash: d("10")}, sh, nil, fees)
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}
