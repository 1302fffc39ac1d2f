package basketEvaluator

import (
	"context"
	"testing"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/internal/taxCalculator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tax = taxCalculator.New(taxCalculator.DefaultCorporateTaxRate)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func f(v float64) *float64 {
	return &v
}

func holding(ticker string, yield, change *float64) model.ScoredTicker {
	return model.ScoredTicker{Fundamentals: model.Fundamentals{Ticker: ticker, DividendYield: yield, Week52Change: change}}
}

func basket(holdings ...model.ScoredTicker) model.Basket {
	b := model.Basket{Holdings: holdings}
	for _, h := range holdings {
		b.Tickers = append(b.Tickers, h.Ticker)
	}
	return b
}

func config() model.EvaluationConfig {
	return model.EvaluationConfig{
		InitialValue:           d("1000"),
		Years:                  1,
		ForeignWithholdingRate: d("0.15"),
		DividendGrowthRate:     decimal.Zero,
		AssetGrowthRate:        d("0.05"),
	}
}

func TestProject(t *testing.T) {
	params := ProjectionParams{
		InitialValue:           d("1000"),
		DividendYield:          d("0.05"),
		ForeignWithholdingRate: d("0.15"),
		Years:                  2,
	}

	t.Run("reinvests after-tax dividends", func(t *testing.T) {
		rows := Project(tax, params)
		require.Len(t, rows, 3)

		assert.True(t, rows[0].PortfolioValue.Equal(d("1000")))
		assert.True(t, rows[0].DividendIncome.IsZero())

		assert.True(t, rows[1].DividendIncome.Equal(d("50")))
		assert.True(t, rows[1].DomesticTax.Equal(d("2.5")))
		assert.True(t, rows[1].TotalTax.Equal(d("10")))
		assert.True(t, rows[1].PortfolioValue.Equal(d("1040")))

		assert.True(t, rows[2].DividendIncome.Equal(d("52")))
		assert.True(t, rows[2].PortfolioValue.Equal(d("1081.6")))
	})

	t.Run("dividend growth starts in year two", func(t *testing.T) {
		p := params
		p.DividendGrowthRate = d("0.1")
		rows := Project(tax, p)

		assert.True(t, rows[1].DividendIncome.Equal(d("50")))
		assert.True(t, rows[2].DividendIncome.Equal(d("57.2")))
		assert.True(t, rows[2].PortfolioValue.Equal(d("1085.76")))
	})

	t.Run("asset growth on the opening value", func(t *testing.T) {
		p := params
		p.Years = 1
		p.AssetGrowthRate = d("0.1")
		rows := Project(tax, p)

		assert.True(t, rows[1].PortfolioValue.Equal(d("1140")))
	})
}

func TestEvaluateRanksByAnnualizedReturn(t *testing.T) {
	ev, err := New(tax, config())
	require.NoError(t, err)

	baskets := []model.Basket{
		basket(holding("AAA", f(0.02), nil), holding("BBB", f(0.04), nil)),
		basket(holding("CCC", f(0.06), nil), holding("DDD", f(0.06), nil)),
		basket(holding("EEE", nil, nil)),
	}

	res, err := ev.Evaluate(context.Background(), baskets)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, 1, res[0].Index)
	assert.Equal(t, 1, res[0].Rank)
	assert.True(t, res[0].FinalValue.Equal(d("1098")))
	assert.InDelta(t, 0.098, res[0].AnnualizedReturn, 1e-9)

	// equal returns keep generation order
	assert.Equal(t, 0, res[1].Index)
	assert.True(t, res[1].FinalValue.Equal(d("1074")))
	assert.Equal(t, 2, res[2].Index)
	assert.True(t, res[2].DividendYield.Equal(DefaultDividendYield))
	assert.Equal(t, 3, res[2].Rank)
}

func TestEvaluateHistoricalGrowth(t *testing.T) {
	cfg := config()
	cfg.UseHistoricalGrowth = true
	ev, err := New(tax, cfg)
	require.NoError(t, err)

	res, err := ev.Evaluate(context.Background(), []model.Basket{
		basket(holding("AAA", f(0.03), f(0.1)), holding("BBB", f(0.03), f(0.3))),
		basket(holding("CCC", f(0.03), nil)),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res[0].Index)
	assert.True(t, res[0].GrowthRate.Equal(d("0.2")))
	assert.True(t, res[0].FinalValue.Equal(d("1224")))
	// no 52-week data falls back to the configured rate
	assert.True(t, res[1].GrowthRate.Equal(d("0.05")))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config()
	cfg.Years = 0
	_, err := New(tax, cfg)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	cfg = config()
	cfg.ForeignWithholdingRate = d("1.5")
	_, err = New(tax, cfg)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}
