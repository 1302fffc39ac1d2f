package xslsxGenerator

import (
	"bytes"
	"context"
	"testing"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func f64(v float64) *float64 {
	return &v
}

func scored(ticker, sector string, score float64) model.ScoredTicker {
	return model.ScoredTicker{
		Fundamentals: model.Fundamentals{
			Ticker:        ticker,
			Sector:        sector,
			Price:         f64(10),
			DividendYield: f64(0.03),
			Beta:          f64(1.1),
		},
		Score: score,
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestGenerateBaskets(t *testing.T) {
	holdings := []model.ScoredTicker{scored("AAA", "Tech", 0.9), scored("BBB", "Energy", 0.4)}
	baskets := []model.Basket{
		{Tickers: []string{"AAA", "BBB"}, Holdings: holdings, Score: 1.3, Beta: 1.1},
		{Tickers: []string{"AAA"}, Holdings: holdings[:1], Score: 0.9, Beta: 1.1},
	}

	evaluations := []model.BasketEvaluation{
		{
			Index: 1, Rank: 1, Basket: baskets[1], DividendYield: decimal.RequireFromString("0.03"),
			Projection: []model.ProjectionYear{
				{Year: 0, PortfolioValue: decimal.NewFromInt(1000)},
				{Year: 1, PortfolioValue: decimal.NewFromInt(1040), DividendIncome: decimal.NewFromInt(30)},
			},
			FinalValue: decimal.NewFromInt(1040), AnnualizedReturn: 0.04,
		},
		{Index: 0, Rank: 2, Basket: baskets[0], FinalValue: decimal.NewFromInt(1020), AnnualizedReturn: 0.02},
	}

	data, ext, err := New().GenerateBaskets(context.Background(), baskets, evaluations, holdings)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", ext)

	f := open(t, data)
	assert.Equal(t, []string{"Basket 1", "Basket 2", "Evaluation", "Universe"}, f.GetSheetList())

	rank, err := f.GetCellValue("Evaluation", "B3")
	require.NoError(t, err)
	assert.Equal(t, "2", rank, "the best basket is listed first")

	tickers, err := f.GetCellValue("Evaluation", "C4")
	require.NoError(t, err)
	assert.Equal(t, "AAA, BBB", tickers)

	// ranking rows 3-4, by-year title on 6, header on 7
	final, err := f.GetCellValue("Evaluation", "B9")
	require.NoError(t, err)
	assert.Equal(t, "1040", final)

	ticker, err := f.GetCellValue("Basket 1", "A3")
	require.NoError(t, err)
	assert.Equal(t, "AAA", ticker)

	sector, err := f.GetCellValue("Universe", "C4")
	require.NoError(t, err)
	assert.Equal(t, "Energy", sector)
}

func TestGenerateBasketsWithoutEvaluation(t *testing.T) {
	holdings := []model.ScoredTicker{scored("AAA", "Tech", 0.9)}
	data, _, err := New().GenerateBaskets(context.Background(), []model.Basket{{Tickers: []string{"AAA"}, Holdings: holdings}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Basket 1"}, open(t, data).GetSheetList())
}

func TestGenerateBasketsEmpty(t *testing.T) {
	_, _, err := New().GenerateBaskets(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}

func TestGenerateFirmReport(t *testing.T) {
	summary := model.FirmSummary{
		Firm: model.Firm{ID: 1, Name: "Bearhouse", Cash: decimal.NewFromInt(1000)},
		Positions: []model.Position{{
			Ticker:       "AAA",
			TotalShares:  decimal.NewFromInt(5),
			CurrentPrice: decimal.NewNullDecimal(decimal.NewFromInt(12)),
		}},
		Shareholders: []model.Shareholder{{Name: "Alice", Email: "alice@example.com", Ownership: decimal.NewFromInt(40)}},
	}
	history := []model.RealizedEntry{{Ticker: "AAA", RealizedProfitLoss: decimal.NewFromInt(50), Cumulative: decimal.NewFromInt(50)}}

	data, _, err := New().GenerateFirmReport(context.Background(), summary, history)
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{"Firm", "Realized P&L"}, f.GetSheetList())

	name, err := f.GetCellValue("Firm", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Bearhouse", name)

	cash, err := f.GetCellValue("Firm", "B2")
	require.NoError(t, err)
	assert.Equal(t, "1000", cash)

	// balance rows 2-7, positions title on 10, header on 11
	ticker, err := f.GetCellValue("Firm", "A12")
	require.NoError(t, err)
	assert.Equal(t, "AAA", ticker)

	cumulative, err := f.GetCellValue("Realized P&L", "G3")
	require.NoError(t, err)
	assert.Equal(t, "50", cumulative)
}
