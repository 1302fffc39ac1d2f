package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"testing"

	"github.com/KotFed0t/bearhouse_ledger/internal/converter/moneyConverter"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	calls   []string
	firmID  int64
	request model.TransactionRequest
	amount  decimal.Decimal
	err     error
}

func (l *fakeLedger) record(name string, firmID int64) error {
	l.calls = append(l.calls, name)
	l.firmID = firmID
	return l.err
}

func (l *fakeLedger) CreateFirm(_ context.Context, name string) (int64, error) {
	return 7, l.record("CreateFirm:"+name, 0)
}

func (l *fakeLedger) AddExpense(_ context.Context, firmID int64, value decimal.Decimal) error {
	l.amount = value
	return l.record("AddExpense", firmID)
}

func (l *fakeLedger) AddRevenue(_ context.Context, firmID int64, value decimal.Decimal) error {
	l.amount = value
	return l.record("AddRevenue", firmID)
}

func (l *fakeLedger) AddLiability(_ context.Context, firmID int64, value decimal.Decimal) error {
	l.amount = value
	return l.record("AddLiability", firmID)
}

func (l *fakeLedger) GetFirmSummary(_ context.Context, firmID int64) (model.FirmSummary, error) {
	return model.FirmSummary{Firm: model.Firm{ID: firmID, Name: "Bearhouse", Cash: decimal.NewFromInt(1500)}}, l.record("GetFirmSummary", firmID)
}

func (l *fakeLedger) AddShareholder(_ context.Context, firmID int64, _ model.NewShareholder) (int64, error) {
	return 3, l.record("AddShareholder", firmID)
}

func (l *fakeLedger) ApplyTransaction(_ context.Context, firmID int64, req model.TransactionRequest) (model.Transaction, error) {
	l.request = req
	tx := model.Transaction{ID: 11, Ticker: req.Ticker, Shares: req.Shares, PricePerShare: req.PricePerShare, Type: req.Type,
		TotalValue: req.Shares.Mul(req.PricePerShare)}
	if req.Type == model.Sell {
		tx.RealizedProfitLoss = decimal.NewNullDecimal(decimal.NewFromInt(25))
		tx.CostBasis = decimal.NewNullDecimal(decimal.NewFromInt(10))
	}
	return tx, l.record("ApplyTransaction", firmID)
}

func (l *fakeLedger) ListTransactions(_ context.Context, firmID int64, _ string) ([]model.Transaction, error) {
	return nil, l.record("ListTransactions", firmID)
}

func (l *fakeLedger) RealizedProfitLossHistory(_ context.Context, firmID int64, _ string) ([]model.RealizedEntry, error) {
	return nil, l.record("RealizedProfitLossHistory", firmID)
}

func (l *fakeLedger) PlanWithdrawal(_ context.Context, firmID, _ int64) (model.WithdrawalPlan, error) {
	return model.WithdrawalPlan{CashWithdrawal: decimal.NewFromInt(100)}, l.record("PlanWithdrawal", firmID)
}

func (l *fakeLedger) Withdraw(_ context.Context, firmID, _ int64) (model.WithdrawalResult, error) {
	if l.err != nil {
		return model.WithdrawalResult{Status: model.WithdrawalFailed}, l.record("Withdraw", firmID)
	}
	return model.WithdrawalResult{Status: model.WithdrawalCompleted}, l.record("Withdraw", firmID)
}

type fakeBaskets struct {
	cfg      model.BasketConfig
	eval     model.EvaluationConfig
	snapshot string
	tickers  []string
}

func (b *fakeBaskets) LoadUniverseFile(_ context.Context, path string) ([]model.Fundamentals, error) {
	b.snapshot = path
	return []model.Fundamentals{{Ticker: "AAA"}}, nil
}

func (b *fakeBaskets) FetchUniverse(_ context.Context, tickers []string) ([]model.Fundamentals, error) {
	b.tickers = tickers
	return nil, nil
}

func (b *fakeBaskets) Generate(_ context.Context, n int, universe []model.Fundamentals, cfg model.BasketConfig) (model.GenerationResult, error) {
	b.cfg = cfg
	return model.GenerationResult{Baskets: []model.Basket{{Tickers: []string{"AAA", "BBB"}, Score: 1.5}}, Attempts: 1, Universe: len(universe)}, nil
}

func (b *fakeBaskets) EvaluateBaskets(_ context.Context, baskets []model.Basket, cfg model.EvaluationConfig) ([]model.BasketEvaluation, error) {
	b.eval = cfg
	return []model.BasketEvaluation{{
		Rank: 1, Basket: baskets[0], DividendYield: decimal.RequireFromString("0.035"),
		GrowthRate: cfg.AssetGrowthRate, FinalValue: decimal.NewFromInt(1250), AnnualizedReturn: 0.0456,
	}}, nil
}

func (b *fakeBaskets) ExportBaskets(context.Context, []model.Basket, []model.BasketEvaluation, []model.Fundamentals, model.BasketConfig) (model.Export, error) {
	return model.Export{}, errors.New("not expected")
}

type fakeMarket struct {
	force bool
}

func (m *fakeMarket) RefreshPositionPrices(_ context.Context, _ int64, force bool) (model.RefreshResult, error) {
	m.force = force
	return model.RefreshResult{Updated: []string{"AAA"}, Failed: []string{"BBB"}}, nil
}

func (m *fakeMarket) SyncFirmAssets(context.Context, int64) (decimal.Decimal, error) {
	return decimal.NewFromInt(470), nil
}

type harness struct {
	ledger  *fakeLedger
	baskets *fakeBaskets
	market  *fakeMarket
	out     *bytes.Buffer
	err     *bytes.Buffer
	app     *App
}

func newHarness() *harness {
	h := &harness{
		ledger:  &fakeLedger{},
		baskets: &fakeBaskets{},
		market:  &fakeMarket{},
		out:     &bytes.Buffer{},
		err:     &bytes.Buffer{},
	}
	h.app = &App{
		Ledger:        h.ledger,
		Market:        h.market,
		Baskets:       h.baskets,
		Money:         moneyConverter.New("USD"),
		DefaultFirmID: 1,
		SnapshotFile:  "data/enriched_tickers.csv",
		Evaluation: model.EvaluationConfig{
			InitialValue:    decimal.NewFromInt(1000),
			Years:           5,
			AssetGrowthRate: decimal.RequireFromString("0.07"),
		},
		Out: h.out,
		Err: h.err,
	}
	return h
}

func (h *harness) run(args ...string) subcommands.ExitStatus {
	top := flag.NewFlagSet("bearhouse", flag.ContinueOnError)
	top.SetOutput(h.err)
	cdr := subcommands.NewCommander(top, "bearhouse")
	cdr.Output = h.out
	cdr.Error = h.err
	Register(cdr, h.app)
	if err := top.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return cdr.Execute(context.Background())
}

func TestBuyUsesDefaultFirm(t *testing.T) {
	h := newHarness()

	status := h.run("buy", "-ticker", "aaa", "-shares", "10", "-price", "12.5")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())

	assert.Equal(t, int64(1), h.ledger.firmID)
	assert.Equal(t, model.Buy, h.ledger.request.Type)
	assert.True(t, h.ledger.request.Shares.Equal(decimal.NewFromInt(10)))
	assert.True(t, h.ledger.request.PricePerShare.Equal(decimal.RequireFromString("12.5")))
	assert.False(t, h.ledger.request.Fees.Valid)
	assert.Contains(t, h.out.String(), "Transaction 11")
}

func TestSellWithFeesAndFirm(t *testing.T) {
	h := newHarness()

	status := h.run("sell", "-firm", "4", "-ticker", "AAA", "-shares", "5", "-price", "15", "-fees", "0.2")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())

	assert.Equal(t, int64(4), h.ledger.firmID)
	require.True(t, h.ledger.request.Fees.Valid)
	assert.True(t, h.ledger.request.Fees.Decimal.Equal(decimal.RequireFromString("0.2")))
	assert.Contains(t, h.out.String(), "Realized P&L $25.00")
}

func TestInvalidAmountIsUsageError(t *testing.T) {
	h := newHarness()

	assert.Equal(t, subcommands.ExitUsageError, h.run("buy", "-ticker", "AAA", "-shares", "ten", "-price", "1"))
	assert.Empty(t, h.ledger.calls)
}

func TestServiceErrorFails(t *testing.T) {
	h := newHarness()
	h.ledger.err = fmt.Errorf("%w: firm 1 holds 5 AAA", service.ErrInsufficientHoldings)

	assert.Equal(t, subcommands.ExitFailure, h.run("sell", "-ticker", "AAA", "-shares", "6", "-price", "1"))
	assert.Contains(t, h.err.String(), "insufficient holdings")
}

func TestFirmFieldCommands(t *testing.T) {
	for cmd, call := range map[string]string{"expense": "AddExpense", "revenue": "AddRevenue", "liability": "AddLiability"} {
		t.Run(cmd, func(t *testing.T) {
			h := newHarness()
			require.Equal(t, subcommands.ExitSuccess, h.run(cmd, "-amount", "250.75"))
			assert.Equal(t, []string{call}, h.ledger.calls)
			assert.True(t, h.ledger.amount.Equal(decimal.RequireFromString("250.75")))
		})
	}
}

func TestFirmSummary(t *testing.T) {
	h := newHarness()

	require.Equal(t, subcommands.ExitSuccess, h.run("firm", "-firm", "2"))
	assert.Equal(t, int64(2), h.ledger.firmID)
	assert.Contains(t, h.out.String(), "$1,500.00")
}

func TestWithdraw(t *testing.T) {
	t.Run("shareholder is required", func(t *testing.T) {
		h := newHarness()
		assert.Equal(t, subcommands.ExitUsageError, h.run("withdraw"))
		assert.Empty(t, h.ledger.calls)
	})

	t.Run("dry run only plans", func(t *testing.T) {
		h := newHarness()
		require.Equal(t, subcommands.ExitSuccess, h.run("withdraw", "-shareholder", "3", "-dry-run"))
		assert.Equal(t, []string{"PlanWithdrawal"}, h.ledger.calls)
		assert.Contains(t, h.out.String(), "$100.00")
	})

	t.Run("failure reports the status", func(t *testing.T) {
		h := newHarness()
		h.ledger.err = service.ErrDataUnavailable
		assert.Equal(t, subcommands.ExitFailure, h.run("withdraw", "-shareholder", "3"))
		assert.Contains(t, h.err.String(), "Withdrawal failed")
	})
}

func TestGenerateParsesConfig(t *testing.T) {
	h := newHarness()

	status := h.run("generate", "-n", "3", "-num-stocks", "6", "-min-beta", "0.5", "-sectors", "Energy, Utilities")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())

	assert.Equal(t, "data/enriched_tickers.csv", h.baskets.snapshot)
	assert.Equal(t, 6, h.baskets.cfg.NumStocks)
	assert.Equal(t, 2, h.baskets.cfg.MaxStocksPerSector)
	require.NotNil(t, h.baskets.cfg.MinBeta)
	assert.InDelta(t, 0.5, *h.baskets.cfg.MinBeta, 1e-9)
	assert.Nil(t, h.baskets.cfg.MaxBeta)
	assert.Equal(t, []string{"Energy", "Utilities"}, h.baskets.cfg.Sectors)
	assert.Contains(t, h.out.String(), "AAA BBB")

	assert.Equal(t, 5, h.baskets.eval.Years, "projection defaults come from the app")
	assert.True(t, h.baskets.eval.InitialValue.Equal(decimal.NewFromInt(1000)))
	assert.Contains(t, h.out.String(), "After-tax projection of $1,000.00 over 5 years")
	assert.Contains(t, h.out.String(), "3.50%")
	assert.Contains(t, h.out.String(), "$1,250.00")
	assert.Contains(t, h.out.String(), "4.56%")
}

func TestGenerateProjectionFlags(t *testing.T) {
	h := newHarness()

	status := h.run("generate", "-years", "10", "-initial-value", "5000", "-asset-growth", "0.1", "-withholding", "0.3", "-historical-growth")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())

	assert.Equal(t, 10, h.baskets.eval.Years)
	assert.True(t, h.baskets.eval.InitialValue.Equal(decimal.NewFromInt(5000)))
	assert.True(t, h.baskets.eval.AssetGrowthRate.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, h.baskets.eval.ForeignWithholdingRate.Equal(decimal.RequireFromString("0.3")))
	assert.True(t, h.baskets.eval.UseHistoricalGrowth)
	assert.Contains(t, h.out.String(), "10.00%")
}

func TestGenerateWithoutEvaluation(t *testing.T) {
	h := newHarness()

	status := h.run("generate", "-evaluate=false")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())
	assert.Zero(t, h.baskets.eval.Years)
	assert.NotContains(t, h.out.String(), "After-tax projection")
}

func TestRefreshAndSync(t *testing.T) {
	h := newHarness()

	require.Equal(t, subcommands.ExitSuccess, h.run("refresh", "-force"))
	assert.True(t, h.market.force)
	assert.Contains(t, h.out.String(), "No quote for BBB")

	require.Equal(t, subcommands.ExitSuccess, h.run("sync-assets"))
	assert.Contains(t, h.out.String(), "$470.00")
}

func TestServeWithoutRunner(t *testing.T) {
	h := newHarness()
	assert.Equal(t, subcommands.ExitFailure, h.run("serve"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"AAA", "BBB", "CCC"}, splitList("AAA\r\nBBB, ,CCC\n"))
}
