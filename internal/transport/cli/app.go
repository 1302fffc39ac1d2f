// Package cli implements the command line surface of the ledger.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type LedgerService interface {
	CreateFirm(ctx context.Context, name string) (int64, error)
	AddExpense(ctx context.Context, firmID int64, value decimal.Decimal) error
	AddRevenue(ctx context.Context, firmID int64, value decimal.Decimal) error
	AddLiability(ctx context.Context, firmID int64, value decimal.Decimal) error
	GetFirmSummary(ctx context.Context, firmID int64) (model.FirmSummary, error)
	AddShareholder(ctx context.Context, firmID int64, sh model.NewShareholder) (int64, error)
	ApplyTransaction(ctx context.Context, firmID int64, req model.TransactionRequest) (model.Transaction, error)
	ListTransactions(ctx context.Context, firmID int64, ticker string) ([]model.Transaction, error)
	RealizedProfitLossHistory(ctx context.Context, firmID int64, ticker string) ([]model.RealizedEntry, error)
	PlanWithdrawal(ctx context.Context, firmID, shareholderID int64) (model.WithdrawalPlan, error)
	Withdraw(ctx context.Context, firmID, shareholderID int64) (model.WithdrawalResult, error)
}

type MarketDataService interface {
	RefreshPositionPrices(ctx context.Context, firmID int64, force bool) (model.RefreshResult, error)
	SyncFirmAssets(ctx context.Context, firmID int64) (decimal.Decimal, error)
}

type BasketService interface {
	LoadUniverseFile(ctx context.Context, path string) ([]model.Fundamentals, error)
	FetchUniverse(ctx context.Context, tickers []string) ([]model.Fundamentals, error)
	Generate(ctx context.Context, n int, universe []model.Fundamentals, cfg model.BasketConfig) (model.GenerationResult, error)
	EvaluateBaskets(ctx context.Context, baskets []model.Basket, cfg model.EvaluationConfig) ([]model.BasketEvaluation, error)
	ExportBaskets(ctx context.Context, baskets []model.Basket, evaluations []model.BasketEvaluation, universe []model.Fundamentals, cfg model.BasketConfig) (model.Export, error)
}

type FirmReporter interface {
	GenerateFirmReport(ctx context.Context, summary model.FirmSummary, history []model.RealizedEntry) ([]byte, string, error)
}

type MoneyFormatter interface {
	Display(amount decimal.Decimal) string
	DisplayNull(amount decimal.NullDecimal) string
}

// App carries the services every command runs against. Serve blocks until ctx is done.
type App struct {
	Ledger        LedgerService
	Market        MarketDataService
	Baskets       BasketService
	Reports       FirmReporter
	Money         MoneyFormatter
	Serve         func(ctx context.Context) error
	DefaultFirmID int64
	SnapshotFile  string
	// Evaluation holds the defaults of the generate projection flags.
	Evaluation model.EvaluationConfig
	Out        io.Writer
	Err        io.Writer
}

// Register adds every command of the application to c.
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&firmCreateCmd{app: app}, "firm")
	c.Register(&firmCmd{app: app}, "firm")
	c.Register(newFirmFieldCmd(app, "expense", "record a firm expense", app.Ledger.AddExpense), "firm")
	c.Register(newFirmFieldCmd(app, "revenue", "record firm revenue", app.Ledger.AddRevenue), "firm")
	c.Register(newFirmFieldCmd(app, "liability", "record a firm liability", app.Ledger.AddLiability), "firm")

	c.Register(&shareholderAddCmd{app: app}, "shareholders")
	c.Register(&withdrawCmd{app: app}, "shareholders")

	c.Register(&tradeCmd{app: app, typ: model.Buy}, "transactions")
	c.Register(&tradeCmd{app: app, typ: model.Sell}, "transactions")
	c.Register(&txCmd{app: app}, "transactions")

	c.Register(&refreshCmd{app: app}, "market")
	c.Register(&syncAssetsCmd{app: app}, "market")

	c.Register(&generateCmd{app: app}, "baskets")

	c.Register(&serveCmd{app: app}, "")
}

func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Err, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func (a *App) usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(a.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

func (a *App) firmFlag(f *flag.FlagSet, dest *int64) {
	f.Int64Var(dest, "firm", a.DefaultFirmID, "firm id")
}

// decimalValue is a flag.Value for exact amounts.
type decimalValue struct {
	value *decimal.Decimal
	set   bool
}

func (d *decimalValue) String() string {
	if d == nil || d.value == nil {
		return ""
	}
	return d.value.String()
}

func (d *decimalValue) Set(s string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	*d.value = v
	d.set = true
	return nil
}

func decimalFlag(f *flag.FlagSet, dest *decimal.Decimal, name, usage string) *decimalValue {
	v := &decimalValue{value: dest}
	f.Var(v, name, usage)
	return v
}

// optionalFloat leaves its target nil unless the flag is given.
type optionalFloat struct {
	dest **float64
}

func (o optionalFloat) String() string {
	if o.dest == nil || *o.dest == nil {
		return ""
	}
	return strconv.FormatFloat(**o.dest, 'f', -1, 64)
}

func (o optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	*o.dest = &v
	return nil
}

func optionalFloatFlag(f *flag.FlagSet, dest **float64, name, usage string) {
	f.Var(optionalFloat{dest: dest}, name, usage)
}
