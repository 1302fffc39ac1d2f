package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type tradeCmd struct {
	app    *App
	typ    model.TransactionType
	firmID int64
	ticker string
	shares decimal.Decimal
	price  decimal.Decimal
	fees   *decimalValue
	notes  string
}

func (c *tradeCmd) Name() string { return string(c.typ) }
func (c *tradeCmd) Synopsis() string {
	if c.typ == model.Buy {
		return "buy shares, paid from firm cash"
	}
	return "sell shares, proceeds go to firm cash"
}
func (c *tradeCmd) Usage() string {
	return fmt.Sprintf(`%s [-firm <id>] -ticker <ticker> -shares <n> -price <p> [-fees <f>] [-notes <text>]

  %s.
`, c.typ, c.Synopsis())
}

func (c *tradeCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	f.StringVar(&c.ticker, "ticker", "", "ticker symbol")
	decimalFlag(f, &c.shares, "shares", "number of shares")
	decimalFlag(f, &c.price, "price", "price per share")
	c.fees = decimalFlag(f, new(decimal.Decimal), "fees", "broker fees")
	f.StringVar(&c.notes, "notes", "", "free text")
}

func (c *tradeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	req := model.TransactionRequest{
		Ticker:        c.ticker,
		Shares:        c.shares,
		PricePerShare: c.price,
		Type:          c.typ,
		Notes:         c.notes,
	}
	if c.fees.set {
		req.Fees = decimal.NewNullDecimal(*c.fees.value)
	}

	tx, err := c.app.Ledger.ApplyTransaction(ctx, c.firmID, req)
	if err != nil {
		return c.app.fail(err)
	}

	fmt.Fprintf(c.app.Out, "Transaction %d: %s %s %s at %s (%s)\n",
		tx.ID, tx.Type, tx.Shares, tx.Ticker, c.app.Money.Display(tx.PricePerShare), c.app.Money.Display(tx.TotalValue))
	if tx.RealizedProfitLoss.Valid {
		fmt.Fprintf(c.app.Out, "Realized P&L %s on cost basis %s\n",
			c.app.Money.Display(tx.RealizedProfitLoss.Decimal), c.app.Money.DisplayNull(tx.CostBasis))
	}
	return subcommands.ExitSuccess
}

type txCmd struct {
	app      *App
	firmID   int64
	ticker   string
	realized bool
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions or the realized P&L history" }
func (*txCmd) Usage() string {
	return `tx [-firm <id>] [-ticker <ticker>] [-realized]

  Lists the firm's transactions oldest first. With -realized only sells are
  shown with their realized P&L and the running total.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	f.StringVar(&c.ticker, "ticker", "", "only this ticker")
	f.BoolVar(&c.realized, "realized", false, "show the realized P&L history")
}

func (c *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	m := c.app.Money
	w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)

	if c.realized {
		history, err := c.app.Ledger.RealizedProfitLossHistory(ctx, c.firmID, c.ticker)
		if err != nil {
			return c.app.fail(err)
		}
		fmt.Fprintln(w, "Date\tTicker\tShares\tPrice\tCost basis\tRealized\tCumulative")
		for _, e := range history {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.CreatedAt.Format("2006-01-02"), e.Ticker, e.Shares,
				m.Display(e.PricePerShare), m.Display(e.CostBasis), m.Display(e.RealizedProfitLoss), m.Display(e.Cumulative))
		}
	} else {
		txs, err := c.app.Ledger.ListTransactions(ctx, c.firmID, c.ticker)
		if err != nil {
			return c.app.fail(err)
		}
		fmt.Fprintln(w, "ID\tDate\tType\tTicker\tShares\tPrice\tTotal\tFees\tRealized")
		for _, tx := range txs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", tx.ID, tx.CreatedAt.Format("2006-01-02"), tx.Type, tx.Ticker, tx.Shares,
				m.Display(tx.PricePerShare), m.Display(tx.TotalValue), m.DisplayNull(tx.Fees), m.DisplayNull(tx.RealizedProfitLoss))
		}
	}

	if err := w.Flush(); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
