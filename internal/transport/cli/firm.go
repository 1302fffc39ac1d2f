package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type firmCreateCmd struct {
	app  *App
	name string
}

func (*firmCreateCmd) Name() string     { return "firm-create" }
func (*firmCreateCmd) Synopsis() string { return "create a firm with zero balances" }
func (*firmCreateCmd) Usage() string {
	return `firm-create -name <name>

  Creates a firm and prints its id.
`
}

func (c *firmCreateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "firm name")
}

func (c *firmCreateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	id, err := c.app.Ledger.CreateFirm(ctx, c.name)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Created firm %d\n", id)
	return subcommands.ExitSuccess
}

type firmCmd struct {
	app    *App
	firmID int64
	xlsx   string
}

func (*firmCmd) Name() string     { return "firm" }
func (*firmCmd) Synopsis() string { return "show firm balances, positions and shareholders" }
func (*firmCmd) Usage() string {
	return `firm [-firm <id>] [-xlsx <file>]

  Prints the firm summary. With -xlsx the summary and the realized P&L history
  are also written to a workbook.
`
}

func (c *firmCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	f.StringVar(&c.xlsx, "xlsx", "", "write the firm report to this xlsx file")
}

func (c *firmCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)
	m := c.app.Money

	summary, err := c.app.Ledger.GetFirmSummary(ctx, c.firmID)
	if err != nil {
		return c.app.fail(err)
	}

	firm := summary.Firm
	w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Firm %d\t%s\n", firm.ID, firm.Name)
	fmt.Fprintf(w, "Cash\t%s\n", m.Display(firm.Cash))
	fmt.Fprintf(w, "Assets\t%s\n", m.Display(firm.Assets))
	fmt.Fprintf(w, "Equity\t%s\n", m.Display(firm.Equity()))
	fmt.Fprintf(w, "Liabilities\t%s\n", m.Display(firm.Liabilities))
	fmt.Fprintf(w, "Revenue\t%s\n", m.Display(firm.Revenue))
	fmt.Fprintf(w, "Expenses\t%s\n", m.Display(firm.Expenses))
	fmt.Fprintf(w, "Profit/loss\t%s\n", m.Display(firm.ProfitLoss))

	if len(summary.Positions) > 0 {
		fmt.Fprintln(w, "\nTicker\tShares\tAvg price\tPrice\tInvested\tUnrealized\tRealized")
		for _, p := range summary.Positions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", p.Ticker, p.TotalShares, m.Display(p.AveragePurchasePrice),
				m.DisplayNull(p.CurrentPrice), m.Display(p.TotalInvested), m.DisplayNull(p.UnrealizedProfitLoss()), m.Display(p.RealizedProfitLoss))
		}
	}

	if len(summary.Shareholders) > 0 {
		fmt.Fprintln(w, "\nID\tShareholder\tEmail\tOwnership\tInvestment")
		for _, sh := range summary.Shareholders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s%%\t%s\n", sh.ID, sh.Name, sh.Email, sh.Ownership, m.Display(sh.Investment))
		}
	}
	if err := w.Flush(); err != nil {
		return c.app.fail(err)
	}

	if c.xlsx == "" {
		return subcommands.ExitSuccess
	}

	history, err := c.app.Ledger.RealizedProfitLossHistory(ctx, c.firmID, "")
	if err != nil {
		return c.app.fail(err)
	}
	file, _, err := c.app.Reports.GenerateFirmReport(ctx, summary, history)
	if err != nil {
		return c.app.fail(err)
	}
	if err := os.WriteFile(c.xlsx, file, 0o644); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Report written to %s\n", c.xlsx)
	return subcommands.ExitSuccess
}

// firmFieldCmd adds a positive amount to one of the firm's running totals.
type firmFieldCmd struct {
	app      *App
	name     string
	synopsis string
	apply    func(ctx context.Context, firmID int64, value decimal.Decimal) error
	firmID   int64
	amount   decimal.Decimal
}

func newFirmFieldCmd(app *App, name, synopsis string, apply func(ctx context.Context, firmID int64, value decimal.Decimal) error) *firmFieldCmd {
	return &firmFieldCmd{app: app, name: name, synopsis: synopsis, apply: apply}
}

func (c *firmFieldCmd) Name() string     { return c.name }
func (c *firmFieldCmd) Synopsis() string { return c.synopsis }
func (c *firmFieldCmd) Usage() string {
	return fmt.Sprintf(`%s [-firm <id>] -amount <value>

  %s.
`, c.name, c.synopsis)
}

func (c *firmFieldCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	decimalFlag(f, &c.amount, "amount", "positive amount")
}

func (c *firmFieldCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	if err := c.apply(ctx, c.firmID, c.amount); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Recorded %s %s for firm %d\n", c.name, c.app.Money.Display(c.amount), c.firmID)
	return subcommands.ExitSuccess
}
