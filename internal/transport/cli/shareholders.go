package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/google/subcommands"
)

type shareholderAddCmd struct {
	app    *App
	firmID int64
	sh     model.NewShareholder
}

func (*shareholderAddCmd) Name() string     { return "shareholder-add" }
func (*shareholderAddCmd) Synopsis() string { return "register a shareholder and their contribution" }
func (*shareholderAddCmd) Usage() string {
	return `shareholder-add [-firm <id>] -name <name> -email <email> -ownership <percent> -investment <amount>

  Creates the shareholder and adds the investment to firm cash.
`
}

func (c *shareholderAddCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	f.StringVar(&c.sh.Name, "name", "", "shareholder name")
	f.StringVar(&c.sh.Email, "email", "", "shareholder email")
	decimalFlag(f, &c.sh.Ownership, "ownership", "ownership percent, 0 < x <= 100")
	decimalFlag(f, &c.sh.Investment, "investment", "contributed capital")
}

func (c *shareholderAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	id, err := c.app.Ledger.AddShareholder(ctx, c.firmID, c.sh)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Shareholder %d added to firm %d\n", id, c.firmID)
	return subcommands.ExitSuccess
}

type withdrawCmd struct {
	app           *App
	firmID        int64
	shareholderID int64
	dryRun        bool
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "pay a shareholder out of the firm" }
func (*withdrawCmd) Usage() string {
	return `withdraw [-firm <id>] -shareholder <id> [-dry-run]

  Pays the shareholder's entitlement from cash and proportional sells of every
  priced position, then removes the shareholder. -dry-run only prints the plan.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	f.Int64Var(&c.shareholderID, "shareholder", 0, "shareholder id")
	f.BoolVar(&c.dryRun, "dry-run", false, "print the plan without executing it")
}

func (c *withdrawCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	if c.shareholderID <= 0 {
		return c.app.usage("-shareholder is required")
	}

	if c.dryRun {
		plan, err := c.app.Ledger.PlanWithdrawal(ctx, c.firmID, c.shareholderID)
		if err != nil {
			return c.app.fail(err)
		}
		c.printPlan(plan)
		return subcommands.ExitSuccess
	}

	result, err := c.app.Ledger.Withdraw(ctx, c.firmID, c.shareholderID)
	if err != nil {
		fmt.Fprintf(c.app.Err, "Withdrawal %s\n", result.Status)
		return c.app.fail(err)
	}
	c.printPlan(result.Plan)
	fmt.Fprintf(c.app.Out, "Withdrawal %s, %d sell transactions\n", result.Status, len(result.TransactionIDs))
	return subcommands.ExitSuccess
}

func (c *withdrawCmd) printPlan(plan model.WithdrawalPlan) {
	m := c.app.Money
	w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Entitled value\t%s\n", m.Display(plan.EntitledValue))
	if plan.IsProfit {
		fmt.Fprintf(w, "Profit\t%s\n", m.Display(plan.Profit))
	}
	fmt.Fprintf(w, "Management fee\t%s\n", m.Display(plan.ManagementFee))
	fmt.Fprintf(w, "Cash withdrawal\t%s\n", m.Display(plan.CashWithdrawal))
	for _, l := range plan.Liquidations {
		fmt.Fprintf(w, "Sell %s\t%s at %s = %s\n", l.Ticker, l.Shares, m.Display(l.Price), m.Display(l.Value))
	}
	if surplus := plan.Surplus(); surplus.IsPositive() {
		fmt.Fprintf(w, "Retained by firm\t%s\n", m.Display(surplus))
	}
	fmt.Fprintf(w, "Payout\t%s\n", m.Display(plan.Payout()))
	_ = w.Flush()
}
