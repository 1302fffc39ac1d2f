package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/google/subcommands"
)

type refreshCmd struct {
	app    *App
	firmID int64
	force  bool
}

func (*refreshCmd) Name() string { return "refresh" }
func (*refreshCmd) Synopsis() string {
	return "pull latest prices and dividend yields of held positions"
}
func (*refreshCmd) Usage() string {
	return `refresh [-firm <id>] [-force]

  Updates position prices at most once a day, -force runs it again.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
	f.BoolVar(&c.force, "force", false, "ignore today's previous run")
}

func (c *refreshCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	res, err := c.app.Market.RefreshPositionPrices(ctx, c.firmID, c.force)
	if err != nil {
		return c.app.fail(err)
	}
	if res.Skipped {
		fmt.Fprintln(c.app.Out, "Prices were already refreshed today, use -force to refresh again")
		return subcommands.ExitSuccess
	}

	fmt.Fprintf(c.app.Out, "Updated %d positions\n", len(res.Updated))
	if len(res.Failed) > 0 {
		fmt.Fprintf(c.app.Out, "No quote for %s\n", strings.Join(res.Failed, ", "))
	}
	return subcommands.ExitSuccess
}

type syncAssetsCmd struct {
	app    *App
	firmID int64
}

func (*syncAssetsCmd) Name() string     { return "sync-assets" }
func (*syncAssetsCmd) Synopsis() string { return "recompute firm assets from position market values" }
func (*syncAssetsCmd) Usage() string {
	return `sync-assets [-firm <id>]

  Sets firm assets to the sum of shares times current price of held positions.
`
}

func (c *syncAssetsCmd) SetFlags(f *flag.FlagSet) {
	c.app.firmFlag(f, &c.firmID)
}

func (c *syncAssetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	assets, err := c.app.Market.SyncFirmAssets(ctx, c.firmID)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Firm %d assets: %s\n", c.firmID, c.app.Money.Display(assets))
	return subcommands.ExitSuccess
}

type serveCmd struct {
	app *App
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the scheduled price refresh and assets sync jobs" }
func (*serveCmd) Usage() string {
	return `serve

  Runs the scheduler until interrupted.
`
}

func (*serveCmd) SetFlags(*flag.FlagSet) {}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.app.Serve == nil {
		return c.app.fail(fmt.Errorf("serve is not configured"))
	}
	if err := c.app.Serve(ctx); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
