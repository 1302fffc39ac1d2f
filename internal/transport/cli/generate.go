package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type generateCmd struct {
	app      *App
	n        int
	cfg      model.BasketConfig
	sectors  string
	snapshot string
	tickers  string
	export   bool
	evaluate bool
	eval     model.EvaluationConfig
}

func (*generateCmd) Name() string     { return "generate" }
func (*generateCmd) Synopsis() string { return "generate diversified candidate baskets" }
func (*generateCmd) Usage() string {
	return `generate [-n <count>] [-num-stocks <n>] [-max-per-sector <n>] [filters] [-snapshot <csv> | -tickers <file>] [projection flags] [-export]

  Samples unique baskets from a fundamentals snapshot, or from fundamentals
  fetched for the tickers listed in -tickers (one per line). Unless -evaluate=false
  each basket is projected after tax over -years and ranked by annualized return.
  -export writes the baskets to an xlsx workbook and uploads it when cloud storage
  is configured.
`
}

func (c *generateCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.n, "n", 5, "number of baskets")
	f.IntVar(&c.cfg.NumStocks, "num-stocks", 8, "tickers per basket")
	f.IntVar(&c.cfg.MaxStocksPerSector, "max-per-sector", 2, "cap of tickers from one sector")
	optionalFloatFlag(f, &c.cfg.MinDividendYield, "min-dividend-yield", "lower dividend yield bound")
	optionalFloatFlag(f, &c.cfg.MaxDividendYield, "max-dividend-yield", "upper dividend yield bound")
	optionalFloatFlag(f, &c.cfg.MinPERatio, "min-pe", "lower P/E bound")
	optionalFloatFlag(f, &c.cfg.MaxPERatio, "max-pe", "upper P/E bound")
	optionalFloatFlag(f, &c.cfg.MinPrice, "min-price", "lower price bound")
	optionalFloatFlag(f, &c.cfg.MaxPrice, "max-price", "upper price bound")
	optionalFloatFlag(f, &c.cfg.MinBeta, "min-beta", "lower beta bound")
	optionalFloatFlag(f, &c.cfg.MaxBeta, "max-beta", "upper beta bound, also the basket beta target")
	optionalFloatFlag(f, &c.cfg.MinMarketCap, "min-market-cap", "lower market cap bound")
	optionalFloatFlag(f, &c.cfg.MinEPSGrowth, "min-eps-growth", "lower EPS growth bound")
	optionalFloatFlag(f, &c.cfg.MinROE, "min-roe", "lower ROE bound")
	f.StringVar(&c.sectors, "sectors", "", "comma separated sector allow list")
	f.StringVar(&c.snapshot, "snapshot", c.app.SnapshotFile, "fundamentals snapshot csv")
	f.StringVar(&c.tickers, "tickers", "", "file with tickers to fetch instead of reading a snapshot")
	f.BoolVar(&c.export, "export", false, "export the baskets to xlsx")

	c.eval = c.app.Evaluation
	f.BoolVar(&c.evaluate, "evaluate", true, "project and rank the baskets after tax")
	f.IntVar(&c.eval.Years, "years", c.eval.Years, "projection horizon in years")
	decimalFlag(f, &c.eval.InitialValue, "initial-value", "amount invested in each basket")
	decimalFlag(f, &c.eval.AssetGrowthRate, "asset-growth", "yearly price growth, fraction")
	decimalFlag(f, &c.eval.DividendGrowthRate, "dividend-growth", "yearly dividend yield growth, fraction")
	decimalFlag(f, &c.eval.ForeignWithholdingRate, "withholding", "foreign dividend withholding rate, fraction")
	f.BoolVar(&c.eval.UseHistoricalGrowth, "historical-growth", c.eval.UseHistoricalGrowth, "use the mean 52-week change as asset growth when known")
}

func (c *generateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx = utils.CreateCtxWithRqID(ctx)

	c.cfg.Sectors = splitList(c.sectors)

	var (
		universe []model.Fundamentals
		err      error
	)
	if c.tickers != "" {
		data, rErr := os.ReadFile(c.tickers)
		if rErr != nil {
			return c.app.fail(rErr)
		}
		universe, err = c.app.Baskets.FetchUniverse(ctx, splitList(string(data)))
	} else {
		universe, err = c.app.Baskets.LoadUniverseFile(ctx, c.snapshot)
	}
	if err != nil {
		return c.app.fail(err)
	}

	result, err := c.app.Baskets.Generate(ctx, c.n, universe, c.cfg)
	if err != nil {
		return c.app.fail(err)
	}

	w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
	for i, b := range result.Baskets {
		fmt.Fprintf(w, "%d.\t%s\tscore %.4f\tbeta %.2f\n", i+1, strings.Join(b.Tickers, " "), b.Score, b.Beta)
	}
	if err := w.Flush(); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "%d of %d baskets from %d candidates in %d attempts, %d short\n",
		len(result.Baskets), c.n, result.Universe, result.Attempts, result.Deficient)

	if len(result.Baskets) == 0 {
		return subcommands.ExitSuccess
	}

	var evaluations []model.BasketEvaluation
	if c.evaluate {
		evaluations, err = c.app.Baskets.EvaluateBaskets(ctx, result.Baskets, c.eval)
		if err != nil {
			return c.app.fail(err)
		}
		if err := c.printEvaluations(evaluations); err != nil {
			return c.app.fail(err)
		}
	}

	if !c.export {
		return subcommands.ExitSuccess
	}

	export, err := c.app.Baskets.ExportBaskets(ctx, result.Baskets, evaluations, universe, c.cfg)
	if err != nil {
		return c.app.fail(err)
	}
	if err := os.WriteFile(export.Filename, export.File, 0o644); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.Out, "Exported to %s\n", export.Filename)
	if export.Link != "" {
		fmt.Fprintf(c.app.Out, "Uploaded: %s\n", export.Link)
	}
	return subcommands.ExitSuccess
}

func (c *generateCmd) printEvaluations(evaluations []model.BasketEvaluation) error {
	fmt.Fprintf(c.app.Out, "\nAfter-tax projection of %s over %d years\n", c.app.Money.Display(c.eval.InitialValue), c.eval.Years)
	w := tabwriter.NewWriter(c.app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tBasket\tYield\tGrowth\tFinal value\tAnnualized")
	for _, e := range evaluations {
		fmt.Fprintf(w, "%d\t%d\t%s%%\t%s%%\t%s\t%.2f%%\n", e.Rank, e.Index+1,
			percent(e.DividendYield), percent(e.GrowthRate), c.app.Money.Display(e.FinalValue), e.AnnualizedReturn*100)
	}
	return w.Flush()
}

func percent(fraction decimal.Decimal) string {
	return fraction.Shift(2).StringFixed(2)
}

// splitList splits on commas and newlines and drops blanks.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' || r == '\r' })
	res := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			res = append(res, f)
		}
	}
	return res
}
