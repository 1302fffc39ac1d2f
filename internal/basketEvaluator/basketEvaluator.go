// Package basketEvaluator projects the after-tax growth of generated baskets
// and ranks them by annualized return.
package basketEvaluator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/validation"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

// DefaultDividendYield stands in for a basket without any known dividend yield.
var DefaultDividendYield = decimal.RequireFromString("0.03")

type TaxCalculator interface {
	Tax(income model.TaxableIncome) model.TaxResult
}

type Evaluator struct {
	tax TaxCalculator
	cfg model.EvaluationConfig
}

func New(tax TaxCalculator, cfg model.EvaluationConfig) (*Evaluator, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("evaluation config: %w", err)
	}
	return &Evaluator{tax: tax, cfg: cfg}, nil
}

// Evaluate projects every basket and returns them best annualized return first.
// Ties keep the generation order.
func (e *Evaluator) Evaluate(ctx context.Context, baskets []model.Basket) ([]model.BasketEvaluation, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Evaluator.Evaluate"

	slog.Debug("Evaluate start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("baskets", len(baskets)), slog.Int("years", e.cfg.Years))

	res := make([]model.BasketEvaluation, 0, len(baskets))
	for i, b := range baskets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		yield, ok := meanOf(b.Holdings, func(t model.ScoredTicker) *float64 { return t.DividendYield })
		if !ok {
			slog.Warn("basket has no dividend yield data, default used", slog.String("rqID", rqID), slog.String("op", op),
				slog.Int("basket", i+1), slog.String("default", DefaultDividendYield.String()))
			yield = DefaultDividendYield
		}

		growth := e.cfg.AssetGrowthRate
		if e.cfg.UseHistoricalGrowth {
			if g, ok := meanOf(b.Holdings, func(t model.ScoredTicker) *float64 { return t.Week52Change }); ok {
				growth = g
			}
		}

		projection := Project(e.tax, ProjectionParams{
			InitialValue:           e.cfg.InitialValue,
			DividendYield:          yield,
			ForeignWithholdingRate: e.cfg.ForeignWithholdingRate,
			DividendGrowthRate:     e.cfg.DividendGrowthRate,
			AssetGrowthRate:        growth,
			Years:                  e.cfg.Years,
		})
		final := projection[len(projection)-1].PortfolioValue

		res = append(res, model.BasketEvaluation{
			Index:            i,
			Basket:           b,
			DividendYield:    yield,
			GrowthRate:       growth,
			Projection:       projection,
			FinalValue:       final,
			AnnualizedReturn: annualized(e.cfg.InitialValue, final, e.cfg.Years),
		})
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].AnnualizedReturn > res[j].AnnualizedReturn })
	for i := range res {
		res[i].Rank = i + 1
	}

	slog.Debug("Evaluate completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("evaluated", len(res)))
	return res, nil
}

// meanOf averages the known values of metric over the holdings.
func meanOf(holdings []model.ScoredTicker, metric func(model.ScoredTicker) *float64) (decimal.Decimal, bool) {
	sum := decimal.Zero
	n := 0
	for _, h := range holdings {
		v := metric(h)
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(*v))
		n++
	}
	if n == 0 {
		return decimal.Zero, false
	}
	return sum.Div(decimal.NewFromInt(int64(n))), true
}

func annualized(initial, final decimal.Decimal, years int) float64 {
	if years <= 0 || !initial.IsPositive() {
		return 0
	}
	ratio := final.Div(initial).InexactFloat64()
	if ratio <= 0 {
		return -1
	}
	return math.Pow(ratio, 1/float64(years)) - 1
}
