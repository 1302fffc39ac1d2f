package basketGenerator

import (
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
)

type metric struct {
	name  string
	value func(f model.Fundamentals) (float64, bool)
}

func ptr(v *float64) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return *v, true
}

// lower P/E is better, so it is scored on its inverse
var metrics = []metric{
	{"dividend_yield", func(f model.Fundamentals) (float64, bool) { return ptr(f.DividendYield) }},
	{"eps", func(f model.Fundamentals) (float64, bool) { return ptr(f.EPS) }},
	{"pe_ratio", func(f model.Fundamentals) (float64, bool) {
		pe, ok := ptr(f.PERatio)
		if !ok || pe <= 0 {
			return 0, false
		}
		return 1 / pe, true
	}},
	{"eps_growth", func(f model.Fundamentals) (float64, bool) { return ptr(f.EPSGrowth) }},
	{"roe", func(f model.Fundamentals) (float64, bool) { return ptr(f.ROE) }},
	{"week52_change", func(f model.Fundamentals) (float64, bool) { return ptr(f.Week52Change) }},
}

// Score gives every ticker an equally weighted 0..1 performance score. Each
// metric is min-max normalized over the given set and the sum is divided by
// the number of metrics the ticker actually has.
func Score(universe []model.Fundamentals) []model.ScoredTicker {
	type bounds struct {
		min, max float64
		seen     bool
	}
	ranges := make([]bounds, len(metrics))
	for _, f := range universe {
		for i, m := range metrics {
			v, ok := m.value(f)
			if !ok {
				continue
			}
			b := &ranges[i]
			if !b.seen {
				b.min, b.max, b.seen = v, v, true
				continue
			}
			if v < b.min {
				b.min = v
			}
			if v > b.max {
				b.max = v
			}
		}
	}

	res := make([]model.ScoredTicker, 0, len(universe))
	for _, f := range universe {
		var sum, weights float64
		for i, m := range metrics {
			v, ok := m.value(f)
			if !ok {
				continue
			}
			b := ranges[i]
			norm := 0.5 // no spread over the set
			if b.max > b.min {
				norm = (v - b.min) / (b.max - b.min)
			}
			sum += norm
			weights++
		}

		score := 0.0
		if weights > 0 {
			score = sum / weights
		}
		res = append(res, model.ScoredTicker{Fundamentals: f, Score: score})
	}

	return res
}
