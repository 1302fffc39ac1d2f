package basketGenerator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/internal/validation"
)

func validateConfig(cfg model.BasketConfig) error {
	if err := validation.Struct(cfg); err != nil {
		return fmt.Errorf("basket config: %w", err)
	}
	bounds := []struct {
		name     string
		min, max *float64
	}{
		{"dividend yield", cfg.MinDividendYield, cfg.MaxDividendYield},
		{"P/E ratio", cfg.MinPERatio, cfg.MaxPERatio},
		{"price", cfg.MinPrice, cfg.MaxPrice},
		{"beta", cfg.MinBeta, cfg.MaxBeta},
	}
	for _, b := range bounds {
		if b.min != nil && b.max != nil && *b.min > *b.max {
			return fmt.Errorf("%w: basket config: min %s %v above max %v", service.ErrInvalidInput, b.name, *b.min, *b.max)
		}
	}
	return nil
}

// Filter keeps the tickers that carry every required fundamental and satisfy
// each configured bound. Bounds are inclusive. The result is sorted by ticker
// so later random draws only depend on the seed.
func Filter(universe []model.Fundamentals, cfg model.BasketConfig) []model.Fundamentals {
	sectors := make(map[string]struct{}, len(cfg.Sectors))
	for _, s := range cfg.Sectors {
		if s = strings.TrimSpace(s); s != "" {
			sectors[strings.ToLower(s)] = struct{}{}
		}
	}

	res := make([]model.Fundamentals, 0, len(universe))
	for _, f := range universe {
		if !f.HasRequired() || f.Ticker == "" {
			continue
		}
		if len(sectors) > 0 {
			if _, ok := sectors[strings.ToLower(strings.TrimSpace(f.Sector))]; !ok {
				continue
			}
		}
		if !within(f.DividendYield, cfg.MinDividendYield, cfg.MaxDividendYield) ||
			!within(f.PERatio, cfg.MinPERatio, cfg.MaxPERatio) ||
			!within(f.Price, cfg.MinPrice, cfg.MaxPrice) ||
			!within(f.Beta, cfg.MinBeta, cfg.MaxBeta) ||
			!within(f.MarketCap, cfg.MinMarketCap, nil) ||
			!within(f.EPSGrowth, cfg.MinEPSGrowth, nil) ||
			!within(f.ROE, cfg.MinROE, nil) {
			continue
		}
		res = append(res, f)
	}

	sort.Slice(res, func(i, j int) bool { return res[i].Ticker < res[j].Ticker })
	return res
}

// within treats a missing value as failing any configured bound.
func within(value, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	if value == nil {
		return false
	}
	if min != nil && *value < *min {
		return false
	}
	if max != nil && *value > *max {
		return false
	}
	return true
}
