// Package basketGenerator samples diversified candidate portfolios from a
// fundamentals snapshot. Sampling is randomized on purpose, the random source
// is injected so a seed reproduces a batch exactly.
package basketGenerator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/utils"
)

const (
	topPerSector    = 5
	attemptsPerGoal = 3
)

type Generator struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Generate returns up to n unique baskets of exactly cfg.NumStocks tickers.
// At most 3*n attempts are made, short or duplicate baskets are discarded.
func (g *Generator) Generate(ctx context.Context, n int, universe []model.Fundamentals, cfg model.BasketConfig) (model.GenerationResult, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Generator.Generate"

	if n <= 0 {
		return model.GenerationResult{}, fmt.Errorf("%w: number of portfolios must be positive, got %d", service.ErrInvalidInput, n)
	}
	if err := validateConfig(cfg); err != nil {
		return model.GenerationResult{}, err
	}
	if cfg.MaxStocksPerSector <= 0 {
		cfg.MaxStocksPerSector = cfg.NumStocks
	}

	candidates := Score(Filter(universe, cfg))
	result := model.GenerationResult{Universe: len(candidates)}

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op),
		slog.Int("universe", len(universe)), slog.Int("candidates", len(candidates)), slog.Int("n", n))

	if len(candidates) < cfg.NumStocks {
		slog.Warn("not enough candidates after filtering", slog.String("rqID", rqID), slog.String("op", op),
			slog.Int("candidates", len(candidates)), slog.Int("numStocks", cfg.NumStocks))
		return result, nil
	}

	used := make(map[string]struct{})
	seen := make(map[string]struct{})

	for result.Attempts < attemptsPerGoal*n && len(result.Baskets) < n {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Attempts++

		holdings := g.sample(candidates, used, cfg)
		if len(holdings) < cfg.NumStocks {
			result.Deficient++
			slog.Warn("basket size deficiency", slog.String("rqID", rqID), slog.String("op", op),
				slog.Int("attempt", result.Attempts), slog.Int("size", len(holdings)), slog.Int("numStocks", cfg.NumStocks))
			continue
		}

		basket := newBasket(holdings)
		key := strings.Join(basket.Tickers, ",")
		if _, dup := seen[key]; dup {
			slog.Debug("duplicate basket discarded", slog.String("rqID", rqID), slog.String("op", op), slog.String("tickers", key))
			continue
		}
		seen[key] = struct{}{}
		for _, t := range basket.Tickers {
			used[t] = struct{}{}
		}
		result.Baskets = append(result.Baskets, basket)
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op),
		slog.Int("baskets", len(result.Baskets)), slog.Int("attempts", result.Attempts), slog.Int("deficient", result.Deficient))

	return result, nil
}

type draft struct {
	cfg          model.BasketConfig
	holdings     []model.ScoredTicker
	in           map[string]struct{}
	rejected     map[string]struct{}
	sectorCounts map[string]int
}

func (d *draft) fits(c model.ScoredTicker) bool {
	if _, ok := d.in[c.Ticker]; ok {
		return false
	}
	if _, ok := d.rejected[c.Ticker]; ok {
		return false
	}
	return d.sectorCounts[c.Sector] < d.cfg.MaxStocksPerSector
}

func (d *draft) add(c model.ScoredTicker) {
	d.holdings = append(d.holdings, c)
	d.in[c.Ticker] = struct{}{}
	d.sectorCounts[c.Sector]++
}

func (d *draft) remove(i int) model.ScoredTicker {
	c := d.holdings[i]
	d.holdings = append(d.holdings[:i], d.holdings[i+1:]...)
	delete(d.in, c.Ticker)
	d.sectorCounts[c.Sector]--
	return c
}

func (g *Generator) sample(candidates []model.ScoredTicker, used map[string]struct{}, cfg model.BasketConfig) []model.ScoredTicker {
	d := &draft{
		cfg:          cfg,
		in:           make(map[string]struct{}),
		rejected:     make(map[string]struct{}),
		sectorCounts: make(map[string]int),
	}

	isUsed := func(c model.ScoredTicker) bool {
		_, ok := used[c.Ticker]
		return ok
	}

	// sector pass, sector order is shuffled so no sector is always served first
	bySector := make(map[string][]model.ScoredTicker)
	for _, c := range candidates {
		if !isUsed(c) {
			bySector[c.Sector] = append(bySector[c.Sector], c)
		}
	}
	sectors := make([]string, 0, len(bySector))
	for s := range bySector {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)
	g.rng.Shuffle(len(sectors), func(i, j int) { sectors[i], sectors[j] = sectors[j], sectors[i] })

	for _, sector := range sectors {
		top := append([]model.ScoredTicker(nil), bySector[sector]...)
		sortByScore(top)
		if len(top) > topPerSector {
			top = top[:topPerSector]
		}
		taken := 0
		for _, i := range g.rng.Perm(len(top)) {
			if taken == cfg.MaxStocksPerSector {
				break
			}
			if d.fits(top[i]) {
				d.add(top[i])
				taken++
			}
		}
	}

	// fill to size, first from tickers no other basket holds, then from any
	if len(d.holdings) < cfg.NumStocks {
		g.fill(d, candidates, func(c model.ScoredTicker) bool { return !isUsed(c) })
	}
	if len(d.holdings) < cfg.NumStocks {
		g.fill(d, candidates, func(model.ScoredTicker) bool { return true })
	}

	adjustBeta(d, candidates)

	sort.Slice(d.holdings, func(i, j int) bool { return d.holdings[i].Ticker < d.holdings[j].Ticker })
	return d.holdings
}

func (g *Generator) fill(d *draft, candidates []model.ScoredTicker, allowed func(model.ScoredTicker) bool) {
	pool := make([]model.ScoredTicker, 0, len(candidates))
	for _, c := range candidates {
		if allowed(c) && d.fits(c) {
			pool = append(pool, c)
		}
	}
	for _, i := range g.rng.Perm(len(pool)) {
		if len(d.holdings) >= d.cfg.NumStocks {
			return
		}
		if d.fits(pool[i]) {
			d.add(pool[i])
		}
	}
}

// adjustBeta drops the highest-beta holdings while the basket is oversized and
// too volatile, trims the rest by score, then swaps in lower-beta spares while
// the beta bound is still exceeded and tops up from the lowest-beta spares.
func adjustBeta(d *draft, candidates []model.ScoredTicker) {
	maxBeta := d.cfg.MaxBeta

	for maxBeta != nil && len(d.holdings) > d.cfg.NumStocks && basketBeta(d.holdings) > *maxBeta {
		c := d.remove(highestBeta(d.holdings))
		d.rejected[c.Ticker] = struct{}{}
	}

	if len(d.holdings) > d.cfg.NumStocks {
		sortByScore(d.holdings)
		for len(d.holdings) > d.cfg.NumStocks {
			d.remove(len(d.holdings) - 1)
		}
	}

	for maxBeta != nil && len(d.holdings) > 0 && basketBeta(d.holdings) > *maxBeta {
		hi := highestBeta(d.holdings)
		spare, ok := lowestBetaSpare(d, candidates, d.holdings[hi].Sector)
		if !ok || *spare.Beta >= *d.holdings[hi].Beta {
			break
		}
		c := d.remove(hi)
		d.rejected[c.Ticker] = struct{}{}
		d.add(spare)
	}

	for len(d.holdings) < d.cfg.NumStocks {
		spare, ok := lowestBetaSpare(d, candidates, "")
		if !ok {
			break
		}
		d.add(spare)
	}
}

// lowestBetaSpare finds the lowest-beta candidate that fits the draft. A
// non-empty freed sector is treated as having one more free slot.
func lowestBetaSpare(d *draft, candidates []model.ScoredTicker, freed string) (model.ScoredTicker, bool) {
	var best model.ScoredTicker
	found := false
	for _, c := range candidates {
		ok := d.fits(c)
		if !ok && freed != "" && c.Sector == freed {
			_, in := d.in[c.Ticker]
			_, rej := d.rejected[c.Ticker]
			ok = !in && !rej
		}
		if !ok {
			continue
		}
		if !found || *c.Beta < *best.Beta {
			best, found = c, true
		}
	}
	return best, found
}

func highestBeta(holdings []model.ScoredTicker) int {
	idx := 0
	for i, h := range holdings {
		if *h.Beta > *holdings[idx].Beta {
			idx = i
		}
	}
	return idx
}

// basketBeta is the market-cap weighted beta, or the plain mean when no
// holding reports a market cap.
func basketBeta(holdings []model.ScoredTicker) float64 {
	if len(holdings) == 0 {
		return 0
	}
	var weighted, caps, plain float64
	for _, h := range holdings {
		plain += *h.Beta
		if h.MarketCap != nil && *h.MarketCap > 0 {
			weighted += *h.Beta * *h.MarketCap
			caps += *h.MarketCap
		}
	}
	if caps == 0 {
		return plain / float64(len(holdings))
	}
	return weighted / caps
}

func sortByScore(s []model.ScoredTicker) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Ticker < s[j].Ticker
	})
}

func newBasket(holdings []model.ScoredTicker) model.Basket {
	b := model.Basket{
		Tickers:  make([]string, 0, len(holdings)),
		Holdings: holdings,
		Beta:     basketBeta(holdings),
	}
	for _, h := range holdings {
		b.Tickers = append(b.Tickers, h.Ticker)
		b.Score += h.Score
	}
	if len(holdings) > 0 {
		b.Score /= float64(len(holdings))
	}
	return b
}
