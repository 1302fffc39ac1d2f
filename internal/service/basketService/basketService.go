package basketService

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/internal/basketEvaluator"
	"github.com/KotFed0t/bearhouse_ledger/internal/basketGenerator"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"golang.org/x/sync/errgroup"
)

type FundamentalsOracle interface {
	GetFundamentals(ctx context.Context, ticker string) (model.Fundamentals, error)
}

type FundamentalsCache interface {
	SetFundamentalsBatch(ctx context.Context, batch []model.Fundamentals) error
}

type ReportGenerator interface {
	GenerateBaskets(ctx context.Context, baskets []model.Basket, evaluations []model.BasketEvaluation, universe []model.ScoredTicker) (fileBytes []byte, fileExtension string, err error)
}

type TaxCalculator interface {
	Tax(income model.TaxableIncome) model.TaxResult
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type BasketService struct {
	oracle  FundamentalsOracle
	cache   FundamentalsCache
	report  ReportGenerator
	storage CloudStorage
	tax     TaxCalculator
	workers int
	seed    uint64
	now     func() time.Time
}

// New wires the service. cache and storage may be nil, seed 0 picks a time based seed per run.
func New(oracle FundamentalsOracle, cache FundamentalsCache, report ReportGenerator, storage CloudStorage, tax TaxCalculator, workers int, seed uint64) *BasketService {
	if workers < 1 {
		workers = 1
	}
	return &BasketService{
		oracle:  oracle,
		cache:   cache,
		report:  report,
		storage: storage,
		tax:     tax,
		workers: workers,
		seed:    seed,
		now:     time.Now,
	}
}

// LoadUniverseFile reads a fundamentals snapshot CSV.
func (s *BasketService) LoadUniverseFile(ctx context.Context, path string) ([]model.Fundamentals, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open snapshot: %w", service.ErrDataUnavailable, err)
	}
	defer file.Close()

	universe, err := ReadUniverseCSV(file)
	if err != nil {
		return nil, err
	}

	slog.Info("universe loaded from snapshot", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.String("path", path), slog.Int("tickers", len(universe)))
	return universe, nil
}

// FetchUniverse pulls fundamentals for every ticker through the oracle with a
// bounded worker pool. Tickers that fail are skipped with a warning.
func (s *BasketService) FetchUniverse(ctx context.Context, tickers []string) (universe []model.Fundamentals, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BasketService.FetchUniverse"

	slog.Debug("FetchUniverse start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("tickers", len(tickers)), slog.Int("workers", s.workers))
	defer func() {
		if err != nil {
			slog.Error("FetchUniverse failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("FetchUniverse completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("fetched", len(universe)))
		}
	}()

	var (
		mu      sync.Mutex
		skipped int
	)
	results := make([]*model.Fundamentals, len(tickers))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, ticker := range tickers {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker == "" {
			continue
		}
		g.Go(func() error {
			f, err := s.oracle.GetFundamentals(gCtx, ticker)
			if err != nil {
				if gCtx.Err() != nil {
					return gCtx.Err()
				}
				slog.Warn("fundamentals unavailable, ticker skipped", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			results[i] = &f
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	universe = make([]model.Fundamentals, 0, len(tickers))
	for _, f := range results {
		if f != nil {
			universe = append(universe, *f)
		}
	}
	if len(universe) == 0 && len(tickers) > 0 {
		return nil, fmt.Errorf("%w: no fundamentals for %d tickers", service.ErrDataUnavailable, len(tickers))
	}
	if skipped > 0 {
		slog.Warn("universe is partial", slog.String("rqID", rqID), slog.String("op", op), slog.Int("skipped", skipped))
	}

	if s.cache != nil {
		if err := s.cache.SetFundamentalsBatch(ctx, universe); err != nil {
			slog.Warn("fundamentals cache write failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return universe, nil
}

// Generate samples n baskets from universe, the configured seed makes a run reproducible.
func (s *BasketService) Generate(ctx context.Context, n int, universe []model.Fundamentals, cfg model.BasketConfig) (model.GenerationResult, error) {
	seed := s.seed
	if seed == 0 {
		seed = uint64(s.now().UnixNano())
	}
	slog.Info("generating baskets", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)), slog.Uint64("seed", seed), slog.Int("n", n))

	return basketGenerator.NewSeeded(seed).Generate(ctx, n, universe, cfg)
}

// EvaluateBaskets projects the after-tax growth of each basket and ranks them by annualized return.
func (s *BasketService) EvaluateBaskets(ctx context.Context, baskets []model.Basket, cfg model.EvaluationConfig) (evaluations []model.BasketEvaluation, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BasketService.EvaluateBaskets"

	slog.Debug("EvaluateBaskets start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("baskets", len(baskets)))
	defer func() {
		if err != nil {
			slog.Error("EvaluateBaskets failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("EvaluateBaskets completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if s.tax == nil {
		return nil, fmt.Errorf("%w: no tax calculator configured", service.ErrInvalidInput)
	}
	evaluator, err := basketEvaluator.New(s.tax, cfg)
	if err != nil {
		return nil, err
	}
	return evaluator.Evaluate(ctx, baskets)
}

// ExportBaskets renders the baskets and their evaluations into a workbook and
// uploads it when cloud storage is configured.
func (s *BasketService) ExportBaskets(ctx context.Context, baskets []model.Basket, evaluations []model.BasketEvaluation, universe []model.Fundamentals, cfg model.BasketConfig) (export model.Export, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "BasketService.ExportBaskets"

	slog.Debug("ExportBaskets start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("baskets", len(baskets)))
	defer func() {
		if err != nil {
			slog.Error("ExportBaskets failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ExportBaskets completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("file", export.Filename), slog.String("link", export.Link))
		}
	}()

	file, ext, err := s.report.GenerateBaskets(ctx, baskets, evaluations, basketGenerator.Score(basketGenerator.Filter(universe, cfg)))
	if err != nil {
		return model.Export{}, err
	}

	export = model.Export{
		Filename: fmt.Sprintf("baskets_%s%s", s.now().Format("2006-01-02_150405"), ext),
		File:     file,
	}

	if s.storage != nil {
		export.Link, err = s.storage.UploadFile(ctx, bytes.NewReader(file), export.Filename)
		if err != nil {
			return export, fmt.Errorf("upload %s: %w", export.Filename, err)
		}
	}

	return export, nil
}
