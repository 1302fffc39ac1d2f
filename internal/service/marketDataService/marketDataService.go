package marketDataService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/data/repository"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const refreshTaskPrefix = "refresh_prices:"

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error
	GetFirmIDs(ctx context.Context) ([]int64, error)
	GetFirmForUpdate(ctx context.Context, firmID int64) (model.Firm, error)
	SetFirmAssets(ctx context.Context, firmID int64, assets decimal.Decimal) error
	GetPositions(ctx context.Context, firmID int64, activeOnly bool) ([]model.Position, error)
	UpdatePositionQuotes(ctx context.Context, firmID int64, quotes []model.Quote) error
	GetTaskLastRun(ctx context.Context, taskName string) (time.Time, bool, error)
	SetTaskLastRun(ctx context.Context, taskName string, lastRun time.Time) error
}

type QuoteOracle interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, error)
}

type MarketDataService struct {
	repo    Repository
	oracle  QuoteOracle
	workers int
	now     func() time.Time
}

func New(repo Repository, oracle QuoteOracle, workers int) *MarketDataService {
	if workers < 1 {
		workers = 1
	}
	return &MarketDataService{
		repo:    repo,
		oracle:  oracle,
		workers: workers,
		now:     time.Now,
	}
}

// RefreshPositionPrices pulls the latest quotes for the firm's active positions.
// It runs at most once per calendar day unless force is set. Tickers the oracle
// cannot price are skipped and reported in Failed.
func (s *MarketDataService) RefreshPositionPrices(ctx context.Context, firmID int64, force bool) (res model.RefreshResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketDataService.RefreshPositionPrices"

	slog.Debug("RefreshPositionPrices start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.Bool("force", force))
	defer func() {
		if err != nil {
			slog.Error("RefreshPositionPrices failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Info("RefreshPositionPrices completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID),
				slog.Bool("skipped", res.Skipped), slog.Int("updated", len(res.Updated)), slog.Any("failed", res.Failed))
		}
	}()

	taskName := fmt.Sprintf("%s%d", refreshTaskPrefix, firmID)
	now := s.now()

	if !force {
		lastRun, ok, err := s.repo.GetTaskLastRun(ctx, taskName)
		if err != nil {
			return model.RefreshResult{}, err
		}
		if ok && sameDay(lastRun, now) {
			return model.RefreshResult{Skipped: true}, nil
		}
	}

	positions, err := s.repo.GetPositions(ctx, firmID, true)
	if err != nil {
		return model.RefreshResult{}, err
	}
	if len(positions) == 0 {
		return model.RefreshResult{}, s.repo.SetTaskLastRun(ctx, taskName, now)
	}

	quotes, failed := s.fetchQuotes(ctx, positions)
	if err = ctx.Err(); err != nil {
		return model.RefreshResult{}, err
	}
	if len(quotes) == 0 {
		return model.RefreshResult{Failed: failed}, fmt.Errorf("%w: no quote available for firm %d positions", service.ErrDataUnavailable, firmID)
	}

	if err = s.repo.UpdatePositionQuotes(ctx, firmID, quotes); err != nil {
		return model.RefreshResult{}, fmt.Errorf("%w: store quotes: %w", service.ErrPersistence, err)
	}
	if err = s.repo.SetTaskLastRun(ctx, taskName, now); err != nil {
		return model.RefreshResult{}, fmt.Errorf("%w: store last run: %w", service.ErrPersistence, err)
	}

	res.Failed = failed
	for _, q := range quotes {
		res.Updated = append(res.Updated, q.Ticker)
	}
	return res, nil
}

// fetchQuotes returns quotes in position order with the dividend yield turned into percent.
func (s *MarketDataService) fetchQuotes(ctx context.Context, positions []model.Position) ([]model.Quote, []string) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	results := make([]*model.Quote, len(positions))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, p := range positions {
		g.Go(func() error {
			q, err := s.oracle.GetQuote(gCtx, p.Ticker)
			if err != nil {
				slog.Warn("quote unavailable, position skipped", slog.String("rqID", rqID), slog.String("ticker", p.Ticker), slog.String("err", err.Error()))
				return nil
			}
			if !q.Price.IsPositive() {
				slog.Warn("non-positive price, position skipped", slog.String("rqID", rqID), slog.String("ticker", p.Ticker), slog.String("price", q.Price.String()))
				return nil
			}
			q.Ticker = p.Ticker
			if q.DividendYield.Valid {
				q.DividendYield.Decimal = q.DividendYield.Decimal.Mul(decimal.NewFromInt(100))
			}
			results[i] = &q
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]model.Quote, 0, len(positions))
	var failed []string
	for i, q := range results {
		if q == nil {
			failed = append(failed, positions[i].Ticker)
			continue
		}
		quotes = append(quotes, *q)
	}
	return quotes, failed
}

// SyncFirmAssets recomputes firm assets as the market value of its active
// positions. Positions without a price contribute nothing and are logged.
func (s *MarketDataService) SyncFirmAssets(ctx context.Context, firmID int64) (assets decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "MarketDataService.SyncFirmAssets"

	slog.Debug("SyncFirmAssets start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID))
	defer func() {
		if err != nil {
			slog.Error("SyncFirmAssets failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Info("SyncFirmAssets completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("assets", assets.String()))
		}
	}()

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetFirmForUpdate(ctx, firmID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: firm %d", service.ErrNotFound, firmID)
			}
			return err
		}

		positions, err := s.repo.GetPositions(ctx, firmID, true)
		if err != nil {
			return err
		}

		assets = decimal.Zero
		for _, p := range positions {
			value, ok := p.MarketValue()
			if !ok {
				slog.Warn("position has no price, excluded from assets", slog.String("rqID", rqID), slog.Int64("firmID", firmID), slog.String("ticker", p.Ticker))
				continue
			}
			assets = assets.Add(value)
		}

		if err := s.repo.SetFirmAssets(ctx, firmID, assets); err != nil {
			return fmt.Errorf("%w: set firm assets: %w", service.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return assets, nil
}

// RefreshAll runs the daily refresh for every firm, a failing firm does not stop the others.
func (s *MarketDataService) RefreshAll(ctx context.Context) error {
	return s.forEachFirm(ctx, func(ctx context.Context, firmID int64) error {
		_, err := s.RefreshPositionPrices(ctx, firmID, false)
		return err
	})
}

// SyncAll recomputes the assets of every firm.
func (s *MarketDataService) SyncAll(ctx context.Context) error {
	return s.forEachFirm(ctx, func(ctx context.Context, firmID int64) error {
		_, err := s.SyncFirmAssets(ctx, firmID)
		return err
	})
}

func (s *MarketDataService) forEachFirm(ctx context.Context, fn func(ctx context.Context, firmID int64) error) error {
	firmIDs, err := s.repo.GetFirmIDs(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range firmIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("firm %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
