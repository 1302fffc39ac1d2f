package quoteApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/KotFed0t/bearhouse_ledger/internal/externalApi"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/eodhdModel"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

type Cache interface {
	GetQuote(ctx context.Context, ticker string) (model.Quote, bool, error)
	SetQuote(ctx context.Context, quote model.Quote) error
	GetFundamentals(ctx context.Context, ticker string) (model.Fundamentals, bool, error)
	SetFundamentals(ctx context.Context, f model.Fundamentals) error
}

// QuoteApi is the price oracle backed by an EODHD-style HTTP api.
type QuoteApi struct {
	client   *resty.Client
	limiter  *rate.Limiter
	token    string
	exchange string
	cache    Cache
}

// New builds the client, cache may be nil.
func New(cfg *config.Config, cache Cache) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url)

	rps := cfg.API.QuoteApi.RequestsPerSecond
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}

	return &QuoteApi{
		client:   client,
		limiter:  limiter,
		token:    cfg.API.QuoteApi.Token,
		exchange: cfg.API.QuoteApi.Exchange,
		cache:    cache,
	}
}

// GetQuote returns the latest price and dividend yield (fraction) of ticker.
func (a *QuoteApi) GetQuote(ctx context.Context, ticker string) (model.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteApi.GetQuote"
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if a.cache != nil {
		quote, ok, err := a.cache.GetQuote(ctx, ticker)
		if err != nil {
			slog.Warn("quote cache read failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else if ok {
			return quote, nil
		}
	}

	raw := eodhdModel.RealTime{}
	if err := a.get(ctx, "/real-time/"+a.symbol(ticker), &raw); err != nil {
		return model.Quote{}, err
	}
	if !raw.Close.Valid || raw.Close.Value <= 0 {
		slog.Warn("no price in response", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker))
		return model.Quote{}, fmt.Errorf("%w: no price for %s", externalApi.ErrNotFound, ticker)
	}

	quote := model.Quote{
		Ticker: ticker,
		Price:  decimal.NewFromFloat(raw.Close.Value),
	}

	f, err := a.fundamentals(ctx, ticker)
	if err != nil {
		slog.Warn("dividend yield unavailable", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("err", err.Error()))
	} else if f.DividendYield != nil {
		quote.DividendYield = decimal.NewNullDecimal(decimal.NewFromFloat(*f.DividendYield))
	}

	if a.cache != nil {
		if err := a.cache.SetQuote(ctx, quote); err != nil {
			slog.Warn("quote cache write failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return quote, nil
}

// GetFundamentals returns the fundamentals snapshot of ticker including its latest price.
func (a *QuoteApi) GetFundamentals(ctx context.Context, ticker string) (model.Fundamentals, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	f, err := a.fundamentals(ctx, ticker)
	if err != nil {
		return model.Fundamentals{}, err
	}

	if f.Price == nil {
		quote, err := a.GetQuote(ctx, ticker)
		if err != nil {
			return model.Fundamentals{}, err
		}
		price := quote.Price.InexactFloat64()
		f.Price = &price
	}

	return f, nil
}

// fundamentals reads the cache first, the price field is left to GetFundamentals.
func (a *QuoteApi) fundamentals(ctx context.Context, ticker string) (model.Fundamentals, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteApi.fundamentals"

	if a.cache != nil {
		f, ok, err := a.cache.GetFundamentals(ctx, ticker)
		if err != nil {
			slog.Warn("fundamentals cache read failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else if ok {
			return f, nil
		}
	}

	raw := eodhdModel.Fundamentals{}
	if err := a.get(ctx, "/fundamentals/"+a.symbol(ticker), &raw); err != nil {
		return model.Fundamentals{}, err
	}

	f := convertFundamentals(ticker, raw)

	if a.cache != nil {
		if err := a.cache.SetFundamentals(ctx, f); err != nil {
			slog.Warn("fundamentals cache write failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}

	return f, nil
}

func (a *QuoteApi) get(ctx context.Context, url string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "QuoteApi.get"

	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	slog.Debug("start QuoteApi request", slog.String("rqID", rqID), slog.String("op", op), slog.String("url", url))

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(map[string]string{
			"api_token": a.token,
			"fmt":       "json",
		}).
		Get(url)
	if err != nil {
		slog.Error("error while dialing QuoteApi", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", externalApi.ErrNotFound, url)
	}
	if resp.IsError() {
		slog.Error("QuoteApi returned error status", slog.String("rqID", rqID), slog.String("op", op), slog.Int("status", resp.StatusCode()), slog.String("body", resp.String()))
		return fmt.Errorf("quote api %s: unexpected status %d", url, resp.StatusCode())
	}

	err = json.Unmarshal(resp.Body(), dest)
	if err != nil {
		slog.Error("can't unmarshall QuoteApi response", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("QuoteApi request complete", slog.String("rqID", rqID), slog.String("op", op))

	return nil
}

func (a *QuoteApi) symbol(ticker string) string {
	if strings.Contains(ticker, ".") || a.exchange == "" {
		return ticker
	}
	return ticker + "." + a.exchange
}

func convertFundamentals(ticker string, raw eodhdModel.Fundamentals) model.Fundamentals {
	return model.Fundamentals{
		Ticker:        ticker,
		Name:          raw.General.Name,
		Sector:        raw.General.Sector,
		DividendYield: raw.Highlights.DividendYield.Ptr(),
		PERatio:       raw.Highlights.PERatio.Ptr(),
		EPS:           raw.Highlights.EarningsShare.Ptr(),
		MarketCap:     raw.Highlights.MarketCapitalization.Ptr(),
		EPSGrowth:     raw.Highlights.QuarterlyEarningsGrowthYOY.Ptr(),
		ROE:           raw.Highlights.ReturnOnEquityTTM.Ptr(),
		Beta:          raw.Technicals.Beta.Ptr(),
		Week52High:    raw.Technicals.FiftyTwoWeekHigh.Ptr(),
		Week52Low:     raw.Technicals.FiftyTwoWeekLow.Ptr(),
	}
}
