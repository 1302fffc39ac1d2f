package quoteApi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/config"
	"github.com/KotFed0t/bearhouse_ledger/internal/externalApi"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fundamentalsBody = `{
	"General": {"Code": "AAPL", "Name": "Apple Inc", "Exchange": "NASDAQ", "Sector": "Technology"},
	"Highlights": {
		"MarketCapitalization": 3000000000000,
		"PERatio": 30.5,
		"DividendYield": 0.0045,
		"EarningsShare": 6.1,
		"ReturnOnEquityTTM": 1.47,
		"QuarterlyEarningsGrowthYOY": null
	},
	"Technicals": {"Beta": 1.2, "52WeekHigh": 199.6, "52WeekLow": "NA"}
}`

type memCache struct {
	quotes       map[string]model.Quote
	fundamentals map[string]model.Fundamentals
}

func newMemCache() *memCache {
	return &memCache{quotes: map[string]model.Quote{}, fundamentals: map[string]model.Fundamentals{}}
}

func (c *memCache) GetQuote(_ context.Context, ticker string) (model.Quote, bool, error) {
	q, ok := c.quotes[ticker]
	return q, ok, nil
}

func (c *memCache) SetQuote(_ context.Context, quote model.Quote) error {
	c.quotes[quote.Ticker] = quote
	return nil
}

func (c *memCache) GetFundamentals(_ context.Context, ticker string) (model.Fundamentals, bool, error) {
	f, ok := c.fundamentals[ticker]
	return f, ok, nil
}

func (c *memCache) SetFundamentals(_ context.Context, f model.Fundamentals) error {
	c.fundamentals[f.Ticker] = f
	return nil
}

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/real-time/AAPL.US", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "secret", r.URL.Query().Get("api_token"))
		assert.Equal(t, "json", r.URL.Query().Get("fmt"))
		_, _ = w.Write([]byte(`{"code": "AAPL.US", "timestamp": 1700000000, "close": 189.5, "previousClose": 188}`))
	})
	mux.HandleFunc("/fundamentals/AAPL.US", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte(fundamentalsBody))
	})
	mux.HandleFunc("/real-time/NOPE.US", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code": "NOPE.US", "close": "NA"}`))
	})
	mux.HandleFunc("/real-time/BROKEN.US", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApi(url string, cache Cache) *QuoteApi {
	cfg := &config.Config{
		API: config.API{
			Timeout: 5 * time.Second,
			QuoteApi: config.QuoteApi{
				Url:      url,
				Token:    "secret",
				Exchange: "US",
			},
		},
	}
	return New(cfg, cache)
}

func TestGetQuote(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	api := newTestApi(srv.URL, nil)

	quote, err := api.GetQuote(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", quote.Ticker)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("189.5")))
	require.True(t, quote.DividendYield.Valid)
	assert.True(t, quote.DividendYield.Decimal.Equal(decimal.RequireFromString("0.0045")))
}

func TestGetQuoteUsesCache(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	cache := newMemCache()
	api := newTestApi(srv.URL, cache)

	_, err := api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	first := atomic.LoadInt32(&hits)

	_, err = api.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, first, atomic.LoadInt32(&hits))
	assert.Contains(t, cache.quotes, "AAPL")
	assert.Contains(t, cache.fundamentals, "AAPL")
}

func TestGetQuoteErrors(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	api := newTestApi(srv.URL, nil)

	_, err := api.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)

	_, err = api.GetQuote(context.Background(), "MISSING")
	assert.ErrorIs(t, err, externalApi.ErrNotFound)

	_, err = api.GetQuote(context.Background(), "BROKEN")
	require.Error(t, err)
	assert.NotErrorIs(t, err, externalApi.ErrNotFound)
}

func TestGetFundamentals(t *testing.T) {
	var hits int32
	srv := newTestServer(t, &hits)
	api := newTestApi(srv.URL, nil)

	f, err := api.GetFundamentals(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Technology", f.Sector)
	assert.Equal(t, "Apple Inc", f.Name)
	require.NotNil(t, f.Price)
	assert.InDelta(t, 189.5, *f.Price, 1e-9)
	require.NotNil(t, f.Beta)
	assert.InDelta(t, 1.2, *f.Beta, 1e-9)
	assert.Nil(t, f.EPSGrowth)
	assert.Nil(t, f.Week52Low)
	assert.True(t, f.HasRequired())
}
