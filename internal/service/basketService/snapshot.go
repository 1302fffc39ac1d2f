package basketService

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// snapshot column names, matched case-insensitively
const (
	colTicker        = "ticker"
	colName          = "company_name"
	colSector        = "sector"
	colPrice         = "latest_price"
	colDividendYield = "dividend_yield"
	colPERatio       = "pe_ratio"
	colEPS           = "eps"
	colBeta          = "beta"
	colMarketCap     = "market_cap"
	colEPSGrowth     = "eps_growth"
	colROE           = "roe"
	colWeek52Change  = "52week_change"
	colWeek52High    = "52week_high"
	colWeek52Low     = "52week_low"
)

// ReadUniverseCSV parses an enriched tickers snapshot. Only the ticker column
// is mandatory, empty or NaN cells leave the metric unset.
func ReadUniverseCSV(r io.Reader) ([]model.Fundamentals, error) {
	df := dataframe.ReadCSV(r,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %w", service.ErrInvalidInput, df.Err)
	}

	columns := make(map[string][]string, df.Ncol())
	for _, name := range df.Names() {
		columns[strings.ToLower(strings.TrimSpace(name))] = df.Col(name).Records()
	}

	tickers, ok := columns[colTicker]
	if !ok {
		return nil, fmt.Errorf("%w: snapshot has no %q column", service.ErrInvalidInput, "Ticker")
	}

	text := func(col string, i int) string {
		values, ok := columns[col]
		if !ok {
			return ""
		}
		v := strings.TrimSpace(values[i])
		if v == "NaN" {
			return ""
		}
		return v
	}
	number := func(col string, i int) (*float64, error) {
		v := text(col, i)
		if v == "" {
			return nil, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d column %s: %q is not a number", service.ErrInvalidInput, i+2, col, v)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, nil
		}
		return &f, nil
	}

	universe := make([]model.Fundamentals, 0, df.Nrow())
	seen := make(map[string]struct{}, df.Nrow())
	for i := range tickers {
		ticker := strings.ToUpper(text(colTicker, i))
		if ticker == "" {
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}

		f := model.Fundamentals{
			Ticker: ticker,
			Name:   text(colName, i),
			Sector: text(colSector, i),
		}
		metrics := []struct {
			col  string
			dest **float64
		}{
			{colPrice, &f.Price},
			{colDividendYield, &f.DividendYield},
			{colPERatio, &f.PERatio},
			{colEPS, &f.EPS},
			{colBeta, &f.Beta},
			{colMarketCap, &f.MarketCap},
			{colEPSGrowth, &f.EPSGrowth},
			{colROE, &f.ROE},
			{colWeek52Change, &f.Week52Change},
			{colWeek52High, &f.Week52High},
			{colWeek52Low, &f.Week52Low},
		}
		for _, m := range metrics {
			v, err := number(m.col, i)
			if err != nil {
				return nil, err
			}
			*m.dest = v
		}

		universe = append(universe, f)
	}

	return universe, nil
}
