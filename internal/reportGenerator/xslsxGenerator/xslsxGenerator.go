package xslsxGenerator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/xuri/excelize/v2"
)

const dateLayout = "2006-01-02"

const (
	colorBlue   = "#cfe2f3"
	colorGreen  = "#d9ead3"
	colorOrange = "#f9cb9c"
	colorGrey   = "#cccccc"
)

var fundamentalsHeader = []string{"ticker", "name", "sector", "price", "dividend yield", "P/E", "EPS", "beta", "market cap", "EPS growth", "ROE", "score"}

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// GenerateBaskets writes one sheet per basket, the evaluation ranking when
// present and a sheet with the scored universe.
func (g *XSLSXGenerator) GenerateBaskets(ctx context.Context, baskets []model.Basket, evaluations []model.BasketEvaluation, universe []model.ScoredTicker) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.GenerateBaskets"

	if len(baskets) == 0 {
		return nil, "", errors.New("empty baskets")
	}

	slog.Debug("GenerateBaskets start", slog.String("rqID", rqID), slog.String("op", op), slog.Int("baskets", len(baskets)))

	return g.write(ctx, func(f *excelize.File) error {
		for i, basket := range baskets {
			if err := g.fillBasketSheet(f, basket, i+1); err != nil {
				return err
			}
		}
		if len(evaluations) > 0 {
			if err := g.fillEvaluationSheet(f, evaluations); err != nil {
				return err
			}
		}
		if len(universe) > 0 {
			return g.fillFundamentalsSheet(f, "Universe", "Scored universe", universe, 1)
		}
		return nil
	})
}

// GenerateFirmReport writes the firm balance, its positions, shareholders and realized P&L history.
func (g *XSLSXGenerator) GenerateFirmReport(ctx context.Context, summary model.FirmSummary, history []model.RealizedEntry) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.GenerateFirmReport"

	slog.Debug("GenerateFirmReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", summary.Firm.ID))

	return g.write(ctx, func(f *excelize.File) error {
		if err := g.fillFirmSheet(f, summary); err != nil {
			return err
		}
		return g.fillRealizedSheet(f, history)
	})
}

func (g *XSLSXGenerator) write(ctx context.Context, fill func(f *excelize.File) error) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.write"

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err = fill(f); err != nil {
		slog.Error("got error while filling workbook", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("workbook written", slog.String("rqID", rqID), slog.String("op", op), slog.Int("bytes", buf.Len()))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillBasketSheet(f *excelize.File, basket model.Basket, ordinal int) error {
	sheetName := fmt.Sprintf("Basket %d", ordinal)
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	if err := g.title(f, sheetName, 1, "D", fmt.Sprintf("Score %.4f", basket.Score), colorBlue); err != nil {
		return err
	}
	_ = f.SetCellStr(sheetName, "E1", "beta")
	_ = f.SetCellFloat(sheetName, "F1", basket.Beta, 4, 64)

	return g.fillFundamentalsRows(f, sheetName, basket.Holdings, 2)
}

func (g *XSLSXGenerator) fillFundamentalsSheet(f *excelize.File, sheetName, title string, rows []model.ScoredTicker, startRow int) error {
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	if err := g.title(f, sheetName, startRow, "L", title, colorGreen); err != nil {
		return err
	}
	return g.fillFundamentalsRows(f, sheetName, rows, startRow+1)
}

func (g *XSLSXGenerator) fillFundamentalsRows(f *excelize.File, sheetName string, rows []model.ScoredTicker, headerRow int) error {
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", headerRow), &fundamentalsHeader); err != nil {
		return err
	}

	for i, t := range rows {
		row := []any{
			t.Ticker, t.Name, t.Sector,
			value(t.Price), value(t.DividendYield), value(t.PERatio), value(t.EPS),
			value(t.Beta), value(t.MarketCap), value(t.EPSGrowth), value(t.ROE),
			t.Score,
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", headerRow+1+i), &row); err != nil {
			return err
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillFirmSheet(f *excelize.File, summary model.FirmSummary) error {
	sheetName := "Firm"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	firm := summary.Firm
	if err := g.title(f, sheetName, 1, "B", firm.Name, colorBlue); err != nil {
		return err
	}
	balance := [][]any{
		{"cash", firm.Cash.InexactFloat64()},
		{"assets", firm.Assets.InexactFloat64()},
		{"liabilities", firm.Liabilities.InexactFloat64()},
		{"revenue", firm.Revenue.InexactFloat64()},
		{"expenses", firm.Expenses.InexactFloat64()},
		{"profit/loss", firm.ProfitLoss.InexactFloat64()},
	}
	for i, row := range balance {
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	rowNum := len(balance) + 4
	if err := g.title(f, sheetName, rowNum, "H", "Positions", colorGreen); err != nil {
		return err
	}
	rowNum++
	header := []string{"ticker", "shares", "invested", "avg price", "current price", "market value", "unrealized P&L", "realized P&L"}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowNum), &header); err != nil {
		return err
	}
	for _, p := range summary.Positions {
		rowNum++
		row := []any{p.Ticker, p.TotalShares.InexactFloat64(), p.TotalInvested.InexactFloat64(), p.AveragePurchasePrice.InexactFloat64(), nil, nil, nil, p.RealizedProfitLoss.InexactFloat64()}
		if p.CurrentPrice.Valid {
			row[4] = p.CurrentPrice.Decimal.InexactFloat64()
		}
		if mv, ok := p.MarketValue(); ok {
			row[5] = mv.InexactFloat64()
			row[6] = p.UnrealizedProfitLoss().Decimal.InexactFloat64()
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return err
		}
	}

	rowNum += 3
	if err := g.title(f, sheetName, rowNum, "E", "Shareholders", colorOrange); err != nil {
		return err
	}
	rowNum++
	header = []string{"name", "email", "ownership %", "investment", "since"}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowNum), &header); err != nil {
		return err
	}
	for _, sh := range summary.Shareholders {
		rowNum++
		row := []any{sh.Name, sh.Email, sh.Ownership.InexactFloat64(), sh.Investment.InexactFloat64(), sh.CreatedAt.Format(dateLayout)}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return err
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillEvaluationSheet(f *excelize.File, evaluations []model.BasketEvaluation) error {
	sheetName := "Evaluation"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	years := max(len(evaluations[0].Projection)-1, 0)
	if err := g.title(f, sheetName, 1, "G", fmt.Sprintf("After-tax projection over %d years", years), colorBlue); err != nil {
		return err
	}

	header := []string{"rank", "basket", "tickers", "dividend yield", "growth rate", "final value", "annualized return"}
	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return err
	}
	for i, e := range evaluations {
		row := []any{
			e.Rank, e.Index + 1, strings.Join(e.Basket.Tickers, ", "), e.DividendYield.InexactFloat64(),
			e.GrowthRate.InexactFloat64(), e.FinalValue.Round(2).InexactFloat64(), e.AnnualizedReturn,
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+3), &row); err != nil {
			return err
		}
	}

	// year by year projection of the best basket
	best := evaluations[0]
	rowNum := len(evaluations) + 4
	if err := g.title(f, sheetName, rowNum, "F", fmt.Sprintf("Basket %d by year", best.Index+1), colorGrey); err != nil {
		return err
	}
	rowNum++
	yearHeader := []string{"year", "portfolio value", "dividends", "domestic tax", "total tax", "after-tax cash"}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowNum), &yearHeader); err != nil {
		return err
	}
	for _, y := range best.Projection {
		rowNum++
		row := []any{
			y.Year, y.PortfolioValue.Round(2).InexactFloat64(), y.DividendIncome.Round(2).InexactFloat64(),
			y.DomesticTax.Round(2).InexactFloat64(), y.TotalTax.Round(2).InexactFloat64(), y.AfterTaxCash.Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return err
		}
	}
	return nil
}

func (g *XSLSXGenerator) fillRealizedSheet(f *excelize.File, history []model.RealizedEntry) error {
	sheetName := "Realized P&L"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}
	if err := g.title(f, sheetName, 1, "G", "Realized profit and loss", colorGrey); err != nil {
		return err
	}

	header := []string{"date", "ticker", "shares", "price", "cost basis", "realized P&L", "cumulative"}
	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return err
	}
	for i, e := range history {
		row := []any{
			e.CreatedAt.Format(dateLayout), e.Ticker, e.Shares.InexactFloat64(), e.PricePerShare.InexactFloat64(),
			e.CostBasis.InexactFloat64(), e.RealizedProfitLoss.InexactFloat64(), e.Cumulative.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", i+3), &row); err != nil {
			return err
		}
	}
	return nil
}

// title merges A<row>:<lastCol><row> into a filled bold header.
func (g *XSLSXGenerator) title(f *excelize.File, sheetName string, row int, lastCol, text, color string) error {
	first := fmt.Sprintf("A%d", row)
	if err := f.MergeCell(sheetName, first, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
		return err
	}
	_ = f.SetCellStr(sheetName, first, text)

	styleID, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{color},
		},
	})
	if err != nil {
		return err
	}

	if err := f.SetCellStyle(sheetName, first, first, styleID); err != nil {
		return fmt.Errorf("apply style: %w", err)
	}
	return nil
}

func value(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
