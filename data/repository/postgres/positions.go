package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/data/repository"
	"github.com/KotFed0t/bearhouse_ledger/internal/converter/dbConverter"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/dbModel"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

const positionColumns = `position_id, firm_id, ticker, total_shares, total_invested, average_purchase_price,
	current_price, realized_profit_loss, dividend_yield, dt_update`

// GetPosition returns found=false instead of an error when the firm never held the ticker.
func (r *Postgres) GetPosition(ctx context.Context, firmID int64, ticker string) (pos model.Position, found bool, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPosition"
	query := `SELECT ` + positionColumns + ` FROM portfolio_positions WHERE firm_id = $1 AND ticker = $2`

	slog.Debug("GetPosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", ticker), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetPosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPosition completed", slog.String("rqID", rqID), slog.String("op", op), slog.Bool("found", found))
		}
	}()

	dbPosition := dbModel.Position{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, firmID, ticker).StructScan(&dbPosition)
	if err != nil {
		err = mapError(err)
		if errors.Is(err, repository.ErrNotFound) {
			return model.Position{}, false, nil
		}
		return model.Position{}, false, err
	}

	return dbConverter.ConvertPosition(dbPosition), true, nil
}

func (r *Postgres) GetPositions(ctx context.Context, firmID int64, activeOnly bool) (positions []model.Position, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetPositions"
	query := `
		SELECT ` + positionColumns + `
		FROM portfolio_positions
		WHERE firm_id = $1
		AND ($2 = false OR total_shares > 0)
		ORDER BY ticker
		`

	slog.Debug("GetPositions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.Bool("activeOnly", activeOnly))
	defer func() {
		if err != nil {
			slog.Error("GetPositions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetPositions completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(positions)))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, firmID, activeOnly)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbPosition dbModel.Position
		err = rows.StructScan(&dbPosition)
		if err != nil {
			return nil, err
		}
		positions = append(positions, dbConverter.ConvertPosition(dbPosition))
	}

	return positions, rows.Err()
}

func (r *Postgres) InsertPosition(ctx context.Context, pos model.Position) (positionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertPosition"
	query := `
		INSERT INTO portfolio_positions(firm_id, ticker, total_shares, total_invested, average_purchase_price, realized_profit_loss)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING position_id
		`

	slog.Debug("InsertPosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("ticker", pos.Ticker), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertPosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertPosition completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("positionID", positionID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		pos.FirmID,
		pos.Ticker,
		pos.TotalShares,
		pos.TotalInvested,
		pos.AveragePurchasePrice,
		pos.RealizedProfitLoss,
	).Scan(&positionID)
	if err != nil {
		return 0, mapError(err)
	}

	return positionID, nil
}

// UpdatePosition writes the ledger fields of an existing position, prices are left alone.
func (r *Postgres) UpdatePosition(ctx context.Context, pos model.Position) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdatePosition"
	params := map[string]any{
		"positionID":    pos.ID,
		"ticker":        pos.Ticker,
		"totalShares":   pos.TotalShares.String(),
		"totalInvested": pos.TotalInvested.String(),
	}
	query := `
		UPDATE portfolio_positions
		SET
			total_shares = $1,
			total_invested = $2,
			average_purchase_price = $3,
			realized_profit_loss = $4,
			dt_update = now()
		WHERE
			position_id = $5
			AND firm_id = $6
		`

	slog.Debug("UpdatePosition start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("UpdatePosition failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePosition completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		pos.TotalShares,
		pos.TotalInvested,
		pos.AveragePurchasePrice,
		pos.RealizedProfitLoss,
		pos.ID,
		pos.FirmID,
	)
	if err != nil {
		return err
	}

	return checkRowsAffected(res)
}

// UpdatePositionQuotes stores the latest price and dividend yield (percent)
// for every listed ticker in one statement.
func (r *Postgres) UpdatePositionQuotes(ctx context.Context, firmID int64, quotes []model.Quote) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdatePositionQuotes"
	query := `
		UPDATE portfolio_positions AS p
		SET
			current_price = u.price,
			dividend_yield = u.dividend_yield,
			dt_update = now()
		FROM UNNEST($1::text[], $2::numeric[], $3::numeric[]) AS u(ticker, price, dividend_yield)
		WHERE p.ticker = u.ticker AND p.firm_id = $4
		`

	tickers := make([]string, 0, len(quotes))
	prices := make([]decimal.Decimal, 0, len(quotes))
	yields := make([]decimal.NullDecimal, 0, len(quotes))
	for _, q := range quotes {
		tickers = append(tickers, q.Ticker)
		prices = append(prices, q.Price)
		yields = append(yields, q.DividendYield)
	}

	slog.Debug("UpdatePositionQuotes start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("tickers", tickers))
	defer func() {
		if err != nil {
			slog.Error("UpdatePositionQuotes failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdatePositionQuotes completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, tickers, prices, yields, firmID)
	if err != nil {
		return err
	}

	return nil
}
