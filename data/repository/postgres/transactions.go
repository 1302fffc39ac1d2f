package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/internal/converter/dbConverter"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/dbModel"
	"github.com/KotFed0t/bearhouse_ledger/utils"
)

func (r *Postgres) InsertTransaction(ctx context.Context, tx model.Transaction) (transactionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertTransaction"
	query := `
		INSERT INTO transactions(firm_id, ticker, shares, price_per_share, total_value, transaction_type, fees, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING transaction_id
		`

	slog.Debug(
		"InsertTransaction start",
		slog.String("rqID", rqID),
		slog.String("op", op),
		slog.Int64("firmID", tx.FirmID),
		slog.String("ticker", tx.Ticker),
		slog.String("type", string(tx.Type)),
		slog.String("shares", tx.Shares.String()),
		slog.String("query", query),
	)
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID))
		}
	}()

	var notes *string
	if tx.Notes != "" {
		notes = &tx.Notes
	}

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		tx.FirmID,
		tx.Ticker,
		tx.Shares,
		tx.PricePerShare,
		tx.TotalValue,
		string(tx.Type),
		tx.Fees,
		notes,
	).Scan(&transactionID)
	if err != nil {
		return 0, mapError(err)
	}

	return transactionID, nil
}

// UpdateSellRealization back-fills the realization fields, the only update a transaction ever gets.
func (r *Postgres) UpdateSellRealization(ctx context.Context, transactionID int64, realization model.SellRealization) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.UpdateSellRealization"
	query := `
		UPDATE transactions
		SET
			cost_basis = $1,
			realized_profit_loss = $2,
			portion_of_position = $3,
			notes = COALESCE(notes || E'\n', '') || $4
		WHERE
			transaction_id = $5
			AND transaction_type = 'sell'
		`

	slog.Debug("UpdateSellRealization start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", transactionID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpdateSellRealization failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpdateSellRealization completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(
		ctx,
		query,
		realization.CostBasis,
		realization.RealizedProfitLoss,
		realization.PortionOfPosition,
		realization.Notes,
		transactionID,
	)
	if err != nil {
		return err
	}

	return checkRowsAffected(res)
}

// GetTransactions lists a firm's transactions oldest first, ticker "" means every ticker.
func (r *Postgres) GetTransactions(ctx context.Context, firmID int64, ticker string) (transactions []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTransactions"
	params := map[string]any{
		"firmID": firmID,
		"ticker": ticker,
	}
	query := `
		SELECT
			transaction_id, firm_id, ticker, shares, price_per_share, total_value, transaction_type,
			cost_basis, realized_profit_loss, portion_of_position, fees, notes, dt_create
		FROM transactions
		WHERE firm_id = $1
		AND ($2 = '' OR ticker = $2)
		ORDER BY dt_create, transaction_id
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(transactions)))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, firmID, ticker)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbTransaction dbModel.Transaction
		err = rows.StructScan(&dbTransaction)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, dbConverter.ConvertTransaction(dbTransaction))
	}

	return transactions, rows.Err()
}
