package postgres

import (
	"context"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/internal/converter/dbConverter"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/dbModel"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

const shareholderColumns = `shareholder_id, firm_id, name, email, ownership, investment, status, dt_create`

func (r *Postgres) InsertShareholder(ctx context.Context, firmID int64, sh model.NewShareholder) (shareholderID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.InsertShareholder"
	query := `
		INSERT INTO shareholders(firm_id, name, email, ownership, investment, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING shareholder_id
		`

	slog.Debug("InsertShareholder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertShareholder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertShareholder completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("shareholderID", shareholderID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(
		ctx,
		query,
		firmID,
		sh.Name,
		sh.Email,
		sh.Ownership,
		sh.Investment,
		string(model.ShareholderActive),
	).Scan(&shareholderID)
	if err != nil {
		return 0, mapError(err)
	}

	return shareholderID, nil
}

func (r *Postgres) GetShareholder(ctx context.Context, firmID, shareholderID int64) (sh model.Shareholder, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetShareholder"
	query := `SELECT ` + shareholderColumns + ` FROM shareholders WHERE firm_id = $1 AND shareholder_id = $2`

	slog.Debug("GetShareholder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("shareholderID", shareholderID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetShareholder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetShareholder completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbShareholder := dbModel.Shareholder{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, firmID, shareholderID).StructScan(&dbShareholder)
	if err != nil {
		return model.Shareholder{}, mapError(err)
	}

	return dbConverter.ConvertShareholder(dbShareholder), nil
}

func (r *Postgres) GetShareholders(ctx context.Context, firmID int64) (shareholders []model.Shareholder, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetShareholders"
	query := `SELECT ` + shareholderColumns + ` FROM shareholders WHERE firm_id = $1 ORDER BY shareholder_id`

	slog.Debug("GetShareholders start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetShareholders failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetShareholders completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, firmID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var dbShareholder dbModel.Shareholder
		err = rows.StructScan(&dbShareholder)
		if err != nil {
			return nil, err
		}
		shareholders = append(shareholders, dbConverter.ConvertShareholder(dbShareholder))
	}

	return shareholders, rows.Err()
}

func (r *Postgres) GetTotalOwnership(ctx context.Context, firmID int64) (total decimal.Decimal, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetTotalOwnership"
	query := `SELECT COALESCE(SUM(ownership), 0) FROM shareholders WHERE firm_id = $1 AND status = $2`

	slog.Debug("GetTotalOwnership start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTotalOwnership failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTotalOwnership completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("total", total.String()))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, firmID, string(model.ShareholderActive)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (r *Postgres) DeleteShareholder(ctx context.Context, firmID, shareholderID int64) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.DeleteShareholder"
	params := map[string]any{
		"firmID":        firmID,
		"shareholderID": shareholderID,
	}
	query := `DELETE FROM shareholders WHERE firm_id = $1 AND shareholder_id = $2`

	slog.Debug("DeleteShareholder start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("DeleteShareholder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteShareholder completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, firmID, shareholderID)
	if err != nil {
		return err
	}

	return checkRowsAffected(res)
}
