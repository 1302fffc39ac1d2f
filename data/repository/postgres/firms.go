package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/internal/converter/dbConverter"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/model/dbModel"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

const firmColumns = `firm_id, firm_name, cash, assets, liabilities, revenue, expenses, profit_loss, dt_create`

func (r *Postgres) CreateFirm(ctx context.Context, name string) (firmID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.CreateFirm"
	query := `INSERT INTO firms(firm_name) VALUES($1) RETURNING firm_id`

	slog.Debug("CreateFirm start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("CreateFirm failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateFirm completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID))
		}
	}()

	err = r.txOrDb(ctx).QueryRowContext(ctx, query, name).Scan(&firmID)
	if err != nil {
		return 0, mapError(err)
	}

	return firmID, nil
}

func (r *Postgres) getFirm(ctx context.Context, firmID int64, query string) (firm model.Firm, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.getFirm"

	slog.Debug("getFirm start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("getFirm failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("getFirm completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	dbFirm := dbModel.Firm{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, firmID).StructScan(&dbFirm)
	if err != nil {
		return model.Firm{}, mapError(err)
	}

	return dbConverter.ConvertFirm(dbFirm), nil
}

func (r *Postgres) GetFirm(ctx context.Context, firmID int64) (model.Firm, error) {
	query := `SELECT ` + firmColumns + ` FROM firms WHERE firm_id = $1`
	return r.getFirm(ctx, firmID, query)
}

// GetFirmForUpdate locks the firm row until the surrounding transaction ends,
// which serializes every ledger mutation of one firm.
func (r *Postgres) GetFirmForUpdate(ctx context.Context, firmID int64) (model.Firm, error) {
	query := `SELECT ` + firmColumns + ` FROM firms WHERE firm_id = $1 FOR UPDATE`
	return r.getFirm(ctx, firmID, query)
}

func (r *Postgres) AdjustFirmBalances(ctx context.Context, firmID int64, cashDelta, assetsDelta decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.AdjustFirmBalances"
	params := map[string]any{
		"firmID":      firmID,
		"cashDelta":   cashDelta.String(),
		"assetsDelta": assetsDelta.String(),
	}
	query := `
		UPDATE firms
		SET
			cash = cash + $1,
			assets = assets + $2
		WHERE firm_id = $3
		`

	slog.Debug("AdjustFirmBalances start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query), slog.Any("params", params))
	defer func() {
		if err != nil {
			slog.Error("AdjustFirmBalances failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AdjustFirmBalances completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, cashDelta, assetsDelta, firmID)
	if err != nil {
		return err
	}

	return checkRowsAffected(res)
}

// IncrementFirmField adds value to expenses, revenue or liabilities and keeps
// profit_loss equal to revenue minus expenses.
func (r *Postgres) IncrementFirmField(ctx context.Context, firmID int64, field model.FirmField, value decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.IncrementFirmField"

	var set string
	switch field {
	case model.FirmFieldExpenses:
		set = `expenses = expenses + $1, profit_loss = revenue - (expenses + $1)`
	case model.FirmFieldRevenue:
		set = `revenue = revenue + $1, profit_loss = (revenue + $1) - expenses`
	case model.FirmFieldLiabilities:
		set = `liabilities = liabilities + $1`
	default:
		return fmt.Errorf("unknown firm field %q", field)
	}

	query := `UPDATE firms SET ` + set + ` WHERE firm_id = $2`

	slog.Debug("IncrementFirmField start", slog.String("rqID", rqID), slog.String("op", op), slog.String("field", string(field)), slog.String("query", query), slog.String("value", value.String()))
	defer func() {
		if err != nil {
			slog.Error("IncrementFirmField failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("IncrementFirmField completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, value, firmID)
	if err != nil {
		return err
	}

	return checkRowsAffected(res)
}

func (r *Postgres) SetFirmAssets(ctx context.Context, firmID int64, assets decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.SetFirmAssets"
	query := `UPDATE firms SET assets = $1 WHERE firm_id = $2`

	slog.Debug("SetFirmAssets start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("assets", assets.String()))
	defer func() {
		if err != nil {
			slog.Error("SetFirmAssets failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("SetFirmAssets completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, assets, firmID)
	if err != nil {
		return err
	}

	return checkRowsAffected(res)
}

func (r *Postgres) GetFirmIDs(ctx context.Context) (firmIDs []int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "Postgres.GetFirmIDs"
	query := `SELECT firm_id FROM firms ORDER BY firm_id`

	slog.Debug("GetFirmIDs start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetFirmIDs failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetFirmIDs completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(firmIDs)))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &firmIDs, query)
	if err != nil {
		return nil, err
	}

	return firmIDs, nil
}
