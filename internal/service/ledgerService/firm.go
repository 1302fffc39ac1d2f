package ledgerService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/data/repository"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

func (s *LedgerService) CreateFirm(ctx context.Context, name string) (firmID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.CreateFirm"

	slog.Debug("CreateFirm start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	defer func() {
		if err != nil {
			slog.Error("CreateFirm failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("CreateFirm completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID))
		}
	}()

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("%w: firm name is empty", service.ErrInvalidInput)
	}

	firmID, err = s.repo.CreateFirm(ctx, name)
	if err != nil {
		return 0, persistence(err, "create firm")
	}

	return firmID, nil
}

func (s *LedgerService) AddExpense(ctx context.Context, firmID int64, value decimal.Decimal) error {
	return s.addToFirm(ctx, firmID, model.FirmFieldExpenses, value)
}

func (s *LedgerService) AddRevenue(ctx context.Context, firmID int64, value decimal.Decimal) error {
	return s.addToFirm(ctx, firmID, model.FirmFieldRevenue, value)
}

func (s *LedgerService) AddLiability(ctx context.Context, firmID int64, value decimal.Decimal) error {
	return s.addToFirm(ctx, firmID, model.FirmFieldLiabilities, value)
}

func (s *LedgerService) addToFirm(ctx context.Context, firmID int64, field model.FirmField, value decimal.Decimal) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.addToFirm"

	slog.Debug("addToFirm start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID),
		slog.String("field", string(field)), slog.String("value", value.String()))
	defer func() {
		if err != nil {
			slog.Error("addToFirm failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("addToFirm completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	if !value.IsPositive() {
		return fmt.Errorf("%w: %s must be positive, got %s", service.ErrInvalidInput, field, value)
	}

	err = s.repo.IncrementFirmField(ctx, firmID, field, value)
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return fmt.Errorf("%w: firm %d", service.ErrNotFound, firmID)
	}
	if err != nil {
		return persistence(err, "update firm "+string(field))
	}

	return nil
}

// GetFirmSummary returns the firm with its active positions and shareholders.
func (s *LedgerService) GetFirmSummary(ctx context.Context, firmID int64) (summary model.FirmSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.GetFirmSummary"

	slog.Debug("GetFirmSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID))
	defer func() {
		if err != nil {
			slog.Error("GetFirmSummary failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetFirmSummary completed", slog.String("rqID", rqID), slog.String("op", op))
		}
	}()

	summary.Firm, err = s.repo.GetFirm(ctx, firmID)
	if err != nil {
		return model.FirmSummary{}, notFound(err, "firm", firmID)
	}

	summary.Positions, err = s.repo.GetPositions(ctx, firmID, true)
	if err != nil {
		return model.FirmSummary{}, err
	}

	summary.Shareholders, err = s.repo.GetShareholders(ctx, firmID)
	if err != nil {
		return model.FirmSummary{}, err
	}

	return summary, nil
}
