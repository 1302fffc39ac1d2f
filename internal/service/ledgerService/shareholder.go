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
	"github.com/KotFed0t/bearhouse_ledger/internal/validation"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func validateShareholder(sh model.NewShareholder) (model.NewShareholder, error) {
	sh.Name = strings.TrimSpace(sh.Name)
	sh.Email = strings.ToLower(strings.TrimSpace(sh.Email))

	if err := validation.Struct(sh); err != nil {
		return sh, fmt.Errorf("shareholder %q: %w", sh.Name, err)
	}
	return sh, nil
}

// AddShareholder registers a capital contribution: the shareholder row is
// created and firm cash grows by the investment in one unit of work.
func (s *LedgerService) AddShareholder(ctx context.Context, firmID int64, sh model.NewShareholder) (shareholderID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.AddShareholder"

	slog.Debug("AddShareholder start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID),
		slog.String("ownership", sh.Ownership.String()), slog.String("investment", sh.Investment.String()))
	defer func() {
		if err != nil {
			slog.Error("AddShareholder failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("AddShareholder completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("shareholderID", shareholderID))
		}
	}()

	sh, err = validateShareholder(sh)
	if err != nil {
		return 0, err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetFirmForUpdate(ctx, firmID); err != nil {
			return notFound(err, "firm", firmID)
		}

		total, err := s.repo.GetTotalOwnership(ctx, firmID)
		if err != nil {
			return err
		}
		if total.Add(sh.Ownership).GreaterThan(hundred) {
			return fmt.Errorf("%w: firm %d ownership would reach %s%%", service.ErrInvalidInput, firmID, total.Add(sh.Ownership))
		}

		shareholderID, err = s.repo.InsertShareholder(ctx, firmID, sh)
		if errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("%w: %s is already a shareholder of firm %d", service.ErrInvalidInput, sh.Email, firmID)
		}
		if err != nil {
			return persistence(err, "insert shareholder")
		}

		if err := s.repo.AdjustFirmBalances(ctx, firmID, sh.Investment, decimal.Zero); err != nil {
			return persistence(err, "credit firm cash")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return shareholderID, nil
}
