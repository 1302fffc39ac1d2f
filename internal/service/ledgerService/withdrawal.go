package ledgerService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/withdrawalPlanner"
	"github.com/KotFed0t/bearhouse_ledger/utils"
)

// PlanWithdrawal computes the plan without changing anything.
func (s *LedgerService) PlanWithdrawal(ctx context.Context, firmID, shareholderID int64) (model.WithdrawalPlan, error) {
	firm, err := s.repo.GetFirm(ctx, firmID)
	if err != nil {
		return model.WithdrawalPlan{}, notFound(err, "firm", firmID)
	}
	return s.plan(ctx, firm, shareholderID)
}

func (s *LedgerService) plan(ctx context.Context, firm model.Firm, shareholderID int64) (model.WithdrawalPlan, error) {
	sh, err := s.repo.GetShareholder(ctx, firm.ID, shareholderID)
	if err != nil {
		return model.WithdrawalPlan{}, notFound(err, "shareholder", shareholderID)
	}

	positions, err := s.repo.GetPositions(ctx, firm.ID, true)
	if err != nil {
		return model.WithdrawalPlan{}, err
	}

	return withdrawalPlanner.Plan(firm, sh, positions, s.fees)
}

// Withdraw pays a shareholder out: the cash part first, then proportional
// liquidations sold through the ledger, then the shareholder row is deleted.
// Everything runs in one transaction, a failure leaves the books untouched.
func (s *LedgerService) Withdraw(ctx context.Context, firmID, shareholderID int64) (result model.WithdrawalResult, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.Withdraw"

	slog.Debug("Withdraw start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.Int64("shareholderID", shareholderID))
	defer func() {
		if err != nil {
			slog.Error("Withdraw failed", slog.String("rqID", rqID), slog.String("op", op),
				slog.String("status", string(result.Status)), slog.String("err", err.Error()))
		} else {
			slog.Info("Withdraw completed", slog.String("rqID", rqID), slog.String("op", op),
				slog.Int64("firmID", firmID), slog.Int64("shareholderID", shareholderID), slog.String("payout", result.Plan.Payout().String()))
		}
	}()

	if err = ctx.Err(); err != nil {
		return model.WithdrawalResult{Status: model.WithdrawalCancelled}, err
	}

	var plan model.WithdrawalPlan
	var txIDs []int64

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		firm, err := s.repo.GetFirmForUpdate(ctx, firmID)
		if err != nil {
			return notFound(err, "firm", firmID)
		}

		plan, err = s.plan(ctx, firm, shareholderID)
		if err != nil {
			return err
		}

		for _, l := range plan.Liquidations {
			tx, err := s.apply(ctx, firm, model.TransactionRequest{
				Ticker:        l.Ticker,
				Shares:        l.Shares,
				PricePerShare: l.Price,
				Type:          model.Sell,
				Notes:         fmt.Sprintf("Withdrawal of shareholder %d", shareholderID),
			})
			if err != nil {
				return fmt.Errorf("liquidate %s: %w", l.Ticker, err)
			}
			txIDs = append(txIDs, tx.ID)
		}

		// the sells credited their proceeds to cash, the payout leaves here and
		// the rounding surplus stays
		cashDelta := plan.Payout().Neg()
		assetsDelta := plan.LiquidatedValue.Neg()
		if err := s.repo.AdjustFirmBalances(ctx, firm.ID, cashDelta, assetsDelta); err != nil {
			return persistence(err, "update firm balances")
		}

		if err := s.repo.DeleteShareholder(ctx, firm.ID, shareholderID); err != nil {
			return persistence(err, "delete shareholder")
		}
		return nil
	})
	if err != nil {
		status := model.WithdrawalFailed
		if errors.Is(err, context.Canceled) {
			status = model.WithdrawalCancelled
		}
		return model.WithdrawalResult{Status: status, Plan: plan}, err
	}

	result = model.WithdrawalResult{
		Status:         model.WithdrawalCompleted,
		Plan:           plan,
		TransactionIDs: txIDs,
	}

	if s.notifier != nil {
		text := fmt.Sprintf("Firm %d: shareholder %d withdrew %s (cash %s, liquidated %s, retained %s, fee %s)",
			firmID, shareholderID, plan.Payout().StringFixed(2), plan.CashWithdrawal.StringFixed(2),
			plan.LiquidatedValue.StringFixed(2), plan.Surplus().StringFixed(2), plan.ManagementFee.StringFixed(2))
		if nErr := s.notifier.Notify(ctx, text); nErr != nil {
			slog.Warn("withdrawal notification failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", nErr.Error()))
		}
	}

	return result, nil
}
