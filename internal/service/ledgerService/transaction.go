package ledgerService

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/positionLedger"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/utils"
	"github.com/shopspring/decimal"
)

// ApplyTransaction records one buy or sell and moves the position and the
// firm cash with it. Nothing is kept when any step fails.
func (s *LedgerService) ApplyTransaction(ctx context.Context, firmID int64, req model.TransactionRequest) (tx model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ApplyTransaction"

	slog.Debug("ApplyTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID),
		slog.String("ticker", req.Ticker), slog.String("type", string(req.Type)), slog.String("shares", req.Shares.String()),
		slog.String("price", req.PricePerShare.String()))
	defer func() {
		if err != nil {
			slog.Error("ApplyTransaction failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ApplyTransaction completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("transactionID", tx.ID))
		}
	}()

	req, err = positionLedger.Normalize(req)
	if err != nil {
		return model.Transaction{}, err
	}

	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		firm, err := s.repo.GetFirmForUpdate(ctx, firmID)
		if err != nil {
			return notFound(err, "firm", firmID)
		}
		tx, err = s.apply(ctx, firm, req)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}

	return tx, nil
}

// apply runs inside a transaction that already holds the firm lock. req must be normalized.
func (s *LedgerService) apply(ctx context.Context, firm model.Firm, req model.TransactionRequest) (model.Transaction, error) {
	existing, found, err := s.repo.GetPosition(ctx, firm.ID, req.Ticker)
	if err != nil {
		return model.Transaction{}, err
	}
	var current *model.Position
	if found {
		current = &existing
	}

	change, err := positionLedger.Apply(current, req, s.opts)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("firm %d: %w", firm.ID, err)
	}

	if firm.Cash.Add(change.CashDelta).IsNegative() {
		return model.Transaction{}, fmt.Errorf("%w: firm %d has %s cash, %s %s %s changes it by %s",
			service.ErrInsufficientFunds, firm.ID, firm.Cash, req.Type, change.Shares, req.Ticker, change.CashDelta)
	}

	tx := model.Transaction{
		FirmID:        firm.ID,
		Ticker:        req.Ticker,
		Shares:        change.Shares,
		PricePerShare: req.PricePerShare,
		TotalValue:    change.Shares.Mul(req.PricePerShare),
		Type:          req.Type,
		Fees:          req.Fees,
		Notes:         req.Notes,
		CreatedAt:     s.now(),
	}
	tx.ID, err = s.repo.InsertTransaction(ctx, tx)
	if err != nil {
		return model.Transaction{}, persistence(err, "insert transaction")
	}

	pos := change.Position
	pos.FirmID = firm.ID
	if change.Created {
		pos.ID, err = s.repo.InsertPosition(ctx, pos)
		if err != nil {
			return model.Transaction{}, persistence(err, "insert position "+pos.Ticker)
		}
	} else if err = s.repo.UpdatePosition(ctx, pos); err != nil {
		return model.Transaction{}, persistence(err, "update position "+pos.Ticker)
	}

	if r := change.Realization; r != nil {
		if err = s.repo.UpdateSellRealization(ctx, tx.ID, *r); err != nil {
			return model.Transaction{}, persistence(err, "back-fill sell realization")
		}
		tx.CostBasis = decimal.NewNullDecimal(r.CostBasis)
		tx.RealizedProfitLoss = decimal.NewNullDecimal(r.RealizedProfitLoss)
		tx.PortionOfPosition = decimal.NewNullDecimal(r.PortionOfPosition)
		tx.Notes = strings.TrimSpace(strings.Join([]string{tx.Notes, r.Notes}, "\n"))
	}

	if err = s.repo.AdjustFirmBalances(ctx, firm.ID, change.CashDelta, decimal.Zero); err != nil {
		return model.Transaction{}, persistence(err, "update firm cash")
	}

	if change.Retired {
		slog.Info("position retired", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.Int64("firmID", firm.ID), slog.String("ticker", pos.Ticker))
	}

	return tx, nil
}

// ListTransactions returns the firm's transactions oldest first, ticker "" means all.
func (s *LedgerService) ListTransactions(ctx context.Context, firmID int64, ticker string) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "LedgerService.ListTransactions"

	slog.Debug("ListTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("firmID", firmID), slog.String("ticker", ticker))
	defer func() {
		if err != nil {
			slog.Error("ListTransactions failed", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		} else {
			slog.Debug("ListTransactions completed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("count", len(txs)))
		}
	}()

	return s.repo.GetTransactions(ctx, firmID, strings.ToUpper(strings.TrimSpace(ticker)))
}

// RealizedProfitLossHistory lists every sell with its realized P&L and the running total.
func (s *LedgerService) RealizedProfitLossHistory(ctx context.Context, firmID int64, ticker string) ([]model.RealizedEntry, error) {
	txs, err := s.ListTransactions(ctx, firmID, ticker)
	if err != nil {
		return nil, err
	}

	history := make([]model.RealizedEntry, 0, len(txs))
	cumulative := decimal.Zero
	for _, tx := range txs {
		if tx.Type != model.Sell || !tx.RealizedProfitLoss.Valid {
			continue
		}
		cumulative = cumulative.Add(tx.RealizedProfitLoss.Decimal)
		history = append(history, model.RealizedEntry{
			TransactionID:      tx.ID,
			Ticker:             tx.Ticker,
			Shares:             tx.Shares,
			PricePerShare:      tx.PricePerShare,
			CostBasis:          tx.CostBasis.Decimal,
			RealizedProfitLoss: tx.RealizedProfitLoss.Decimal,
			Cumulative:         cumulative,
			CreatedAt:          tx.CreatedAt,
		})
	}

	return history, nil
}
