package ledgerService

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KotFed0t/bearhouse_ledger/data/repository"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/positionLedger"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/shopspring/decimal"
)

type Repository interface {
	WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error

	CreateFirm(ctx context.Context, name string) (firmID int64, err error)
	GetFirm(ctx context.Context, firmID int64) (model.Firm, error)
	GetFirmForUpdate(ctx context.Context, firmID int64) (model.Firm, error)
	AdjustFirmBalances(ctx context.Context, firmID int64, cashDelta, assetsDelta decimal.Decimal) error
	IncrementFirmField(ctx context.Context, firmID int64, field model.FirmField, value decimal.Decimal) error

	InsertShareholder(ctx context.Context, firmID int64, sh model.NewShareholder) (shareholderID int64, err error)
	GetShareholder(ctx context.Context, firmID, shareholderID int64) (model.Shareholder, error)
	GetShareholders(ctx context.Context, firmID int64) ([]model.Shareholder, error)
	GetTotalOwnership(ctx context.Context, firmID int64) (decimal.Decimal, error)
	DeleteShareholder(ctx context.Context, firmID, shareholderID int64) error

	GetPosition(ctx context.Context, firmID int64, ticker string) (pos model.Position, found bool, err error)
	GetPositions(ctx context.Context, firmID int64, activeOnly bool) ([]model.Position, error)
	InsertPosition(ctx context.Context, pos model.Position) (positionID int64, err error)
	UpdatePosition(ctx context.Context, pos model.Position) error

	InsertTransaction(ctx context.Context, tx model.Transaction) (transactionID int64, err error)
	UpdateSellRealization(ctx context.Context, transactionID int64, realization model.SellRealization) error
	GetTransactions(ctx context.Context, firmID int64, ticker string) ([]model.Transaction, error)
}

type FeeCalculator interface {
	ManagementFee(profit decimal.Decimal) decimal.Decimal
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type LedgerService struct {
	repo     Repository
	fees     FeeCalculator
	notifier Notifier
	opts     positionLedger.Options
	now      func() time.Time
}

func New(repo Repository, fees FeeCalculator, notifier Notifier, opts positionLedger.Options) *LedgerService {
	return &LedgerService{
		repo:     repo,
		fees:     fees,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

func notFound(err error, entity string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s %d", service.ErrNotFound, entity, id)
	}
	return err
}

// persistence tags any repository mutation failure as ErrPersistence.
func persistence(err error, what string) error {
	if errors.Is(err, repository.ErrNoRowsAffected) {
		return fmt.Errorf("%w: %s: no rows affected", service.ErrPersistence, what)
	}
	return fmt.Errorf("%w: %s: %w", service.ErrPersistence, what, err)
}
