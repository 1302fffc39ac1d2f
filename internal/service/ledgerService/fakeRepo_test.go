package ledgerService

import (
	"context"
	"maps"
	"sort"

	"github.com/KotFed0t/bearhouse_ledger/data/repository"
	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/shopspring/decimal"
)

type fakeState struct {
	firms        map[int64]model.Firm
	shareholders map[int64]model.Shareholder
	positions    map[int64]model.Position
	transactions map[int64]model.Transaction
	nextID       int64
}

// fakeRepo is an in-memory Repository. WithinTransaction restores the state
// captured at its start when the callback fails.
type fakeRepo struct {
	fakeState
	fail map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		fakeState: fakeState{
			firms:        map[int64]model.Firm{},
			shareholders: map[int64]model.Shareholder{},
			positions:    map[int64]model.Position{},
			transactions: map[int64]model.Transaction{},
		},
		fail: map[string]error{},
	}
}

func (r *fakeRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, tFunc func(ctx context.Context) error) error {
	snapshot := fakeState{
		firms:        maps.Clone(r.firms),
		shareholders: maps.Clone(r.shareholders),
		positions:    maps.Clone(r.positions),
		transactions: maps.Clone(r.transactions),
		nextID:       r.nextID,
	}
	if err := tFunc(ctx); err != nil {
		r.fakeState = snapshot
		return err
	}
	return nil
}

func (r *fakeRepo) CreateFirm(_ context.Context, name string) (int64, error) {
	if err := r.fail["CreateFirm"]; err != nil {
		return 0, err
	}
	id := r.id()
	r.firms[id] = model.Firm{ID: id, Name: name}
	return id, nil
}

func (r *fakeRepo) GetFirm(_ context.Context, firmID int64) (model.Firm, error) {
	f, ok := r.firms[firmID]
	if !ok {
		return model.Firm{}, repository.ErrNotFound
	}
	return f, nil
}

func (r *fakeRepo) GetFirmForUpdate(ctx context.Context, firmID int64) (model.Firm, error) {
	return r.GetFirm(ctx, firmID)
}

func (r *fakeRepo) AdjustFirmBalances(_ context.Context, firmID int64, cashDelta, assetsDelta decimal.Decimal) error {
	if err := r.fail["AdjustFirmBalances"]; err != nil {
		return err
	}
	f, ok := r.firms[firmID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	f.Cash = f.Cash.Add(cashDelta)
	f.Assets = f.Assets.Add(assetsDelta)
	r.firms[firmID] = f
	return nil
}

func (r *fakeRepo) IncrementFirmField(_ context.Context, firmID int64, field model.FirmField, value decimal.Decimal) error {
	f, ok := r.firms[firmID]
	if !ok {
		return repository.ErrNoRowsAffected
	}
	switch field {
	case model.FirmFieldExpenses:
		f.Expenses = f.Expenses.Add(value)
	case model.FirmFieldRevenue:
		f.Revenue = f.Revenue.Add(value)
	case model.FirmFieldLiabilities:
		f.Liabilities = f.Liabilities.Add(value)
	}
	f.ProfitLoss = f.Revenue.Sub(f.Expenses)
	r.firms[firmID] = f
	return nil
}

func (r *fakeRepo) InsertShareholder(_ context.Context, firmID int64, sh model.NewShareholder) (int64, error) {
	for _, existing := range r.shareholders {
		if existing.FirmID == firmID && existing.Email == sh.Email {
			return 0, repository.ErrAlreadyExists
		}
	}
	id := r.id()
	r.shareholders[id] = model.Shareholder{
		ID:         id,
		FirmID:     firmID,
		Name:       sh.Name,
		Email:      sh.Email,
		Ownership:  sh.Ownership,
		Investment: sh.Investment,
		Status:     model.ShareholderActive,
	}
	return id, nil
}

func (r *fakeRepo) GetShareholder(_ context.Context, firmID, shareholderID int64) (model.Shareholder, error) {
	sh, ok := r.shareholders[shareholderID]
	if !ok || sh.FirmID != firmID {
		return model.Shareholder{}, repository.ErrNotFound
	}
	return sh, nil
}

func (r *fakeRepo) GetShareholders(_ context.Context, firmID int64) ([]model.Shareholder, error) {
	var res []model.Shareholder
	for _, sh := range r.shareholders {
		if sh.FirmID == firmID {
			res = append(res, sh)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *fakeRepo) GetTotalOwnership(_ context.Context, firmID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, sh := range r.shareholders {
		if sh.FirmID == firmID && sh.Status == model.ShareholderActive {
			total = total.Add(sh.Ownership)
		}
	}
	return total, nil
}

func (r *fakeRepo) DeleteShareholder(_ context.Context, firmID, shareholderID int64) error {
	if err := r.fail["DeleteShareholder"]; err != nil {
		return err
	}
	sh, ok := r.shareholders[shareholderID]
	if !ok || sh.FirmID != firmID {
		return repository.ErrNoRowsAffected
	}
	delete(r.shareholders, shareholderID)
	return nil
}

func (r *fakeRepo) GetPosition(_ context.Context, firmID int64, ticker string) (model.Position, bool, error) {
	for _, p := range r.positions {
		if p.FirmID == firmID && p.Ticker == ticker {
			return p, true, nil
		}
	}
	return model.Position{}, false, nil
}

func (r *fakeRepo) GetPositions(_ context.Context, firmID int64, activeOnly bool) ([]model.Position, error) {
	var res []model.Position
	for _, p := range r.positions {
		if p.FirmID == firmID && (!activeOnly || p.Active()) {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Ticker < res[j].Ticker })
	return res, nil
}

func (r *fakeRepo) InsertPosition(_ context.Context, pos model.Position) (int64, error) {
	for _, p := range r.positions {
		if p.FirmID == pos.FirmID && p.Ticker == pos.Ticker {
			return 0, repository.ErrAlreadyExists
		}
	}
	pos.ID = r.id()
	r.positions[pos.ID] = pos
	return pos.ID, nil
}

func (r *fakeRepo) UpdatePosition(_ context.Context, pos model.Position) error {
	if err := r.fail["UpdatePosition"]; err != nil {
		return err
	}
	existing, ok := r.positions[pos.ID]
	if !ok || existing.FirmID != pos.FirmID {
		return repository.ErrNoRowsAffected
	}
	existing.TotalShares = pos.TotalShares
	existing.TotalInvested = pos.TotalInvested
	existing.AveragePurchasePrice = pos.AveragePurchasePrice
	existing.RealizedProfitLoss = pos.RealizedProfitLoss
	r.positions[pos.ID] = existing
	return nil
}

func (r *fakeRepo) InsertTransaction(_ context.Context, tx model.Transaction) (int64, error) {
	tx.ID = r.id()
	r.transactions[tx.ID] = tx
	return tx.ID, nil
}

func (r *fakeRepo) UpdateSellRealization(_ context.Context, transactionID int64, realization model.SellRealization) error {
	tx, ok := r.transactions[transactionID]
	if !ok || tx.Type != model.Sell {
		return repository.ErrNoRowsAffected
	}
	tx.CostBasis = decimal.NewNullDecimal(realization.CostBasis)
	tx.RealizedProfitLoss = decimal.NewNullDecimal(realization.RealizedProfitLoss)
	tx.PortionOfPosition = decimal.NewNullDecimal(realization.PortionOfPosition)
	if tx.Notes != "" {
		tx.Notes += "\n"
	}
	tx.Notes += realization.Notes
	r.transactions[transactionID] = tx
	return nil
}

func (r *fakeRepo) GetTransactions(_ context.Context, firmID int64, ticker string) ([]model.Transaction, error) {
	var res []model.Transaction
	for _, tx := range r.transactions {
		if tx.FirmID == firmID && (ticker == "" || tx.Ticker == ticker) {
			res = append(res, tx)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.messages = append(n.messages, text)
	return nil
}
