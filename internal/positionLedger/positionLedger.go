// Package positionLedger holds the pure accounting rules that move a single
// ticker's position under buy and sell transactions. Nothing here touches
// storage, the caller persists the returned Change inside one unit of work.
package positionLedger

import (
	"fmt"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/model"
	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/KotFed0t/bearhouse_ledger/internal/validation"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type FeePolicy string

const (
	// FeePolicyRecord stores fees on the transaction but keeps the cash delta gross.
	FeePolicyRecord FeePolicy = "record"
	// FeePolicyNet makes fees reduce the cash delta of both buys and sells.
	FeePolicyNet FeePolicy = "net"
)

func ParseFeePolicy(s string) (FeePolicy, error) {
	switch FeePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case FeePolicyRecord, "":
		return FeePolicyRecord, nil
	case FeePolicyNet:
		return FeePolicyNet, nil
	default:
		return "", fmt.Errorf("%w: unknown fee policy %q", service.ErrInvalidInput, s)
	}
}

type Options struct {
	FeePolicy     FeePolicy
	SellTolerance decimal.Decimal
}

// Change is the outcome of applying one transaction to a position.
type Change struct {
	Position model.Position
	// Shares actually moved, a sell within tolerance of the holding closes exactly what was held.
	Shares      decimal.Decimal
	Created     bool
	Retired     bool
	CashDelta   decimal.Decimal
	Realization *model.SellRealization
}

// Normalize validates a request and upper-cases its ticker.
func Normalize(req model.TransactionRequest) (model.TransactionRequest, error) {
	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if err := validation.Struct(req); err != nil {
		return req, fmt.Errorf("transaction %s %s: %w", req.Type, req.Ticker, err)
	}
	return req, nil
}

// CashDelta is the signed change of firm cash caused by the request.
func CashDelta(req model.TransactionRequest, policy FeePolicy) decimal.Decimal {
	gross := req.Shares.Mul(req.PricePerShare)
	fees := decimal.Zero
	if policy == FeePolicyNet && req.Fees.Valid {
		fees = req.Fees.Decimal
	}
	if req.Type == model.Buy {
		return gross.Add(fees).Neg()
	}
	return gross.Sub(fees)
}

// Apply computes the new state of existing (nil when the firm never held the
// ticker) after req. req must already be normalized.
func Apply(existing *model.Position, req model.TransactionRequest, opts Options) (Change, error) {
	switch req.Type {
	case model.Buy:
		return applyBuy(existing, req, opts), nil
	case model.Sell:
		return applySell(existing, req, opts)
	default:
		return Change{}, fmt.Errorf("%w: unknown transaction type %q", service.ErrInvalidInput, req.Type)
	}
}

func applyBuy(existing *model.Position, req model.TransactionRequest, opts Options) Change {
	value := req.Shares.Mul(req.PricePerShare)
	price := decimal.NewNullDecimal(req.PricePerShare)

	if existing == nil {
		return Change{
			Position: model.Position{
				Ticker:               req.Ticker,
				TotalShares:          req.Shares,
				TotalInvested:        value,
				AveragePurchasePrice: req.PricePerShare,
				CurrentPrice:         price,
				RealizedProfitLoss:   decimal.Zero,
			},
			Created:   true,
			Shares:    req.Shares,
			CashDelta: CashDelta(req, opts.FeePolicy),
		}
	}

	pos := *existing
	if !pos.Active() {
		// a retired position restarts its cost basis from scratch
		pos.TotalShares = decimal.Zero
		pos.TotalInvested = decimal.Zero
	}
	pos.TotalInvested = pos.TotalInvested.Add(value)
	pos.TotalShares = pos.TotalShares.Add(req.Shares)
	pos.AveragePurchasePrice = pos.TotalInvested.Div(pos.TotalShares)
	pos.CurrentPrice = price

	return Change{Position: pos, Shares: req.Shares, CashDelta: CashDelta(req, opts.FeePolicy)}
}

func applySell(existing *model.Position, req model.TransactionRequest, opts Options) (Change, error) {
	if existing == nil || !existing.Active() {
		return Change{}, fmt.Errorf("%w: sell %s %s, nothing held", service.ErrInsufficientHoldings, req.Shares, req.Ticker)
	}

	pos := *existing
	held := pos.TotalShares
	if req.Shares.GreaterThan(held.Add(opts.SellTolerance)) {
		return Change{}, fmt.Errorf("%w: sell %s %s, only %s held", service.ErrInsufficientHoldings, req.Shares, req.Ticker, held)
	}

	sold := req.Shares
	closing := held.Sub(sold).Abs().LessThanOrEqual(opts.SellTolerance)
	if closing {
		sold = held
	}

	costBasis := pos.AveragePurchasePrice
	realized := req.PricePerShare.Sub(costBasis).Mul(sold)
	portion := sold.Mul(hundred).Div(held)

	if closing {
		pos.TotalShares = decimal.Zero
		pos.TotalInvested = decimal.Zero
		pos.AveragePurchasePrice = decimal.Zero
	} else {
		// proportional reduction keeps invested/shares equal to the average cost
		pos.TotalInvested = pos.TotalInvested.Sub(pos.TotalInvested.Mul(sold).Div(held))
		pos.TotalShares = held.Sub(sold)
	}
	pos.RealizedProfitLoss = pos.RealizedProfitLoss.Add(realized)
	pos.CurrentPrice = decimal.NewNullDecimal(req.PricePerShare)

	req.Shares = sold
	return Change{
		Position:  pos,
		Retired:   closing,
		Shares:    sold,
		CashDelta: CashDelta(req, opts.FeePolicy),
		Realization: &model.SellRealization{
			CostBasis:          costBasis,
			RealizedProfitLoss: realized,
			PortionOfPosition:  portion,
			Notes:              fmt.Sprintf("Selling %s%% of position", portion.StringFixed(2)),
		},
	}, nil
}
