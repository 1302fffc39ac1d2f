package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShareholderStatus string

const (
	ShareholderActive    ShareholderStatus = "active"
	ShareholderWithdrawn ShareholderStatus = "withdrawn"
)

type Shareholder struct {
	ID         int64
	FirmID     int64
	Name       string
	Email      string
	Ownership  decimal.Decimal // percent of the firm, 0 < x <= 100
	Investment decimal.Decimal
	Status     ShareholderStatus
	CreatedAt  time.Time
}

type NewShareholder struct {
	Name       string          `validate:"required"`
	Email      string          `validate:"required,email"`
	Ownership  decimal.Decimal `validate:"dgt=0,dlte=100"`
	Investment decimal.Decimal `validate:"dgte=0"`
}
