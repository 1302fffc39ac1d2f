package dbModel

import (
	"time"

	"github.com/shopspring/decimal"
)

type Firm struct {
	ID          int64           `db:"firm_id"`
	Name        string          `db:"firm_name"`
	Cash        decimal.Decimal `db:"cash"`
	Assets      decimal.Decimal `db:"assets"`
	Liabilities decimal.Decimal `db:"liabilities"`
	Revenue     decimal.Decimal `db:"revenue"`
	Expenses    decimal.Decimal `db:"expenses"`
	ProfitLoss  decimal.Decimal `db:"profit_loss"`
	DtCreate    time.Time       `db:"dt_create"`
}

type Shareholder struct {
	ID         int64           `db:"shareholder_id"`
	FirmID     int64           `db:"firm_id"`
	Name       string          `db:"name"`
	Email      string          `db:"email"`
	Ownership  decimal.Decimal `db:"ownership"`
	Investment decimal.Decimal `db:"investment"`
	Status     string          `db:"status"`
	DtCreate   time.Time       `db:"dt_create"`
}

type Task struct {
	Name    string    `db:"task_name"`
	LastRun time.Time `db:"last_run"`
}
