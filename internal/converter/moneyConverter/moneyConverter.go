package moneyConverter

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Display formats amount in currency, rounded to the currency's minor unit.
// Unknown currency codes fall back to two decimals followed by the code.
func Display(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}

	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return money.New(minor.IntPart(), cur.Code).Display()
}

// Converter binds Display to one currency.
type Converter struct {
	currency string
}

func New(currency string) *Converter {
	return &Converter{currency: currency}
}

func (c *Converter) Display(amount decimal.Decimal) string {
	return Display(amount, c.currency)
}

func (c *Converter) DisplayNull(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "-"
	}
	return Display(amount.Decimal, c.currency)
}
