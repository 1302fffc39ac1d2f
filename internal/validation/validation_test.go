package validation

import (
	"testing"

	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string              `validate:"required"`
	Email  string              `validate:"required,email"`
	Share  decimal.Decimal     `validate:"dgt=0,dlte=100"`
	Amount decimal.Decimal     `validate:"dgte=0"`
	Fees   decimal.NullDecimal `validate:"omitempty,dgte=0"`
}

func valid() sample {
	return sample{
		Name:   "Ann",
		Email:  "ann@example.com",
		Share:  decimal.NewFromInt(100),
		Amount: decimal.Zero,
	}
}

func TestStruct(t *testing.T) {
	require.NoError(t, Struct(valid()))

	withFees := valid()
	withFees.Fees = decimal.NewNullDecimal(decimal.RequireFromString("0.5"))
	require.NoError(t, Struct(withFees))

	tests := []struct {
		name   string
		mutate func(s *sample)
		field  string
	}{
		{name: "empty name", mutate: func(s *sample) { s.Name = "" }, field: "Name"},
		{name: "bad email", mutate: func(s *sample) { s.Email = "nope" }, field: "Email"},
		{name: "zero share", mutate: func(s *sample) { s.Share = decimal.Zero }, field: "Share"},
		{name: "share just above bound", mutate: func(s *sample) { s.Share = decimal.RequireFromString("100.000000000000000001") }, field: "Share"},
		{name: "negative amount", mutate: func(s *sample) { s.Amount = decimal.NewFromInt(-1) }, field: "Amount"},
		{name: "negative fees", mutate: func(s *sample) { s.Fees = decimal.NewNullDecimal(decimal.NewFromInt(-1)) }, field: "Fees"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := Struct(s)
			assert.ErrorIs(t, err, service.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
