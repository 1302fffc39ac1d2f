// Package validation checks request structs through `validate` tags. Decimal
// fields are compared exactly with the dgt, dgte and dlte tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/KotFed0t/bearhouse_ledger/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})

	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("dgt", compare(func(c int) bool { return c > 0 }))
	_ = v.RegisterValidation("dgte", compare(func(c int) bool { return c >= 0 }))
	_ = v.RegisterValidation("dlte", compare(func(c int) bool { return c <= 0 }))
	return v
}

// decimalValue hands decimals to the validator as strings, a null decimal as nil so omitempty skips it.
func decimalValue(field reflect.Value) any {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case decimal.NullDecimal:
		if !d.Valid {
			return nil
		}
		return d.Decimal.String()
	}
	return nil
}

func compare(ok func(cmp int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(value.Cmp(bound))
	}
}

// Struct validates s and wraps any failure into service.ErrInvalidInput
// listing every failed field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := fmt.Sprintf("%s %v failed %s", fe.Field(), fe.Value(), fe.Tag())
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", service.ErrInvalidInput, strings.Join(msgs, ", "))
}
