package service

import "errors"

var (
	ErrNotFound             = errors.New("error not found")
	ErrInsufficientHoldings = errors.New("error insufficient holdings")
	ErrInsufficientFunds    = errors.New("error insufficient funds")
	ErrInvalidInput         = errors.New("error invalid input")
	ErrDataUnavailable      = errors.New("error data unavailable")
	ErrPersistence          = errors.New("error persistence")
)
