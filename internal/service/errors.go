package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrInvalidInput)
	ErrInternal          = errors.New("internal error")
)

// DepositLimitError reports a deposit above a quarter of the unpaid total.
type DepositLimitError struct {
	Amount      decimal.Decimal
	UnpaidTotal decimal.Decimal
}

func (e *DepositLimitError) Error() string {
	return fmt.Sprintf("deposit %s exceeds 25%% of unpaid total %s", e.Amount, e.UnpaidTotal)
}

func (e *DepositLimitError) Unwrap() error {
	return ErrInvalidInput
}

func internal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInternal, err)
}
