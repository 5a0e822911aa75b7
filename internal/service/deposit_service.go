package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/model"
)

// Balances are stored as NUMERIC(12,2).
const maxMoneyScale int32 = 2

var (
	depositCeilingFactor = decimal.NewFromInt(4)
	moneyUpperBound      = decimal.New(1, 10)
)

type DepositService struct {
	ledger  LedgerStore
	timeout time.Duration
	log     zerolog.Logger
}

func NewDepositService(ledger LedgerStore, timeout time.Duration, log zerolog.Logger) *DepositService {
	return &DepositService{ledger: ledger, timeout: timeout, log: log}
}

// Deposit credits the calling client, provided the amount is at most a
// quarter of the client's unpaid total. The total is read without locking the
// caller, so a concurrent payment may shrink it before the credit lands.
func (s *DepositService) Deposit(ctx context.Context, principal model.Principal, amount decimal.Decimal) (*model.DepositResult, error) {
	if !principal.IsClient() {
		return nil, ErrForbidden
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if !amount.Equal(amount.Truncate(maxMoneyScale)) {
		return nil, fmt.Errorf("%w: amount must have at most %d decimal places", ErrInvalidInput, maxMoneyScale)
	}
	if amount.GreaterThanOrEqual(moneyUpperBound) {
		return nil, fmt.Errorf("%w: amount must be below %s", ErrInvalidInput, moneyUpperBound.String())
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	unpaidTotal, found, err := s.ledger.UnpaidTotalForClient(ctx, principal.ProfileID)
	if err != nil {
		return nil, internal(err)
	}
	if !found || unpaidTotal.IsZero() {
		return nil, fmt.Errorf("%w: no unpaid jobs", ErrInvalidInput)
	}
	if unpaidTotal.LessThan(amount.Mul(depositCeilingFactor)) {
		return nil, &DepositLimitError{Amount: amount, UnpaidTotal: unpaidTotal}
	}

	if err := s.ledger.IncrementBalance(ctx, principal.ProfileID, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal(err)
	}

	s.log.Info().
		Str("client_id", principal.ProfileID.String()).
		Str("amount", amount.String()).
		Str("unpaid_total", unpaidTotal.String()).
		Msg("balance deposited")
	return &model.DepositResult{Amount: amount, UnpaidTotal: unpaidTotal}, nil
}
