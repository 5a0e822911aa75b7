package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/model"
	"github.com/nurpe/marketplace-service/internal/repository"
)

type LedgerStore interface {
	WithinTransaction(ctx context.Context, fn func(tx repository.LedgerTx) error) error
	IncrementBalance(ctx context.Context, profileID uuid.UUID, amount decimal.Decimal) error
	UnpaidTotalForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, bool, error)
}

type PaymentService struct {
	ledger    LedgerStore
	txTimeout time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewPaymentService(ledger LedgerStore, txTimeout time.Duration, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		ledger:    ledger,
		txTimeout: txTimeout,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// Pay moves the job price from the calling client to the contract's
// contractor and marks the job paid, all in one transaction. The contract
// status is not checked.
func (s *PaymentService) Pay(ctx context.Context, principal model.Principal, jobID uuid.UUID) error {
	if !principal.IsClient() {
		return ErrForbidden
	}

	ctx, cancel := withTimeout(ctx, s.txTimeout)
	defer cancel()

	var price decimal.Decimal
	var contractorID uuid.UUID
	err := s.ledger.WithinTransaction(ctx, func(tx repository.LedgerTx) error {
		job, err := tx.LockUnpaidJob(ctx, jobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return internal(err)
		}

		client, err := tx.LockClientForContract(ctx, principal.ProfileID, job.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrForbidden
			}
			return internal(err)
		}

		contractor, err := tx.FindContractorForContract(ctx, job.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal(errors.New("contract has no contractor profile"))
			}
			return internal(err)
		}

		if client.Balance.LessThan(job.Price) {
			return ErrInsufficientFunds
		}

		if err := tx.MarkJobPaid(ctx, job.ID, s.now()); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return internal(err)
		}
		if err := tx.DecrementBalance(ctx, client.ID, job.Price); err != nil {
			if errors.Is(err, repository.ErrBalanceTooLow) {
				return ErrInsufficientFunds
			}
			return internal(err)
		}
		if err := tx.IncrementBalance(ctx, contractor.ID, job.Price); err != nil {
			return internal(err)
		}

		price = job.Price
		contractorID = contractor.ID
		return nil
	})
	if err != nil {
		return classify(err)
	}

	s.log.Info().
		Str("job_id", jobID.String()).
		Str("client_id", principal.ProfileID.String()).
		Str("contractor_id", contractorID.String()).
		Str("amount", price.String()).
		Msg("job paid")
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classify keeps domain errors intact and turns everything else, including
// commit failures and expired deadlines, into ErrInternal.
func classify(err error) error {
	switch {
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInternal):
		return err
	default:
		return internal(err)
	}
}
