package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/marketplace-service/internal/model"
)

var ErrBalanceTooLow = errors.New("balance too low")

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LedgerTx is the unit of work handed to WithinTransaction callbacks. It is
// valid only until the callback returns.
type LedgerTx interface {
	LockUnpaidJob(ctx context.Context, jobID uuid.UUID) (*model.Job, error)
	LockClientForContract(ctx context.Context, clientID, contractID uuid.UUID) (*model.Profile, error)
	FindContractorForContract(ctx context.Context, contractID uuid.UUID) (*model.Profile, error)
	MarkJobPaid(ctx context.Context, jobID uuid.UUID, paidAt time.Time) error
	DecrementBalance(ctx context.Context, profileID uuid.UUID, amount decimal.Decimal) error
	IncrementBalance(ctx context.Context, profileID uuid.UUID, amount decimal.Decimal) error
}

type ledgerTx struct {
	tx *gorm.DB
}

// WithinTransaction commits when fn returns nil and rolls back otherwise,
// including when ctx expires before commit.
func (r *LedgerRepository) WithinTransaction(ctx context.Context, fn func(tx LedgerTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerTx{tx: tx})
	})
}

func (t *ledgerTx) LockUnpaidJob(ctx context.Context, jobID uuid.UUID) (*model.Job, error) {
	var job model.Job
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND paid IS NULL", jobID).
		Take(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// LockClientForContract locks the caller's profile row only if the caller is
// the client of the contract.
func (t *ledgerTx) LockClientForContract(ctx context.Context, clientID, contractID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := t.tx.WithContext(ctx).
		Model(&model.Profile{}).
		Select("profiles.*").
		Joins("JOIN contracts ON contracts.client_id = profiles.id AND contracts.id = ?", contractID).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "profiles"}}).
		Where("profiles.id = ?", clientID).
		Take(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindContractorForContract reads without a lock; concurrent credits to the
// same contractor serialize through IncrementBalance.
func (t *ledgerTx) FindContractorForContract(ctx context.Context, contractID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := t.tx.WithContext(ctx).
		Model(&model.Profile{}).
		Select("profiles.*").
		Joins("JOIN contracts ON contracts.contractor_id = profiles.id AND contracts.id = ?", contractID).
		Take(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (t *ledgerTx) MarkJobPaid(ctx context.Context, jobID uuid.UUID, paidAt time.Time) error {
	result := t.tx.WithContext(ctx).Exec(`
		UPDATE jobs
		SET paid = ?, payment_date = ?, updated_at = ?
		WHERE id = ? AND paid IS NULL
	`, true, paidAt, paidAt, jobID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *ledgerTx) DecrementBalance(ctx context.Context, profileID uuid.UUID, amount decimal.Decimal) error {
	result := t.tx.WithContext(ctx).Exec(`
		UPDATE profiles
		SET balance = balance - ?, updated_at = ?
		WHERE id = ? AND balance >= ?
	`, amount, time.Now().UTC(), profileID, amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBalanceTooLow
	}
	return nil
}

func (t *ledgerTx) IncrementBalance(ctx context.Context, profileID uuid.UUID, amount decimal.Decimal) error {
	return incrementBalance(t.tx.WithContext(ctx), profileID, amount)
}

func (r *LedgerRepository) IncrementBalance(ctx context.Context, profileID uuid.UUID, amount decimal.Decimal) error {
	return incrementBalance(r.db.WithContext(ctx), profileID, amount)
}

func incrementBalance(db *gorm.DB, profileID uuid.UUID, amount decimal.Decimal) error {
	result := db.Exec(`
		UPDATE profiles
		SET balance = balance + ?, updated_at = ?
		WHERE id = ?
	`, amount, time.Now().UTC(), profileID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UnpaidTotalForClient sums prices of the client's unpaid jobs. found is false
// when the client has no unpaid jobs at all.
func (r *LedgerRepository) UnpaidTotalForClient(ctx context.Context, clientID uuid.UUID) (decimal.Decimal, bool, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.client_id = ?
			AND j.paid IS NULL
	`, clientID).Scan(&row).Error
	if err != nil {
		return decimal.Zero, false, err
	}
	if !row.Total.Valid {
		return decimal.Zero, false, nil
	}
	return row.Total.Decimal, true, nil
}
