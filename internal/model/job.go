package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job is billed once. Paid stays NULL until payment and is never stored as false.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Paid        *bool           `json:"paid"`
	PaymentDate *time.Time      `json:"paymentDate"`
	ContractID  uuid.UUID       `json:"contractId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}
