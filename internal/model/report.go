package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProfessionTotal struct {
	Profession string          `json:"profession"`
	Total      decimal.Decimal `json:"total"`
}

type ClientTotal struct {
	ID       uuid.UUID       `json:"id"`
	FullName string          `json:"fullName"`
	Paid     decimal.Decimal `json:"paid"`
}

type DepositResult struct {
	Amount      decimal.Decimal `json:"amount"`
	UnpaidTotal decimal.Decimal `json:"unpaidTotal"`
}

type ClientsReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	BestProfession *ProfessionTotal
	Clients        []ClientTotal
}
