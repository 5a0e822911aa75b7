package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleContractor:
		return true
	default:
		return false
	}
}

type Profile struct {
	ID         uuid.UUID       `json:"id"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Profession string          `json:"profession"`
	Balance    decimal.Decimal `json:"balance"`
	Role       Role            `json:"type"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Principal is the caller identity resolved from the access token and the
// stored profile. It is trusted as-is by the services.
type Principal struct {
	ProfileID uuid.UUID
	Role      Role
}

func (p Principal) IsClient() bool {
	return p.Role == RoleClient
}
