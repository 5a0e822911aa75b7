package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// relationColumn maps the caller's role to the contracts column that ties the
// caller to a contract.
func relationColumn(role model.Role) (string, error) {
	switch role {
	case model.RoleClient:
		return "client_id", nil
	case model.RoleContractor:
		return "contractor_id", nil
	default:
		return "", fmt.Errorf("unsupported profile role %q", role)
	}
}

func (r *ContractRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ContractRepository) GetContract(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Contract, error) {
	column, err := relationColumn(principal.Role)
	if err != nil {
		return nil, err
	}

	var contract model.Contract
	err = r.db.WithContext(ctx).
		Where("id = ?", id).
		Where(column+" = ?", principal.ProfileID).
		Take(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) ListActiveContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	column, err := relationColumn(principal.Role)
	if err != nil {
		return nil, err
	}

	contracts := []model.Contract{}
	err = r.db.WithContext(ctx).
		Where(column+" = ?", principal.ProfileID).
		Where("status <> ?", model.ContractStatusTerminated).
		Order("created_at ASC").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	column, err := relationColumn(principal.Role)
	if err != nil {
		return nil, err
	}

	jobs := []model.Job{}
	err = r.db.WithContext(ctx).
		Select("jobs.*").
		Joins("JOIN contracts ON contracts.id = jobs.contract_id").
		Where("jobs.paid IS NULL").
		Where("contracts.status = ?", model.ContractStatusInProgress).
		Where("contracts."+column+" = ?", principal.ProfileID).
		Order("jobs.created_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
