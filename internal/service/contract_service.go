package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/model"
)

type ContractStore interface {
	GetContract(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Contract, error)
	ListActiveContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error)
	ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error)
}

type ContractService struct {
	repo ContractStore
}

func NewContractService(repo ContractStore) *ContractService {
	return &ContractService{repo: repo}
}

func (s *ContractService) GetContract(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Contract, error) {
	contract, err := s.repo.GetContract(ctx, principal, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal(err)
	}
	return contract, nil
}

func (s *ContractService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	contracts, err := s.repo.ListActiveContracts(ctx, principal)
	if err != nil {
		return nil, internal(err)
	}
	return contracts, nil
}

func (s *ContractService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	jobs, err := s.repo.ListUnpaidJobs(ctx, principal)
	if err != nil {
		return nil, internal(err)
	}
	return jobs, nil
}
