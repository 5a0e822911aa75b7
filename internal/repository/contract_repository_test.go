package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/marketplace-service/internal/db/dbtest"
	"github.com/nurpe/marketplace-service/internal/model"
)

func TestContractRepositoryGetContractByRelation(t *testing.T) {
	database := dbtest.Open(t)
	client := dbtest.CreateProfile(t, database, model.RoleClient, "", "0")
	contractor := dbtest.CreateProfile(t, database, model.RoleContractor, "Fighter", "0")
	outsider := dbtest.CreateProfile(t, database, model.RoleContractor, "Wizard", "0")
	contract := dbtest.CreateContract(t, database, client, contractor, model.ContractStatusNew)

	repo := NewContractRepository(database)
	ctx := context.Background()

	for _, principal := range []model.Principal{
		{ProfileID: client.ID, Role: model.RoleClient},
		{ProfileID: contractor.ID, Role: model.RoleContractor},
	} {
		got, err := repo.GetContract(ctx, principal, contract.ID)
		if err != nil {
			t.Fatalf("get contract as %s: %v", principal.Role, err)
		}
		if got.ID != contract.ID {
			t.Fatalf("unexpected contract: %s", got.ID)
		}
	}

	_, err := repo.GetContract(ctx, model.Principal{ProfileID: outsider.ID, Role: model.RoleContractor}, contract.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("outsider must not see contract, got %v", err)
	}
	// The role decides the column: a client id presented as contractor does not match.
	_, err = repo.GetContract(ctx, model.Principal{ProfileID: client.ID, Role: model.RoleContractor}, contract.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("mismatched role must not see contract, got %v", err)
	}
	_, err = repo.GetContract(ctx, model.Principal{ProfileID: client.ID, Role: "admin"}, contract.ID)
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("unknown role must fail loudly, got %v", err)
	}
}

func TestContractRepositoryListActiveContracts(t *testing.T) {
	database := dbtest.Open(t)
	client := dbtest.CreateProfile(t, database, model.RoleClient, "", "0")
	contractor := dbtest.CreateProfile(t, database, model.RoleContractor, "Fighter", "0")
	dbtest.CreateContract(t, database, client, contractor, model.ContractStatusNew)
	dbtest.CreateContract(t, database, client, contractor, model.ContractStatusInProgress)
	dbtest.CreateContract(t, database, client, contractor, model.ContractStatusTerminated)

	repo := NewContractRepository(database)
	contracts, err := repo.ListActiveContracts(context.Background(), model.Principal{ProfileID: client.ID, Role: model.RoleClient})
	if err != nil {
		t.Fatalf("list contracts: %v", err)
	}
	if len(contracts) != 2 {
		t.Fatalf("expected 2 active contracts, got %d", len(contracts))
	}
	for _, contract := range contracts {
		if contract.Status == model.ContractStatusTerminated {
			t.Fatalf("terminated contract returned: %s", contract.ID)
		}
	}

	none, err := repo.ListActiveContracts(context.Background(), model.Principal{ProfileID: uuid.New(), Role: model.RoleClient})
	if err != nil {
		t.Fatalf("list contracts: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", none)
	}
}

func TestContractRepositoryListUnpaidJobs(t *testing.T) {
	database := dbtest.Open(t)
	client := dbtest.CreateProfile(t, database, model.RoleClient, "", "0")
	contractor := dbtest.CreateProfile(t, database, model.RoleContractor, "Fighter", "0")
	active := dbtest.CreateContract(t, database, client, contractor, model.ContractStatusInProgress)
	fresh := dbtest.CreateContract(t, database, client, contractor, model.ContractStatusNew)
	want := dbtest.CreateJob(t, database, active, "20")
	dbtest.CreateJob(t, database, fresh, "30")

	repo := NewContractRepository(database)
	for _, principal := range []model.Principal{
		{ProfileID: client.ID, Role: model.RoleClient},
		{ProfileID: contractor.ID, Role: model.RoleContractor},
	} {
		jobs, err := repo.ListUnpaidJobs(context.Background(), principal)
		if err != nil {
			t.Fatalf("list unpaid jobs: %v", err)
		}
		if len(jobs) != 1 || jobs[0].ID != want.ID {
			t.Fatalf("unexpected unpaid jobs for %s: %+v", principal.Role, jobs)
		}
	}
}

func TestContractRepositoryGetProfile(t *testing.T) {
	database := dbtest.Open(t)
	client := dbtest.CreateProfile(t, database, model.RoleClient, "", "12")

	repo := NewContractRepository(database)
	got, err := repo.GetProfile(context.Background(), client.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Role != model.RoleClient || got.FullName() != client.FirstName+" Last" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if _, err := repo.GetProfile(context.Background(), uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
