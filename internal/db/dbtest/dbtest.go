// Package dbtest opens throwaway SQLite databases carrying the production
// schema, for tests that need a real Ledger Store.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/marketplace-service/internal/db"
	"github.com/nurpe/marketplace-service/internal/model"
)

// Open returns a migrated in-memory database. The pool holds a single
// connection, so concurrent transactions serialize the way row locks would.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.NewString())

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func Money(t testing.TB, raw string) decimal.Decimal {
	t.Helper()
	value, err := decimal.NewFromString(raw)
	if err != nil {
		t.Fatalf("parse money %q: %v", raw, err)
	}
	return value
}

func CreateProfile(t testing.TB, database *gorm.DB, role model.Role, profession, balance string) model.Profile {
	t.Helper()
	id := uuid.New()
	profile := model.Profile{
		ID:         id,
		FirstName:  "First" + id.String()[:4],
		LastName:   "Last",
		Profession: profession,
		Balance:    Money(t, balance),
		Role:       role,
	}
	if err := database.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return profile
}

func CreateContract(t testing.TB, database *gorm.DB, client, contractor model.Profile, status model.ContractStatus) model.Contract {
	t.Helper()
	contract := model.Contract{
		ID:           uuid.New(),
		Terms:        "terms",
		Status:       status,
		ClientID:     client.ID,
		ContractorID: contractor.ID,
	}
	if err := database.Create(&contract).Error; err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return contract
}

func CreateJob(t testing.TB, database *gorm.DB, contract model.Contract, price string) model.Job {
	t.Helper()
	job := model.Job{
		ID:          uuid.New(),
		Description: "work",
		Price:       Money(t, price),
		ContractID:  contract.ID,
	}
	if err := database.Create(&job).Error; err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func CreatePaidJob(t testing.TB, database *gorm.DB, contract model.Contract, price string, paidAt time.Time) model.Job {
	t.Helper()
	paid := true
	at := paidAt.UTC()
	job := model.Job{
		ID:          uuid.New(),
		Description: "work",
		Price:       Money(t, price),
		Paid:        &paid,
		PaymentDate: &at,
		ContractID:  contract.ID,
	}
	if err := database.Create(&job).Error; err != nil {
		t.Fatalf("create paid job: %v", err)
	}
	return job
}

func ReloadProfile(t testing.TB, database *gorm.DB, id uuid.UUID) model.Profile {
	t.Helper()
	var profile model.Profile
	if err := database.Where("id = ?", id).Take(&profile).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	return profile
}

func ReloadJob(t testing.TB, database *gorm.DB, id uuid.UUID) model.Job {
	t.Helper()
	var job model.Job
	if err := database.Where("id = ?", id).Take(&job).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	return job
}
