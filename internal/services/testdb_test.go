package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	err = db.AutoMigrate(
		&types.Organization{},
		&types.OrganizationBalance{},
		&types.User{},
		&types.Employee{},
		&types.LedgerEntry{},
		&types.UnlockRecord{},
		&types.PriceConfig{},
		&types.AccessRequest{},
		&types.ProfileRecord{},
		&types.Evaluation{},
		&types.ComparisonRecord{},
		&types.Notification{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_access_pending_unique
		ON "access_request" ("requesting_org_id", "subject_employee_id", "scope_class")
		WHERE "status" = 'PENDING'
	`).Error
	if err != nil {
		t.Fatalf("create partial index: %v", err)
	}
	return db
}

type testEnv struct {
	db    *gorm.DB
	log   *logger.Logger
	repos struct {
		org        repos.OrganizationRepo
		employee   repos.EmployeeRepo
		user       repos.UserRepo
		ledger     repos.LedgerRepo
		unlock     repos.UnlockRepo
		price      repos.PriceConfigRepo
		access     repos.AccessRequestRepo
		profile    repos.ProfileRecordRepo
		evaluation repos.EvaluationRepo
		comparison repos.ComparisonRepo
		notif      repos.NotificationRepo
	}
	ledger     LedgerService
	pricing    PricingService
	unlock     UnlockService
	visibility VisibilityService
	access     AccessRequestService
	directory  DirectoryService
	notifier   Notifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := logger.NewNop()

	env := &testEnv{db: db, log: log}
	env.repos.org = repos.NewOrganizationRepo(db, log)
	env.repos.employee = repos.NewEmployeeRepo(db, log)
	env.repos.user = repos.NewUserRepo(db, log)
	env.repos.ledger = repos.NewLedgerRepo(db, log)
	env.repos.unlock = repos.NewUnlockRepo(db, log)
	env.repos.price = repos.NewPriceConfigRepo(db, log)
	env.repos.access = repos.NewAccessRequestRepo(db, log)
	env.repos.profile = repos.NewProfileRecordRepo(db, log)
	env.repos.evaluation = repos.NewEvaluationRepo(db, log)
	env.repos.comparison = repos.NewComparisonRepo(db, log)
	env.repos.notif = repos.NewNotificationRepo(db, log)

	env.notifier = NewNotifier(db, log, env.repos.notif)
	env.pricing = NewPricingService(db, log, env.repos.price, nil)
	env.ledger = NewLedgerService(db, log, env.repos.ledger, env.repos.org, env.repos.employee)
	env.unlock = NewUnlockService(db, log, env.repos.unlock, env.repos.evaluation, env.repos.employee, env.repos.ledger, env.pricing)
	env.visibility = NewVisibilityService(db, log, env.repos.profile, env.repos.employee, env.repos.access)
	env.access = NewAccessRequestService(db, log, env.repos.access, env.repos.employee, env.repos.profile, env.repos.user, env.notifier)
	env.directory = NewDirectoryService(db, log, env.repos.org, env.repos.employee, env.repos.evaluation, env.repos.profile)
	return env
}

func (e *testEnv) createOrg(t *testing.T, name string) *types.Organization {
	t.Helper()
	org, err := e.directory.CreateOrganization(context.Background(), name, "testing")
	if err != nil {
		t.Fatalf("create org %s: %v", name, err)
	}
	return org
}

func (e *testEnv) createEmployee(t *testing.T, orgID *uuid.UUID, first, last string) *types.Employee {
	t.Helper()
	emp, err := e.directory.CreateEmployee(context.Background(), &types.Employee{
		OrganizationID: orgID,
		FirstName:      first,
		LastName:       last,
		Phone:          "+100000000",
		Email:          first + "@example.com",
	})
	if err != nil {
		t.Fatalf("create employee %s: %v", first, err)
	}
	return emp
}

func (e *testEnv) createEvaluation(t *testing.T, subjectID, orgID uuid.UUID, kind types.EvaluationKind, score int) *types.Evaluation {
	t.Helper()
	eval, err := e.directory.CreateEvaluation(context.Background(), CreateEvaluationInput{
		SubjectID:      subjectID,
		OrganizationID: orgID,
		Kind:           string(kind),
		Score:          score,
		Content:        "solid work",
	})
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}
	// Creation-order ties break the free-quota ordinal; space the rows out.
	time.Sleep(2 * time.Millisecond)
	return eval
}

func (e *testEnv) createUser(t *testing.T, role types.Role, orgID, employeeID *uuid.UUID) *types.User {
	t.Helper()
	user := &types.User{
		ID:             uuid.New(),
		Email:          uuid.NewString() + "@example.com",
		Password:       "unused",
		Role:           role,
		OrganizationID: orgID,
		EmployeeID:     employeeID,
	}
	if _, err := e.repos.user.Create(context.Background(), nil, []*types.User{user}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) fund(t *testing.T, orgID uuid.UUID, amount int64) {
	t.Helper()
	if _, err := e.ledger.Credit(context.Background(), nil, orgID, amount, types.ReasonEvaluationSubmitted, nil, "test funding"); err != nil {
		t.Fatalf("fund org: %v", err)
	}
}

func (e *testEnv) balance(t *testing.T, orgID uuid.UUID) int64 {
	t.Helper()
	balance, err := e.ledger.BalanceOf(context.Background(), orgID)
	if err != nil {
		t.Fatalf("balance of: %v", err)
	}
	return balance
}
