package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/types"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "talentmarket", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
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
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	// Only one PENDING request per (org, subject, scope class). The partial
	// index is what actually holds the invariant under concurrent inserts;
	// the service-level pre-check only produces a friendlier error.
	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_access_pending_unique
		ON "access_request" ("requesting_org_id", "subject_employee_id", "scope_class")
		WHERE "status" = 'PENDING'
	`).Error; err != nil {
		return fmt.Errorf("failed to create idx_access_pending_unique: %w", err)
	}

	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
