package app

import (
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/repos"
)

type Repos struct {
	Organization  repos.OrganizationRepo
	Employee      repos.EmployeeRepo
	User          repos.UserRepo
	Ledger        repos.LedgerRepo
	Unlock        repos.UnlockRepo
	PriceConfig   repos.PriceConfigRepo
	AccessRequest repos.AccessRequestRepo
	ProfileRecord repos.ProfileRecordRepo
	Evaluation    repos.EvaluationRepo
	Comparison    repos.ComparisonRepo
	Notification  repos.NotificationRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Organization:  repos.NewOrganizationRepo(db, log),
		Employee:      repos.NewEmployeeRepo(db, log),
		User:          repos.NewUserRepo(db, log),
		Ledger:        repos.NewLedgerRepo(db, log),
		Unlock:        repos.NewUnlockRepo(db, log),
		PriceConfig:   repos.NewPriceConfigRepo(db, log),
		AccessRequest: repos.NewAccessRequestRepo(db, log),
		ProfileRecord: repos.NewProfileRecordRepo(db, log),
		Evaluation:    repos.NewEvaluationRepo(db, log),
		Comparison:    repos.NewComparisonRepo(db, log),
		Notification:  repos.NewNotificationRepo(db, log),
	}
}
