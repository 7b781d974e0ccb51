package app

import (
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Directory  services.DirectoryService
	Ledger     services.LedgerService
	Pricing    services.PricingService
	Unlock     services.UnlockService
	Visibility services.VisibilityService
	Access     services.AccessRequestService
	Analysis   services.AnalysisService
	Notifier   services.Notifier
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, rdb *goredis.Client) Services {
	log.Info("Wiring services...")
	notifier := services.NewNotifier(db, log, r.Notification)
	pricing := services.NewPricingService(db, log, r.PriceConfig, rdb)
	ledger := services.NewLedgerService(db, log, r.Ledger, r.Organization, r.Employee)
	unlock := services.NewUnlockService(db, log, r.Unlock, r.Evaluation, r.Employee, r.Ledger, pricing)
	visibility := services.NewVisibilityService(db, log, r.ProfileRecord, r.Employee, r.AccessRequest)
	access := services.NewAccessRequestService(db, log, r.AccessRequest, r.Employee, r.ProfileRecord, r.User, notifier)
	analysis := services.NewAnalysisService(
		db, log,
		r.Ledger, r.Evaluation, r.Employee, r.ProfileRecord, r.Comparison,
		pricing,
		services.AnalysisConfig{Concurrency: cfg.AnalysisConcurrency, QueueSize: cfg.AnalysisQueueSize},
	)
	return Services{
		Auth:       services.NewAuthService(db, log, r.User, r.Organization, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Directory:  services.NewDirectoryService(db, log, r.Organization, r.Employee, r.Evaluation, r.ProfileRecord),
		Ledger:     ledger,
		Pricing:    pricing,
		Unlock:     unlock,
		Visibility: visibility,
		Access:     access,
		Analysis:   analysis,
		Notifier:   notifier,
	}
}
