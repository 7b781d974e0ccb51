package app

import (
	"github.com/y2750/cross-org-talent-manager-sub000/internal/handlers"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Ledger       *handlers.LedgerHandler
	Unlock       *handlers.UnlockHandler
	Access       *handlers.AccessHandler
	Visibility   *handlers.VisibilityHandler
	Analysis     *handlers.AnalysisHandler
	Directory    *handlers.DirectoryHandler
	Pricing      *handlers.PricingHandler
	Notification *handlers.NotificationHandler
}

func wireHandlers(log *logger.Logger, s Services, r Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         handlers.NewAuthHandler(s.Auth),
		Ledger:       handlers.NewLedgerHandler(s.Ledger),
		Unlock:       handlers.NewUnlockHandler(s.Unlock),
		Access:       handlers.NewAccessHandler(s.Access),
		Visibility:   handlers.NewVisibilityHandler(s.Visibility),
		Analysis:     handlers.NewAnalysisHandler(s.Analysis),
		Directory:    handlers.NewDirectoryHandler(s.Directory),
		Pricing:      handlers.NewPricingHandler(s.Pricing),
		Notification: handlers.NewNotificationHandler(r.Notification),
	}
}
