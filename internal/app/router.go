package app

import (
	"github.com/gin-gonic/gin"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/server"
)

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:         cfg.ServiceName,
		AllowOrigins:        cfg.AllowOrigins,
		AuthMiddleware:      m.Auth,
		AuthHandler:         h.Auth,
		LedgerHandler:       h.Ledger,
		UnlockHandler:       h.Unlock,
		AccessHandler:       h.Access,
		VisibilityHandler:   h.Visibility,
		AnalysisHandler:     h.Analysis,
		DirectoryHandler:    h.Directory,
		PricingHandler:      h.Pricing,
		NotificationHandler: h.Notification,
	})
}
