package app

import (
	"github.com/y2750/cross-org-talent-manager-sub000/internal/logger"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/middleware"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, s.Auth),
	}
}
