package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/y2750/cross-org-talent-manager-sub000/internal/handlers"
	"github.com/y2750/cross-org-talent-manager-sub000/internal/middleware"
)

type RouterConfig struct {
	ServiceName         string
	AllowOrigins        []string
	AuthMiddleware      *middleware.AuthMiddleware
	AuthHandler         *handlers.AuthHandler
	LedgerHandler       *handlers.LedgerHandler
	UnlockHandler       *handlers.UnlockHandler
	AccessHandler       *handlers.AccessHandler
	VisibilityHandler   *handlers.VisibilityHandler
	AnalysisHandler     *handlers.AnalysisHandler
	DirectoryHandler    *handlers.DirectoryHandler
	PricingHandler      *handlers.PricingHandler
	NotificationHandler *handlers.NotificationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.AttachTraceContext())
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Directory
	api.POST("/organizations", cfg.DirectoryHandler.CreateOrganization)
	api.GET("/organizations", cfg.DirectoryHandler.ListOrganizations)
	api.GET("/organizations/:orgID", cfg.DirectoryHandler.GetOrganization)
	api.POST("/employees", cfg.DirectoryHandler.CreateEmployee)
	api.GET("/employees", cfg.DirectoryHandler.ListEmployees)
	api.GET("/employees/:employeeID", cfg.DirectoryHandler.GetEmployee)
	api.POST("/evaluations", cfg.DirectoryHandler.CreateEvaluation)
	api.POST("/profile-records", cfg.DirectoryHandler.CreateProfileRecord)
	api.PATCH("/profile-records/:recordID/visibility", cfg.DirectoryHandler.SetProfileVisibility)

	// Ledger
	api.GET("/organizations/:orgID/balance", cfg.LedgerHandler.Balance)
	api.GET("/organizations/:orgID/ledger", cfg.LedgerHandler.History)
	api.POST("/ledger/credit", cfg.LedgerHandler.Credit)

	// Unlock economy
	api.POST("/evaluations/:evaluationID/unlock", cfg.UnlockHandler.Unlock)
	api.GET("/evaluations/:evaluationID/unlocked", cfg.UnlockHandler.IsUnlocked)
	api.POST("/evaluations/batch-unlock", cfg.UnlockHandler.BatchUnlock)

	// Visibility
	api.GET("/profile-records/:recordID/can-view", cfg.VisibilityHandler.CanView)

	// Access grants
	api.POST("/access-requests", cfg.AccessHandler.Create)
	api.POST("/access-requests/:requestID/respond", cfg.AccessHandler.Respond)
	api.GET("/access-requests", cfg.AccessHandler.ListMine)
	api.GET("/subjects/:subjectID/access", cfg.AccessHandler.Check)

	// Analysis
	api.POST("/analyses", cfg.AnalysisHandler.Submit)
	api.GET("/analyses/:taskID", cfg.AnalysisHandler.Status)
	api.GET("/comparisons/latest", cfg.AnalysisHandler.LatestComparison)
	api.GET("/comparisons/related", cfg.AnalysisHandler.RelatedComparisons)

	// Pricing
	api.GET("/prices", cfg.PricingHandler.List)
	api.PUT("/prices", cfg.PricingHandler.SetPrice)

	// Notifications
	api.GET("/notifications", cfg.NotificationHandler.List)
	api.POST("/notifications/:notificationID/read", cfg.NotificationHandler.MarkRead)

	return router
}
