// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/cashflow"
	"tillbook/internal/domain/catalog"
	"tillbook/internal/domain/creditbook"
	"tillbook/internal/domain/order"
	"tillbook/internal/domain/party"
	"tillbook/internal/domain/session"
	"tillbook/internal/infrastructure/http/v1/handlers"
	"tillbook/internal/infrastructure/http/v1/middleware"
	"tillbook/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	Logger *logger.Logger

	// Version is reported by /health.
	Version string

	// HealthChecks maps a component name to its liveness probe.
	HealthChecks map[string]func() error

	Sessions    *session.Manager
	Catalog     *catalog.Service
	Orders      *order.Service
	CreditBooks *creditbook.Service
	Parties     *party.Service
	CashFlow    *cashflow.Service

	// Debug keeps Gin in debug mode; release mode otherwise.
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID(cfg.Logger))
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.HealthChecks)
	router.GET("/health", healthHandler.Health)

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		registerSessionRoutes(api, base, cfg)
		registerOrderRoutes(api, base, cfg)
		registerCreditBookRoutes(api, base, cfg)
		registerCatalogRoutes(api, base, cfg)
		registerPartyRoutes(api, base, cfg)
		registerCashFlowRoutes(api, base, cfg)
	}

	return router
}

func registerSessionRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewSessionHandler(base, cfg.Sessions, cfg.Catalog, cfg.Orders)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.Open)
		sessions.GET("", h.List)
		sessions.DELETE("/:id", h.Close)

		sessions.GET("/:id/cart", h.GetCart)
		sessions.POST("/:id/cart/lines", h.AddLine)
		sessions.DELETE("/:id/cart/lines/:itemId", h.RemoveLine)
		sessions.PUT("/:id/cart/lines/:itemId/price", h.SetManualPrice)

		sessions.POST("/:id/order", h.OpenOrder)
	}
}

func registerOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewOrderHandler(base, cfg.Orders)

	orders := rg.Group("/orders")
	{
		active := orders.Group("/active")
		active.GET("", h.ListActive)
		active.GET("/:id", h.GetActive)
		active.PUT("/:id", h.UpdateActive)
		active.DELETE("/:id", h.Cancel)
		active.POST("/:id/lines", h.MergeLines)
		active.DELETE("/:id/lines/:itemId", h.RemoveOneUnit)
		active.POST("/:id/checkout", h.Checkout)

		history := orders.Group("/history")
		history.GET("", h.ListHistory)
		history.GET("/:bucket/:id", h.GetHistorical)
		history.POST("/:bucket/:id/pay", h.PayCredit)
		history.POST("/:bucket/:id/uncomplete", h.Uncomplete)
	}
}

func registerCreditBookRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCreditBookHandler(base, cfg.CreditBooks)

	books := rg.Group("/credit-books")
	{
		books.POST("", h.Create)
		books.GET("", h.List)
		books.GET("/:id", h.Get)
		books.DELETE("/:id", h.Delete)
		books.POST("/:id/records", h.AddRecord)
		books.PUT("/:id/completed", h.SetCompleted)
	}
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(base, cfg.Catalog)

	items := rg.Group("/items")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/:id", h.Get)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
}

func registerPartyRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	for path, kind := range map[string]party.Kind{
		"/customers": party.KindCustomer,
		"/suppliers": party.KindSupplier,
	} {
		h := handlers.NewPartyHandler(base, cfg.Parties, kind)
		group := rg.Group(path)
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.PUT("/:id", h.Update)
		group.DELETE("/:id", h.Delete)
	}
}

func registerCashFlowRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCashFlowHandler(base, cfg.CashFlow)

	cash := rg.Group("/cash-flow")
	{
		cash.POST("", h.Record)
		cash.GET("", h.ListDay)
		cash.GET("/summary", h.GetSummary)
		cash.POST("/summary", h.Summarize)
	}
}
