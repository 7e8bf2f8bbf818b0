package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/grocer/backoffice/internal/domain/shared"
	"github.com/grocer/backoffice/internal/infrastructure/auth"
	"github.com/grocer/backoffice/internal/infrastructure/config"
	"github.com/grocer/backoffice/internal/infrastructure/logger"
	"github.com/grocer/backoffice/internal/infrastructure/telemetry"
	"github.com/grocer/backoffice/internal/interfaces/http/dto"
	"github.com/grocer/backoffice/internal/interfaces/http/handler"
	"github.com/grocer/backoffice/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the resource handlers mounted under /api/v1
type Handlers struct {
	Customers      *handler.CustomerHandler
	Sales          *handler.SaleHandler
	Orders         *handler.OrderHandler
	PurchaseOrders *handler.PurchaseOrderHandler
	Cheques        *handler.ChequeHandler
	Products       *handler.ProductHandler
	Suppliers      *handler.SupplierHandler
	Users          *handler.UserHandler
	Trash          *handler.TrashHandler
	Health         *handler.HealthHandler
}

// Dependencies are the cross-cutting collaborators of the middleware chain.
// Every field is optional; a nil value disables the matching middleware.
type Dependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Verifier    *auth.TokenVerifier
	Idempotency shared.IdempotencyStore
	Meter       *telemetry.MeterProvider
}

// New builds the engine with the global middleware chain and every route
func New(h Handlers, deps Dependencies) *gin.Engine {
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	handler.RegisterValidators()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("invalid trusted proxies, ignoring", zap.Error(err))
		}
	}

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: serviceName, Enabled: cfg.Telemetry.Enabled}),
		logger.GinMiddleware(log),
		middleware.SecureHeaders(cfg.App.Env == "production"),
		middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)
	if cfg.HTTP.WriteTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.WriteTimeout))
	}
	engine.Use(
		middleware.ActorFromJWT(deps.Verifier),
		middleware.TracingAttributeInjector(),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(deps.Meter),
		middleware.Profiling(middleware.ProfilingConfig{
			Enabled:   cfg.Telemetry.ProfilingEnabled,
			SkipPaths: []string{"/health"},
		}),
	)

	if h.Health != nil {
		engine.GET("/health", h.Health.Check)
	}

	var idempotent gin.HandlerFunc
	if deps.Idempotency != nil && cfg.Idempotency.Enabled {
		idempotent = middleware.Idempotency(deps.Idempotency, cfg.Idempotency.TTL)
	}

	NewRouter(engine).Register(DomainGroups(h, idempotent)...).Setup()

	engine.NoRoute(func(c *gin.Context) {
		c.Set(middleware.ErrorCodeKey, dto.ErrCodeRouteNotFound)
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeRouteNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	return engine
}

// DomainGroups returns one route group per resource. idempotent guards the
// money-moving and restore POSTs; it may be nil.
func DomainGroups(h Handlers, idempotent gin.HandlerFunc) []RouteRegistrar {
	guard := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if idempotent == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{idempotent, fn}
	}

	var groups []RouteRegistrar

	if h.Customers != nil {
		groups = append(groups, NewDomainGroup("credit-customers", "/credit-customers").
			POST("", h.Customers.Create).
			GET("", h.Customers.List).
			GET("/summary", h.Customers.Portfolio).
			GET("/public/:publicId", h.Customers.GetByPublicID).
			GET("/:id", h.Customers.GetByID).
			PUT("/:id", h.Customers.Update).
			DELETE("/:id", h.Customers.Delete).
			GET("/:id/summary", h.Customers.Summary).
			GET("/:id/payments", h.Customers.Payments).
			POST("/:id/payments", guard(h.Customers.RecordPayment)...).
			GET("/:id/invoices", h.Customers.Invoices).
			GET("/:id/charges", h.Customers.Charges))
	}

	if h.Sales != nil {
		groups = append(groups, NewDomainGroup("sales", "/sales").
			POST("", h.Sales.Create).
			GET("", h.Sales.List).
			GET("/:id", h.Sales.GetByID).
			DELETE("/:id", h.Sales.Delete).
			POST("/:id/payments", guard(h.Sales.Pay)...))
	}

	if h.Orders != nil {
		groups = append(groups, NewDomainGroup("orders", "/orders").
			POST("", h.Orders.Create).
			GET("", h.Orders.List).
			GET("/:id", h.Orders.GetByID).
			DELETE("/:id", h.Orders.Delete).
			POST("/:id/items", h.Orders.AddItem).
			DELETE("/:id/items/:itemId", h.Orders.RemoveItem).
			POST("/:id/confirm", h.Orders.Confirm).
			POST("/:id/void", h.Orders.Void))
	}

	if h.PurchaseOrders != nil {
		groups = append(groups, NewDomainGroup("purchase-orders", "/purchase-orders").
			POST("", h.PurchaseOrders.Create).
			GET("", h.PurchaseOrders.List).
			GET("/:id", h.PurchaseOrders.GetByID).
			DELETE("/:id", h.PurchaseOrders.Delete).
			POST("/:id/send", h.PurchaseOrders.Send).
			POST("/:id/receive", h.PurchaseOrders.Receive).
			POST("/:id/cancel", h.PurchaseOrders.Cancel))
	}

	if h.Cheques != nil {
		groups = append(groups, NewDomainGroup("cheques", "/cheques").
			POST("", h.Cheques.Create).
			GET("", h.Cheques.List).
			GET("/:id", h.Cheques.GetByID).
			DELETE("/:id", h.Cheques.Delete).
			PATCH("/:id/status", h.Cheques.ChangeStatus))
	}

	if h.Products != nil {
		groups = append(groups, NewDomainGroup("products", "/products").
			POST("", h.Products.Create).
			GET("", h.Products.List).
			GET("/:id", h.Products.GetByID).
			DELETE("/:id", h.Products.Delete))
	}

	if h.Suppliers != nil {
		groups = append(groups, NewDomainGroup("suppliers", "/suppliers").
			POST("", h.Suppliers.Create).
			GET("", h.Suppliers.List).
			GET("/:id", h.Suppliers.GetByID).
			DELETE("/:id", h.Suppliers.Delete))
	}

	if h.Users != nil {
		groups = append(groups, NewDomainGroup("users", "/users").
			POST("", h.Users.Create).
			GET("", h.Users.List).
			GET("/:id", h.Users.GetByID).
			DELETE("/:id", h.Users.Delete))
	}

	if h.Trash != nil {
		groups = append(groups, NewDomainGroup("trash", "/trash").
			GET("/:type", h.Trash.List).
			GET("/:type/:deletedId", h.Trash.Get).
			DELETE("/:type/:deletedId", h.Trash.PermanentDelete).
			POST("/:type/:deletedId/restore", guard(h.Trash.Restore)...))
	}

	return groups
}
