package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xht-dev/wholesale-backend/api/controllers"
	oacontrollers "github.com/xht-dev/wholesale-backend/api/controllers/oa"
	"github.com/xht-dev/wholesale-backend/api/middleware"
	internalauth "github.com/xht-dev/wholesale-backend/internal/auth"
	"github.com/xht-dev/wholesale-backend/internal/customers"
	"github.com/xht-dev/wholesale-backend/internal/goods"
	"github.com/xht-dev/wholesale-backend/internal/ledger"
	internaloa "github.com/xht-dev/wholesale-backend/internal/oa"
	"github.com/xht-dev/wholesale-backend/internal/orders"
	"github.com/xht-dev/wholesale-backend/internal/settlement"
	"github.com/xht-dev/wholesale-backend/internal/subscriptions"
	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/metrics"
	pkgredis "github.com/xht-dev/wholesale-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	httpMetrics *metrics.HTTPMetrics,
	authService internalauth.Service,
	tenantService tenants.Service,
	goodsService goods.Service,
	customerService customers.Service,
	ledgerService ledger.Service,
	orderService orders.Service,
	settlementService settlement.Service,
	subscriptionService subscriptions.Service,
	oaService internaloa.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), middleware.Idempotency(redisClient, logg)).
			Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(authService, logg))
	})

	// Payment provider callback, authenticated by order number lookup only.
	r.Post("/api/v1/payments/callback", controllers.RenewalPaymentCallback(subscriptionService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireTenant(logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/goods", func(r chi.Router) {
			r.Get("/", controllers.GoodsList(goodsService, logg))
			r.Post("/", controllers.GoodsCreate(goodsService, logg))
			r.Get("/{goodsId}", controllers.GoodsDetail(goodsService, logg))
			r.Put("/{goodsId}", controllers.GoodsUpdate(goodsService, logg))
			r.Delete("/{goodsId}", controllers.GoodsDelete(goodsService, logg))
			r.Post("/{goodsId}/stock", controllers.GoodsAdjustStock(goodsService, logg))
			r.Post("/{goodsId}/on-sale", controllers.GoodsToggleOnSale(goodsService, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(goodsService, logg))
			r.Post("/", controllers.CategoryCreate(goodsService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(goodsService, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomerList(customerService, logg))
			r.Post("/", controllers.CustomerCreate(customerService, logg))
			r.Get("/{customerId}", controllers.CustomerDetail(customerService, logg))
			r.Put("/{customerId}", controllers.CustomerUpdate(customerService, logg))
			r.Delete("/{customerId}", controllers.CustomerDelete(customerService, logg))
			r.Post("/{customerId}/repay", controllers.CustomerRepay(customerService, logg))
			r.Get("/{customerId}/debt-logs", controllers.CustomerDebtLogs(ledgerService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrderList(orderService, logg))
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
			r.Post("/{orderId}/confirm", controllers.OrderConfirm(orderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(orderService, logg))
			r.Post("/{orderId}/complete", controllers.OrderComplete(settlementService, logg))
		})

		r.Route("/shop", func(r chi.Router) {
			r.Get("/me", controllers.ShopProfile(tenantService, logg))
			r.Put("/me", controllers.ShopUpdate(tenantService, logg))
			r.Get("/membership", controllers.ShopMembership(tenantService, logg))
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/packages", controllers.RenewalPackages(subscriptionService, logg))
			r.Get("/orders", controllers.RenewalOrderList(subscriptionService, logg))
			r.Post("/orders", controllers.RenewalOrderCreate(subscriptionService, logg))
		})
	})

	r.Route("/api/oa/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/auth/login", oacontrollers.Login(oaService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireOA(logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", oacontrollers.TenantList(tenantService, logg))
				r.Post("/{tenantId}/review", oacontrollers.TenantReview(tenantService, logg))
				r.Post("/{tenantId}/freeze", oacontrollers.TenantFreeze(tenantService, logg))
				r.Post("/{tenantId}/gift", oacontrollers.TenantGift(subscriptionService, logg))
			})

			r.Route("/packages", func(r chi.Router) {
				r.Get("/", oacontrollers.PackageList(subscriptionService, logg))
				r.Post("/", oacontrollers.PackageCreate(subscriptionService, logg))
				r.Put("/{packageId}", oacontrollers.PackageUpdate(subscriptionService, logg))
				r.Post("/{packageId}/toggle", oacontrollers.PackageToggle(subscriptionService, logg))
			})

			r.Route("/operators", func(r chi.Router) {
				r.Get("/", oacontrollers.ListOperators(oaService, logg))
				r.Post("/", oacontrollers.CreateOperator(oaService, logg))
				r.Post("/{operatorId}/enabled", oacontrollers.SetOperatorEnabled(oaService, logg))
				r.Post("/{operatorId}/reset-password", oacontrollers.ResetOperatorPassword(oaService, logg))
			})
		})
	})

	return r
}
