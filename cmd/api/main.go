package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/xht-dev/wholesale-backend/api/routes"
	"github.com/xht-dev/wholesale-backend/internal/auth"
	"github.com/xht-dev/wholesale-backend/internal/customers"
	"github.com/xht-dev/wholesale-backend/internal/goods"
	"github.com/xht-dev/wholesale-backend/internal/ledger"
	"github.com/xht-dev/wholesale-backend/internal/oa"
	"github.com/xht-dev/wholesale-backend/internal/orders"
	"github.com/xht-dev/wholesale-backend/internal/settlement"
	"github.com/xht-dev/wholesale-backend/internal/subscriptions"
	"github.com/xht-dev/wholesale-backend/internal/tenants"
	"github.com/xht-dev/wholesale-backend/internal/users"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/logger"
	"github.com/xht-dev/wholesale-backend/pkg/metrics"
	"github.com/xht-dev/wholesale-backend/pkg/migrate"
	"github.com/xht-dev/wholesale-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gdb := dbClient.DB()
	usersRepo := users.NewRepository(gdb)
	tenantsRepo := tenants.NewRepository(gdb)
	goodsRepo := goods.NewRepository(gdb)
	customersRepo := customers.NewRepository(gdb)
	ledgerRepo := ledger.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	subscriptionsRepo := subscriptions.NewRepository(gdb)
	oaRepo := oa.NewRepository(gdb)

	tenantService, err := tenants.NewService(tenantsRepo, cfg.Tenant)
	if err != nil {
		fatal(logg, "failed to create tenant service", err)
	}
	authService, err := auth.NewService(dbClient, usersRepo, tenantService, cfg.JWT, cfg.Password)
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}
	goodsService, err := goods.NewService(goodsRepo)
	if err != nil {
		fatal(logg, "failed to create goods service", err)
	}
	ledgerService, err := ledger.NewService(dbClient, ledgerRepo, cfg.Ledger)
	if err != nil {
		fatal(logg, "failed to create ledger service", err)
	}
	customerService, err := customers.NewService(customersRepo, ledgerService)
	if err != nil {
		fatal(logg, "failed to create customer service", err)
	}
	orderService, err := orders.NewService(dbClient, ordersRepo, goodsRepo, customersRepo)
	if err != nil {
		fatal(logg, "failed to create order service", err)
	}
	settlementService, err := settlement.NewService(dbClient, ordersRepo, ledgerService, logg)
	if err != nil {
		fatal(logg, "failed to create settlement service", err)
	}
	subscriptionService, err := subscriptions.NewService(dbClient, subscriptionsRepo, tenantsRepo, logg)
	if err != nil {
		fatal(logg, "failed to create subscription service", err)
	}
	oaService, err := oa.NewService(oaRepo, cfg.JWT, cfg.Password)
	if err != nil {
		fatal(logg, "failed to create oa service", err)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			authService,
			tenantService,
			goodsService,
			customerService,
			ledgerService,
			orderService,
			settlementService,
			subscriptionService,
			oaService,
		),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server stopped")
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
