package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/auth"
	"github.com/iliyamo/bike-store-inventory/internal/config"
	"github.com/iliyamo/bike-store-inventory/internal/database"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
	"github.com/iliyamo/bike-store-inventory/internal/queue"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
	"github.com/iliyamo/bike-store-inventory/internal/router"
	"github.com/iliyamo/bike-store-inventory/internal/service"
	"github.com/iliyamo/bike-store-inventory/migrations"
)

func main() {
	cfg := config.Load() // Load environment config

	logger, err := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		log.Fatal(err)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBMaxLifetime,
	})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, migrations.FS); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("schema migrated")
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL, logger)
		consumer := &queue.AuditConsumer{URL: cfg.RabbitURL, LogPath: cfg.AuditLogPath, Logger: logger}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	// Repositories
	customers := repository.NewCustomerRepo(db)
	staff := repository.NewStaffRepo(db)
	brands := repository.NewBrandRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	stores := repository.NewStoreRepo(db)
	stocks := repository.NewStockRepo(db)
	orders := repository.NewOrderRepo(db)
	items := repository.NewOrderItemRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Services
	identity := service.NewIdentityService(customers, staff, stores, cfg.BcryptCost)
	catalog := service.NewCatalogService(brands, categories, products, stores)
	inventory := service.NewInventoryLedger(stocks, stores, products, events, logger)
	orderLedger := service.NewOrderLedger(orders, items, service.OrderRefs{
		Customers: customers, Products: products, Stores: stores, Staff: staff,
	}, events, logger)
	orderLedger.StrictStatus = cfg.StrictOrderStatus
	authn := auth.NewAuthenticator(customers, staff)

	go purgeTokens(ctx, tokens, logger)

	e := router.New(router.Deps{
		JWTSecret: cfg.JWTSecret,
		Gate:      access.NewGate(nil),
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		Logger:    logger,
	}, router.Handlers{
		Health:   handler.NewHealth(db, rdb),
		Auth:     handler.NewAuthHandler(cfg, authn, identity, tokens),
		Stock:    handler.NewStockHandler(inventory),
		Order:    handler.NewOrderHandler(orderLedger),
		Identity: handler.NewIdentityHandler(identity),
		Catalog:  handler.NewCatalogHandler(catalog),
	})

	addr := ":" + cfg.Port
	logger.Info("listening", "addr", addr, "env", cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

// purgeTokens drops dead refresh tokens once an hour.
func purgeTokens(ctx context.Context, tokens *repository.TokenRepo, logger *slog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := tokens.PurgeExpired(ctx, time.Now().Add(-24*time.Hour))
			if err != nil {
				logger.Warn("purge refresh tokens", "error", err)
				continue
			}
			logger.Debug("purged refresh tokens", "rows", n)
		}
	}
}
