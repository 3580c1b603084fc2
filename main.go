package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/Kariqs/amexan-wallet/config"
	"github.com/Kariqs/amexan-wallet/controllers"
	"github.com/Kariqs/amexan-wallet/events"
	"github.com/Kariqs/amexan-wallet/initializers"
	"github.com/Kariqs/amexan-wallet/jobs"
	"github.com/Kariqs/amexan-wallet/logger"
	"github.com/Kariqs/amexan-wallet/metrics"
	"github.com/Kariqs/amexan-wallet/middlewares"
	"github.com/Kariqs/amexan-wallet/routes"
	"github.com/Kariqs/amexan-wallet/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{Service: "amexan-api", Env: cfg.AppEnv, Level: cfg.LogLevel})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := initializers.ConnectToDB(cfg, log)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := initializers.SyncDatabase(db, log); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	serverMetrics := metrics.NewServerMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	transactor := services.NewTransactor(db, services.TxOptions{
		LockTimeout: cfg.LockTimeout,
		MaxRetries:  cfg.MaxTxRetries,
		Backoff:     services.DefaultTxOptions().Backoff,
	}, log)
	now := time.Now
	catalog := services.NewCatalogStore(db)
	wallets := services.NewWalletLedger(transactor, now, log)
	carts := services.NewCartStore(transactor, catalog, log)
	promos := services.NewPromoService(db, func() time.Time { return now().In(loc) }, log)
	audit := services.NewAuditLog(db, cfg.KafkaTopic, now)
	identity := services.NewIdentity(db, cfg.JWTSecret, now)
	orders := services.NewOrderEngine(transactor, wallets, carts, catalog, promos, audit, services.OrderEngineOptions{
		Location: loc,
		Now:      now,
		Observer: orderMetrics,
		Logger:   log,
	})

	scheduler, err := jobs.NewScheduler(cfg.PromoSweepSchedule, loc, promos, orderMetrics, log)
	if err != nil {
		return err
	}
	pubs, closePubs := publishers(cfg, log)
	defer closePubs()
	relay := events.NewRelay(db, pubs, events.RelayOptions{
		Interval: cfg.OutboxInterval,
		Batch:    cfg.OutboxBatch,
		Observer: orderMetrics,
		Logger:   log,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.New()
	server.Use(gin.Recovery(), middlewares.AccessLog(log), middlewares.Metrics(serverMetrics))
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	registerRoutes(server, sqlDB, registry, identity, orders, carts, wallets, promos, catalog, scheduler)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http starting", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return relay.Run(gctx) })

	return g.Wait()
}

func registerRoutes(server *gin.Engine, db controllers.Pinger, registry *prometheus.Registry, identity *services.Identity,
	orders *services.OrderEngine, carts *services.CartStore, wallets *services.WalletLedger,
	promos *services.PromoService, catalog *services.CatalogStore, scheduler *jobs.Scheduler) {
	auth := middlewares.RequireAuth(identity)

	routes.DefaultRoutes(server, db, metrics.Handler(registry))
	routes.ProductRoutes(server, controllers.NewProductController(catalog))
	routes.CartRoutes(server, auth, controllers.NewCartController(carts))
	routes.OrderRoutes(server, auth, controllers.NewOrderController(orders))
	routes.WalletRoutes(server, auth, controllers.NewWalletController(wallets))
	routes.PromoRoutes(server, auth, controllers.NewPromoController(promos, scheduler))
}

func publishers(cfg config.Config, log *slog.Logger) ([]events.Publisher, func()) {
	var out []events.Publisher
	closeFn := func() {}
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		kp := events.NewKafkaPublisher(brokers)
		out = append(out, kp)
		closeFn = func() {
			if err := kp.Close(); err != nil {
				log.Warn("kafka writer close failed", slog.Any("err", err))
			}
		}
	}
	if cfg.WebhookURL != "" {
		out = append(out, events.NewWebhookPublisher(cfg.WebhookURL, 10*time.Second))
	}
	return out, closeFn
}
