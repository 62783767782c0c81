// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-tote-store/config"
	"go-tote-store/controllers"
	"go-tote-store/design"
	"go-tote-store/fulfillment"
	"go-tote-store/metrics"
	"go-tote-store/middleware"
	"go-tote-store/payment"
	"go-tote-store/repository"
	"go-tote-store/routes"
	"go-tote-store/storefront"
	"go-tote-store/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := utils.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	if !foundEnv {
		log.Info("No .env file found. Proceeding with environment variables.")
	}

	utils.JwtKey = []byte(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := utils.InitTracing(cfg.TraceStdout)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Stores
	var (
		orders repository.OrderStore
		users  repository.UserStore
		keys   repository.IdempotencyStore
	)
	switch cfg.Store {
	case "memory":
		orders = repository.NewMemoryOrderStore()
		users = repository.NewMemoryUserStore()
		log.Warn("using in-memory stores; orders and accounts are lost on restart")
	default:
		client, err := utils.ConnectDB(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("disconnect mongo", zap.Error(err))
			}
		}()
		db := client.Database(cfg.MongoDB)
		orders = repository.NewMongoOrderStore(db)
		users = repository.NewMongoUserStore(db)
		log.Info("connected to MongoDB", zap.String("db", cfg.MongoDB))
	}
	if cfg.RedisAddr != "" {
		rdb, err := utils.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		keys = repository.NewRedisIdempotencyStore(rdb, 24*time.Hour)
		log.Info("order idempotency keys stored in Redis", zap.String("addr", cfg.RedisAddr))
	} else {
		keys = repository.NewMemoryIdempotencyStore()
	}

	// Email
	mailer, err := utils.NewMailer(cfg.EmailProvider, cfg.PostmarkAPIToken, cfg.SendGridAPIKey, cfg.EmailSender, log)
	if err != nil {
		return fmt.Errorf("configure email: %w", err)
	}
	emailService := utils.NewEmailService(mailer)

	// Adapters
	m := metrics.New()
	gateway := payment.NewMockGateway(log.Named("payment"))
	gateway.Delay = cfg.PaymentDelay
	gateway.WalletPrefill = cfg.WalletPrefill
	shop := fulfillment.NewPrintShop(cfg.FulfillDelay, log.Named("printshop"))
	placer := fulfillment.NewRecordingPlacer(shop, orders, keys, emailService, log.Named("orders"))

	sessions := storefront.NewManager(storefront.Options{
		Generator:      design.NewPlaceholderGenerator(cfg.GenerationDelay),
		Gateway:        gateway,
		Placer:         placer,
		GatewayTimeout: cfg.GatewayTimeout,
		Currency:       cfg.Currency,
		TTL:            cfg.SessionTTL,
		Log:            log.Named("session"),
		Metrics:        m,
	})

	router := mux.NewRouter()
	router.Use(middleware.ObserveMiddleware(m, log.Named("http")))
	routes.RegisterRoutes(router, routes.Controllers{
		User:     controllers.NewUserController(users, log),
		Product:  controllers.NewProductController(),
		Design:   controllers.NewDesignController(m),
		Cart:     controllers.NewCartController(),
		Checkout: controllers.NewCheckoutController(),
		Order:    controllers.NewOrderController(orders, shop, emailService, log),
		Session:  controllers.NewSessionController(sessions),
	}, middleware.SessionMiddleware(sessions, strings.HasPrefix(cfg.PublicURL, "https://"), cfg.SessionTTL), m.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server is running", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout+5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
