package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tabletap/config"
	httpapi "tabletap/order-svc/internal/api/http"
	"tabletap/order-svc/internal/identity"
	"tabletap/order-svc/internal/service"
	"tabletap/order-svc/internal/storage"
	"tabletap/pkg/authtoken"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type backends struct {
	restaurants service.RestaurantRepository
	menu        service.MenuRepository
	profiles    service.ProfileRepository
	idp         service.IdentityProvider
	carts       service.CartStore
	orders      service.OrderRepository
	ledger      service.LedgerRepository
	bus         service.StatusBus
	events      service.EventPublisher
	close       func()
}

func main() {
	cfg := config.MustLoad("order-svc", ":8081")

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := openBackends(ctx, cfg, logger)
	defer b.close()

	tokens := authtoken.NewMaker(cfg.JWTSecret, cfg.JWTTTL)
	ledger := service.NewLedger(b.ledger, service.LedgerConfig{
		AccrualEnabled:    cfg.LoyaltyAccrualEnabled,
		RedemptionEnabled: cfg.LoyaltyRedemptionEnabled,
		RetryAttempts:     cfg.LedgerRetryAttempts,
		RetryBackoff:      cfg.LedgerRetryBackoff,
	}, logger)
	carts := service.NewCartService(b.carts, b.menu, b.restaurants, cfg.AnonCartTTL, logger)
	orders := service.NewOrderService(service.OrderDeps{
		Orders:      b.orders,
		Carts:       carts,
		Ledger:      ledger,
		Menu:        b.menu,
		Restaurants: b.restaurants,
		Bus:         b.bus,
		Events:      b.events,
		QR:          service.DefaultQRGenerator{},
		Logger:      logger,
		BaseURL:     cfg.PublicBaseURL,
	})
	accounts := service.NewAccountService(b.idp, b.profiles, b.restaurants, tokens, logger)
	restaurants := service.NewRestaurantService(b.restaurants, b.menu)

	if cfg.AdminLogin != "" {
		uid, err := accounts.EnsureAdmin(ctx, cfg.AdminLogin, cfg.AdminPassword)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to bootstrap admin account")
		}
		logger.Info().Str("uid", uid).Msg("admin account ready")
	}

	limiter := httpapi.NewLoginLimiter(cfg.LoginRatePerSecond, cfg.LoginBurst)
	if err := limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal().Err(err).Msg("invalid TRUSTED_PROXIES")
	}

	handler := httpapi.NewHandler(
		carts,
		orders,
		ledger,
		accounts,
		restaurants,
		identity.NewResolver(b.profiles, tokens),
		limiter,
		logger,
	)
	router := httpapi.NewRouter(handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.StartServer(gctx, cfg.HTTPAddr, router, logger)
	})
	g.Go(func() error {
		return service.NewReconciler(ledger, cfg.ReconcileInterval, logger).Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("order service stopped with error")
		return
	}
	logger.Info().Msg("order service stopped")
}

func openBackends(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *backends {
	if cfg.StoreDriver == "memory" {
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		store := storage.NewMemoryStore()
		return &backends{
			restaurants: store,
			menu:        store,
			profiles:    store,
			idp:         store,
			carts:       store,
			orders:      store,
			ledger:      store,
			bus:         store,
			close:       func() {},
		}
	}

	db := config.MustInitPostgres(cfg)
	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare schema")
	}
	rdb := config.MustInitRedis(cfg)
	writer := config.NewKafkaWriter(cfg, cfg.OrderEventsTopic)

	return &backends{
		restaurants: repo,
		menu:        repo,
		profiles:    repo,
		idp:         repo,
		carts:       storage.NewRedisCartStore(rdb),
		orders:      repo,
		ledger:      repo,
		bus:         storage.NewRedisStatusBus(rdb, logger),
		events:      storage.NewKafkaPublisher(writer),
		close: func() {
			if err := writer.Close(); err != nil {
				logger.Warn().Err(err).Msg("close kafka writer")
			}
			rdb.Close()
			db.Close()
		},
	}
}
