package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tabletap/config"
	"tabletap/pkg/authtoken"
	httpapi "tabletap/report-svc/internal/api/http"
	"tabletap/report-svc/internal/service"
	"tabletap/report-svc/internal/storage"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.MustLoad("report-svc", ":8083")

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()
	cache := storage.NewSalesCache(rdb)

	var fallback service.SalesSource
	if cfg.StoreDriver == "postgres" {
		db := config.MustInitPostgres(cfg)
		defer db.Close()
		fallback = storage.NewSalesRepository(db)
	}

	reader := config.NewKafkaReader(cfg, cfg.OrderEventsTopic, cfg.ReportGroupID)
	defer reader.Close()

	reports := service.NewReportService(cache, fallback, logger)
	handler := httpapi.NewHandler(reports, authtoken.NewMaker(cfg.JWTSecret, cfg.JWTTTL), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.StartServer(gctx, cfg.HTTPAddr, httpapi.NewRouter(handler), logger)
	})
	g.Go(func() error {
		return service.NewConsumer(reader, cache, logger).Start(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("report service stopped with error")
		return
	}
	logger.Info().Msg("report service stopped")
}
