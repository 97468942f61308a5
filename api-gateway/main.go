package main

import (
	"net/http"
	"os"
	"time"

	"tabletap/api-gateway/internal/gateway"
	"tabletap/config"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.MustLoad("api-gateway", ":8080")
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	gw := gateway.NewGateway(gateway.Config{
		OrderSvcURL:  cfg.OrderSvcURL,
		ReportSvcURL: cfg.ReportSvcURL,
		FrontendDir:  cfg.FrontendDir,
	}, &http.Client{}, logger)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Cart-Session"},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           c.Handler(gw.SetupRoutes()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Str("addr", cfg.HTTPAddr).Msg("api gateway listening")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("api gateway stopped")
	}
}
