package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"example.com/timeline/internal/api"
	"example.com/timeline/internal/auth"
	"example.com/timeline/internal/bootstrap"
	"example.com/timeline/internal/config"
	"example.com/timeline/internal/logger"
	httptransport "example.com/timeline/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logg := logger.New("timeline-api", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := bootstrap.OpenTokenStore(ctx, cfg)
	if err != nil {
		logg.Fatal().Err(err).Msg("failed to open token store")
	}
	defer closeStore()

	token, err := bootstrap.LoadToken(ctx, store, cfg.TokenAccount, time.Now().UTC())
	if err != nil {
		logg.Fatal().Err(err).Msg("no usable upstream token; run timelinectl token import")
	}

	publisher, closePublisher := bootstrap.NewPublisher(cfg, logg)
	defer func() {
		if err := closePublisher(); err != nil {
			logg.Error().Err(err).Msg("failed to close event producer")
		}
	}()

	client := bootstrap.NewUpstreamClient(cfg, token, logg)
	service := bootstrap.NewService(cfg, client, publisher, logg)

	handler := api.NewHandler(service, api.Limits{
		MaxConnections: cfg.MaxConnections,
		MaxWindow:      cfg.MaxWindow,
	}, api.WithLogger(logg))

	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	router.Use(api.RequestLogger(logg), api.CORS(cfg.AllowedOrigin))

	authenticate := auth.Authenticate(auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer), auth.Public)
	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), authenticate(router))

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.MetricsAddress), metricsMux)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logg.Info().Str("address", cfg.MetricsAddress).Msg("metrics listening")
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error().Err(err).Msg("metrics server error")
		}
	}()

	go func() {
		logg.Info().Str("address", cfg.HTTPAddress).Msg("timeline-api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("metrics server shutdown failed")
	}
}
