package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/gymgenius/internal/api"
	"example.com/gymgenius/internal/config"
	"example.com/gymgenius/internal/generation"
	"example.com/gymgenius/internal/logging"
	"example.com/gymgenius/internal/outbox"
	"example.com/gymgenius/internal/persistence"
	"example.com/gymgenius/internal/planstore"
	"example.com/gymgenius/internal/prompts"
	httptransport "example.com/gymgenius/internal/transport/http"
	"example.com/gymgenius/internal/upstream"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog := prompts.MustLoad()
	client, err := upstream.New(ctx, cfg.Generation, catalog, logger.Named("upstream"))
	if err != nil {
		logger.Fatal("failed to build generation client", zap.Error(err))
	}
	toolkit := generation.NewToolkit(client, catalog, generation.Models{
		Image: cfg.Generation.ImageModel,
		Audio: cfg.Generation.AudioModel,
	}, logger.Named("generation"))

	tips := generation.NewTipsBoard(toolkit.Tips, cfg.TipTopics)
	go tips.Prefetch(ctx)

	backend, err := persistence.Open(ctx, cfg.Store, cfg.PlanEventsTopic)
	if err != nil {
		logger.Fatal("failed to open plan store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	defer backend.Close()
	store := planstore.NewStore(backend.Slot, cfg.Store.SlotKey, planstore.WithLogger(logger.Named("planstore")))

	var dispatcher *outbox.Dispatcher
	if backend.Pool != nil {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		dispatcher = outbox.NewDispatcher(outbox.NewPostgresStore(backend.Pool), producer,
			cfg.OutboxPollInterval, cfg.OutboxBatchSize, outbox.WithLogger(logger.Named("outbox")))
		go dispatcher.Start(ctx)
	}

	handler := api.NewHandler(api.Dependencies{
		Plans:   toolkit.Plans,
		Store:   store,
		Tips:    tips,
		Images:  toolkit.Images,
		Audio:   toolkit.Audio,
		Tracker: generation.NewTracker(),
		Logger:  logger.Named("api"),
	})
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Metrics:        cfg.MetricsAddress == "",
	})

	// Upstream requests are bounded by the generation timeout; the write deadline leaves room for both plan halves.
	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Generation.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}, router)

	var metricsSrv *http.Server
	if cfg.MetricsAddress != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("metrics listening", zap.String("address", cfg.MetricsAddress))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("gymgenius api listening",
			zap.String("address", cfg.HTTPAddress),
			zap.String("provider", cfg.Generation.Provider),
			zap.String("store", cfg.Store.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown error", zap.Error(err))
		}
	}
	if dispatcher != nil {
		dispatcher.Wait()
	}
}
