package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/activities/internal/api"
	"example.com/activities/internal/config"
	"example.com/activities/internal/domain"
	"example.com/activities/internal/observability"
	"example.com/activities/internal/outbox"
	"example.com/activities/internal/seed"
	"example.com/activities/internal/store/memory"
	httptransport "example.com/activities/internal/transport/http"
	"example.com/activities/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if cfg.EnvFile != "" {
		logger.Info("loaded env file", zap.String("path", cfg.EnvFile))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTelEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Fatal("init tracing", zap.Error(err))
	}

	activities, err := seed.Load(cfg.SeedFile)
	if err != nil {
		logger.Fatal("load seed dataset", zap.String("seed_file", cfg.SeedFile), zap.Error(err))
	}
	store, err := memory.NewStore(activities)
	if err != nil {
		logger.Fatal("build activity store", zap.Error(err))
	}
	for _, activity := range activities {
		observability.RecordParticipantCount(activity.Name, len(activity.Participants))
	}

	var publisher domain.Publisher = domain.NoopPublisher{}
	var dispatcher *outbox.Dispatcher
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()
	if cfg.EventsEnabled() {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()

		dispatcher = outbox.NewDispatcher(producer, outbox.Config{
			Topic:          cfg.KafkaTopic,
			BatchSize:      cfg.OutboxBatchSize,
			FlushInterval:  cfg.OutboxFlushInterval,
			QueueSize:      cfg.OutboxQueueSize,
			MaxRetries:     cfg.OutboxMaxRetries,
			RetryBaseDelay: cfg.OutboxRetryDelay,
		}, logger.Named("outbox"))
		go dispatcher.Start(dispatchCtx)
		publisher = dispatcher
		logger.Info("roster events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	service := domain.NewService(store,
		domain.WithPublisher(publisher),
		domain.WithLogger(logger.Named("domain")),
		domain.WithCapacityEnforcement(cfg.EnforceCapacity),
	)

	handler := api.NewHandler(service, logger.Named("api"))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle(web.Prefix, web.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", api.NotFound())

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, httptransport.Chain(mux,
		httptransport.Tracing(cfg.ServiceName),
		httptransport.CORS(cfg.CORSOrigins),
		httptransport.RequestLogger(logger.Named("http")),
	))

	srvErr := make(chan error, 1)
	go func() {
		logger.Info("activities api listening",
			zap.String("address", cfg.HTTPAddress),
			zap.Strings("activities", store.Names()),
			zap.Bool("enforce_capacity", cfg.EnforceCapacity),
		)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	stopDispatch()
	if dispatcher != nil {
		dispatcher.Wait()
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
