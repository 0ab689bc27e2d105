// Command dictionary-indexer is the process entry point: it wires the
// search-store gateway, the CDC projection pipeline, the NATS bus
// consumer, and the HTTP query adapter together and runs the HTTP
// server and the CDC consumer as the process's two long-lived tasks.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/theleeeo/dictionary-indexer/internal/bus"
	"github.com/theleeeo/dictionary-indexer/internal/config"
	"github.com/theleeeo/dictionary-indexer/internal/httpapi"
	"github.com/theleeeo/dictionary-indexer/internal/pipeline"
	"github.com/theleeeo/dictionary-indexer/internal/query"
	"github.com/theleeeo/dictionary-indexer/internal/store"
)

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()

	logger := slog.New(zapslog.NewHandler(zapLogger.Core()))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	dictCfg, err := config.LoadDictionaryConfig(cfg.DictionaryConfigPath)
	if err != nil {
		logger.Error("load dictionary config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.OpensearchURL},
	})
	if err != nil {
		logger.Error("construct elasticsearch client", "error", err)
		os.Exit(1)
	}
	searchStore := store.NewFromClient(esClient)

	if err := searchStore.EnsureDefaultIndices(ctx); err != nil {
		logger.Warn("ensure default indices", "error", err)
	}

	applier := pipeline.NewApplier(searchStore, logger)

	querySvc := query.NewService(searchStore)
	handler := httpapi.NewHandler(querySvc, httpapi.SystemInfo{
		Version:        cfg.Version,
		IsKafkaEnabled: cfg.KafkaEnabled,
		KafkaQueues:    cfg.KafkaQueues,
	}, dictCfg, zapLogger)
	echoSrv := httpapi.NewEcho(handler, cfg.AllowedOrigins())

	// Two long-lived tasks run concurrently for the process lifetime:
	// the HTTP server below, and the CDC consumer when enabled. Neither
	// shares mutable state with the other; the search store's own
	// idempotent upsert/delete is what makes that safe.
	var wg sync.WaitGroup

	if cfg.KafkaEnabled {
		nc, err := nats.Connect(cfg.KafkaHost, nats.RetryOnFailedConnect(true), nats.MaxReconnects(-1))
		if err != nil {
			logger.Error("connect nats", "error", err)
			os.Exit(1)
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			logger.Error("init jetstream", "error", err)
			os.Exit(1)
		}

		consumer := bus.NewConsumer(js, applier.Handler(), cfg.KafkaGroup, cfg.KafkaQueues, zapLogger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("cdc bus consumer starting", "topics", cfg.KafkaQueues)
			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("cdc bus consumer stopped", "error", err)
			}
		}()
	} else {
		logger.Info("cdc bus consumer disabled (KAFKA_ENABLED != Y)")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		addr := ":" + cfg.Port
		logger.Info("http server listening", "addr", addr)
		if err := echoSrv.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
	<-stopCh
	logger.Info("shutting down")

	go func() {
		<-stopCh
		logger.Warn("force shutdown")
		os.Exit(1)
	}()

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := echoSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown error", "error", err)
	}

	wg.Wait()
}
