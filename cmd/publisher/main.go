package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/crosspost/internal/api"
	"github.com/your-org/crosspost/internal/provider"
	"github.com/your-org/crosspost/internal/provider/blotato"
	"github.com/your-org/crosspost/internal/provider/postiz"
	"github.com/your-org/crosspost/internal/publish"
	"github.com/your-org/crosspost/internal/report"
	"github.com/your-org/crosspost/internal/target"
	"github.com/your-org/crosspost/pkg/config"
	"github.com/your-org/crosspost/pkg/kafka"
	"github.com/your-org/crosspost/pkg/logger"
	"github.com/your-org/crosspost/pkg/storage/objectstore"
	"github.com/your-org/crosspost/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(logger.Options{
		Level:       cfg.App.LogLevel,
		Service:     cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  tracing.ParseAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	store, err := objectstore.New(objectstore.Config{
		Provider:      cfg.Storage.Provider,
		LocalDir:      cfg.Storage.LocalDir,
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		logr.Fatal("init object store", zap.Error(err))
	}

	sinks := report.Multi{
		report.NewHTTPSink(report.HTTPConfig{
			URL:    cfg.Report.WebhookURL,
			APIKey: cfg.Report.APIKey,
			Logger: logr,
		}),
	}
	var producer *kafka.Producer
	if cfg.Report.KafkaEnabled {
		producer, err = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.ReportTopic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  cfg.Kafka.Retries,
		})
		if err != nil {
			logr.Fatal("init kafka producer", zap.Error(err))
		}
		sinks = append(sinks, report.NewKafkaSink(producer))
		logr.Info("kafka report sink enabled", zap.String("topic", producer.Topic()))
	}

	submitters := []provider.Submitter{
		postiz.New(postiz.Config{
			BaseURL: cfg.Postiz.BaseURL,
			APIKey:  cfg.Postiz.APIKey,
			Logger:  logr,
		}),
		blotato.New(blotato.Config{
			APIKey:   cfg.Blotato.APIKey,
			MediaURL: cfg.Blotato.MediaURL,
			Store:    store,
			Logger:   logr,
		}),
	}
	for _, s := range submitters {
		if err := s.Configured(); err != nil {
			logr.Warn("provider not configured; its cells will fail", zap.Error(err))
		}
	}

	orchestrator := publish.NewOrchestrator(publish.Params{
		Submitters:    submitters,
		Reporter:      sinks,
		Timeout:       cfg.Dispatch.Timeout,
		Concurrency:   cfg.Dispatch.Concurrency,
		ReportTimeout: cfg.Report.Timeout,
		Logger:        logr,
	})

	catalog := target.NewCatalog(target.CatalogConfig{
		PostizBaseURL:      cfg.Postiz.BaseURL,
		PostizAPIKey:       cfg.Postiz.APIKey,
		BlotatoProfilesURL: cfg.Blotato.ProfilesURL,
		Logger:             logr,
	})

	handler := api.NewHTTPHandler(api.Params{
		Publisher:      orchestrator,
		Targets:        catalog,
		Store:          store,
		Logger:         logr,
		MaxSizeBytes:   cfg.Upload.MaxSizeBytes,
		FormMemBytes:   cfg.Upload.MultipartMemBytes,
		RequestTimeout: cfg.Dispatch.Timeout + cfg.Report.Timeout,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logr.Error("kafka producer close failed", zap.Error(err))
			}
		}
		if err := store.Close(); err != nil {
			logr.Error("object store close failed", zap.Error(err))
		}
	}()

	logr.Info("publisher starting",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("storage", cfg.Storage.Provider),
		zap.Int("dispatch_concurrency", cfg.Dispatch.Concurrency),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}
