package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"leadkit/internal/adapters/downloader"
	"leadkit/internal/adapters/localstorage"
	"leadkit/internal/adapters/notify"
	"leadkit/internal/adapters/xlsx"
	"leadkit/internal/adapters/zerobounce"
	"leadkit/internal/config"
	"leadkit/internal/core/ports"
	"leadkit/internal/logging"
	"leadkit/internal/service"
	"leadkit/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())
	if !cfg.HasAPIKey() {
		logger.Warn("ZEROBOUNCE_API_KEY is not set; validation endpoints will fail")
	}

	client, err := zerobounce.NewClient(zerobounce.Config{
		APIURL:  cfg.ZeroBounce.APIURL,
		BulkURL: cfg.ZeroBounce.BulkURL,
		Timeout: cfg.ZeroBounce.Timeout,
	}, downloader.NewHTTPDownloader(cfg.ZeroBounce.Timeout))
	if err != nil {
		logger.Error("failed to create validation client", "error", err)
		os.Exit(1)
	}

	cred := ports.Credential{APIKey: cfg.ZeroBounce.APIKey}
	codec := xlsx.NewCodec()
	batch := service.NewOrchestrator(client, service.NewTickerScheduler(), notify.NewLogNotifier(logger),
		service.OrchestratorConfig{
			Credential:   cred,
			PollInterval: cfg.Batch.PollInterval,
		}, logger.With("component", "batch"))

	server := web.NewServer(web.Deps{
		Batch:         batch,
		Single:        service.NewValidator(client, cred, logger.With("component", "validator")),
		Extract:       service.NewExtractor(codec, localstorage.NewLocalStorage(cfg.Storage.DataDir), logger.With("component", "extractor")),
		Codec:         codec,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cancelBatch := func() {
		if err := batch.Cancel(context.Background()); err == nil {
			logger.Info("cancelled running batch job")
		}
	}
	start := func() error { return server.Start(cfg.Server.Addr()) }
	if err := serve(logger, start, server.Shutdown, cancelBatch, sigCh, cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// serve runs start until a signal arrives on stop, then calls onStop and
// shuts down within timeout. After a signal it returns only once shutdown
// has finished draining requests.
func serve(
	logger *slog.Logger,
	start func() error,
	shutdown func(context.Context) error,
	onStop func(),
	stop <-chan os.Signal,
	timeout time.Duration,
) error {
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-stop:
		case <-quit:
			return
		}

		logger.Info("shutting down...")
		if onStop != nil {
			onStop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	err := start()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	close(quit)
	<-done
	return err
}
