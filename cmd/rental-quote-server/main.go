package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/rental-quote/internal/config"
	"github.com/iwvelando/rental-quote/internal/observability"
	"github.com/iwvelando/rental-quote/internal/server"
	"github.com/iwvelando/rental-quote/internal/store"
	"github.com/iwvelando/rental-quote/pkg/constants"
	"go.uber.org/zap"
)

var version = "dev"

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}

	loggingConfig := conf.Logging
	if serverConf.Logging != (config.LoggingConfig{}) {
		loggingConfig = serverConf.Logging
	}
	logger, err := config.NewLogger(loggingConfig, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := store.Open(ctx, conf.StoreOptions())
	if err != nil {
		logger.Fatal("failed to open storage",
			zap.String("op", "main"),
			zap.String("backend", conf.Storage.Backend),
			zap.Error(err),
		)
	}
	defer func() {
		_ = kv.Close()
	}()

	catalog, err := conf.LoadCatalog()
	if err != nil {
		logger.Fatal("failed to load tariff tables",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	registry, metrics := observability.NewRegistry()
	handler := server.NewHandler(server.Options{
		Catalog:     catalog,
		Overrides:   store.NewOverrideStore(kv, logger),
		Preferences: store.NewPreferences(kv, conf.Preferences.DefaultTheme, logger),
		Metrics:     metrics,
		Registry:    registry,
		Logger:      logger,
		Version:     version,
		MaxBodySize: serverConf.BodySizeBytes(),
		RateLimit:   serverConf.RateLimit,
	})
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ln, err := net.Listen("tcp", serverConf.Address)
	if err != nil {
		logger.Fatal("failed to listen",
			zap.String("op", "main"),
			zap.String("addr", serverConf.Address),
			zap.Error(err),
		)
	}

	logger.Info("HTTP server starting",
		zap.String("op", "main"),
		zap.String("addr", ln.Addr().String()),
		zap.String("storage", conf.Storage.Backend),
	)
	if err := serve(ctx, srv, ln, shutdownTimeout); err != nil {
		logger.Error("http server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return
	}
	logger.Info("HTTP server stopped", zap.String("op", "main"))
}

// serve runs srv on ln until ctx is cancelled, then waits up to timeout for
// in-flight requests to finish before returning.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
		defer cancelShutdown()
		shutdownDone <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	cancel()
	if err := <-shutdownDone; err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}
