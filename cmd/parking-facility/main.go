package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"parking-facility/internal/config"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
	"parking-facility/internal/server"
)

var (
	mode       = flag.String("mode", "cli", "Mode to run: cli, server, or both")
	port       = flag.Int("port", 0, "Port for HTTP server (overrides config)")
	configFile = flag.String("config", "", "Path to YAML config file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger := logging.New(logging.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
	})
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := newTelemetry(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize telemetry", zap.Error(err))
	}

	lot, err := newParkingLot(cfg, telemetryProvider, logger)
	if err != nil {
		logger.Fatal("failed to build parking facility", zap.Error(err))
	}
	logger.Info("parking facility ready",
		zap.Int("capacity", lot.Capacity()),
		zap.Int("gates", len(lot.Gates())),
		zap.String("allocation", cfg.Allocation.Strategy),
		zap.String("pricing", cfg.Pricing.Strategy))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, lot, logger, sigChan)
	case "server":
		runServer(cancel, cfg, lot, logger, sigChan)
	case "both":
		runBoth(ctx, cancel, cfg, lot, logger, sigChan)
	default:
		logger.Fatal("invalid mode, must be cli, server, or both", zap.String("mode", *mode))
	}

	shutdownTelemetry(telemetryProvider, logger)
}

func newTelemetry(ctx context.Context, cfg *config.Config) (*parking.TelemetryProvider, error) {
	if !cfg.Telemetry.Enabled {
		return parking.NewLocalTelemetryProvider(), nil
	}
	return parking.NewTelemetryProvider(ctx, parking.TelemetryConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		OTLPEndpoint:   cfg.Telemetry.Endpoint,
		ExportInterval: cfg.Telemetry.ExportInterval,
	})
}

func newParkingLot(cfg *config.Config, telemetryProvider *parking.TelemetryProvider, logger *logging.Logger) (*parking.InstrumentedParkingLot, error) {
	layout, err := cfg.Layout()
	if err != nil {
		return nil, err
	}
	pricing, err := cfg.PricingStrategy()
	if err != nil {
		return nil, err
	}
	allocation, err := cfg.AllocationStrategy()
	if err != nil {
		return nil, err
	}

	base, err := parking.NewParkingLotFromLayout(layout, pricing, allocation,
		parking.WithGateDirectionPolicy(cfg.Facility.EnforceEntryGates))
	if err != nil {
		return nil, err
	}
	return parking.NewInstrumentedParkingLot(base, telemetryProvider, logger)
}

func runCLI(ctx context.Context, cancel context.CancelFunc, lot *parking.InstrumentedParkingLot, logger *logging.Logger, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logger.Info("shutting down")
		cancel()
	}()

	parking.NewShell(lot, os.Stdin, os.Stdout).Run(ctx)
}

func runServer(cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedParkingLot, logger *logging.Logger, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Server, cfg.App.Name, lot, logger)

	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		shutdownServer(srv, cfg.Server.ShutdownTimeout, logger)
		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", zap.Error(err))
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, lot *parking.InstrumentedParkingLot, logger *logging.Logger, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Server, cfg.App.Name, lot, logger)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start()
	}()

	cliDone := make(chan struct{})
	go func() {
		parking.NewShell(lot, os.Stdin, os.Stdout).Run(ctx)
		close(cliDone)
	}()

	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	select {
	case err := <-serverDone:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	case <-cliDone:
		logger.Info("CLI exited")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	shutdownServer(srv, cfg.Server.ShutdownTimeout, logger)
}

func shutdownServer(srv *server.Server, timeout time.Duration, logger *logging.Logger) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider, logger *logging.Logger) {
	logger.Info("shutting down telemetry")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("error shutting down telemetry", zap.Error(err))
	}
}
