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

	"market-eye/src/config"
	"market-eye/src/engine"
	"market-eye/src/failover"
	"market-eye/src/grpc_control"
	"market-eye/src/instrumentation"
	"market-eye/src/interfaces"
	"market-eye/src/logger"
	"market-eye/src/models"
	"market-eye/src/publishers"
	"market-eye/src/serializers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// renderInterval paces the breadth tick decay.
const renderInterval = 250 * time.Millisecond

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file; fall back to the built-in universe when the
	// file is absent so the engine still comes up fully simulated.
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = config.DefaultConfig()
		} else {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// Prometheus metrics and endpoint
	metrics := instrumentation.NewMetrics()
	if cfg.HTTPPort != 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			addr := fmt.Sprintf(":%d", cfg.HTTPPort)
			appLogger.Info("metrics endpoint listening on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				appLogger.Error("metrics endpoint failed: %v", err)
			}
		}()
	}

	// Optional NATS republishing
	var publisher interfaces.IPublisher
	if len(cfg.NATS.Servers) > 0 {
		publisher = publishers.NewNATSPublisher(&cfg.NATS, appLogger, serializers.NewJSONSerializer())
		if err := publisher.Connect(); err != nil {
			appLogger.Warning("NATS unavailable, continuing without republishing: %v", err)
			publisher = nil
		} else {
			defer publisher.Disconnect()
		}
	}

	// Engine and event loop
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	marketEngine := engine.NewMarketEngine(cfg, appLogger, publisher, metrics)
	go marketEngine.Run(ctx)

	// gRPC control plane (health)
	var controlService *grpc_control.GRPCService
	if cfg.GRPCPort != 0 {
		controlService, err = grpc_control.NewGRPCService(cfg, appLogger)
		if err != nil {
			appLogger.Critical("failed to create control service: %v", err)
			os.Exit(1)
		}
		if err := controlService.Start(); err != nil {
			appLogger.Critical("control server error: %v", err)
			os.Exit(1)
		}
		defer controlService.Stop(context.Background())
	}

	onModeChange := func(mode models.MSourceMode) {
		if controlService != nil {
			controlService.SetMode(mode)
		}
	}

	// Source failover
	controller := failover.NewController(cfg, appLogger, marketEngine, metrics, onModeChange)
	if err := controller.Start(ctx); err != nil {
		appLogger.Critical("failed to start failover controller: %v", err)
		os.Exit(1)
	}
	defer controller.Stop()

	// Render pacing for the breadth gauge decay
	go func() {
		ticker := time.NewTicker(renderInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				marketEngine.RenderTick()
			}
		}
	}()

	appLogger.Info("market eye running. metrics: :%d, gRPC: %s:%d",
		cfg.HTTPPort, cfg.GRPCHost, cfg.GRPCPort)
	appLogger.Info("Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("shutting down...")
}
