package grpc_control

import (
	"context"
	"fmt"
	"net"

	"market-eye/src/config"
	"market-eye/src/logger"
	"market-eye/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// -----------------------------------------------------------------------------
// GRPCService handles gRPC server lifecycle
// -----------------------------------------------------------------------------

// serviceName is the health-check service identifier probed by orchestrators.
const serviceName = "market_eye.Engine"

// GRPCService exposes the engine's liveness over the standard gRPC health
// protocol. The serving status follows the source mode: any mode that still
// delivers data reads SERVING, only CONNECTING reads NOT_SERVING.
type GRPCService struct {
	server   *grpc.Server
	listener net.Listener
	health   *health.Server
	config   *config.Config
	logger   *logger.Logger
	running  bool
}

// -----------------------------------------------------------------------------

// NewGRPCService creates a new GRPCService instance.
func NewGRPCService(cfg *config.Config, lg *logger.Logger) (*GRPCService, error) {
	address := fmt.Sprintf("%s:%d", cfg.GRPCHost, cfg.GRPCPort)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	serverOptions := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(10 * 1024 * 1024), // 10MB
		grpc.MaxSendMsgSize(10 * 1024 * 1024), // 10MB
	}

	return &GRPCService{
		server:   grpc.NewServer(serverOptions...),
		listener: listener,
		health:   health.NewServer(),
		config:   cfg,
		logger:   lg,
		running:  false,
	}, nil
}

// -----------------------------------------------------------------------------

// Start registers the health service and serves in the background.
func (g *GRPCService) Start() error {
	g.logger.Info("Starting gRPC service on %s", g.listener.Addr().String())

	grpc_health_v1.RegisterHealthServer(g.server, g.health)
	g.health.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	go func() {
		g.running = true
		if err := g.server.Serve(g.listener); err != nil && err != grpc.ErrServerStopped {
			g.logger.Error("gRPC server failed: %v", err)
		}
		g.running = false
	}()

	g.logger.Info("gRPC service started successfully on %s", g.listener.Addr().String())
	return nil
}

// -----------------------------------------------------------------------------

// SetMode maps a source mode onto the health serving status.
func (g *GRPCService) SetMode(mode models.MSourceMode) {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if mode == models.ModeConnecting {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus(serviceName, status)
}

// -----------------------------------------------------------------------------

// Stop gracefully stops the gRPC server, forcing after the context deadline.
func (g *GRPCService) Stop(ctx context.Context) error {
	g.logger.Info("Stopping gRPC service...")

	if g.server != nil {
		done := make(chan struct{})
		go func() {
			g.server.GracefulStop()
			close(done)
		}()

		select {
		case <-ctx.Done():
			g.logger.Warning("gRPC graceful shutdown timeout, forcing stop...")
			g.server.Stop()
		case <-done:
			g.logger.Info("gRPC service stopped gracefully")
		}
	}

	if g.listener != nil {
		g.listener.Close()
	}

	g.running = false
	g.logger.Info("gRPC service stopped")
	return nil
}

// -----------------------------------------------------------------------------

// IsRunning returns whether the gRPC server is running.
func (g *GRPCService) IsRunning() bool {
	return g.running
}
