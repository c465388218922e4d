package rpc

import (
	"net"

	"github.com/wfunc/tugofwar/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServiceName is the service name reported by the health endpoint in
// addition to the empty (whole server) name.
const HealthServiceName = "tugofwar.Lobby"

// HealthServer serves the standard gRPC health protocol for load balancers
// and orchestrators.
type HealthServer struct {
	listener net.Listener
	grpc     *grpc.Server
	health   *health.Server
}

func NewHealthServer(addr string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return newHealthServer(listener), nil
}

func newHealthServer(listener net.Listener) *HealthServer {
	h := &HealthServer{
		listener: listener,
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
	}
	healthpb.RegisterHealthServer(h.grpc, h.health)
	h.SetServing(true)
	return h
}

func (h *HealthServer) Addr() string {
	return h.listener.Addr().String()
}

// SetServing flips both the server-wide and the named service status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(HealthServiceName, status)
}

// Start blocks serving until Stop.
func (h *HealthServer) Start() {
	logger.Log.Infof("gRPC health server listening on %s", h.Addr())
	if err := h.grpc.Serve(h.listener); err != nil {
		logger.Log.Errorf("gRPC health server stopped: %v", err)
	}
}

// Stop reports NOT_SERVING to watchers and then stops the server.
func (h *HealthServer) Stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
