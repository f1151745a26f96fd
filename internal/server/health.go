package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/k8s"
	"github.com/GeorgeNiotis/bevel-operator-fabric/internal/logging"
)

// clusterProbeTimeout bounds the connection test run by the detailed endpoint.
const clusterProbeTimeout = 5 * time.Second

// Modes reported by the detailed health endpoint.
const (
	ModeUnknown   = "unknown"
	ModeDisabled  = "disabled"
	ModeInCluster = "in-cluster"
	ModeLocal     = "local"
)

// HealthChecker provides health check endpoints for Kubernetes probes.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a new HealthChecker. It starts ready.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady returns whether the server is ready to receive traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}

// DetailedHealthResponse adds the cluster connection and registry sizes.
type DetailedHealthResponse struct {
	Status          string                      `json:"status"`
	Mode            string                      `json:"mode"`
	Version         string                      `json:"version,omitempty"`
	Uptime          string                      `json:"uptime"`
	Cluster         *k8s.ConnectionStatus       `json:"cluster,omitempty"`
	Registry        *RegistryStatus             `json:"registry,omitempty"`
	Instrumentation *InstrumentationHealthCheck `json:"instrumentation,omitempty"`
}

// RegistryStatus reports how many tools and prompts are being served.
type RegistryStatus struct {
	Tools   int `json:"tools"`
	Prompts int `json:"prompts"`
}

// InstrumentationHealthCheck provides health information about instrumentation.
type InstrumentationHealthCheck struct {
	Enabled bool `json:"enabled"`
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := HealthResponse{Status: "ok"}
		if h.serverContext != nil && h.serverContext.Config() != nil {
			response.Version = h.serverContext.Config().Version
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
// It never calls the cluster: a gateway without a reachable cluster still
// answers protocol requests and reports per-call failures.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		if !h.ready.Load() {
			checks["ready"] = "not ready"
			allOk = false
		} else {
			checks["ready"] = "ok"
		}

		if h.serverContext != nil && h.serverContext.IsShutdown() {
			checks["shutdown"] = "shutting down"
			allOk = false
		} else {
			checks["shutdown"] = "ok"
		}

		if h.serverContext != nil {
			if provider := h.serverContext.InstrumentationProvider(); provider != nil {
				if provider.Enabled() {
					checks["instrumentation"] = "ok"
				} else {
					checks["instrumentation"] = "disabled"
				}
			}
			if client := h.serverContext.K8sClient(); client != nil && client.Connection().Disabled {
				checks["kubernetes"] = "disabled"
			}
		}

		response := HealthResponse{Checks: checks}
		if allOk {
			response.Status = "ok"
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = "not ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// DetailedHealthHandler returns an HTTP handler for the /healthz/detailed
// endpoint. Unlike readiness it tests the cluster connection.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		response := DetailedHealthResponse{
			Status: "ok",
			Mode:   h.determineMode(),
			Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
		}

		if sc := h.serverContext; sc != nil {
			if sc.Config() != nil {
				response.Version = sc.Config().Version
			}
			response.Cluster = h.clusterStatus(r.Context())
			response.Registry = h.registryStatus()
			response.Instrumentation = &InstrumentationHealthCheck{
				Enabled: sc.InstrumentationProvider() != nil && sc.InstrumentationProvider().Enabled(),
			}
		}

		switch {
		case !h.ready.Load():
			response.Status = "not ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		case h.serverContext != nil && h.serverContext.IsShutdown():
			response.Status = "shutting down"
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

func (h *HealthChecker) determineMode() string {
	if h.serverContext == nil || h.serverContext.K8sClient() == nil {
		return ModeUnknown
	}

	conn := h.serverContext.K8sClient().Connection()
	switch {
	case conn.Disabled:
		return ModeDisabled
	case conn.CurrentContext == k8s.InClusterContext:
		return ModeInCluster
	default:
		return ModeLocal
	}
}

func (h *HealthChecker) clusterStatus(ctx context.Context) *k8s.ConnectionStatus {
	client := h.serverContext.K8sClient()
	if client == nil || client.Connection().Disabled {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, clusterProbeTimeout)
	defer cancel()

	status := client.TestConnection(ctx)
	if status.Endpoint != "" {
		status.Endpoint = logging.SanitizeHost(status.Endpoint)
	}
	if status.Error != "" {
		status.Error = logging.SanitizeHost(status.Error)
	}
	return &status
}

func (h *HealthChecker) registryStatus() *RegistryStatus {
	engine := h.serverContext.Engine()
	if engine == nil {
		return nil
	}
	return &RegistryStatus{
		Tools:   len(engine.ListCapabilities().Tools),
		Prompts: len(engine.ListPrompts().Prompts),
	}
}
