package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   map[string]any `json:"metrics,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Height     int64                      `json:"height"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// InvariantChecker reports whether any dex invariant is broken
type InvariantChecker interface {
	CheckInvariants(ctx context.Context) (string, bool)
}

// Monitor serves health probes and Prometheus metrics
type Monitor struct {
	backend    Backend
	invariants InvariantChecker
	logger     log.Logger

	mu            sync.RWMutex
	lastCheck     time.Time
	cachedHealth  *HealthCheck
	cacheDuration time.Duration
}

// NewMonitor creates a monitor. invariants may be nil.
func NewMonitor(backend Backend, invariants InvariantChecker, logger log.Logger) *Monitor {
	return &Monitor{
		backend:       backend,
		invariants:    invariants,
		logger:        logger.With("module", "monitor"),
		cacheDuration: 5 * time.Second,
	}
}

// RegisterRoutes registers the health and metrics endpoints
func (m *Monitor) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", m.handleLiveness).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", m.handleReadiness).Methods(http.MethodGet)
	router.HandleFunc("/health/detailed", m.handleDetailed).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

// Handler returns the monitoring router wrapped in recovery and compression
func (m *Monitor) Handler() http.Handler {
	router := mux.NewRouter()
	m.RegisterRoutes(router)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(handlers.CompressHandler(router))
}

// Start serves the monitor until ctx is cancelled
func (m *Monitor) Start(ctx context.Context, address string) error {
	return serve(ctx, m.logger, &http.Server{
		Addr:              address,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}, 5*time.Second)
}

// Check runs the store check and, when detailed, the invariants
func (m *Monitor) Check(ctx context.Context, detailed bool) *HealthCheck {
	if !detailed {
		m.mu.RLock()
		if m.cachedHealth != nil && time.Since(m.lastCheck) < m.cacheDuration {
			defer m.mu.RUnlock()
			return m.cachedHealth
		}
		m.mu.RUnlock()
	}

	health := &HealthCheck{
		Timestamp:  time.Now(),
		Height:     m.backend.Height(),
		Components: map[string]ComponentHealth{"store": m.checkStore(ctx)},
	}
	if detailed && m.invariants != nil {
		health.Components["invariants"] = m.checkInvariants(ctx)
	}
	health.Status = overallStatus(health.Components)

	if !detailed {
		m.mu.Lock()
		m.lastCheck = time.Now()
		m.cachedHealth = health
		m.mu.Unlock()
	}
	return health
}

func (m *Monitor) checkStore(ctx context.Context) ComponentHealth {
	start := time.Now()
	markets := 0
	err := m.backend.Query(ctx, func(sdkCtx sdk.Context) error {
		pools, err := m.backend.Querier().Pools(sdkCtx)
		if err != nil {
			return err
		}
		markets = len(pools.Pools)
		return nil
	})
	if err != nil {
		return ComponentHealth{Status: StatusUnhealthy, Message: err.Error(), Timestamp: time.Now()}
	}

	status, message := StatusHealthy, "store is readable"
	if m.backend.Height() == 0 {
		status, message = StatusDegraded, "genesis not loaded"
	}
	return ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
		Metrics: map[string]any{
			"markets":          markets,
			"response_time_ms": time.Since(start).Milliseconds(),
		},
	}
}

func (m *Monitor) checkInvariants(ctx context.Context) ComponentHealth {
	msg, broken := m.invariants.CheckInvariants(ctx)
	if broken {
		m.logger.Error("invariant broken", "report", msg)
		return ComponentHealth{Status: StatusUnhealthy, Message: msg, Timestamp: time.Now()}
	}
	return ComponentHealth{Status: StatusHealthy, Message: "all invariants hold", Timestamp: time.Now()}
}

func overallStatus(components map[string]ComponentHealth) Status {
	status := StatusHealthy
	for _, c := range components {
		switch c.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// handleLiveness answers as long as the process serves requests
func (m *Monitor) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    StatusHealthy,
		"timestamp": time.Now().Unix(),
		"height":    m.backend.Height(),
	})
}

// handleReadiness is 200 only when the store is readable and initialized
func (m *Monitor) handleReadiness(w http.ResponseWriter, r *http.Request) {
	health := m.Check(r.Context(), false)
	code := http.StatusOK
	if health.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

// handleDetailed includes the invariant report
func (m *Monitor) handleDetailed(w http.ResponseWriter, r *http.Request) {
	health := m.Check(r.Context(), true)
	code := http.StatusOK
	if health.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, health)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
