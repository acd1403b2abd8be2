package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	guardDecisions  *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	breakerOpen     *prometheus.GaugeVec

	mu            sync.Mutex
	breakerStates map[string]string
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bff_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		upstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_upstream_errors_total",
				Help: "Total errors from the upstream MakeAPI service.",
			},
			[]string{"operation"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		guardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_guard_decisions_total",
				Help: "Route guard outcomes (allowed, to_login, to_home).",
			},
			[]string{"decision"},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bff_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
		breakerOpen: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bff_breaker_open",
				Help: "1 when the named circuit breaker is open, 0 otherwise.",
			},
			[]string{"breaker"},
		),

		breakerStates: make(map[string]string),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrUpstreamError increments the upstream error counter.
func (m *Metrics) IncrUpstreamError(operation string) {
	m.upstreamErrors.WithLabelValues(operation).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrGuardDecision increments the route-guard decision counter.
func (m *Metrics) IncrGuardDecision(decision string) {
	m.guardDecisions.WithLabelValues(decision).Inc()
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// SetBreakerState records a circuit breaker transition. Matches the
// resilience package's state-change hook signature.
func (m *Metrics) SetBreakerState(name, state string) {
	v := float64(0)
	if state == "open" {
		v = 1
	}
	m.breakerOpen.WithLabelValues(name).Set(v)

	m.mu.Lock()
	m.breakerStates[name] = state
	m.mu.Unlock()
}

// Snapshot is a coarse health view of the proxy, served on /healthz so
// an operator sees error pressure without scraping Prometheus.
type Snapshot struct {
	TotalRequests  int64   `json:"totalRequests"`
	UpstreamErrors int64   `json:"upstreamErrors"`
	CacheHitRate   float64 `json:"cacheHitRate"`
	BreakerState   string  `json:"breakerState"`
}

// GetSnapshot gathers current counter values.
func (m *Metrics) GetSnapshot() Snapshot {
	total := getCounterValue(m.requestsTotal, "success") +
		getCounterValue(m.requestsTotal, "error")

	var upstream float64
	for _, op := range []string{"login", "me", "endpoints", "items"} {
		upstream += getCounterValue(m.upstreamErrors, op)
	}

	hits := getCounterValue(m.cacheHits, "identity")
	misses := getCounterValue(m.cacheMisses, "identity")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	state := "closed"
	m.mu.Lock()
	for _, s := range m.breakerStates {
		state = s
	}
	m.mu.Unlock()

	return Snapshot{
		TotalRequests:  int64(total),
		UpstreamErrors: int64(upstream),
		CacheHitRate:   hitRate,
		BreakerState:   state,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
