// Package resilience holds the fault-tolerance policy for upstream
// calls. The policy is deliberately thin: a circuit breaker and nothing
// else. Every upstream request is a single attempt, because the data
// console re-issues requests on user action and a hidden retry would
// double-submit item writes.
package resilience

import (
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker creates the breaker guarding the upstream client.
// Only transport failures and 5xx responses count against it; client
// errors (4xx) pass through as successes. onStateChange, if non-nil, is
// invoked on every transition with the new state's name.
func NewCircuitBreaker(name string, onStateChange func(name, state string)) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 probes
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if onStateChange != nil {
				onStateChange(name, to.String())
			}
		},
	})
}
