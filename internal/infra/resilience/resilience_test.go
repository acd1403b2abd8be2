package resilience_test

import (
	"errors"
	"testing"

	"github.com/makeapi/makeapi-bff-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
)

func TestCircuitBreaker_StaysClosedUnderLightFailure(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", nil)

	for i := 0; i < 4; i++ {
		_, _ = cb.Execute(func() (any, error) {
			return nil, errors.New("upstream down")
		})
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed below the request threshold, got %v", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterFailureRatio(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", nil)

	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (any, error) {
			return nil, errors.New("upstream down")
		})
	}

	if cb.State() != gobreaker.StateOpen {
		t.Errorf("expected open after sustained failures, got %v", cb.State())
	}

	_, err := cb.Execute(func() (any, error) { return "ok", nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState while open, got %v", err)
	}
}

func TestCircuitBreaker_ReportsStateChanges(t *testing.T) {
	var states []string
	cb := resilience.NewCircuitBreaker("test", func(name, state string) {
		states = append(states, state)
	})

	for i := 0; i < 6; i++ {
		_, _ = cb.Execute(func() (any, error) {
			return nil, errors.New("upstream down")
		})
	}

	if len(states) == 0 || states[len(states)-1] != "open" {
		t.Errorf("expected an open transition to be reported, got %v", states)
	}
}

func TestCircuitBreaker_SuccessesKeepItClosed(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", nil)

	for i := 0; i < 10; i++ {
		if _, err := cb.Execute(func() (any, error) { return "ok", nil }); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("expected closed, got %v", cb.State())
	}
}
