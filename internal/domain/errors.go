package domain

import "fmt"

// Error types for consistent error handling across the BFF. Every proxy
// operation converts failures into one of these before they reach the
// HTTP boundary.

// ErrValidation indicates missing or malformed caller input.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthenticated indicates a missing or invalid session.
type ErrUnauthenticated struct {
	Message string
}

func (e *ErrUnauthenticated) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "não autenticado"
}

// ErrUpstream indicates the upstream service answered with a non-2xx
// status. Status is forwarded verbatim to the caller; 0 maps to 502.
type ErrUpstream struct {
	Status  int
	Message string
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}

// HTTPStatus returns the status to propagate, defaulting to 502 when the
// upstream gave none.
func (e *ErrUpstream) HTTPStatus() int {
	if e.Status >= 100 {
		return e.Status
	}
	return 502
}

// ErrProtocol indicates the upstream response was unparseable or missed
// required fields. Always surfaced as 502.
type ErrProtocol struct {
	Message string
}

func (e *ErrProtocol) Error() string {
	return e.Message
}

// ErrNotFound indicates the entity is absent, or an ownership mismatch.
// Ownership mismatches are deliberately 404, not 403: the item's
// existence outside its endpoint context is not revealed.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConfiguration indicates the service is wired to recurse into
// itself (upstream base URL resolving to the route's own origin+path).
type ErrConfiguration struct {
	Message string
}

func (e *ErrConfiguration) Error() string {
	return e.Message
}
