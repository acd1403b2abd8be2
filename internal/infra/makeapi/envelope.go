package makeapi

import (
	"encoding/json"

	"github.com/makeapi/makeapi-bff-go/internal/domain"
)

// The upstream wraps responses inconsistently: sometimes the payload is
// the body itself, sometimes it sits under a "data" property, and the
// two styles can alternate between calls to the same route. The helpers
// below consolidate unwrapping in one place so the stores never look at
// the envelope themselves.

// decodeObject unmarshals an object payload into out, preferring an
// enclosed "data" property when it is itself an object. A body that is
// not an object either way is a protocol error.
func decodeObject[T any](raw []byte, out *T) error {
	candidate := raw
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &env) == nil && firstByte(env.Data) == '{' {
		candidate = env.Data
	}
	if firstByte(candidate) != '{' {
		return &domain.ErrProtocol{Message: "resposta inválida da API"}
	}
	if err := json.Unmarshal(candidate, out); err != nil {
		return &domain.ErrProtocol{Message: "resposta inválida da API"}
	}
	return nil
}

// decodeArray unmarshals an array payload, preferring an enclosed
// "data" property when it is itself an array. A body that is not an
// array either way yields the empty slice rather than an error: list
// routes degrade to "nothing here" instead of failing the page.
func decodeArray[T any](raw []byte) ([]T, error) {
	candidate := raw
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &env) == nil && firstByte(env.Data) == '[' {
		candidate = env.Data
	}
	if firstByte(candidate) != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(candidate, &out); err != nil {
		return nil, &domain.ErrProtocol{Message: "resposta inválida da API"}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// upstreamMessage pulls a human-readable message out of an upstream
// error body, falling back when the body has none.
func upstreamMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}

// upstreamStatus reads an explicit "status" field from an upstream
// error body; some routes report the real status there instead of on
// the HTTP response. Zero means absent.
func upstreamStatus(raw []byte) int {
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		return body.Status
	}
	return 0
}

func firstByte(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
