// Package makeapi provides the HTTP client for the upstream MakeAPI
// REST service, the system of record for endpoints, items and users.
// It implements port.AuthGateway, port.EndpointStore and port.ItemStore.
package makeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/makeapi/makeapi-bff-go/internal/domain"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("makeapi")

// Client wraps HTTP calls to the upstream MakeAPI service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a MakeAPI client. The bearer token is per-request
// (it travels with the caller's session), so the client itself holds no
// credentials.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		logger:     logger,
	}
}

// BaseURL exposes the configured upstream base, used by the self-loop
// guard in the auth service.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type httpResult struct {
	status int
	body   []byte
}

// doRequest executes one request against the upstream. There is exactly
// one attempt: no retry, no backoff. Non-2xx responses come back as
// *domain.ErrUpstream carrying the upstream's status and message.
func (c *Client) doRequest(ctx context.Context, method, path string, payload any, token string) ([]byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		c.logger.Error("makeapi: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	// Freshness guarantee: no intermediate cache may serve stale data.
	req.Header.Set("Cache-Control", "no-store")

	res, err := c.cb.Execute(func() (any, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 500 {
			// Counted as a breaker failure; 4xx is the caller's problem.
			return nil, &domain.ErrUpstream{
				Status:  resp.StatusCode,
				Message: upstreamMessage(body, "falha na API upstream"),
			}
		}
		return httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		var upstream *domain.ErrUpstream
		switch {
		case errors.As(err, &upstream):
			c.logger.Warn("makeapi: upstream 5xx",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", upstream.Status),
			)
			return nil, err
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.logger.Error("makeapi: circuit breaker open",
				zap.String("method", method),
				zap.String("path", path),
			)
			return nil, &domain.ErrUpstream{
				Status:  http.StatusServiceUnavailable,
				Message: "API upstream indisponível",
			}
		default:
			c.logger.Error("makeapi: request failed",
				zap.String("method", method),
				zap.String("path", path),
				zap.Error(err),
			)
			return nil, &domain.ErrUpstream{Message: "falha ao contactar a API upstream"}
		}
	}

	result := res.(httpResult)
	if result.status < 200 || result.status >= 300 {
		c.logger.Warn("makeapi: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", result.status),
			zap.String("body", string(result.body)),
		)
		msg := upstreamMessage(result.body, "falha na API upstream")
		status := result.status
		if s := upstreamStatus(result.body); s != 0 {
			status = s
		}
		return nil, &domain.ErrUpstream{Status: status, Message: msg}
	}

	c.logger.Debug("makeapi: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", result.status),
	)

	return result.body, nil
}
