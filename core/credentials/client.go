// Package credentials talks to the session-creation collaborator: it mints
// the short-lived bearer credential and remote session descriptor a
// transport needs before it can negotiate, and keeps it fresh for
// long-lived connections.
package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tvrdic/voxlink-core/core/events"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const apiKeyEnv = "VOXLINK_API_KEY"

// ClientSecret is the ephemeral bearer credential for one session.
type ClientSecret struct {
	Value     string `json:"value"`
	ExpiresAt int64  `json:"expires_at"`
}

// Grant is the session descriptor returned by the collaborator: the remote
// session id, the bearer credential, and the negotiated defaults.
type Grant struct {
	ID           string       `json:"id"`
	ClientSecret ClientSecret `json:"client_secret"`
	events.SessionConfig
}

// ExpiresIn reports how long the credential stays valid from now. Zero when
// the collaborator sent no expiry.
func (g *Grant) ExpiresIn(now time.Time) time.Duration {
	if g.ClientSecret.ExpiresAt == 0 {
		return 0
	}
	return time.Unix(g.ClientSecret.ExpiresAt, 0).Sub(now)
}

type apiError struct {
	Err events.ErrorDetail `json:"error"`
}

// Client calls the session-creation endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetry   time.Duration
}

type Option func(*Client)

// WithAPIKey sets the bearer key explicitly instead of reading VOXLINK_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// WithRetryWindow bounds how long transient network failures are retried.
func WithRetryWindow(window time.Duration) Option {
	return func(c *Client) { c.maxRetry = window }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		maxRetry:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateSession POSTs the desired configuration and returns the granted
// session descriptor. Transient network failures are retried with
// exponential backoff; HTTP error statuses are not retried, they are the
// collaborator's final word.
func (c *Client) CreateSession(ctx context.Context, config events.SessionConfig) (*Grant, error) {
	ctx, span := tracer.Start(ctx, "create realtime session")
	defer span.End()

	apiKey := c.apiKey
	if apiKey == "" {
		key, ok := os.LookupEnv(apiKeyEnv)
		if !ok || key == "" {
			err := fmt.Errorf("api key not found: set %s or use WithAPIKey", apiKeyEnv)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		apiKey = key
	}

	body, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session config: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.maxRetry

	grant, err := backoff.RetryWithData(func() (*Grant, error) {
		return c.createSessionOnce(ctx, apiKey, body)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return grant, nil
}

func (c *Client) createSessionOnce(ctx context.Context, apiKey string, body []byte) (*Grant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build session request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach session endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read session response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		var payload apiError
		if err := json.Unmarshal(respBody, &payload); err == nil && payload.Err.Message != "" {
			return nil, backoff.Permanent(fmt.Errorf("session creation rejected: %s", payload.Err.Message))
		}
		return nil, backoff.Permanent(fmt.Errorf("session creation rejected: %s", resp.Status))
	}

	var grant Grant
	if err := json.Unmarshal(respBody, &grant); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to parse session grant: %w", err))
	}
	if grant.ClientSecret.Value == "" {
		return nil, backoff.Permanent(fmt.Errorf("session grant is missing a client secret"))
	}
	return &grant, nil
}
