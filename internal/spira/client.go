// Package spira provides functionality for interacting with the SpiraTeam REST API.
package spira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jira "github.com/andygrunwald/go-jira"
	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/danielolaszy/spira/internal/config"
	"github.com/danielolaszy/spira/internal/loader"
	"github.com/danielolaszy/spira/internal/logging"
	"github.com/danielolaszy/spira/pkg/models"
)

// servicePath is the REST endpoint root relative to the instance URL.
const servicePath = "Services/v5_0/RestService.svc/"

// resources maps each kind to the "assigned to me" collection.
var resources = map[models.Kind]string{
	models.KindRequirement: "requirements",
	models.KindTask:        "tasks",
	models.KindIncident:    "incidents",
}

// credentials is encoded onto every request when using API key auth.
type credentials struct {
	Username string `url:"username"`
	APIKey   string `url:"api-key"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Client encapsulates the SpiraTeam REST client.
type Client struct {
	baseURL    *url.URL
	config     config.SpiraConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport http.RoundTripper
}

// WithTransport sets the base round tripper that auth transports wrap.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient creates a new REST client for the configured instance.
func NewClient(cfg config.SpiraConfig, opts ...Option) (*Client, error) {
	if err := config.ValidateSpiraConfig(&config.Config{Spira: cfg}); err != nil {
		return nil, err
	}

	baseURL, err := parseBaseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	o := clientOptions{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	transport, err := authTransport(cfg, o.transport)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	logging.Info("spira configuration",
		"url", baseURL.String(),
		"auth", cfg.Auth,
		"username", cfg.Username,
		"api_key", logging.MaskSensitive(cfg.APIKey),
		"timeout", cfg.Timeout)

	return &Client{
		baseURL: baseURL,
		config:  cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// authTransport wraps base with the configured authentication scheme.
func authTransport(cfg config.SpiraConfig, base http.RoundTripper) (http.RoundTripper, error) {
	switch cfg.Auth {
	case config.AuthAPIKey, "":
		// Credentials travel as query parameters, see Client.newRequest
		return base, nil
	case config.AuthBasic:
		return &jira.BasicAuthTransport{
			Username:  cfg.Username,
			Password:  cfg.APIKey,
			Transport: base,
		}, nil
	case config.AuthToken:
		return &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}),
			Base:   base,
		}, nil
	}
	return nil, fmt.Errorf("unsupported auth scheme %q", cfg.Auth)
}

// BaseURL returns the instance URL used to resolve artifact links.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Assigned fetches the raw records of every artifact of kind assigned to the current user.
func (c *Client) Assigned(ctx context.Context, kind models.Kind) ([]loader.Record, error) {
	resource, ok := resources[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
	}

	logging.Debug("fetching assigned artifacts", "kind", kind)

	var records []loader.Record
	if err := c.get(ctx, resource, &records); err != nil {
		logging.Error("failed to fetch assigned artifacts", "kind", kind, "error", err)
		return nil, fmt.Errorf("failed to fetch assigned %ss: %w", kind, err)
	}

	if records == nil {
		records = []loader.Record{}
	}

	logging.Debug("fetched assigned artifacts", "kind", kind, "count", len(records))
	return records, nil
}

// HealthCheck verifies the credentials by listing the user's projects.
func (c *Client) HealthCheck(ctx context.Context) error {
	var projects []map[string]any
	if err := c.get(ctx, "projects", &projects); err != nil {
		return fmt.Errorf("spira health check failed: %w", err)
	}
	logging.Info("spira authentication successful", "username", c.config.Username, "projects", len(projects))
	return nil
}

func (c *Client) get(ctx context.Context, resource string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodGet, resource)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, resource string) (*http.Request, error) {
	u := c.baseURL.JoinPath(servicePath, resource)

	if c.config.Auth == config.AuthAPIKey || c.config.Auth == "" {
		params, err := query.Values(credentials{Username: c.config.Username, APIKey: c.config.APIKey})
		if err != nil {
			return nil, fmt.Errorf("failed to encode credentials: %w", err)
		}
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	return req, nil
}
