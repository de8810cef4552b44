package fsr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultsFetcher is implemented by *Client and by test doubles.
type DefaultsFetcher interface {
	FetchDefaults(ctx context.Context) (Defaults, error)
}

// Ensure Client implements DefaultsFetcher at compile time.
var _ DefaultsFetcher = (*Client)(nil)

// Client talks to the pad server's HTTP endpoints.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	DefaultHost      = "localhost:5000"
	defaultUserAgent = "fsrmon/0.1"
	requestTimeout   = 5 * time.Second
	wsPath           = "/ws"
	defaultsPath     = "/defaults"
)

// NewClient builds a Client for the given host:port or URL.
func NewClient(host string) (*Client, error) {
	base, err := parseBaseURL(host)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchDefaults retrieves the bootstrap configuration. A payload without
// thresholds is rejected because the channel count derives from it.
func (c *Client) FetchDefaults(ctx context.Context) (Defaults, error) {
	if c == nil {
		return Defaults{}, fmt.Errorf("client is nil")
	}
	var payload Defaults
	if err := c.do(ctx, http.MethodGet, defaultsPath, &payload); err != nil {
		return Defaults{}, err
	}
	if payload.Channels() == 0 {
		return Defaults{}, fmt.Errorf("api %s returned no thresholds", defaultsPath)
	}
	return payload, nil
}

// WebsocketURL returns the realtime endpoint on the same host.
func (c *Client) WebsocketURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = wsPath
	return u.String()
}

// UserAgent is sent on HTTP requests and the websocket handshake.
func (c *Client) UserAgent() string {
	return c.userAgent
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(host string) (*url.URL, error) {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		trimmed = DefaultHost
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse host %q: %w", host, err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
