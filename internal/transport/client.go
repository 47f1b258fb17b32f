// Package transport performs the upstream round trip for a CapabilityRequest
// and decodes the body into a wire.Payload.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"jinaai/internal/apierr"
	"jinaai/internal/config"
	"jinaai/internal/logging"
	"jinaai/internal/wire"
)

// maxBodyBytes bounds a response body (screenshots included). Larger bodies
// fail rather than being cut short.
const maxBodyBytes = 32 << 20

// Client executes capability requests. Identical in-flight requests are
// coalesced and successful payloads are cached unless the request sets
// X-No-Cache.
type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
	cache     *ResponseCache
	group     singleflight.Group
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache replaces the response cache; nil disables caching.
func WithCache(cache *ResponseCache) Option {
	return func(c *Client) { c.cache = cache }
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		userAgent: cfg.API.UserAgent,
		maxBody:   maxBodyBytes,
	}
	if cfg.Cache.Enabled {
		c.cache = NewResponseCache(cfg.Cache.MaxEntries, cfg.GetCacheTTL())
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.userAgent == "" {
		c.userAgent = config.DefaultUserAgent
	}
	return c
}

// Cache exposes the response cache (nil when disabled).
func (c *Client) Cache() *ResponseCache { return c.cache }

// Do sends req and decodes the response. Non-2xx statuses come back as
// *apierr.HTTPError; network failures are returned wrapped, unclassified.
func (c *Client) Do(ctx context.Context, req *wire.CapabilityRequest) (wire.Payload, error) {
	key := Fingerprint(req)
	useCache := c.cache != nil && !req.NoCache()

	if useCache {
		if entry, ok := c.cache.Get(key); ok {
			logging.TransportDebug("Cache hit: %s %s (key=%s)", req.Method, req.URL, key)
			return entry.Payload, nil
		}
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.roundTrip(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.TransportDebug("Coalesced in-flight request: %s %s", req.Method, req.URL)
	}

	payload := v.(wire.Payload)
	if useCache {
		c.cache.Set(key, payload, req.Capability)
	}
	return payload, nil
}

func (c *Client) roundTrip(ctx context.Context, req *wire.CapabilityRequest) (wire.Payload, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	if logging.IsCategoryEnabled(logging.CategoryTransport) {
		logging.TransportDebug("%s %s (kind=%s, headers=%s)", req.Method, req.URL, req.ResponseKind, headerNames(req.Headers))
	}
	timer := logging.StartTimer(logging.CategoryTransport, fmt.Sprintf("%s %s", req.Method, req.URL))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		logging.TransportError("%s %s failed: %v", req.Method, req.URL, err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		logging.TransportError("%s %s: body exceeds %d bytes", req.Method, req.URL, c.maxBody)
		return nil, apierr.New(apierr.TransportError, "%s response exceeds %d bytes", req.Capability.Label(), c.maxBody)
	}
	timer.StopWithThreshold(30 * time.Second)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.TransportError("%s %s -> HTTP %d", req.Method, req.URL, resp.StatusCode)
		return nil, &apierr.HTTPError{Status: resp.StatusCode, Body: string(data)}
	}

	payload := wire.DecodePayload(req.ResponseKind, resp.Header.Get("Content-Type"), data)
	logging.Transport("%s %s -> HTTP %d, %d bytes, %T", req.Method, req.URL, resp.StatusCode, len(data), payload)
	return payload, nil
}

// headerNames lists header names only; values may carry the credential.
func headerNames(headers map[string]string) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
