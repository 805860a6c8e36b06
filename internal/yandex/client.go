// Package yandex is the outbound HTTP transport for the Yandex ID and
// Yandex 360 APIs. It knows URLs, headers and status codes; it does not
// reshape payloads.
package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/nekogravitycat/directory-portal/internal/pkg/metrics"
)

// Error is the error class for transport failures.
var Error = errs.Class("yandex")

const (
	DefaultLoginInfoURL = "https://login.yandex.ru/info"
	DefaultAPI360URL    = "https://api360.yandex.net"
	DefaultAvatarURL    = "https://avatars.yandex.net"
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "directory-portal-proxy"

	// maxBodyBytes caps how much of any upstream body is read.
	maxBodyBytes = 4 << 20
)

// UpstreamError is returned when the remote API answered with a non-2xx status.
type UpstreamError struct {
	Endpoint string
	Status   int
	Body     []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Endpoint, e.Status)
}

// Payload returns the body as raw JSON when it is JSON, otherwise as a string.
func (e *UpstreamError) Payload() any {
	trimmed := bytes.TrimSpace(e.Body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	return string(trimmed)
}

// StatusOf reports the upstream HTTP status carried by err, if any.
func StatusOf(err error) (int, bool) {
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Status, true
	}
	return 0, false
}

// OAuthHeader formats a bearer token the way Yandex APIs expect it.
func OAuthHeader(token string) string {
	return "OAuth " + token
}

// Config holds the upstream locations and the uniform request timeout.
type Config struct {
	LoginInfoURL string
	API360URL    string
	AvatarURL    string
	Timeout      time.Duration
	UserAgent    string
}

func (c Config) withDefaults() Config {
	if c.LoginInfoURL == "" {
		c.LoginInfoURL = DefaultLoginInfoURL
	}
	if c.API360URL == "" {
		c.API360URL = DefaultAPI360URL
	}
	if c.AvatarURL == "" {
		c.AvatarURL = DefaultAvatarURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	c.LoginInfoURL = strings.TrimRight(c.LoginInfoURL, "/")
	c.API360URL = strings.TrimRight(c.API360URL, "/")
	c.AvatarURL = strings.TrimRight(c.AvatarURL, "/")
	return c
}

// Client performs requests against the Yandex APIs.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a Client. A nil logger disables logging.
func NewClient(cfg Config, log *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// WithHTTPClient replaces the underlying http.Client, keeping the configured timeout.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc == nil {
		return c
	}
	cp := *hc
	if cp.Timeout == 0 {
		cp.Timeout = c.cfg.Timeout
	}
	return &Client{cfg: c.cfg, http: &cp, log: c.log}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Request describes a single outbound call.
type Request struct {
	// Endpoint is a short label used for logs and metrics.
	Endpoint      string
	Method        string
	URL           string
	Authorization string
	Body          any
	Header        http.Header
}

// Do executes req and returns the response body. Non-2xx answers come back
// as *UpstreamError; network failures are wrapped in Error.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	var body io.Reader
	if req.Body != nil {
		switch b := req.Body.(type) {
		case json.RawMessage:
			body = bytes.NewReader(b)
		case []byte:
			body = bytes.NewReader(b)
		default:
			data, err := json.Marshal(b)
			if err != nil {
				return nil, Error.New("encode %s body: %v", req.Endpoint, err)
			}
			body = bytes.NewReader(data)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Authorization != "" {
		httpReq.Header.Set("Authorization", req.Authorization)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveUpstream(req.Endpoint, 0, time.Since(start))
		c.log.Warn("upstream request failed",
			zap.String("endpoint", req.Endpoint),
			zap.String("method", req.Method),
			zap.Error(err),
		)
		return nil, Error.New("%s %s: %v", req.Method, req.Endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	metrics.ObserveUpstream(req.Endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, Error.New("read %s body: %v", req.Endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug("upstream returned error status",
			zap.String("endpoint", req.Endpoint),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", data),
		)
		return nil, &UpstreamError{Endpoint: req.Endpoint, Status: resp.StatusCode, Body: data}
	}

	return data, nil
}
