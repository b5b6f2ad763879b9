package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/cinevibe/cinevibe/internal/apperr"
)

// TokenSource supplies the bearer token for each request.
type TokenSource interface {
	Token() (string, error)
}

// Options configure a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	Tokens            TokenSource
	Logger            *zap.Logger
	HTTPClient        *http.Client
}

// Client talks to the CineVibe REST API.
type Client struct {
	baseURL    *url.URL
	http       *http.Client
	userAgent  string
	tokens     TokenSource
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
	logger     *zap.Logger
}

const (
	defaultBaseURL   = "https://api.cinevibe.app"
	defaultUserAgent = "cinevibe-tui/0.1"
	defaultTimeout   = 10 * time.Second
	defaultRetryBase = 200 * time.Millisecond
	maxRetryDelay    = 2 * time.Second
	maxErrorBody     = 64 * 1024
)

// NewClient builds a Client for the given options.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := opts.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL:    base,
		http:       httpClient,
		userAgent:  defaultUserAgent,
		tokens:     opts.Tokens,
		limiter:    limiter,
		maxRetries: retries,
		retryBase:  defaultRetryBase,
		logger:     logger.Named("api"),
	}, nil
}

type request struct {
	method string
	rel    *url.URL
	body   any
	dest   any
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.do(ctx, request{method: http.MethodGet, rel: &url.URL{Path: path, RawQuery: query.Encode()}, dest: dest})
}

func (c *Client) send(ctx context.Context, method, path string, body, dest any) error {
	return c.do(ctx, request{method: method, rel: &url.URL{Path: path}, body: body, dest: dest})
}

func (c *Client) do(ctx context.Context, r request) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var payload []byte
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return apperr.Unknown(fmt.Errorf("encode request: %w", err))
		}
		payload = encoded
	}
	idempotencyKey := ""
	if r.method == http.MethodPost {
		idempotencyKey = uuid.NewString()
	}

	for attempt := 0; ; attempt++ {
		err := c.attempt(ctx, r, payload, idempotencyKey)
		if err == nil {
			return nil
		}
		if !retryable(r.method, idempotencyKey != "", err) || attempt >= c.maxRetries {
			return err
		}
		delay := retryDelay(attempt, c.retryBase)
		c.logger.Debug("retrying request",
			zap.String("method", r.method),
			zap.String("path", r.rel.Path),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) attempt(ctx context.Context, r request, payload []byte, idempotencyKey string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	reqURL := c.baseURL.ResolveReference(r.rel)
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, reqURL.String(), body)
	if err != nil {
		return apperr.Unknown(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return apperr.Classify(fmt.Errorf("load token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			return ctx.Err()
		}
		return apperr.Classify(fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request",
		zap.String("method", r.method),
		zap.String("path", r.rel.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if r.dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.dest); err != nil {
		return apperr.Unknown(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// retryable limits retries to requests that failed in transit and are safe
// to repeat: reads, and POSTs carrying an Idempotency-Key that stays the same
// on every attempt.
func retryable(method string, keyed bool, err error) bool {
	if apperr.KindOf(err) != apperr.KindNetwork {
		return false
	}
	return method == http.MethodGet || keyed
}

func retryDelay(attempt int, base time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env errorEnvelope
	message := ""
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		message = env.Error.Message
	} else {
		message = strings.TrimSpace(string(raw))
	}
	return apperr.Server(resp.StatusCode, message)
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
