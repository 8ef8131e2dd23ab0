package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/idtoken"

	"github.com/octobees/leadgenius/api/internal/config"
	"github.com/octobees/leadgenius/api/internal/metrics"
)

const maxResponseBytes = 10 << 20

var (
	// ErrExhausted is returned once every attempt allowed by the policy has failed.
	ErrExhausted = errors.New("webhook attempts exhausted")
	// ErrNoURL is returned when the webhook endpoint is not configured.
	ErrNoURL = errors.New("webhook url not configured")
)

// StatusError reports a non-2xx response from the endpoint.
type StatusError struct {
	Method string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Method, e.Code, body)
}

// Doer is the subset of *http.Client used by the webhook client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Policy describes how a logical webhook request is attempted.
//
// Attempt n (1-based) uses Methods[min(n, len(Methods))-1]; with the default
// methods the first attempt is a GET and every later attempt a POST.
type Policy struct {
	MaxAttempts int
	Methods     []string
	Timeout     time.Duration
	NewBackOff  func() backoff.BackOff
}

// DefaultPolicy mirrors the GET then POST fallback with a single alternate attempt.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 2,
		Methods:     []string{http.MethodGet, http.MethodPost},
		Timeout:     30 * time.Second,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewConstantBackOff(500 * time.Millisecond)
		},
	}
}

// PolicyFromConfig applies the configured attempt budget, timeout and delay
// on top of DefaultPolicy.
func PolicyFromConfig(cfg config.WebhookConfig) Policy {
	p := DefaultPolicy()
	p.MaxAttempts = cfg.MaxAttempts
	p.Timeout = cfg.Timeout
	if cfg.Backoff > 0 {
		delay := cfg.Backoff
		p.NewBackOff = func() backoff.BackOff {
			return backoff.NewConstantBackOff(delay)
		}
	}
	return p.normalized()
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if len(p.Methods) == 0 {
		p.Methods = def.Methods
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	if p.NewBackOff == nil {
		p.NewBackOff = def.NewBackOff
	}
	return p
}

func (p Policy) methodFor(attempt int) string {
	idx := attempt - 1
	if idx >= len(p.Methods) {
		idx = len(p.Methods) - 1
	}
	return p.Methods[idx]
}

// Request is one logical webhook invocation.
type Request struct {
	Kind    string
	URL     string
	Payload map[string]any
}

// Response carries the body of the successful attempt.
type Response struct {
	Body     []byte
	Status   int
	Method   string
	Attempts int
}

// Client invokes user-configured webhooks under a retry policy.
type Client struct {
	http   Doer
	policy Policy
	logger *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient builds a webhook client. A nil doer falls back to a plain http.Client.
func NewClient(doer Doer, policy Policy, opts ...Option) *Client {
	if doer == nil {
		doer = &http.Client{}
	}
	c := &Client{http: doer, policy: policy.normalized(), logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an ID-token authenticated client when audience is set,
// otherwise a plain client. Token acquisition failures degrade to the plain client.
func NewHTTPClient(ctx context.Context, audience string) *http.Client {
	if audience != "" {
		if idc, err := idtoken.NewClient(ctx, audience); err == nil {
			return idc
		}
	}
	return &http.Client{}
}

type attemptState int

const (
	stateAttempt attemptState = iota
	stateRetry
	stateSuccess
	stateExhausted
)

// Call runs the request through the attempt → success | retry | exhausted state machine.
func (c *Client) Call(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.URL) == "" {
		return Response{}, ErrNoURL
	}

	bo := backoff.WithContext(c.policy.NewBackOff(), ctx)
	var (
		state   = stateAttempt
		attempt int
		resp    Response
		lastErr error
	)

	for {
		switch state {
		case stateAttempt:
			attempt++
			method := c.policy.methodFor(attempt)
			resp, lastErr = c.do(ctx, method, req)
			outcome := "success"
			if lastErr != nil {
				outcome = "failure"
				c.logger.Warn("webhook attempt failed",
					slog.String("kind", req.Kind),
					slog.String("method", method),
					slog.Int("attempt", attempt),
					slog.String("error", lastErr.Error()),
				)
			}
			metrics.ObserveWebhookAttempt(req.Kind, method, outcome)

			switch {
			case lastErr == nil:
				state = stateSuccess
			case attempt >= c.policy.MaxAttempts || ctx.Err() != nil:
				state = stateExhausted
			default:
				state = stateRetry
			}

		case stateRetry:
			wait := bo.NextBackOff()
			if wait == backoff.Stop {
				state = stateExhausted
				continue
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				state = stateExhausted
			case <-timer.C:
				state = stateAttempt
			}

		case stateSuccess:
			resp.Attempts = attempt
			return resp, nil

		case stateExhausted:
			return Response{Attempts: attempt}, fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempt, lastErr)
		}
	}
}

func (c *Client) do(ctx context.Context, method string, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	httpReq, err := buildRequest(ctx, method, req.URL, req.Payload)
	if err != nil {
		return Response{}, err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%s request failed: %w", method, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", method, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return Response{}, &StatusError{Method: method, Code: httpResp.StatusCode, Body: string(body)}
	}

	return Response{Body: body, Status: httpResp.StatusCode, Method: method}, nil
}

func buildRequest(ctx context.Context, method, rawURL string, payload map[string]any) (*http.Request, error) {
	switch method {
	case http.MethodGet:
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("parse webhook url: %w", err)
		}
		query := u.Query()
		for key, value := range payload {
			query.Set(key, queryValue(value))
		}
		u.RawQuery = query.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("create GET request: %w", err)
		}
		req.Header.Set("Accept", "application/json, text/plain, */*")
		return req, nil
	default:
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal webhook payload: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create %s request: %w", method, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/plain, */*")
		return req, nil
	}
}

func queryValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case bool, int, int64, float64:
		return fmt.Sprint(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
