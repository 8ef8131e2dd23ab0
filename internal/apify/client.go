package apify

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
)

// Run statuses reported by the actor API.
const (
	StatusReady     = "READY"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
	StatusTimingOut = "TIMING-OUT"
)

var (
	// ErrRunTimeout is returned when the run does not finish within the poll budget.
	ErrRunTimeout = errors.New("apify run did not finish in time")
	// ErrRunFailed is returned when the run ends in a non-successful terminal status.
	ErrRunFailed = errors.New("apify run failed")
	// ErrMissingToken is returned when no API token is configured.
	ErrMissingToken = errors.New("apify api token not configured")
	// ErrMissingActor is returned when no actor id is configured.
	ErrMissingActor = errors.New("apify actor id not configured")
)

// Run is the subset of the actor run object the client relies on.
type Run struct {
	ID               string `json:"id"`
	ActID            string `json:"actId"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Terminal reports whether the run has stopped.
func (r Run) Terminal() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut, StatusTimingOut:
		return true
	}
	return false
}

// Client talks to the Apify REST API.
type Client struct {
	http         *http.Client
	baseURL      string
	token        string
	pollInterval time.Duration
	maxPolls     int
}

// NewClient builds an Apify client. A nil http client falls back to a client with a 60s timeout.
func NewClient(httpClient *http.Client, baseURL, token string, pollInterval time.Duration, maxPolls int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	if maxPolls <= 0 {
		maxPolls = 30
	}
	return &Client{
		http:         httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		pollInterval: pollInterval,
		maxPolls:     maxPolls,
	}
}

// StartRun starts an actor run with the given input.
func (c *Client) StartRun(ctx context.Context, actorID string, input any) (Run, error) {
	if c.token == "" {
		return Run{}, ErrMissingToken
	}
	if strings.TrimSpace(actorID) == "" {
		return Run{}, ErrMissingActor
	}

	body, err := json.Marshal(input)
	if err != nil {
		return Run{}, fmt.Errorf("marshal actor input: %w", err)
	}

	endpoint := c.endpoint("/v2/acts/"+url.PathEscape(actorID)+"/runs", nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Run{}, fmt.Errorf("create start run request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var envelope struct {
		Data Run `json:"data"`
	}
	if err := c.doJSON(req, &envelope); err != nil {
		return Run{}, fmt.Errorf("start actor run: %w", err)
	}
	return envelope.Data, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, runID string) (Run, error) {
	endpoint := c.endpoint("/v2/actor-runs/"+url.PathEscape(runID), nil)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Run{}, fmt.Errorf("create run status request: %w", err)
	}
	var envelope struct {
		Data Run `json:"data"`
	}
	if err := c.doJSON(req, &envelope); err != nil {
		return Run{}, fmt.Errorf("get actor run: %w", err)
	}
	return envelope.Data, nil
}

// WaitForRun polls the run every poll interval until it reaches a terminal status.
// A run that is still active after the configured number of polls yields ErrRunTimeout.
func (c *Client) WaitForRun(ctx context.Context, runID string) (Run, error) {
	var last Run
	polls := 0
	operation := func() error {
		polls++
		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		last = run
		if !run.Terminal() {
			return fmt.Errorf("run %s still %s", runID, run.Status)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.pollInterval), uint64(c.maxPolls-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		slog.Debug("apify run pending", slog.String("run_id", runID), slog.Int("poll", polls), slog.Duration("next", wait))
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return last, ctxErr
		}
		if last.ID != "" && !last.Terminal() {
			return last, fmt.Errorf("%w after %d polls", ErrRunTimeout, polls)
		}
		return last, err
	}

	if last.Status != StatusSucceeded {
		return last, fmt.Errorf("%w: status %s", ErrRunFailed, last.Status)
	}
	return last, nil
}

// DatasetItems downloads the clean JSON items of a dataset.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]byte, error) {
	query := url.Values{}
	query.Set("clean", "true")
	query.Set("format", "json")
	endpoint := c.endpoint("/v2/datasets/"+url.PathEscape(datasetID)+"/items", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create dataset request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dataset request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("dataset request returned status %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

// Search starts the actor, waits for it, and returns the raw dataset items.
func (c *Client) Search(ctx context.Context, actorID string, input any) (Run, []byte, error) {
	run, err := c.StartRun(ctx, actorID, input)
	if err != nil {
		return Run{}, nil, err
	}
	if !run.Terminal() {
		run, err = c.WaitForRun(ctx, run.ID)
		if err != nil {
			return run, nil, err
		}
	} else if run.Status != StatusSucceeded {
		return run, nil, fmt.Errorf("%w: status %s", ErrRunFailed, run.Status)
	}

	items, err := c.DatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return run, nil, err
	}
	return run, items, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.token)
	return c.baseURL + path + "?" + query.Encode()
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max])
	}
	return string(body)
}
