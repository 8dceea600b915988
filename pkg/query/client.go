// Package query is a thin client for the telemetry server's REST API. It is
// independent of the stream: a failing request never touches the store.
package query

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"optimus-dashboard/pkg/model"

	jsoniter "github.com/json-iterator/go"
)

// DefaultHistorySeconds is the window the server uses when none is given.
const DefaultHistorySeconds = 300

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp float64 `json:"timestamp"`
}

type HistoryResponse struct {
	Data  []model.TelemetrySample `json:"data"`
	Count int                     `json:"count"`
}

type UpdateRulesResponse struct {
	Status     string `json:"status"`
	RulesCount int    `json:"rules_count"`
}

type rulesEnvelope struct {
	Rules []model.AlertRule `json:"rules"`
}

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Metrics returns the server's Prometheus exposition text verbatim.
func (c *Client) Metrics(ctx context.Context) (string, error) {
	body, err := c.do(ctx, http.MethodGet, "/metrics", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) AlertRules(ctx context.Context) ([]model.AlertRule, error) {
	var out rulesEnvelope
	if err := c.doJSON(ctx, http.MethodGet, "/config/alert-rules", nil, &out); err != nil {
		return nil, err
	}
	return out.Rules, nil
}

// UpdateAlertRules replaces the server's rule set.
func (c *Client) UpdateAlertRules(ctx context.Context, rules []model.AlertRule) (UpdateRulesResponse, error) {
	var out UpdateRulesResponse
	if rules == nil {
		rules = []model.AlertRule{}
	}
	body, err := json.Marshal(rules)
	if err != nil {
		return out, fmt.Errorf("encode alert rules: %w", err)
	}
	err = c.doJSON(ctx, http.MethodPost, "/config/alert-rules", body, &out)
	return out, err
}

// History fetches samples from the last seconds; non-positive means the default window.
func (c *Client) History(ctx context.Context, seconds int) (HistoryResponse, error) {
	if seconds <= 0 {
		seconds = DefaultHistorySeconds
	}
	var out HistoryResponse
	q := url.Values{"seconds": []string{strconv.Itoa(seconds)}}
	err := c.doJSON(ctx, http.MethodGet, "/telemetry/history?"+q.Encode(), nil, &out)
	return out, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body []byte, out any) error {
	raw, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	target := c.baseURL + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}
