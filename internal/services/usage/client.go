// Package usage fetches rate-limit utilization from the Anthropic API.
package usage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/brucechou1983/claude-code-usage/internal/logger"
	"github.com/brucechou1983/claude-code-usage/internal/models"
)

const (
	messagesEndpoint = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
	oauthBeta        = "oauth-2025-04-20"

	// Minimal probe request. The point is the rate-limit response headers,
	// not the completion, so the cheapest possible call is used.
	probeBody = `{"model":"claude-haiku-4-5-20251001","max_tokens":1,"messages":[{"role":"user","content":"hi"}]}`

	defaultTimeout = 30 * time.Second

	// Cap on failure messages surfaced in the status line.
	maxFailureMessageLen = 30
)

// Rate-limit response headers.
const (
	headerSessionUtilization = "anthropic-ratelimit-unified-5h-utilization"
	headerWeeklyUtilization  = "anthropic-ratelimit-unified-7d-utilization"
	headerSessionReset       = "anthropic-ratelimit-unified-5h-reset"
	headerWeeklyReset        = "anthropic-ratelimit-unified-7d-reset"
	headerStatus             = "anthropic-ratelimit-unified-status"
)

// Client issues probe requests and extracts usage snapshots from the
// rate-limit headers of the response.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient creates a usage client. A zero timeout uses the default.
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   messagesEndpoint,
	}
}

// Fetch performs one probe request with the given credential and returns
// either a snapshot or a classified failure. It never returns both.
func (c *Client) Fetch(ctx context.Context, credential string) models.FetchResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader([]byte(probeBody)))
	if err != nil {
		return failure(models.FailureUnknown, 0, err.Error())
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("anthropic-beta", oauthBeta)
	// Intermediaries must not serve a stale utilization reading.
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure(models.FailureNetwork, 0, err.Error())
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	// Drain so the connection can be reused.
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		logger.Debug("failed to drain response body", "error", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return failure(models.FailureUnauthorized, resp.StatusCode, "token expired")
	case resp.StatusCode >= 400:
		return failure(models.FailureHTTP, resp.StatusCode, resp.Status)
	}

	snap, err := snapshotFromHeaders(resp.Header, time.Now())
	if err != nil {
		return failure(models.FailureUnknown, 0, truncate(err.Error(), maxFailureMessageLen))
	}
	return models.FetchResult{Snapshot: &snap}
}

func failure(kind models.FailureKind, status int, msg string) models.FetchResult {
	return models.FetchResult{Failure: &models.FetchFailure{
		Kind:       kind,
		StatusCode: status,
		Message:    msg,
	}}
}

// snapshotFromHeaders extracts the unified rate-limit reading. Absent
// utilization headers read as zero and absent reset headers stay nil, but
// a present utilization value that does not parse is an error: reporting
// it as zero would misstate real usage.
func snapshotFromHeaders(h http.Header, now time.Time) (models.Snapshot, error) {
	session, err := parseRatio(h.Get(headerSessionUtilization))
	if err != nil {
		return models.Snapshot{}, err
	}
	weekly, err := parseRatio(h.Get(headerWeeklyUtilization))
	if err != nil {
		return models.Snapshot{}, err
	}

	status := h.Get(headerStatus)
	if status == "" {
		status = "unknown"
	}

	return models.Snapshot{
		SessionUtilization: session,
		WeeklyUtilization:  weekly,
		SessionReset:       parseReset(h.Get(headerSessionReset)),
		WeeklyReset:        parseReset(h.Get(headerWeeklyReset)),
		Status:             status,
		FetchedAt:          now,
	}, nil
}

func parseRatio(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	ratio, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logger.Warn("unparseable utilization header", "value", value)
		return 0, fmt.Errorf("bad utilization header %q", value)
	}
	return ratio, nil
}

// truncate caps failure messages at n runes for display.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func parseReset(value string) *time.Time {
	if value == "" {
		return nil
	}
	secs, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logger.Warn("unparseable reset header", "value", value)
		return nil
	}
	t := time.Unix(secs, 0)
	return &t
}
