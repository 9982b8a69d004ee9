// Package jenkins provides a client for the Jenkins REST interface.
//
// Only two endpoints are used: the plain-text console log of a build
// and the build's JSON metadata. Both authenticate with the user/API
// token pair as HTTP basic auth.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cqNikolaus/JenkinsLLM/internal/config"
)

// StatusError is returned when Jenkins answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jenkins request failed with status %d: %s", e.StatusCode, e.URL)
}

// Client talks to one Jenkins instance.
type Client struct {
	httpClient *http.Client
	user       string
	apiToken   string
	logger     *slog.Logger
}

// NewClient creates a Jenkins client. The credentials may be empty for
// instances that allow anonymous read access.
func NewClient(user, apiToken string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: config.DefaultHTTPTimeout,
		},
		user:     user,
		apiToken: apiToken,
		logger:   logger,
	}
}

// ConsoleLog fetches the full console text of the referenced build.
func (c *Client) ConsoleLog(ctx context.Context, ref config.BuildRef) (string, error) {
	consoleURL := fmt.Sprintf("%s/job/%s/%s/consoleText",
		ref.BaseURL, url.PathEscape(ref.JobName), url.PathEscape(ref.BuildNumber))

	c.logger.Debug("fetching console log", "url", consoleURL)

	body, err := c.get(ctx, consoleURL, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// BuildInfo holds the subset of Jenkins build metadata shown as a
// header above the analysis.
type BuildInfo struct {
	FullDisplayName string `json:"fullDisplayName"`
	Result          string `json:"result"`
	Building        bool   `json:"building"`
	Duration        int64  `json:"duration"` // milliseconds
	URL             string `json:"url"`
}

// DurationTime returns the build duration as a time.Duration.
func (b *BuildInfo) DurationTime() time.Duration {
	return time.Duration(b.Duration) * time.Millisecond
}

// Info fetches the build's JSON metadata.
func (c *Client) Info(ctx context.Context, ref config.BuildRef) (*BuildInfo, error) {
	infoURL := fmt.Sprintf("%s/job/%s/%s/api/json",
		ref.BaseURL, url.PathEscape(ref.JobName), url.PathEscape(ref.BuildNumber))

	c.logger.Debug("fetching build info", "url", infoURL)

	body, err := c.get(ctx, infoURL, "application/json")
	if err != nil {
		return nil, err
	}

	var info BuildInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to decode build info: %w", err)
	}
	return &info, nil
}

// get performs one authenticated GET and returns the response body.
func (c *Client) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.user != "" || c.apiToken != "" {
		req.SetBasicAuth(c.user, c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach jenkins: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: rawURL}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
