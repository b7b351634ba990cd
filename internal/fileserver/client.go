package fileserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/stagewave/catalog-sync/internal/pkg/logger"
)

// Client is a typed wrapper for the file server's admin API. Every call
// is a fresh round-trip: the client holds no cache and applies no retry
// policy, so a failed request surfaces immediately to the caller.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates an admin API client. A missing API key fails here,
// client-side, so an empty-key request is never put on the wire.
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: log,
	}, nil
}

// doRequest performs one admin API round-trip
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	reqURL := c.config.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	c.logger.Debug("admin api request",
		zap.String("method", method),
		zap.String("url", reqURL),
	)

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Admin-Key", c.config.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("admin api request failed",
			zap.String("method", method),
			zap.String("url", reqURL),
			zap.Error(err),
		)
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("admin api response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respData)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return NewAdminAPIError(resp.StatusCode, extractMessage(respData))
	}

	if result != nil && len(respData) > 0 {
		if err := json.Unmarshal(respData, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// extractMessage pulls the server-provided error message out of a
// failed response body, falling back to the raw body.
func extractMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			return envelope.Error
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}

// GetDashboard fetches the server's state snapshot. Also used as the
// auth probe: any successful call proves the key is valid.
func (c *Client) GetDashboard(ctx context.Context) (*DashboardSnapshot, error) {
	var snapshot DashboardSnapshot
	if err := c.doRequest(ctx, http.MethodGet, "/admin/dashboard", nil, nil, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ListFiles lists physical files, optionally filtered by type and with
// per-file detail.
func (c *Client) ListFiles(ctx context.Context, fileType string, detailed bool) (*FileListing, error) {
	query := url.Values{}
	if fileType != "" {
		query.Set("type", fileType)
	}
	if detailed {
		query.Set("detailed", "true")
	}

	var listing FileListing
	if err := c.doRequest(ctx, http.MethodGet, "/admin/files", query, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// FindOrphanedFiles asks the server for files with no matching catalog
// record.
func (c *Client) FindOrphanedFiles(ctx context.Context) (*OrphanedFileSet, error) {
	var set OrphanedFileSet
	if err := c.doRequest(ctx, http.MethodGet, "/admin/files/orphaned", nil, nil, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

// CleanupFiles removes orphaned files. dryRun defaults to true at every
// call site; passing false is the explicit destructive override.
// maxSize (bytes) caps how much the run may delete; 0 means no cap.
func (c *Client) CleanupFiles(ctx context.Context, dryRun bool, maxSize int64) (*CleanupReport, error) {
	query := url.Values{}
	query.Set("dryRun", strconv.FormatBool(dryRun))
	if maxSize > 0 {
		query.Set("maxSize", strconv.FormatInt(maxSize, 10))
	}

	var report CleanupReport
	if err := c.doRequest(ctx, http.MethodDelete, "/admin/files/cleanup", query, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeleteFiles removes the named files. Destructive and not idempotent;
// the caller names exact paths.
func (c *Client) DeleteFiles(ctx context.Context, paths []string) (*CleanupReport, error) {
	payload := map[string][]string{"paths": paths}

	var report CleanupReport
	if err := c.doRequest(ctx, http.MethodDelete, "/admin/files", nil, payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CleanupTempFiles clears the server's temp directory. force removes
// entries still inside the age grace period.
func (c *Client) CleanupTempFiles(ctx context.Context, force bool) (*TempCleanupReport, error) {
	query := url.Values{}
	query.Set("force", strconv.FormatBool(force))

	var report TempCleanupReport
	if err := c.doRequest(ctx, http.MethodDelete, "/admin/temp/cleanup", query, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// KillAllProcesses terminates every running processing job. Destructive.
func (c *Client) KillAllProcesses(ctx context.Context) (*KillReport, error) {
	var report KillReport
	if err := c.doRequest(ctx, http.MethodPost, "/admin/processes/kill", nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetLogs tails the server log.
func (c *Client) GetLogs(ctx context.Context, lines int) (*LogLines, error) {
	query := url.Values{}
	if lines > 0 {
		query.Set("lines", strconv.Itoa(lines))
	}

	var logs LogLines
	if err := c.doRequest(ctx, http.MethodGet, "/admin/logs", query, nil, &logs); err != nil {
		return nil, err
	}
	return &logs, nil
}

// Close releases idle connections
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
