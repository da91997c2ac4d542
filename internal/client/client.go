package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/server"
)

const (
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 4 << 20
)

// Client is a dotenvpull server client.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = &http.Client{Timeout: d}
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid server address %q (want http:// or https://)", kerrors.ErrConfig, baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Push stores a new sealed payload and returns its access key.
func (c *Client) Push(ctx context.Context, projectID string, sealed []byte) (string, error) {
	var resp server.PushResponse
	err := c.do(ctx, http.MethodPost, "/push", nil, server.PushRequest{
		ProjectID:        projectID,
		EncryptedContent: secrets.EncodeSealed(sealed),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessKey == "" {
		return "", fmt.Errorf("%w: server returned no access key", kerrors.ErrTransport)
	}
	return resp.AccessKey, nil
}

// Pull returns the sealed payload stored under accessKey.
func (c *Client) Pull(ctx context.Context, accessKey string) ([]byte, error) {
	var resp server.ContentResponse
	headers := map[string]string{server.HeaderAPIKey: accessKey}
	if err := c.do(ctx, http.MethodGet, "/pull", headers, nil, &resp); err != nil {
		return nil, err
	}
	return secrets.DecodeSealed(resp.EncryptedContent)
}

// Update replaces the sealed payload stored under accessKey.
func (c *Client) Update(ctx context.Context, accessKey, projectID string, sealed []byte) error {
	headers := map[string]string{server.HeaderAPIKey: accessKey}
	return c.do(ctx, http.MethodPut, "/update", headers, server.UpdateRequest{
		ProjectID:        projectID,
		EncryptedContent: secrets.EncodeSealed(sealed),
	}, &server.MessageResponse{})
}

// Delete removes the record stored under accessKey.
func (c *Client) Delete(ctx context.Context, accessKey string) error {
	headers := map[string]string{server.HeaderAPIKey: accessKey}
	return c.do(ctx, http.MethodDelete, "/delete", headers, nil, &server.MessageResponse{})
}

// Share publishes a one-time sealed payload for projectID under shareCode.
func (c *Client) Share(ctx context.Context, projectID, shareCode string, sealed []byte) error {
	return c.do(ctx, http.MethodPost, "/share", nil, server.ShareRequest{
		ProjectID:        projectID,
		EncryptedContent: secrets.EncodeSealed(sealed),
		ShareCode:        shareCode,
	}, &server.MessageResponse{})
}

// GetShared consumes the share matching projectID and shareCode.
func (c *Client) GetShared(ctx context.Context, projectID, shareCode string) ([]byte, error) {
	var resp server.ContentResponse
	headers := map[string]string{
		server.HeaderShareCode: shareCode,
		server.HeaderProjectID: projectID,
	}
	if err := c.do(ctx, http.MethodGet, "/share", headers, nil, &resp); err != nil {
		return nil, err
	}
	return secrets.DecodeSealed(resp.EncryptedContent)
}

// Ping checks that the server and its store are reachable.
func (c *Client) Ping(ctx context.Context) (server.PingResponse, error) {
	var resp server.PingResponse
	if err := c.do(ctx, http.MethodGet, "/ping", nil, nil, &resp); err != nil {
		return resp, err
	}
	if resp.Status != "ok" {
		return resp, fmt.Errorf("%w: unexpected ping status %q", kerrors.ErrTransport, resp.Status)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, reqBody, respBody any) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", kerrors.ErrTransport, method, path, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", kerrors.ErrTransport, err)
	}

	if res.StatusCode >= 400 {
		return responseError(res.StatusCode, data)
	}

	if err := json.Unmarshal(data, respBody); err != nil {
		return fmt.Errorf("%w: invalid response from server: %v", kerrors.ErrTransport, err)
	}
	return nil
}

// responseError maps an error response to a sentinel, preferring the code in
// the body over the status.
func responseError(status int, data []byte) error {
	var er server.ErrorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Code != "" {
		if sentinel := server.CodeError(er.Code); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, er.Detail)
		}
	}

	detail := er.Detail
	if detail == "" {
		detail = strings.TrimSpace(string(data))
	}
	if detail == "" {
		detail = http.StatusText(status)
	}

	if sentinel := server.StatusError(status); sentinel != nil {
		return fmt.Errorf("%w: %s", sentinel, detail)
	}
	return fmt.Errorf("%w: server returned %d: %s", kerrors.ErrTransport, status, detail)
}
