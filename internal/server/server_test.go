package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PolarWolf314/dotenvpull/internal/configs"
	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	logger "github.com/PolarWolf314/dotenvpull/internal/logging"
	"github.com/PolarWolf314/dotenvpull/internal/secrets"
	"github.com/PolarWolf314/dotenvpull/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore records how many calls reach the backend.
type countingStore struct {
	store.Store
	calls atomic.Int32
}

func (c *countingStore) Create(ctx context.Context, projectID string, ciphertext []byte) (string, error) {
	c.calls.Add(1)
	return c.Store.Create(ctx, projectID, ciphertext)
}

func (c *countingStore) Read(ctx context.Context, accessKey string) ([]byte, error) {
	c.calls.Add(1)
	return c.Store.Read(ctx, accessKey)
}

func (c *countingStore) Update(ctx context.Context, accessKey string, ciphertext []byte) error {
	c.calls.Add(1)
	return c.Store.Update(ctx, accessKey, ciphertext)
}

func (c *countingStore) Delete(ctx context.Context, accessKey string) error {
	c.calls.Add(1)
	return c.Store.Delete(ctx, accessKey)
}

func (c *countingStore) Publish(ctx context.Context, projectID, shareCode string, ciphertext []byte) error {
	c.calls.Add(1)
	return c.Store.Publish(ctx, projectID, shareCode, ciphertext)
}

func (c *countingStore) Consume(ctx context.Context, projectID, shareCode string) ([]byte, error) {
	c.calls.Add(1)
	return c.Store.Consume(ctx, projectID, shareCode)
}

// downStore fails every call as an unreachable backend would.
type downStore struct {
	store.Store
}

func (downStore) err() error {
	return fmt.Errorf("%w: dial tcp 10.0.0.7:27017: connection refused", kerrors.ErrStorageUnavailable)
}

func (d downStore) Read(ctx context.Context, accessKey string) ([]byte, error) {
	return nil, d.err()
}

func (d downStore) Ping(ctx context.Context) error { return d.err() }

type testServer struct {
	*httptest.Server
	store *countingStore
	logs  *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := &countingStore{Store: store.NewMemoryStore(store.Config{})}
	logs := &bytes.Buffer{}
	srv := New(st, logger.Logger{Verbose: true, Out: logs, Err: logs})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: st, logs: logs}
}

func (ts *testServer) do(t *testing.T, method, path string, headers map[string]string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func requireError(t *testing.T, resp *http.Response, status int, code Code) ErrorResponse {
	t.Helper()
	require.Equal(t, status, resp.StatusCode)
	body := decode[ErrorResponse](t, resp)
	assert.Equal(t, code, body.Code)
	assert.NotEmpty(t, body.Detail)
	return body
}

func sealed(s string) string {
	return secrets.EncodeSealed([]byte(s))
}

func (ts *testServer) push(t *testing.T, projectID, content string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/push", nil, PushRequest{ProjectID: projectID, EncryptedContent: sealed(content)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[PushResponse](t, resp)
	require.NotEmpty(t, body.AccessKey)
	return body.AccessKey
}

func TestPushThenPull(t *testing.T) {
	ts := newTestServer(t)
	key := ts.push(t, "app1", "ciphertext-1")

	resp := ts.do(t, http.MethodGet, "/pull", map[string]string{HeaderAPIKey: key}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decode[ContentResponse](t, resp)
	assert.Equal(t, sealed("ciphertext-1"), body.EncryptedContent)
}

func TestPushConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.push(t, "app1", "first")

	resp := ts.do(t, http.MethodPost, "/push", nil, PushRequest{ProjectID: "app1", EncryptedContent: sealed("second")})
	requireError(t, resp, http.StatusBadRequest, CodeConflict)
}

func TestPushValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		status int
		code   Code
	}{
		{"missing project id", PushRequest{EncryptedContent: sealed("x")}, http.StatusBadRequest, CodeBadRequest},
		{"reserved project id", PushRequest{ProjectID: "api_url", EncryptedContent: sealed("x")}, http.StatusBadRequest, CodeBadRequest},
		{"missing content", PushRequest{ProjectID: "app1"}, http.StatusBadRequest, CodeBadRequest},
		{"malformed base64", PushRequest{ProjectID: "app1", EncryptedContent: "not base64!"}, http.StatusBadRequest, CodeEncoding},
		{"malformed json", `{"project_id": `, http.StatusBadRequest, CodeEncoding},
		{"oversized body", `{"project_id": "app1", "encrypted_content": "` + strings.Repeat("A", MaxBodyBytes) + `"}`, http.StatusRequestEntityTooLarge, CodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			resp := ts.do(t, http.MethodPost, "/push", nil, tt.body)
			requireError(t, resp, tt.status, tt.code)
			assert.Zero(t, ts.store.calls.Load(), "store must not be called")
		})
	}
}

func TestMissingAPIKeyIsRejectedBeforeStore(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/pull", nil},
		{http.MethodPut, "/update", UpdateRequest{EncryptedContent: sealed("x")}},
		{http.MethodDelete, "/delete", nil},
	} {
		resp := ts.do(t, tc.method, tc.path, nil, tc.body)
		body := requireError(t, resp, http.StatusBadRequest, CodeBadRequest)
		assert.Contains(t, body.Detail, HeaderAPIKey)
	}
	assert.Zero(t, ts.store.calls.Load())
}

func TestUnknownAccessKeyIsNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.push(t, "app1", "x")
	headers := map[string]string{HeaderAPIKey: "00000000-0000-4000-8000-000000000000"}

	requireError(t, ts.do(t, http.MethodGet, "/pull", headers, nil), http.StatusNotFound, CodeNotFound)
	requireError(t, ts.do(t, http.MethodPut, "/update", headers, UpdateRequest{EncryptedContent: sealed("y")}), http.StatusNotFound, CodeNotFound)
	requireError(t, ts.do(t, http.MethodDelete, "/delete", headers, nil), http.StatusNotFound, CodeNotFound)
}

func TestUpdateThenPull(t *testing.T) {
	ts := newTestServer(t)
	key := ts.push(t, "app1", "c1")
	headers := map[string]string{HeaderAPIKey: key}

	resp := ts.do(t, http.MethodPut, "/update", headers, UpdateRequest{ProjectID: "app1", EncryptedContent: sealed("c2")})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Data updated successfully", decode[MessageResponse](t, resp).Message)

	body := decode[ContentResponse](t, ts.do(t, http.MethodGet, "/pull", headers, nil))
	assert.Equal(t, sealed("c2"), body.EncryptedContent)
}

func TestDeleteThenPull(t *testing.T) {
	ts := newTestServer(t)
	key := ts.push(t, "app1", "c1")
	headers := map[string]string{HeaderAPIKey: key}

	resp := ts.do(t, http.MethodDelete, "/delete", headers, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	requireError(t, ts.do(t, http.MethodGet, "/pull", headers, nil), http.StatusNotFound, CodeNotFound)
}

func TestShareIsReadOnce(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/share", nil, ShareRequest{ProjectID: "app1", ShareCode: "S1", EncryptedContent: sealed("shared")})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	headers := map[string]string{HeaderShareCode: "S1", HeaderProjectID: "app1"}
	resp = ts.do(t, http.MethodGet, "/share", headers, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sealed("shared"), decode[ContentResponse](t, resp).EncryptedContent)

	requireError(t, ts.do(t, http.MethodGet, "/share", headers, nil), http.StatusNotFound, CodeNotFound)
}

func TestShareConflict(t *testing.T) {
	ts := newTestServer(t)
	req := ShareRequest{ProjectID: "app1", ShareCode: "S1", EncryptedContent: sealed("shared")}

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/share", nil, req).StatusCode)

	req.ShareCode = "S2"
	requireError(t, ts.do(t, http.MethodPost, "/share", nil, req), http.StatusBadRequest, CodeConflict)
}

func TestShareMissingInputsAreRejectedBeforeStore(t *testing.T) {
	ts := newTestServer(t)

	requireError(t, ts.do(t, http.MethodPost, "/share", nil, ShareRequest{ProjectID: "app1", EncryptedContent: sealed("x")}), http.StatusBadRequest, CodeBadRequest)

	for _, headers := range []map[string]string{
		{HeaderShareCode: "S1"},
		{HeaderProjectID: "app1"},
		{},
	} {
		requireError(t, ts.do(t, http.MethodGet, "/share", headers, nil), http.StatusBadRequest, CodeBadRequest)
	}
	assert.Zero(t, ts.store.calls.Load())
}

func TestWrongMethod(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/push", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/ping", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[PingResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "memory", body.Store)
}

func TestStorageUnavailable(t *testing.T) {
	logs := &bytes.Buffer{}
	srv := New(downStore{Store: store.NewMemoryStore(store.Config{})}, logger.Logger{Out: logs, Err: logs})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/pull", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderAPIKey, "some-key")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := requireError(t, resp, http.StatusInternalServerError, CodeStorageUnavailable)
	assert.NotContains(t, body.Detail, "10.0.0.7", "driver details must not reach the client")
	assert.Contains(t, logs.String(), "connection refused")

	resp, err = ts.Client().Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	requireError(t, resp, http.StatusServiceUnavailable, CodeStorageUnavailable)
}

func TestRequestLogOmitsCredentials(t *testing.T) {
	ts := newTestServer(t)
	key := ts.push(t, "app1", "x")

	resp := ts.do(t, http.MethodGet, "/pull", map[string]string{HeaderAPIKey: key}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	id := resp.Header.Get(HeaderRequestID)
	assert.Len(t, id, 26)
	assert.Contains(t, ts.logs.String(), id)
	assert.Contains(t, ts.logs.String(), "GET /pull 200")
	assert.NotContains(t, ts.logs.String(), key)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := New(store.NewMemoryStore(store.Config{}), logger.Logger{Out: io.Discard, Err: io.Discard})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln, configs.DefaultServerConfig())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/ping")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("server did not shut down")
	}
}
