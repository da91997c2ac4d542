package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/dotenvpull/internal/errors"
	logger "github.com/PolarWolf314/dotenvpull/internal/logging"
	"github.com/PolarWolf314/dotenvpull/internal/server"
	"github.com/PolarWolf314/dotenvpull/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *Client {
	t.Helper()
	srv := server.New(store.NewMemoryStore(store.Config{}), logger.Logger{Out: io.Discard, Err: io.Discard})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL+"/", WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadAddresses(t *testing.T) {
	for _, addr := range []string{"", "localhost:8080", "ftp://host", "http://", "://bad"} {
		_, err := New(addr)
		assert.ErrorIs(t, err, kerrors.ErrConfig, "address %q", addr)
	}

	c, err := New("https://env.example.com/", WithTimeout(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", c.BaseURL())
}

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	key, err := c.Push(ctx, "app1", []byte("sealed-1"))
	require.NoError(t, err)

	got, err := c.Pull(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed-1"), got)

	_, err = c.Push(ctx, "app1", []byte("sealed-2"))
	assert.ErrorIs(t, err, kerrors.ErrConflict)

	require.NoError(t, c.Update(ctx, key, "app1", []byte("sealed-2")))
	got, err = c.Pull(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("sealed-2"), got)

	require.NoError(t, c.Delete(ctx, key))
	_, err = c.Pull(ctx, key)
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, key), kerrors.ErrNotFound)
}

func TestShareLifecycle(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	require.NoError(t, c.Share(ctx, "app1", "S1", []byte("shared")))
	assert.ErrorIs(t, c.Share(ctx, "app1", "S2", []byte("other")), kerrors.ErrConflict)

	got, err := c.GetShared(ctx, "app1", "S1")
	require.NoError(t, err)
	assert.Equal(t, []byte("shared"), got)

	_, err = c.GetShared(ctx, "app1", "S1")
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
}

func TestMissingCredentialIsBadRequest(t *testing.T) {
	c := newClient(t)
	_, err := c.Pull(context.Background(), "")
	assert.ErrorIs(t, err, kerrors.ErrBadRequest)
}

func TestPing(t *testing.T) {
	c := newClient(t)
	resp, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "memory", resp.Store)
}

func TestUnreachableServerIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := ts.URL
	ts.Close()

	c, err := New(addr)
	require.NoError(t, err)

	_, err = c.Pull(context.Background(), "key")
	assert.ErrorIs(t, err, kerrors.ErrTransport)
	assert.False(t, errors.Is(err, kerrors.ErrNotFound))
}

// stalledServer accepts requests and never answers them until the test ends.
func stalledServer(t *testing.T) string {
	t.Helper()
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })
	return ts.URL
}

func TestTimeoutIsTransportError(t *testing.T) {
	c, err := New(stalledServer(t), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = c.Ping(context.Background())
	assert.ErrorIs(t, err, kerrors.ErrTransport)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestResponseMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"code wins over status", http.StatusBadRequest, `{"detail":"exists","code":"conflict"}`, kerrors.ErrConflict},
		{"not found code", http.StatusNotFound, `{"detail":"record not found","code":"not_found"}`, kerrors.ErrNotFound},
		{"storage code", http.StatusInternalServerError, `{"detail":"storage unavailable","code":"storage_unavailable"}`, kerrors.ErrStorageUnavailable},
		{"unready server", http.StatusServiceUnavailable, `{"detail":"storage unavailable","code":"storage_unavailable"}`, kerrors.ErrStorageUnavailable},
		{"encoding code", http.StatusBadRequest, `{"detail":"bad base64","code":"encoding"}`, kerrors.ErrEncoding},
		{"legacy not found", http.StatusNotFound, `{"error":"Data not found"}`, kerrors.ErrNotFound},
		{"legacy bad request", http.StatusBadRequest, `plain text`, kerrors.ErrBadRequest},
		{"internal error", http.StatusInternalServerError, `{"detail":"internal server error","code":"internal"}`, kerrors.ErrTransport},
		{"proxy error", http.StatusBadGateway, `<html>bad gateway</html>`, kerrors.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer ts.Close()

			c, err := New(ts.URL)
			require.NoError(t, err)

			_, err = c.Pull(context.Background(), "key")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGarbageSuccessIsTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>captive portal</html>")
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.Pull(context.Background(), "key")
	assert.ErrorIs(t, err, kerrors.ErrTransport)
}

func TestMalformedContentIsEncodingError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"encrypted_content":"%%%"}`)
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.Pull(context.Background(), "key")
	assert.ErrorIs(t, err, kerrors.ErrEncoding)
}
