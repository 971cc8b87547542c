/* client_test.go
 * Contains unit tests for client.go using httptest
 */

package external

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"numerai-bot/api/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.NumeraiConfig {
	return config.NumeraiConfig{
		BaseURL:           baseURL,
		Email:             "someone@example.com",
		Password:          "hunter2",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		Burst:             10,
	}
}

// newTestClient starts an httptest server with the handler and returns a client pointed at it
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL), opts...)
	require.NoError(t, err)
	return client
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func serveJSON(body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

// region NewClient tests

func TestNewClient_Success(t *testing.T) {
	client, err := NewClient(testConfig("https://api.numer.ai/"))

	require.NoError(t, err)
	assert.Equal(t, "https://api.numer.ai", client.baseURL)
	assert.Equal(t, "someone@example.com", client.Email())
}

func TestNewClient_InvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.NumeraiConfig)
		want   string
	}{
		{"missing email", func(c *config.NumeraiConfig) { c.Email = "" }, "Email"},
		{"bad email", func(c *config.NumeraiConfig) { c.Email = "someone" }, "Email"},
		{"missing password", func(c *config.NumeraiConfig) { c.Password = "" }, "Password"},
		{"bad url", func(c *config.NumeraiConfig) { c.BaseURL = "not a url" }, "invalid base url"},
		{"zero timeout", func(c *config.NumeraiConfig) { c.Timeout = 0 }, "must be positive"},
		{"zero rate", func(c *config.NumeraiConfig) { c.RequestsPerSecond = 0 }, "must be positive"},
		{"zero burst", func(c *config.NumeraiConfig) { c.Burst = 0 }, "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("https://api.numer.ai")
			tt.mutate(&cfg)

			_, err := NewClient(cfg)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// endregion

// region get tests

func TestGet_SetsHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "NumeraiClient/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		w.Write([]byte(`[]`))
	})

	body, status := client.get(context.Background(), "/competitions", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", string(body))
}

func TestGet_GzipResponse(t *testing.T) {
	content := `[{"_id":"gzip"}]`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gzWriter := gzip.NewWriter(&buf)
		gzWriter.Write([]byte(content))
		gzWriter.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	})

	body, status := client.get(context.Background(), "/competitions", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, content, string(body))
}

func TestGet_BrokenGzip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("definitely not gzip"))
	})

	body, status := client.get(context.Background(), "/competitions", nil)

	assert.Nil(t, body)
	assert.Equal(t, StatusTransportError, status)
}

func TestGet_BodyTooLarge(t *testing.T) {
	limit := maxResponseBytes
	maxResponseBytes = 16
	t.Cleanup(func() { maxResponseBytes = limit })

	exact := `["0123456789ab"]` // 16 bytes
	client := newTestClient(t, serveJSON([]byte(exact)))
	body, status := client.get(context.Background(), "/competitions", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, exact, string(body))

	// The cap applies after inflating a gzipped body
	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gzWriter := gzip.NewWriter(&buf)
		gzWriter.Write(bytes.Repeat([]byte("a"), 1024))
		gzWriter.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})
	body, status = client.get(context.Background(), "/competitions", nil)
	assert.Nil(t, body)
	assert.Equal(t, StatusTransportError, status)

	client = newTestClient(t, serveJSON([]byte(exact+" ")))
	body, status = client.get(context.Background(), "/competitions", nil)
	assert.Nil(t, body)
	assert.Equal(t, StatusTransportError, status)
}

func TestGet_NonOKStatus(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusTooManyRequests} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte(`{"error":"nope"}`))
		})

		body, status := client.get(context.Background(), "/competitions", nil)

		assert.Nil(t, body)
		assert.Equal(t, code, status)
	}
}

func TestGet_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	server.Close()

	body, status := client.get(context.Background(), "/competitions", nil)

	assert.Nil(t, body)
	assert.Equal(t, StatusTransportError, status)
}

func TestGet_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Timeout = 20 * time.Millisecond
	client, err := NewClient(cfg)
	require.NoError(t, err)

	_, status := client.get(context.Background(), "/competitions", nil)

	assert.Equal(t, StatusTransportError, status)
}

func TestGet_CancelledContext(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, status := client.get(ctx, "/competitions", nil)

	assert.Equal(t, StatusTransportError, status)
	assert.False(t, called)
}

func TestGet_QueryIsEncoded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/a b", r.URL.Path)
		assert.Equal(t, `{"x":1}`, r.URL.Query().Get("filter"))
		w.Write([]byte(`{}`))
	})

	_, status := client.get(context.Background(), "/users/a%20b", map[string][]string{"filter": {`{"x":1}`}})

	assert.Equal(t, http.StatusOK, status)
}

// endregion
