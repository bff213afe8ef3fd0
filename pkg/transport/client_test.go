package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforty/go-linkforty/pkg/config"
)

func TestHTTPClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sdk/v1/resolve/abc", r.URL.Path)
		assert.Equal(t, "fp_tz=UTC", r.URL.RawQuery)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "1", r.Header.Get("X-Static"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shortCode":"abc"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", nil,
		WithAPIKey(" secret-key "),
		WithUserAgent("test-agent"),
		WithHeader("X-Static", "1"),
	)
	raw, err := Get(context.Background(), client.Func(), "/api/sdk/v1/resolve/abc?fp_tz=UTC")
	require.NoError(t, err)
	assert.JSONEq(t, `{"shortCode":"abc"}`, string(raw))
}

func TestHTTPClientPostEncodesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"platform":"ios"}`, string(body))
		_, _ = w.Write([]byte(`{"attributed":false}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, nil)
	raw, err := Post(context.Background(), client.Do, "/api/sdk/v1/install", map[string]string{"platform": "ios"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"attributed":false}`, string(raw))
}

func TestHTTPClientErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "link not found", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewHTTPClient(server.URL, nil).Do(context.Background(), "/x", RequestOptions{})
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
		assert.Contains(t, httpErr.Body, "link not found")
		assert.Equal(t, "/x", httpErr.Path)
		assert.False(t, Retryable(err))
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		_, err := NewHTTPClient(server.URL, nil).Do(context.Background(), "/x", RequestOptions{})
		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr)
	})

	t.Run("empty body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		raw, err := NewHTTPClient(server.URL, nil).Do(context.Background(), "/x", RequestOptions{})
		require.NoError(t, err)
		assert.Equal(t, json.RawMessage("null"), raw)
	})

	t.Run("network", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		_, err := NewHTTPClient(url, nil, WithTimeout(time.Second)).Do(context.Background(), "/x", RequestOptions{})
		var netErr *NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.True(t, Retryable(err))
		assert.NotNil(t, errors.Unwrap(err))
	})
}

func TestNewHTTPClientFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer lf_key", r.Header.Get("Authorization"))
		assert.Equal(t, "linkforty-go", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := config.Defaults()
	cfg.BaseURL = server.URL
	cfg.APIKey = "lf_key"

	_, err := NewHTTPClientFromConfig(cfg, nil).Do(context.Background(), "/ping", RequestOptions{})
	require.NoError(t, err)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&HTTPError{StatusCode: http.StatusServiceUnavailable}))
	assert.True(t, Retryable(&HTTPError{StatusCode: http.StatusTooManyRequests}))
	assert.False(t, Retryable(&HTTPError{StatusCode: http.StatusBadRequest}))
	assert.False(t, Retryable(&DecodeError{Err: errors.New("bad")}))
	assert.False(t, Retryable(errors.New("other")))
}
