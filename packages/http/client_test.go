package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/login", r.URL.Path)
		assert.Contains(t, r.Header.Get("Accept"), "text/html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<button data-testid="submit">Sign in</button>`))
	}))
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL+"/login", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.True(t, resp.IsSuccess())
	assert.True(t, resp.IsHTML())
	assert.Equal(t, "text/html; charset=utf-8", resp.Header("content-type"))
	assert.Contains(t, resp.BodyString(), "Sign in")
	assert.Equal(t, server.URL+"/login", resp.URL)
}

func TestClient_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "default", r.Header.Get("X-Default"))
		assert.Equal(t, "Bearer fetch", r.Header.Get("Authorization"))
		assert.Equal(t, "a", r.Header.Get("X-A"))
	}))
	defer server.Close()

	client := NewClient(
		WithDefaultHeader("X-Default", "default"),
		WithDefaultHeaders(map[string]string{"X-A": "a", "Authorization": "Bearer default"}),
	)
	_, err := client.Fetch(context.Background(), server.URL, map[string]string{"Authorization": "Bearer fetch"})
	require.NoError(t, err)
}

func TestClient_WithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewClient(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), server.URL, nil)
	assert.Error(t, err)
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient().Fetch(ctx, server.URL, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>moved</p>"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := NewClient().Fetch(context.Background(), server.URL+"/old", nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new", resp.URL)
	assert.Equal(t, "<p>moved</p>", resp.BodyString())

	resp, err = NewClient(WithFollowRedirects(false)).Fetch(context.Background(), server.URL+"/old", nil)
	require.NoError(t, err)
	assert.True(t, resp.IsRedirect())

	resp, err = NewClient(WithMaxRedirects(0)).Fetch(context.Background(), server.URL+"/old", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestClient_MaxBodyBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	_, err := NewClient(WithMaxBodyBytes(16)).Fetch(context.Background(), server.URL, nil)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))

	resp, err := NewClient(WithMaxBodyBytes(64)).Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 64)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr string
	}{
		{"http://localhost:3000/", ""},
		{"https://example.com/page", ""},
		{"ftp://example.com", "unsupported URL scheme"},
		{"file:///etc/passwd", "unsupported URL scheme"},
		{"http://", "must have a host"},
		{"://bad", "invalid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestResponse_IsHTML(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"", true},
		{"text/html", true},
		{"application/xhtml+xml; charset=utf-8", true},
		{"application/json", false},
	}
	for _, tt := range tests {
		resp := &Response{Headers: http.Header{"Content-Type": {tt.contentType}}}
		assert.Equal(t, tt.want, resp.IsHTML(), tt.contentType)
	}
}

func TestResponse_Text(t *testing.T) {
	latin1 := []byte("<p>caf\xe9</p>")

	resp := &Response{Headers: http.Header{"Content-Type": {"text/html; charset=iso-8859-1"}}, Body: latin1}
	text, err := resp.Text()
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", text)

	resp = &Response{Headers: http.Header{}, Body: []byte(`<meta charset="utf-8"><p>café</p>`)}
	text, err = resp.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "<p>café</p>")
}

func TestClient_RateLimit(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	client := NewClient(WithRateLimit(1, 1))
	_, err := client.Fetch(context.Background(), server.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = client.Fetch(ctx, server.URL, nil)
	assert.ErrorContains(t, err, "waiting to fetch")
	assert.Equal(t, int32(1), hits.Load())

	assert.Nil(t, NewClient(WithRateLimit(0, 5)).limiter)
}
