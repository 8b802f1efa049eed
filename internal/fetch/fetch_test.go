package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "LinkerBot")
		_, _ = w.Write([]byte("<html><h1>Nigara Shaheen</h1></html>"))
	}))
	defer srv.Close()

	f := NewHTTP(Config{})
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Nigara Shaheen")
}

func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTP(Config{})
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPFetcher_PacingSpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	delay := 50 * time.Millisecond
	f := NewHTTP(Config{Delay: delay})

	start := time.Now()
	for range 3 {
		_, err := f.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// First request is immediate; the next two each wait out the delay.
	assert.GreaterOrEqual(t, time.Since(start), 2*delay)
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	f := NewHTTP(Config{Delay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Get(ctx, "http://unreachable.invalid/")
	require.Error(t, err)
}
