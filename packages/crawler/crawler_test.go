package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricealert/packages/domain"
)

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	page, err := New(2*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "<html><body>ok</body></html>", string(page.Body))
	assert.Equal(t, UserAgent, gotUA)
	assert.Equal(t, Accept, gotAccept)
}

func TestFetchReturnsStatusWithoutError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	page, err := New(2*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, page.StatusCode)
	assert.Empty(t, page.Body)
	assert.Equal(t, 1, calls, "no retries")
}

func TestFetchTruncatesOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer srv.Close()

	c := New(2 * time.Second)
	c.maxBody = 16
	page, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.Body, 16)
	assert.True(t, page.Truncated)

	c.maxBody = 64
	page, err = c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.Body, 64)
	assert.False(t, page.Truncated, "a body exactly at the cap is complete")
}

func TestFetchTimeoutIsFetchError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	var fetchErr *domain.FetchError
	assert.True(t, errors.As(err, &fetchErr))
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := New(time.Second).Fetch(context.Background(), addr)
	var fetchErr *domain.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, addr, fetchErr.URL)
}

func TestFetchMalformedURL(t *testing.T) {
	_, err := New(time.Second).Fetch(context.Background(), "http://[::1")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
}

func TestNewDefaultsTimeout(t *testing.T) {
	c := New(0)
	assert.Equal(t, DefaultTimeout, c.client.Timeout)
	assert.Equal(t, int64(MaxBodyBytes), c.maxBody)
}
