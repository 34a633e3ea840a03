package xlookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xoui/pkg/oui/xregistry"
)

const foundBody = `{"success":true,"found":true,"macPrefix":"246d5e","company":"TEST Systems, Inc","address":"1 Main St, Springfield US","blockStart":"246D5E000000","blockEnd":"246D5EFFFFFF","blockSize":16777215,"blockType":"MA-L","updated":"2021-01-01","isRand":false,"isPrivate":false}`

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	base := []Option{
		WithBaseURL(srv.URL + "/v2/macs"),
		WithHTTPClient(srv.Client()),
		WithLimiter(NewLocalLimiter(0)),
		WithRetryDelay(0),
	}
	return New(append(base, opts...)...), &calls
}

func TestClient_LookupFound(t *testing.T) {
	var path, ua string
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, ua = r.URL.Path, r.UserAgent()
		_, _ = w.Write([]byte(foundBody))
	}, WithUserAgent("xoui/test"))

	resp, err := c.Lookup(context.Background(), "24:6d:5e")
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, "TEST Systems, Inc", resp.Company)
	assert.Equal(t, "/v2/macs/246D5E000000", path)
	assert.Equal(t, "xoui/test", ua)
	assert.Equal(t, int32(1), calls.Load())

	rec := resp.Record()
	assert.Equal(t, "246D5E", rec.Prefix)
	assert.Equal(t, xregistry.MAL, rec.Assignment)
	assert.Equal(t, "1 Main St, Springfield US", rec.RawAddress)
}

func TestClient_APIKeyQuery(t *testing.T) {
	var key string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		key = r.URL.Query().Get("apiKey")
		_, _ = w.Write([]byte(foundBody))
	}, WithAPIKey(" k1 "))

	_, err := c.Lookup(context.Background(), "246D5E112233")
	require.NoError(t, err)
	assert.Equal(t, "k1", key)
}

func TestClient_LookupVendor(t *testing.T) {
	found := true
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if found {
			_, _ = w.Write([]byte(foundBody))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"found":false,"macPrefix":"","company":""}`))
	})

	rec, ok, err := c.LookupVendor(context.Background(), "246D5E000000")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "TEST Systems, Inc", rec.Organization)

	found = false
	_, ok, err = c.LookupVendor(context.Background(), "A8BBCC000000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var n atomic.Int32
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if n.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(foundBody))
	}, WithAttempts(3))

	resp, err := c.Lookup(context.Background(), "246D5E")
	require.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RateLimitedIsRetried(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithAttempts(2))

	_, err := c.Lookup(context.Background(), "246D5E")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RejectedIsNotRetried(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":"Unauthorized","errorCode":401}`))
	}, WithAttempts(5))

	_, err := c.Lookup(context.Background(), "246D5E")
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Unauthorized")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_UnsuccessfulBody(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"bad mac"}`))
	})
	_, err := c.Lookup(context.Background(), "246D5E")
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_InvalidJSON(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}, WithAttempts(3))
	_, err := c.Lookup(context.Background(), "246D5E")
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_InvalidAddress(t *testing.T) {
	c, calls := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	for _, in := range []string{"", "xyz", "24:6D", "246D5E1122334455"} {
		_, err := c.Lookup(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidAddress, in)
	}
	assert.Zero(t, calls.Load())
}

func TestClient_BreakerOpens(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithAttempts(1), WithBreaker(2, time.Minute))

	for range 2 {
		_, err := c.Lookup(context.Background(), "246D5E")
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	_, err := c.Lookup(context.Background(), "246D5E")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "open")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_RejectionDoesNotTripBreaker(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}, WithAttempts(1), WithBreaker(1, time.Minute))

	for range 3 {
		_, err := c.Lookup(context.Background(), "246D5E")
		assert.ErrorIs(t, err, ErrRejected)
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(foundBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "246D5E")
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	c := New(WithBaseURL(""), WithHTTPClient(nil), WithLimiter(nil), WithLogger(nil), WithUserAgent(""))
	assert.Equal(t, DefaultBaseURL, c.cfg.baseURL)
	assert.Equal(t, "xoui", c.cfg.userAgent)
	assert.NotNil(t, c.cfg.httpClient)
	assert.NotNil(t, c.cfg.limiter)
	assert.Equal(t, uint(defaultAttempts), c.cfg.attempts)

	assert.True(t, strings.HasSuffix(New(WithBaseURL("http://x/v2/macs/")).endpoint("246D5E000000"), "/v2/macs/246D5E000000"))
	assert.Equal(t, 3*time.Second, New(WithTimeout(3*time.Second)).cfg.httpClient.Timeout)
}

func TestClient_Backoff(t *testing.T) {
	c := New(WithRetryDelay(10 * time.Millisecond))
	for n := uint(1); n <= 10; n++ {
		d := c.backoff(n, nil, nil)
		shift := min(n, 7) - 1
		assert.GreaterOrEqual(t, d, 10*time.Millisecond<<shift)
		assert.Less(t, d, 10*time.Millisecond<<shift+10*time.Millisecond)
	}
	assert.Zero(t, New(WithRetryDelay(0)).backoff(3, nil, nil))
}
