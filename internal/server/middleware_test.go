package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/gfc-explorer/internal/hpi"
)

func TestRequestIDPreservesClientID(t *testing.T) {
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRequestIDMintsID(t *testing.T) {
	h := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestClientLimiter(t *testing.T) {
	cl := newClientLimiter(1, 2)

	assert.True(t, cl.allow("10.0.0.1:1234"))
	assert.True(t, cl.allow("10.0.0.1:1234"))
	// Burst exhausted for this IP.
	assert.False(t, cl.allow("10.0.0.1:5678"))
	// Other clients carry their own bucket.
	assert.True(t, cl.allow("10.0.0.2:1234"))
}

func TestRateLimitMiddleware(t *testing.T) {
	engine := hpi.New(seedStore(t), hpi.Options{})
	srv := New(engine, nil, Options{RateLimitRPS: 1, RateLimitBurst: 1})

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
