package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{Network: models.MNetworkConfig{
		RequestTimeout:     5,
		MaxRetries:         retries,
		ConcurrentRequests: 2,
		UserAgent:          "desk-test",
	}}
	nm := NewAsyncNetworkManager(cfg, logger.NewNop("net"))
	nm.backoff = time.Millisecond
	return nm
}

func TestGet_PassesParamsAndUserAgent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		assert.Equal(t, "desk-test", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	body, err := newTestManager(0).Get(context.Background(), ts.URL+"/v8/finance/chart/AAPL", map[string]string{"range": "1d"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGet_RetriesOnBlock(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer ts.Close()

	_, err := newTestManager(2).Get(context.Background(), ts.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestManager(3).Get(context.Background(), ts.URL, nil)
	require.Error(t, err)

	var netErr *helpers.NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.True(t, helpers.IsPermanent(err), "unknown symbols must not be retried by the job queue")
	assert.Equal(t, int32(1), hits.Load())
}
