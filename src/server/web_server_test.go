package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"ticker-desk/src/dashboard"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu     sync.Mutex
	stocks []models.MStock
	added  []string
}

func (f *fakeAPI) ListStocks(context.Context) ([]models.MStock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.MStock{}, f.stocks...), nil
}

func (f *fakeAPI) AddStock(_ context.Context, ticker string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, ticker)
	f.stocks = append(f.stocks, models.MStock{ID: int64(len(f.stocks) + 1), Ticker: ticker})
	return "task-" + ticker, nil
}

func (f *fakeAPI) StartJob(context.Context, int64) error { return nil }

func newTestServer(t *testing.T, apiBase string, api *fakeAPI) *WebServer {
	t.Helper()
	cfg := &models.MConfig{Host: "127.0.0.1", Port: 3000, APIBase: apiBase}
	s, err := NewWebServer(cfg, api, logger.NewNop("web"))
	require.NoError(t, err)
	return s
}

// -----------------------------------------------------------------------------

func TestNewWebServer_RejectsBadBase(t *testing.T) {
	_, err := NewWebServer(&models.MConfig{APIBase: "not a url"}, &fakeAPI{}, logger.NewNop("web"))
	assert.Error(t, err)
}

func TestPages(t *testing.T) {
	s := newTestServer(t, "http://backend.test", &fakeAPI{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/tickers"`)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tickers", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `maxlength="12"`)
	assert.Contains(t, body, "Ticker codes are uppercased automatically.")
	assert.Contains(t, body, "Nothing tracked yet.")
	assert.Contains(t, body, "refreshButton.disabled = state.loading || state.pending;")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sessions":0,"api_base":"http://backend.test"}`, rec.Body.String())
}

// -----------------------------------------------------------------------------

func TestProxyPreservesRequest(t *testing.T) {
	type seen struct {
		method, path, query, body, header string
	}
	got := make(chan seen, 1)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- seen{r.Method, r.URL.Path, r.URL.RawQuery, string(b), r.Header.Get("X-Trace")}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"task_id":"t-1"}`)
	}))
	defer backend.Close()

	s := newTestServer(t, backend.URL, &fakeAPI{})
	front := httptest.NewServer(s.Handler())
	defer front.Close()

	req, _ := http.NewRequest(http.MethodPost, front.URL+"/api/stocks?ticker=AAPL&x=%2F", strings.NewReader(`{"a":1}`))
	req.Header.Set("X-Trace", "abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"task_id":"t-1"}`, string(b))

	r := <-got
	assert.Equal(t, http.MethodPost, r.method)
	assert.Equal(t, "/api/stocks", r.path)
	assert.Equal(t, "ticker=AAPL&x=%2F", r.query)
	assert.Equal(t, `{"a":1}`, r.body)
	assert.Equal(t, "abc", r.header)
}

func TestProxyUnreachableBackend(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	dead.Close()

	s := newTestServer(t, dead.URL, &fakeAPI{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body models.MAPIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, msgBackendUnavailable, body.Message)
}

// -----------------------------------------------------------------------------

func readUntil(t *testing.T, conn *websocket.Conn, match func(models.MDashboardState) bool) models.MDashboardState {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var st models.MDashboardState
		require.NoError(t, conn.ReadJSON(&st))
		if match(st) {
			return st
		}
	}
}

func TestDispatch_KeepsInputOrder(t *testing.T) {
	for round := 0; round < 50; round++ {
		client := &Client{ctx: context.Background(), wake: make(chan struct{}, 1)}
		client.session = dashboard.NewSession(&fakeAPI{}, logger.NewNop("web"), client.push)

		for _, text := range []string{"A", "AA", "AAP", "AAPL"} {
			client.dispatch(models.MDashboardCommand{Command: models.CommandInput, Ticker: text})
		}
		require.Equal(t, "AAPL", client.session.Snapshot().Input, "round %d", round)
		require.Equal(t, "AAPL", client.take().Input)
	}
}

func TestWebSocketSession(t *testing.T) {
	api := &fakeAPI{stocks: []models.MStock{{ID: 1, Ticker: "AAPL", Name: models.StringPtr("Apple"), Exchange: models.StringPtr("NASDAQ")}}}
	s := newTestServer(t, "http://backend.test", api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.runHub(ctx)

	front := httptest.NewServer(s.Handler())
	defer front.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(front.URL, "http")+"/ws", nil)
	require.NoError(t, err)

	st := readUntil(t, conn, func(st models.MDashboardState) bool { return !st.Loading && len(st.Stocks) == 1 })
	assert.Equal(t, "STATE", st.Type)
	assert.Equal(t, "Apple", st.Stocks[0].DisplayName())
	assert.Eventually(t, func() bool { return s.Sessions() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(models.MDashboardCommand{Command: models.CommandSubmit, Ticker: " msft"}))
	st = readUntil(t, conn, func(st models.MDashboardState) bool { return st.Info != "" })
	assert.Equal(t, "Ticker MSFT added and refresh scheduled (Task ID: task-MSFT)", st.Info)
	assert.Len(t, st.Stocks, 2)
	assert.Empty(t, st.Input)

	require.NoError(t, conn.WriteJSON(models.MDashboardCommand{Command: models.CommandStart, ID: 2}))
	st = readUntil(t, conn, func(st models.MDashboardState) bool { return strings.HasPrefix(st.Info, "Refresh queued") })
	assert.Equal(t, "Refresh queued for MSFT", st.Info)

	conn.Close()
	assert.Eventually(t, func() bool { return s.Sessions() == 0 }, 2*time.Second, 10*time.Millisecond)
}
