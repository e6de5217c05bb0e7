package statushttp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeEvents struct {
	lines     []string
	lastLimit int
	err       error
}

func (f *fakeEvents) Tail(limit int) ([]gjson.Result, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]gjson.Result, 0, len(f.lines))
	for _, l := range f.lines {
		out = append(out, gjson.Parse(l))
	}
	return out, nil
}

func newTestServer(t *testing.T, ev EventReader) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, err := NewServer(Config{SystemName: "JARVIS_PAPER_TRADING", Events: ev, DefaultLimit: 50, MaxLimit: 1000,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("jarvis_up 1\n")) })})
	require.NoError(t, err)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestStatus(t *testing.T) {
	s := newTestServer(t, &fakeEvents{})
	rr := get(s, "/status")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"active","system":"JARVIS_PAPER_TRADING"}`, rr.Body.String())
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventsDefaultAndClamp(t *testing.T) {
	ev := &fakeEvents{lines: []string{
		`{"ts":"2026-01-01T00:00:02Z","type":"TRADE_SKIPPED","reason":"WEAK_SIGNAL","metrics":{}}`,
		`{"ts":"2026-01-01T00:00:01Z","type":"TRADE_EXECUTED","reason":"ENTRY_BUY","metrics":{"score":0.8}}`,
	}}
	s := newTestServer(t, ev)

	rr := get(s, "/events")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 50, ev.lastLimit)
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "WEAK_SIGNAL", out[0]["reason"])

	get(s, "/events?limit=5000")
	assert.Equal(t, 1000, ev.lastLimit)
	get(s, "/events?limit=3")
	assert.Equal(t, 3, ev.lastLimit)

	rr = get(s, "/events?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEventsEmptyIsArray(t *testing.T) {
	s := newTestServer(t, &fakeEvents{})
	rr := get(s, "/events")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestEventsReadError(t *testing.T) {
	s := newTestServer(t, &fakeEvents{err: errors.New("disk")})
	assert.Equal(t, http.StatusInternalServerError, get(s, "/events").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &fakeEvents{})
	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
	rr := get(s, "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "jarvis_up 1")
}

func TestPreflight(t *testing.T) {
	s := newTestServer(t, &fakeEvents{})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/events", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestNewServerRequiresEvents(t *testing.T) {
	_, err := NewServer(Config{})
	assert.Error(t, err)
}
