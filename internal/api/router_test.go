package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/muhtasib/backend/internal/api/handlers"
	"github.com/wonny/muhtasib/backend/internal/performance"
	"github.com/wonny/muhtasib/backend/internal/session"
	"github.com/wonny/muhtasib/backend/pkg/config"
	"github.com/wonny/muhtasib/backend/pkg/database"
	"github.com/wonny/muhtasib/backend/pkg/logger"
)

var (
	knownID   = uuid.MustParse("3f2a9c1e-5b7d-4e8f-9a0b-1c2d3e4f5a6b")
	shortID   = uuid.MustParse("7e6d5c4b-3a29-4180-b7c6-d5e4f3a2b1c0")
	brokenID  = uuid.MustParse("aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee")
	panicID   = uuid.MustParse("bbbbbbbb-cccc-4ddd-8eee-ffffffffffff")
	sessStart = time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC)
)

type fakeReader struct{}

func (fakeReader) Sessions(ctx context.Context) ([]session.Session, error) {
	return []session.Session{{ID: knownID, Name: "grid", Exchange: "ftx", CreateTime: sessStart}}, nil
}

func (fakeReader) Session(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	if id == knownID {
		return &session.Session{ID: knownID, Name: "grid", Exchange: "ftx", CreateTime: sessStart}, nil
	}
	return nil, session.ErrSessionNotFound
}

func (r fakeReader) Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error) {
	switch id {
	case brokenID:
		return nil, errors.New("pool closed")
	case panicID:
		panic("unexpected nil row")
	case shortID:
		return &session.Snapshot{
			Session:  session.Session{ID: shortID},
			Equities: []session.Equity{{Total: decimal.NewFromInt(1000), Time: sessStart}},
		}, nil
	}

	info, err := r.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	equities, _ := r.Equities(ctx, id, 0)
	executedSize := decimal.NewNullDecimal(decimal.NewFromInt(2))
	executedPrice := decimal.NewNullDecimal(decimal.NewFromInt(250))

	return &session.Snapshot{
		Session:  *info,
		Equities: equities,
		Orders: []session.Order{{
			ID:            uuid.New(),
			Market:        "BTC-PERP",
			Side:          session.SideBuy,
			ExecutedSize:  executedSize,
			ExecutedPrice: executedPrice,
		}},
	}, nil
}

func (fakeReader) Equities(ctx context.Context, id uuid.UUID, offset int) ([]session.Equity, error) {
	all := []session.Equity{
		{Total: decimal.NewFromInt(1000), Time: sessStart},
		{Total: decimal.NewFromInt(1050), Time: sessStart.Add(24 * time.Hour)},
		{Total: decimal.NewFromInt(1100), Time: sessStart.Add(48 * time.Hour)},
	}
	if offset >= len(all) {
		return []session.Equity{}, nil
	}
	return all[offset:], nil
}

func (fakeReader) Orders(ctx context.Context, id uuid.UUID, offset int) ([]session.Order, error) {
	return []session.Order{}, nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(ctx context.Context) (*database.HealthStatus, error) {
	return &database.HealthStatus{Healthy: f.err == nil, Timestamp: time.Now()}, f.err
}

func newTestRouter(t *testing.T, health handlers.HealthChecker, limiter RateLimiter) http.Handler {
	t.Helper()
	log := logger.Nop()
	cfg := config.APIConfig{AllowedOrigins: []string{"*"}, RequestTimeout: time.Second}

	return NewRouter(
		handlers.NewSessionHandler(fakeReader{}, performance.NewEngine(), log),
		handlers.NewSystemHandler(health, "development"),
		limiter,
		cfg,
		log,
	)
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_StatusCodes(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"list sessions", "/sessions", http.StatusOK},
		{"info", "/sessions/" + knownID.String() + "/info", http.StatusOK},
		{"info unknown session", "/sessions/" + uuid.NewString() + "/info", http.StatusNotFound},
		{"info bad id", "/sessions/not-a-uuid/info", http.StatusBadRequest},
		{"summary", "/sessions/" + knownID.String() + "/more", http.StatusOK},
		{"summary unknown session", "/sessions/" + uuid.NewString() + "/more", http.StatusNotFound},
		{"summary too little history", "/sessions/" + shortID.String() + "/more", http.StatusUnprocessableEntity},
		{"summary loader failure", "/sessions/" + brokenID.String() + "/more", http.StatusInternalServerError},
		{"summary panic", "/sessions/" + panicID.String() + "/more", http.StatusInternalServerError},
		{"equity page", "/sessions/" + knownID.String() + "/equity/1", http.StatusOK},
		{"equity non-numeric offset", "/sessions/" + knownID.String() + "/equity/abc", http.StatusNotFound},
		{"orders page", "/sessions/" + knownID.String() + "/orders/0", http.StatusOK},
		{"health", "/health", http.StatusOK},
		{"info endpoint", "/info", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.path)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_SummaryBody(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, nil)

	rec := do(t, router, http.MethodGet, "/sessions/"+knownID.String()+"/more")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	info := body["info"].(map[string]interface{})
	assert.Equal(t, knownID.String(), info["sessionId"])

	years := 2.0 / 365.0
	assert.InDelta(t, 0.1/years, body["annualRateOfReturn"], 1e-9)
	assert.InDelta(t, 500/years, body["annualTurnover"], 1e-9)
	assert.InDelta(t, 100.0/500.0, body["operatingMargin"], 1e-12)
	assert.Len(t, body["dailyRateOfReturns"], 2)
	assert.Contains(t, body, "avgDailyRateOfReturn")
	assert.Contains(t, body, "stdevDailyRateOfReturn")
}

func TestRouter_UndefinedStatisticBody(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, nil)

	rec := do(t, router, http.MethodGet, "/sessions/"+shortID.String()+"/more")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "insufficient_data", body.Code)
	assert.NotContains(t, rec.Body.String(), "NaN")
}

func TestRouter_EquityPage(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, nil)

	rec := do(t, router, http.MethodGet, "/sessions/"+knownID.String()+"/equity/2")
	require.Equal(t, http.StatusOK, rec.Code)

	var page []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page, 1)
	assert.Equal(t, "1100", page[0]["total"])
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t, fakeHealth{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/sessions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func TestRouter_HealthDegraded(t *testing.T) {
	router := newTestRouter(t, fakeHealth{err: errors.New("connection refused")}, nil)

	rec := do(t, router, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	limiter := newLocalLimiter(0.001, 2)
	router := newTestRouter(t, fakeHealth{}, limiter)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/sessions").Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/sessions").Code)

	rec := do(t, router, http.MethodGet, "/sessions")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestNewRateLimiter(t *testing.T) {
	assert.Nil(t, NewRateLimiter(config.APIConfig{RateLimitRPS: 0}, nil, logger.Nop()))

	limiter := NewRateLimiter(config.APIConfig{RateLimitRPS: 5, RateLimitBurst: 0}, nil, logger.Nop())
	require.IsType(t, &localLimiter{}, limiter)
	assert.True(t, limiter.Allow(context.Background(), "10.0.0.1"))
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	req.RemoteAddr = "192.168.1.200:53211"
	assert.Equal(t, "192.168.1.200", clientKey(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientKey(req))
}
