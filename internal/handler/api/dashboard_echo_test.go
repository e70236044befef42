package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/service/ratelimit"
	"MarketCoach/internal/service/twelvedata"
	"MarketCoach/internal/services/regime"
	"MarketCoach/internal/services/session"
	"MarketCoach/internal/services/universe"
	"MarketCoach/internal/usecase"
	"MarketCoach/pkg/cache"
	"MarketCoach/pkg/config"
	xlogger "MarketCoach/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMarket answers every symbol with the same quote.
type fakeMarket struct {
	fundErr error
}

func (f *fakeMarket) Quote(_ context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, Price: models.Float(101), High: models.Float(102), PreviousClose: models.Float(100)}, nil
}

func (f *fakeMarket) IntradaySeries(context.Context, string) ([]models.Bar, error) {
	return []models.Bar{{Datetime: "2025-03-05 10:05:00", High: models.Float(102), Close: models.Float(101)}}, nil
}

func (f *fakeMarket) DailyClose(context.Context, string) (*float64, error) {
	return models.Float(100), nil
}

func (f *fakeMarket) Dividends(context.Context, string) ([]models.Dividend, error) {
	return nil, f.fundErr
}

func (f *fakeMarket) Earnings(context.Context, string) ([]models.Earning, error) {
	return nil, f.fundErr
}

type testServer struct {
	echo  *echo.Echo
	cache *cache.MemoryCache
}

func newTestServer(t *testing.T, configured bool, market *fakeMarket, limit config.RateLimitConfig) *testServer {
	t.Helper()
	clock, err := session.NewClock("America/New_York", "America/Chicago")
	require.NoError(t, err)
	clock = clock.WithNow(func() time.Time { return time.Date(2025, 3, 5, 15, 7, 0, 0, time.UTC) })

	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	u := universe.Default()
	l := xlogger.NewNop()

	gw := usecase.NewSnapshotGateway(market, mem, clock, u, nil, nil, l, usecase.GatewayConfig{Configured: configured})
	coach := usecase.NewCoachUseCase(mem, clock, l)
	uc := UseCases{
		Snapshot:     gw,
		Regime:       usecase.NewRegimeUseCase(gw, regime.NewBreadthClassifier(u), coach, nil, l),
		Baselines:    usecase.NewBaselineUseCase(market, mem, l, configured),
		Fundamentals: usecase.NewFundamentalsUseCase(market, mem, clock, nil, l, configured),
		Coach:        coach,
		Events:       usecase.NewEventsUseCase(mem, l),
	}

	e := echo.New()
	NewDashboardEchoHandler(l, uc, ratelimit.New(), limit, config.StreamConfig{}).RegisterRoutes(e)
	return &testServer{echo: e, cache: mem}
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status int `json:"status"`
	Data   []struct {
		Code string `json:"code"`
	} `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestSnapshotReturnsBareBody(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})

	rec := s.get("/api/snapshot?symbols=aapl,MSFT")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body, 3)
	assert.Contains(t, body, "AAPL")
	assert.Contains(t, body, "_meta")

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(body["AAPL"], &snap))
	require.NotNil(t, snap.Last)
	assert.Equal(t, 101.0, *snap.Last)
	assert.True(t, snap.ETH.Available)
}

func TestSnapshotNotConfigured(t *testing.T) {
	s := newTestServer(t, false, &fakeMarket{}, config.RateLimitConfig{})

	rec := s.get("/api/snapshot")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "ERR_CONFIG", env.Data[0].Code)
}

func TestRegimeUsesActiveClassifier(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})

	rec := s.get("/api/regime?symbols=AAPL,MSFT,KO")
	require.Equal(t, http.StatusOK, rec.Code)

	var r models.RegimeReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, regime.ClassifierBreadth, r.Classifier)
	require.NotNil(t, r.Breadth)
	assert.Equal(t, 3, r.Breadth.Up)
	assert.Equal(t, "2025-03-05:10:05", r.Meta.Bucket)

	rec = s.get("/api/coach/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var latest models.CoachLatest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, r.Regime.Label, latest.Regime)
}

func TestInitBaselinesRequiresSymbols(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})

	assert.Equal(t, http.StatusBadRequest, s.get("/api/init-baselines").Code)
	assert.Equal(t, http.StatusBadRequest, s.get("/api/init-baselines?symbols=,,").Code)

	rec := s.get("/api/init-baselines?symbols=AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"results":{"AAPL":{"ok":true,"baseline":100}}}`, rec.Body.String())
}

func TestFundamentalsErrors(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{fundErr: fmt.Errorf("%w: symbol not found", twelvedata.ErrProvider)}, config.RateLimitConfig{})

	assert.Equal(t, http.StatusBadRequest, s.get("/api/fundamentals/dividends").Code)

	rec := s.get("/api/fundamentals/dividends?symbol=KO")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "ERR_UPSTREAM", decodeEnvelope(t, rec).Data[0].Code)

	s = newTestServer(t, true, &fakeMarket{fundErr: twelvedata.ErrCreditsExhausted}, config.RateLimitConfig{})
	assert.Equal(t, http.StatusTooManyRequests, s.get("/api/fundamentals/earnings?symbol=KO").Code)
}

func TestFundamentalsEmpty(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})

	rec := s.get("/api/fundamentals/earnings?symbol=ko")
	require.Equal(t, http.StatusOK, rec.Code)
	var r models.EarningsReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "KO", r.Symbol)
	assert.Empty(t, r.Earnings)
}

func TestCoachHistoryClampsHours(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})

	for target, want := range map[string]int{
		"/api/coach/history":           24,
		"/api/coach/history?hours=500": 72,
		"/api/coach/history?hours=-3":  1,
		"/api/coach/history?hours=abc": 24,
	} {
		rec := s.get(target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		var h models.CoachHistory
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
		assert.Equal(t, want, h.Hours, target)
	}
}

func TestEventsDefaults(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})

	rec := s.get("/api/events/index")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.get("/api/events/active")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestRateLimitPerClient(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{Capacity: 1, RefillPerSec: 0.001})

	first := s.get("/api/events/index")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))
	rec := s.get("/api/events/index")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "ERR_RATE_LIMITED", decodeEnvelope(t, rec).Data[0].Code)
}

func TestRateLimitZeroCapacityDisables(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{Capacity: 0, RefillPerSec: 2})

	for i := 0; i < 20; i++ {
		rec := s.get("/api/events/index")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestStreamInterval(t *testing.T) {
	cases := []struct {
		raw  string
		def  time.Duration
		want time.Duration
	}{
		{"", 0, 30 * time.Second},
		{"", time.Minute, time.Minute},
		{"10s", 0, 10 * time.Second},
		{"1s", 0, 5 * time.Second},
		{"1h", 0, 5 * time.Minute},
		{"45", 0, 45 * time.Second},
		{"soon", 0, 30 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StreamInterval(tc.raw, tc.def), tc.raw)
	}
}

func TestStreamPushesFirstFrame(t *testing.T) {
	s := newTestServer(t, true, &fakeMarket{}, config.RateLimitConfig{})
	srv := httptest.NewServer(s.echo)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/snapshot/stream?symbols=AAPL,KO"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var fr struct {
		Snapshot map[string]json.RawMessage `json:"snapshot"`
		Regime   models.RegimeReport        `json:"regime"`
	}
	require.NoError(t, conn.ReadJSON(&fr))
	assert.Contains(t, fr.Snapshot, "AAPL")
	assert.Contains(t, fr.Snapshot, "KO")
	assert.Equal(t, regime.ClassifierBreadth, fr.Regime.Classifier)
}

func TestStreamNotConfiguredFailsBeforeUpgrade(t *testing.T) {
	s := newTestServer(t, false, &fakeMarket{}, config.RateLimitConfig{})

	rec := s.get("/api/snapshot/stream")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
