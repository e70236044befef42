package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/service/metrics"
	"MarketCoach/internal/service/ratelimit"
	"MarketCoach/internal/service/twelvedata"
	"MarketCoach/internal/usecase"
	"MarketCoach/pkg/config"
	xhttp "MarketCoach/pkg/http"
	xlogger "MarketCoach/pkg/logger"

	"github.com/labstack/echo/v4"
)

const headerRateRemaining = "X-RateLimit-Remaining"

// UseCases groups everything the dashboard routes call into.
type UseCases struct {
	Snapshot     *usecase.SnapshotGateway
	Regime       *usecase.RegimeUseCase
	Baselines    *usecase.BaselineUseCase
	Fundamentals *usecase.FundamentalsUseCase
	Coach        *usecase.CoachUseCase
	Events       *usecase.EventsUseCase
}

// DashboardEchoHandler serves the dashboard JSON API. Successful payloads are
// written bare; failures use the AppError envelope.
type DashboardEchoHandler struct {
	logger *xlogger.Logger
	uc     UseCases
	rl     *ratelimit.Limiter
	limit  config.RateLimitConfig
	stream config.StreamConfig
}

func NewDashboardEchoHandler(
	logger *xlogger.Logger,
	uc UseCases,
	rl *ratelimit.Limiter,
	limit config.RateLimitConfig,
	stream config.StreamConfig,
) *DashboardEchoHandler {
	metrics.Register()
	if rl == nil {
		rl = ratelimit.New()
	}
	return &DashboardEchoHandler{logger: logger, uc: uc, rl: rl, limit: limit, stream: stream}
}

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api", h.noStore)
	g.GET("/snapshot", h.Snapshot)
	g.GET("/snapshot/stream", h.Stream)
	g.GET("/regime", h.Regime)
	g.GET("/init-baselines", h.InitBaselines)
	g.GET("/fundamentals/dividends", h.Dividends)
	g.GET("/fundamentals/earnings", h.Earnings)
	g.GET("/coach/latest", h.CoachLatest)
	g.GET("/coach/history", h.CoachHistory)
	g.GET("/events/index", h.EventsIndex)
	g.GET("/events/active", h.EventsActive)
}

func (h *DashboardEchoHandler) noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return next(c)
	}
}

func (h *DashboardEchoHandler) Snapshot(c echo.Context) error {
	const endpoint = "snapshot"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.SymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Warn("snapshot bad request", xlogger.Any("errors", verr))
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Snapshot.Snapshot(c.Request().Context(), xhttp.ParseSymbols(req.Symbols))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) Regime(c echo.Context) error {
	const endpoint = "regime"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.SymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Warn("regime bad request", xlogger.Any("errors", verr))
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Regime.Regime(c.Request().Context(), xhttp.ParseSymbols(req.Symbols))
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) InitBaselines(c echo.Context) error {
	const endpoint = "init_baselines"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.InitBaselinesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Warn("init-baselines bad request", xlogger.Any("errors", verr))
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := xhttp.ParseSymbols(req.Symbols)
	if len(symbols) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbols is required").WithParam("field", "symbols"))
	}

	res, err := h.uc.Baselines.Init(c.Request().Context(), symbols)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) Dividends(c echo.Context) error {
	const endpoint = "dividends"
	defer observe(endpoint, time.Now())
	return h.fundamentals(c, endpoint, func(ctx context.Context, sym string) (interface{}, error) {
		return h.uc.Fundamentals.Dividends(ctx, sym)
	})
}

func (h *DashboardEchoHandler) Earnings(c echo.Context) error {
	const endpoint = "earnings"
	defer observe(endpoint, time.Now())
	return h.fundamentals(c, endpoint, func(ctx context.Context, sym string) (interface{}, error) {
		return h.uc.Fundamentals.Earnings(ctx, sym)
	})
}

func (h *DashboardEchoHandler) fundamentals(c echo.Context, endpoint string, fetch func(context.Context, string) (interface{}, error)) error {
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.FundamentalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Warn("fundamentals bad request", xlogger.String("endpoint", endpoint), xlogger.Any("errors", verr))
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := xhttp.ParseSymbols(req.Symbol)
	if len(symbols) != 1 {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("expected one symbol, got %q", req.Symbol))
	}

	res, err := fetch(c.Request().Context(), symbols[0])
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) CoachLatest(c echo.Context) error {
	const endpoint = "coach_latest"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	res, err := h.uc.Coach.Latest(c.Request().Context())
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) CoachHistory(c echo.Context) error {
	const endpoint = "coach_history"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	hours := xhttp.ParseIntDefault(c.QueryParam("hours"), usecase.DefaultCoachHours)
	res, err := h.uc.Coach.History(c.Request().Context(), hours)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) EventsIndex(c echo.Context) error {
	const endpoint = "events_index"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	res, err := h.uc.Events.Index(c.Request().Context())
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

func (h *DashboardEchoHandler) EventsActive(c echo.Context) error {
	const endpoint = "events_active"
	defer observe(endpoint, time.Now())
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	res, err := h.uc.Events.Active(c.Request().Context())
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.RawResponse(c, http.StatusOK, res)
}

// allow applies the per-client token bucket. A zero capacity disables it.
func (h *DashboardEchoHandler) allow(c echo.Context, endpoint string) bool {
	if h.limit.Capacity <= 0 {
		return true
	}
	ip := c.RealIP()
	ok := h.rl.Allow(ip, h.limit.Capacity, h.limit.RefillPerSec)
	c.Response().Header().Set(headerRateRemaining, strconv.Itoa(h.rl.Remaining(ip, h.limit.Capacity, h.limit.RefillPerSec)))
	return ok
}

func (h *DashboardEchoHandler) rateLimited(c echo.Context, endpoint string) error {
	h.logger.Warn("rate limited", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
}

// fail maps a usecase error onto the AppError envelope.
func (h *DashboardEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	return xhttp.AppErrorResponse(c, h.appError(endpoint, err))
}

func (h *DashboardEchoHandler) appError(endpoint string, err error) *xhttp.AppError {
	var statusErr *xhttp.StatusError
	switch {
	case errors.Is(err, usecase.ErrNotConfigured):
		h.logger.Error("dashboard not configured", xlogger.String("endpoint", endpoint))
		return xhttp.ConfigError("TWELVE_DATA_API_KEY is not set").WithError(err)
	case errors.Is(err, twelvedata.ErrCreditsExhausted):
		h.logger.Warn("upstream credits exhausted", xlogger.String("endpoint", endpoint))
		return xhttp.TooManyRequestsError("upstream credit budget exhausted").WithError(err)
	case errors.Is(err, twelvedata.ErrProvider), errors.Is(err, twelvedata.ErrMalformed),
		errors.As(err, &statusErr), errors.Is(err, context.DeadlineExceeded):
		h.logger.Error("upstream error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	default:
		h.logger.Error("dashboard usecase error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
