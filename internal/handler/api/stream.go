package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/service/metrics"
	xhttp "MarketCoach/pkg/http"
	xlogger "MarketCoach/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	minStreamInterval     = 5 * time.Second
	maxStreamInterval     = 5 * time.Minute
	defaultStreamInterval = 30 * time.Second
	defaultPingInterval   = 20 * time.Second
	streamWriteWait       = 10 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin:       func(*http.Request) bool { return true },
	EnableCompression: true,
}

// StreamFrame is one push on the snapshot stream.
type StreamFrame struct {
	Snapshot *models.SnapshotResponse `json:"snapshot"`
	Regime   *models.RegimeReport     `json:"regime"`
}

// Stream upgrades to a websocket and pushes the snapshot and its regime every
// interval. Reads go through the gateway, so cadence buckets still bound
// upstream calls no matter how many clients are connected.
func (h *DashboardEchoHandler) Stream(c echo.Context) error {
	const endpoint = "stream"
	if !h.allow(c, endpoint) {
		return h.rateLimited(c, endpoint)
	}

	req := &models.StreamRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		h.logger.Warn("stream bad request", xlogger.Any("errors", verr))
		return xhttp.BadRequestResponse(c, verr)
	}
	symbols := xhttp.ParseSymbols(req.Symbols)
	interval := StreamInterval(req.Interval, h.stream.Interval)

	// The first frame is computed before upgrading so configuration errors
	// still get a normal JSON error response.
	first, err := h.frame(c.Request().Context(), symbols)
	if err != nil {
		return h.fail(c, endpoint, err)
	}

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("stream upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	metrics.StreamClients.Inc()
	defer metrics.StreamClients.Dec()
	h.logger.Info("stream opened",
		xlogger.String("remote", c.RealIP()),
		xlogger.Duration("interval", interval),
		xlogger.Int("symbols", len(symbols)))

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request().Context()))
	defer cancel()

	ping := h.stream.PingInterval
	if ping <= 0 {
		ping = defaultPingInterval
	}
	go h.drain(conn, 3*ping, cancel)

	if err := writeFrame(conn, first); err != nil {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	pinger := time.NewTicker(ping)
	defer pinger.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(streamWriteWait))
			h.logger.Info("stream closed", xlogger.String("remote", c.RealIP()))
			return nil
		case <-pinger.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return nil
			}
		case <-ticker.C:
			fr, err := h.frame(ctx, symbols)
			if err != nil {
				h.logger.Error("stream frame failed", xlogger.Error(err))
				metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
				continue
			}
			if err := writeFrame(conn, fr); err != nil {
				h.logger.Debug("stream write failed", xlogger.Error(err))
				return nil
			}
		}
	}
}

func (h *DashboardEchoHandler) frame(ctx context.Context, symbols []string) (*StreamFrame, error) {
	start := time.Now()
	defer observe("stream", start)

	snap, err := h.uc.Snapshot.Snapshot(ctx, symbols)
	if err != nil {
		return nil, err
	}
	return &StreamFrame{Snapshot: snap, Regime: h.uc.Regime.Classify(ctx, snap)}, nil
}

// drain reads until the client goes away. Pongs extend the read deadline.
func (h *DashboardEchoHandler) drain(conn *websocket.Conn, wait time.Duration, done context.CancelFunc) {
	defer done()
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, fr *StreamFrame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return conn.WriteJSON(fr)
}

// StreamInterval parses a push interval ("30s", "2m" or bare seconds),
// falling back to def, and clamps it to [5s, 5m].
func StreamInterval(raw string, def time.Duration) time.Duration {
	if def <= 0 {
		def = defaultStreamInterval
	}
	d := def
	raw = strings.TrimSpace(raw)
	if raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			d = v
		} else if n, err := strconv.Atoi(raw); err == nil {
			d = time.Duration(n) * time.Second
		}
	}
	return min(max(d, minStreamInterval), maxStreamInterval)
}
