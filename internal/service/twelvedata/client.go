// Package twelvedata is the upstream market-data client. Responses are
// normalised into domain records; missing or malformed numbers become nil.
package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"MarketCoach/internal/domain/models"
	"MarketCoach/internal/domain/repository"
	"MarketCoach/internal/service/ratelimit"
	"MarketCoach/pkg/config"
	apphttp "MarketCoach/pkg/http"
)

const (
	apiKeyParam      = "apikey"
	seriesInterval   = "5min"
	seriesOutputSize = "200"
)

var (
	// ErrProvider wraps a {"status":"error"} payload.
	ErrProvider = errors.New("twelvedata: provider error")
	// ErrCreditsExhausted is returned without calling upstream when the
	// per-minute credit budget for the API key is spent.
	ErrCreditsExhausted = errors.New("twelvedata: api credits exhausted")
	// ErrMalformed is returned for payloads that are not JSON objects.
	ErrMalformed = errors.New("twelvedata: malformed response")
)

// Client implements repository.MarketData against the Twelve Data REST API.
type Client struct {
	baseURL string
	apiKey  string
	credits float64

	http    *apphttp.Client
	limiter *ratelimit.Limiter
	metrics repository.Metrics
}

var _ repository.MarketData = (*Client)(nil)

// New creates a client. limiter and metrics may be nil.
func New(cfg config.TwelveDataConfig, limiter *ratelimit.Limiter, metrics repository.Metrics, opts ...apphttp.ClientOption) *Client {
	opts = append([]apphttp.ClientOption{
		apphttp.WithTimeout(cfg.Timeout),
		apphttp.WithSecretParams(apiKeyParam),
	}, opts...)
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		credits: float64(cfg.CreditsPerMinute),
		http:    apphttp.NewClient(opts...),
		limiter: limiter,
		metrics: metrics,
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var r quoteResponse
	if err := c.get(ctx, "quote", map[string]string{"symbol": symbol}, &r); err != nil {
		return nil, err
	}
	return normalizeQuote(symbol, &r), nil
}

// IntradaySeries returns 5-minute bars, newest first.
func (c *Client) IntradaySeries(ctx context.Context, symbol string) ([]models.Bar, error) {
	var r seriesResponse
	params := map[string]string{"symbol": symbol, "interval": seriesInterval, "outputsize": seriesOutputSize}
	if err := c.get(ctx, "time_series", params, &r); err != nil {
		return nil, err
	}
	return normalizeSeries(&r), nil
}

// DailyClose returns the most recent daily close, nil when absent.
func (c *Client) DailyClose(ctx context.Context, symbol string) (*float64, error) {
	var r seriesResponse
	params := map[string]string{"symbol": symbol, "interval": "1day", "outputsize": "1"}
	if err := c.get(ctx, "time_series", params, &r); err != nil {
		return nil, err
	}
	if len(r.Values) == 0 {
		return nil, nil
	}
	return r.Values[0].Close.Value, nil
}

func (c *Client) Dividends(ctx context.Context, symbol string) ([]models.Dividend, error) {
	var r dividendsResponse
	if err := c.get(ctx, "dividends", map[string]string{"symbol": symbol}, &r); err != nil {
		return nil, err
	}
	return normalizeDividends(&r), nil
}

func (c *Client) Earnings(ctx context.Context, symbol string) ([]models.Earning, error) {
	var r earningsResponse
	if err := c.get(ctx, "earnings", map[string]string{"symbol": symbol}, &r); err != nil {
		return nil, err
	}
	return normalizeEarnings(&r), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, dest interface{}) error {
	if c.limiter != nil && c.credits > 0 && !c.limiter.Allow("twelvedata:"+c.apiKey, c.credits, c.credits/60) {
		c.record(endpoint, "throttled")
		return ErrCreditsExhausted
	}

	q := make(map[string][]string, len(params)+1)
	for k, v := range params {
		q[k] = []string{v}
	}
	q[apiKeyParam] = []string{c.apiKey}

	var body []byte
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:      apphttp.MethodGet,
		URL:         c.baseURL + "/" + endpoint,
		QueryParams: q,
	}, &body)
	if err != nil {
		c.record(endpoint, "error")
		return fmt.Errorf("twelvedata %s: %w", endpoint, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.record(endpoint, "malformed")
		return fmt.Errorf("twelvedata %s: %w: %v", endpoint, ErrMalformed, err)
	}
	if strings.EqualFold(env.Status, "error") {
		c.record(endpoint, "provider_error")
		msg := env.Message
		if msg == "" {
			msg = "Twelve Data error"
		}
		return fmt.Errorf("%w: %s", ErrProvider, msg)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.record(endpoint, "malformed")
		return fmt.Errorf("twelvedata %s: %w: %v", endpoint, ErrMalformed, err)
	}
	c.record(endpoint, "ok")
	return nil
}

func (c *Client) record(endpoint, result string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(endpoint, result)
	}
}
