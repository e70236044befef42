package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestAppErrorResponseUsesStatus(t *testing.T) {
	c, rec := newContext("/")
	err := fmt.Errorf("snapshot: %w", ConfigError("TWELVE_DATA_API_KEY is not set"))

	require.NoError(t, AppErrorResponse(c, err))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body struct {
		Status int         `json:"status"`
		Data   []*AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "ERR_CONFIG", body.Data[0].Code)
}

func TestAppErrorResponseUnknownError(t *testing.T) {
	c, rec := newContext("/")
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestBadRequestResponse(t *testing.T) {
	c, rec := newContext("/")
	require.NoError(t, BadRequestResponse(c, []ValidationError{{Code: "ERR_REQUIRED", Field: "Symbol"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_REQUIRED")
}

func TestReadAndValidateRequest(t *testing.T) {
	type req struct {
		Symbol string `query:"symbol" validate:"required,max=16"`
		Hours  int    `query:"hours" default:"24" validate:"gte=1,lte=72"`
	}

	c, _ := newContext("/?symbol=AAPL")
	var ok req
	assert.Nil(t, ReadAndValidateRequest(c, &ok))
	assert.Equal(t, "AAPL", ok.Symbol)
	assert.Equal(t, 24, ok.Hours)

	c, _ = newContext("/")
	var missing req
	errs := ReadAndValidateRequest(c, &missing)
	require.IsType(t, []ValidationError{}, errs)
	assert.Equal(t, "ERR_REQUIRED", errs.([]ValidationError)[0].Code)
}

func TestServerHealthz(t *testing.T) {
	s := NewServer(nil, nil, WithMetricsPath("/metrics"))

	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTickersValidation(t *testing.T) {
	type req struct {
		Symbols string `query:"symbols" validate:"tickers"`
	}

	c, _ := newContext("/?symbols=AAPL,%20brk.b,,MSFT")
	var ok req
	assert.Nil(t, ReadAndValidateRequest(c, &ok))

	c, _ = newContext("/?symbols=AAPL,DROP%20TABLE")
	var bad req
	errs := ReadAndValidateRequest(c, &bad)
	require.IsType(t, []ValidationError{}, errs)
	ve := errs.([]ValidationError)[0]
	assert.Equal(t, "ERR_TICKERS", ve.Code)
	assert.Equal(t, "symbols", ve.Field)
}
