package twelvedata

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Num is a provider number. Twelve Data sends most numerics as strings; a
// null, empty, non-numeric or non-finite value decodes to a nil pointer.
type Num struct {
	Value *float64
}

func (n *Num) UnmarshalJSON(b []byte) error {
	n.Value = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n.Value = &f
	return nil
}

// Text is a provider string field that may arrive as a string, a number or null.
type Text struct {
	Value *string
}

func (t *Text) UnmarshalJSON(b []byte) error {
	t.Value = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
	} else {
		s = string(b)
	}
	if s = strings.TrimSpace(s); s != "" {
		t.Value = &s
	}
	return nil
}

// envelope is the error shape shared by every endpoint.
type envelope struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Datetime      string `json:"datetime"`
	Timestamp     int64  `json:"timestamp"`
	Price         Num    `json:"price"`
	Close         Num    `json:"close"`
	High          Num    `json:"high"`
	PreviousClose Num    `json:"previous_close"`
}

type bar struct {
	Datetime string `json:"datetime"`
	Open     Num    `json:"open"`
	High     Num    `json:"high"`
	Low      Num    `json:"low"`
	Close    Num    `json:"close"`
}

type seriesResponse struct {
	Values []bar `json:"values"`
}

type rawDividend struct {
	ExDate               Text `json:"ex_date"`
	ExDateCamel          Text `json:"exDate"`
	Date                 Text `json:"date"`
	PayDate              Text `json:"pay_date"`
	PaymentDate          Text `json:"payment_date"`
	PayDateCamel         Text `json:"payDate"`
	RecordDate           Text `json:"record_date"`
	RecordDateCamel      Text `json:"recordDate"`
	DeclarationDate      Text `json:"declaration_date"`
	DeclarationDateCamel Text `json:"declarationDate"`
	Amount               Num  `json:"amount"`
	Dividend             Num  `json:"dividend"`
	Value                Num  `json:"value"`
}

type dividendsResponse struct {
	Dividends []rawDividend `json:"dividends"`
	Data      []rawDividend `json:"data"`
}

type rawEarning struct {
	Date                 Text `json:"date"`
	ReportDate           Text `json:"report_date"`
	Datetime             Text `json:"datetime"`
	Period               Text `json:"period"`
	FiscalPeriod         Text `json:"fiscal_period"`
	EPSEstimate          Num  `json:"eps_estimate"`
	EPSEstimateCamel     Num  `json:"epsEstimate"`
	EPSActual            Num  `json:"eps_actual"`
	EPSActualCamel       Num  `json:"epsActual"`
	RevenueEstimate      Num  `json:"revenue_estimate"`
	RevenueEstimateCamel Num  `json:"revenueEstimate"`
	RevenueActual        Num  `json:"revenue_actual"`
	RevenueActualCamel   Num  `json:"revenueActual"`
}

type earningsResponse struct {
	Earnings []rawEarning `json:"earnings"`
	Data     []rawEarning `json:"data"`
}
