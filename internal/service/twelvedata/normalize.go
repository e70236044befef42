package twelvedata

import "MarketCoach/internal/domain/models"

const (
	maxDividends = 50
	maxEarnings  = 12
)

func firstText(vs ...Text) *string {
	for _, v := range vs {
		if v.Value != nil {
			return v.Value
		}
	}
	return nil
}

func firstNum(vs ...Num) *float64 {
	for _, v := range vs {
		if v.Value != nil {
			return v.Value
		}
	}
	return nil
}

func normalizeQuote(symbol string, r *quoteResponse) *models.Quote {
	q := &models.Quote{
		Symbol:        symbol,
		Price:         firstNum(r.Price, r.Close),
		High:          r.High.Value,
		PreviousClose: r.PreviousClose.Value,
		Datetime:      r.Datetime,
		Timestamp:     r.Timestamp,
	}
	if r.Symbol != "" {
		q.Symbol = r.Symbol
	}
	return q
}

func normalizeSeries(r *seriesResponse) []models.Bar {
	out := make([]models.Bar, 0, len(r.Values))
	for _, b := range r.Values {
		out = append(out, models.Bar{
			Datetime: b.Datetime,
			Open:     b.Open.Value,
			High:     b.High.Value,
			Low:      b.Low.Value,
			Close:    b.Close.Value,
		})
	}
	return out
}

// normalizeDividends maps schema aliases, drops rows with neither dates nor
// amount and keeps at most maxDividends rows in provider order.
func normalizeDividends(r *dividendsResponse) []models.Dividend {
	rows := r.Dividends
	if rows == nil {
		rows = r.Data
	}
	out := make([]models.Dividend, 0, min(len(rows), maxDividends))
	for _, d := range rows {
		n := models.Dividend{
			ExDate:          firstText(d.ExDate, d.ExDateCamel, d.Date),
			PayDate:         firstText(d.PayDate, d.PaymentDate, d.PayDateCamel),
			RecordDate:      firstText(d.RecordDate, d.RecordDateCamel),
			DeclarationDate: firstText(d.DeclarationDate, d.DeclarationDateCamel),
			Amount:          firstNum(d.Amount, d.Dividend, d.Value),
		}
		if n.ExDate == nil && n.PayDate == nil && n.Amount == nil {
			continue
		}
		out = append(out, n)
		if len(out) == maxDividends {
			break
		}
	}
	return out
}

// normalizeEarnings keeps rows with a date or period, at most maxEarnings.
func normalizeEarnings(r *earningsResponse) []models.Earning {
	rows := r.Earnings
	if rows == nil {
		rows = r.Data
	}
	out := make([]models.Earning, 0, min(len(rows), maxEarnings))
	for _, e := range rows {
		n := models.Earning{
			Date:            firstText(e.Date, e.ReportDate, e.Datetime),
			Period:          firstText(e.Period, e.FiscalPeriod),
			EPSEstimate:     firstNum(e.EPSEstimate, e.EPSEstimateCamel),
			EPSActual:       firstNum(e.EPSActual, e.EPSActualCamel),
			RevenueEstimate: firstNum(e.RevenueEstimate, e.RevenueEstimateCamel),
			RevenueActual:   firstNum(e.RevenueActual, e.RevenueActualCamel),
		}
		if n.Date == nil && n.Period == nil {
			continue
		}
		out = append(out, n)
		if len(out) == maxEarnings {
			break
		}
	}
	return out
}
