package domain

import (
	"encoding/json"
	"time"
)

// UniverseRow is one (date, ticker) observation returned by the data
// provider, carrying every factor column the query requested.
type UniverseRow struct {
	EventDate  time.Time
	Ticker     string
	Market     string
	MarketCap  *float64
	ClosePrice *float64

	// Values holds the requested factor columns by column name. A nil entry
	// means the store had no value for that (date, ticker).
	Values map[string]*float64

	FinalScore float64
}

// Value returns the named factor column. The identity columns double as
// factor columns for strategies ranking on them.
func (r UniverseRow) Value(column string) *float64 {
	switch column {
	case "market_cap":
		return r.MarketCap
	case "close_price":
		return r.ClosePrice
	}
	return r.Values[column]
}

// Allocation is the target portfolio decided on one rebalance date. Weights
// always sum to 1 within 1e-9.
type Allocation struct {
	Date    time.Time
	Weights map[string]float64
}

// EquityPoint is one daily mark of the simulated portfolio value.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}

type equityPointJSON struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

func (p EquityPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(equityPointJSON{
		Date:   p.Date.Format(time.DateOnly),
		Equity: p.Equity,
	})
}

func (p *EquityPoint) UnmarshalJSON(b []byte) error {
	var raw equityPointJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	date, err := time.Parse(time.DateOnly, raw.Date)
	if err != nil {
		return err
	}
	p.Date = date
	p.Equity = raw.Equity
	return nil
}

// BacktestMetrics summarizes an equity curve. Field tags pin the persisted
// key names.
type BacktestMetrics struct {
	TotalReturn float64 `json:"total_return"`
	Cagr        float64 `json:"cagr"`
	Volatility  float64 `json:"volatility"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}
