package calculator

import (
	"math"
	"sort"
	"time"

	"quantlab/internal/domain"
)

// PriceMatrix is the date-by-ticker close price grid the simulator walks.
// Gaps are forward-filled per ticker; a cell stays NaN only before the
// ticker's first observed price.
type PriceMatrix struct {
	Dates   []time.Time
	Tickers []string

	prices      [][]float64
	tickerIndex map[string]int
}

// BuildPriceMatrix pivots rows into the price grid. Later observations win
// when one (date, ticker) pair appears twice. Dates with no price for any
// ticker after forward filling are dropped; an empty grid is a data failure.
func BuildPriceMatrix(rows []domain.UniverseRow) (*PriceMatrix, error) {
	dateSet := map[time.Time]bool{}
	tickerSet := map[string]bool{}
	for _, row := range rows {
		dateSet[row.EventDate] = true
		tickerSet[row.Ticker] = true
	}

	dates := make([]time.Time, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	tickers := make([]string, 0, len(tickerSet))
	for ticker := range tickerSet {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	dateIndex := map[time.Time]int{}
	for i, date := range dates {
		dateIndex[date] = i
	}
	tickerIndex := map[string]int{}
	for i, ticker := range tickers {
		tickerIndex[ticker] = i
	}

	prices := make([][]float64, len(dates))
	for i := range prices {
		prices[i] = make([]float64, len(tickers))
		for j := range prices[i] {
			prices[i][j] = math.NaN()
		}
	}
	for _, row := range rows {
		if row.ClosePrice != nil {
			prices[dateIndex[row.EventDate]][tickerIndex[row.Ticker]] = *row.ClosePrice
		}
	}

	// forward fill each ticker column
	for j := range tickers {
		last := math.NaN()
		for i := range dates {
			if math.IsNaN(prices[i][j]) {
				prices[i][j] = last
			} else {
				last = prices[i][j]
			}
		}
	}

	// drop dates that still have no price at all; after forward filling
	// those can only sit at the head of the grid
	firstUsable := len(dates)
	for i := range dates {
		hasValue := false
		for j := range tickers {
			if !math.IsNaN(prices[i][j]) {
				hasValue = true
				break
			}
		}
		if hasValue {
			firstUsable = i
			break
		}
	}
	dates = dates[firstUsable:]
	prices = prices[firstUsable:]

	if len(dates) == 0 || len(tickers) == 0 {
		return nil, domain.ErrNoPriceData
	}

	return &PriceMatrix{
		Dates:       dates,
		Tickers:     tickers,
		prices:      prices,
		tickerIndex: tickerIndex,
	}, nil
}

// Price returns the close for a ticker on the date at dateIdx. ok is false
// when the grid has no value there yet.
func (m *PriceMatrix) Price(dateIdx int, ticker string) (float64, bool) {
	j, ok := m.tickerIndex[ticker]
	if !ok || dateIdx < 0 || dateIdx >= len(m.prices) {
		return 0, false
	}
	price := m.prices[dateIdx][j]
	if math.IsNaN(price) {
		return 0, false
	}
	return price, true
}

// FirstDateAfter returns the index of the first pricing date strictly after
// d, and whether one exists.
func (m *PriceMatrix) FirstDateAfter(d time.Time) (int, bool) {
	idx := sort.Search(len(m.Dates), func(i int) bool {
		return m.Dates[i].After(d)
	})
	if idx >= len(m.Dates) {
		return 0, false
	}
	return idx, true
}
