package calculator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"quantlab/internal/domain"
)

// RebalanceDates picks the latest observed date inside each calendar period,
// so every rebalance uses the freshest cross section of its month or quarter.
// Dates come back ascending.
func RebalanceDates(rows []domain.UniverseRow, frequency domain.RebalanceFrequency) []time.Time {
	latest := map[string]time.Time{}
	for _, row := range rows {
		key := periodKey(row.EventDate, frequency)
		if current, ok := latest[key]; !ok || row.EventDate.After(current) {
			latest[key] = row.EventDate
		}
	}

	dates := make([]time.Time, 0, len(latest))
	for _, date := range latest {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func periodKey(date time.Time, frequency domain.RebalanceFrequency) string {
	if frequency == domain.RebalanceQuarterly {
		quarter := (int(date.Month()) + 2) / 3
		return fmt.Sprintf("%dQ%d", date.Year(), quarter)
	}
	return date.Format("2006-01")
}

// BuildAllocations turns the ranked row set into one target portfolio per
// rebalance date. Rows must already be ranked within each date (ScoreAndRank
// output). A date with no rows is skipped; producing zero allocations across
// the whole horizon is a configuration error, not a data error.
func BuildAllocations(ranked []domain.UniverseRow, portfolio domain.PortfolioSpec, frequency domain.RebalanceFrequency) ([]domain.Allocation, error) {
	byDate := map[time.Time][]domain.UniverseRow{}
	for _, row := range ranked {
		byDate[row.EventDate] = append(byDate[row.EventDate], row)
	}

	allocations := []domain.Allocation{}
	for _, date := range RebalanceDates(ranked, frequency) {
		selected := byDate[date]
		if len(selected) == 0 {
			continue
		}
		if len(selected) > portfolio.TopN {
			selected = selected[:portfolio.TopN]
		}

		weights := map[string]float64{}
		switch portfolio.WeightMethod {
		case domain.WeightMethodMarketCap:
			weights = marketCapWeights(selected)
		default:
			for _, row := range selected {
				weights[row.Ticker] = 1.0 / float64(len(selected))
			}
		}

		allocations = append(allocations, domain.Allocation{Date: date, Weights: weights})
	}

	if len(allocations) == 0 {
		return nil, domain.ErrNoAllocations
	}
	return allocations, nil
}

// marketCapWeights distributes proportionally to market cap, clipping
// negatives to zero. When nothing in the slice carries positive cap the date
// degenerates to equal weighting.
func marketCapWeights(selected []domain.UniverseRow) map[string]float64 {
	caps := make([]float64, len(selected))
	total := 0.0
	for i, row := range selected {
		c := 0.0
		if row.MarketCap != nil {
			c = math.Max(*row.MarketCap, 0)
		}
		caps[i] = c
		total += c
	}

	weights := map[string]float64{}
	if total <= 0 {
		for _, row := range selected {
			weights[row.Ticker] = 1.0 / float64(len(selected))
		}
		return weights
	}
	for i, row := range selected {
		weights[row.Ticker] = caps[i] / total
	}
	return weights
}
