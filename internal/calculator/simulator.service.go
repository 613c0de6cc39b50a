package calculator

import (
	"fmt"
	"time"

	"quantlab/internal/domain"
)

// SimulateEquityCurve replays the allocation decisions against the price
// grid with a one-day execution lag: a target decided on date D is entered at
// the first pricing date strictly after D. Rebalances are full turnover at
// that day's close, with no partial trades, no transaction cost and no cash
// tracking. The curve holds one point per pricing date, seeded with the
// initial capital until the first target takes effect.
func SimulateEquityCurve(matrix *PriceMatrix, allocations []domain.Allocation, initialCapital float64) ([]domain.EquityPoint, error) {
	// map each decision to its effective pricing date; when two decisions
	// land on the same day the later one wins
	effective := map[int]domain.Allocation{}
	for _, allocation := range allocations {
		if idx, ok := matrix.FirstDateAfter(allocation.Date); ok {
			effective[idx] = allocation
		}
	}

	capital := initialCapital
	shares := map[string]float64{}
	curve := make([]domain.EquityPoint, 0, len(matrix.Dates))

	for i, date := range matrix.Dates {
		if len(shares) > 0 {
			total := 0.0
			for ticker, quantity := range shares {
				price, ok := matrix.Price(i, ticker)
				if !ok {
					return nil, fmt.Errorf("%w: %s on %s", domain.ErrStaleOrMissingPrice, ticker, date.Format(time.DateOnly))
				}
				total += quantity * price
			}
			capital = total
		}
		curve = append(curve, domain.EquityPoint{Date: date, Equity: capital})

		allocation, ok := effective[i]
		if !ok {
			continue
		}

		type priced struct {
			weight float64
			price  float64
		}
		targets := map[string]priced{}
		for ticker, weight := range allocation.Weights {
			if price, ok := matrix.Price(i, ticker); ok {
				targets[ticker] = priced{weight: weight, price: price}
			}
		}
		// every target unpriced means the decision cannot be executed at
		// all, so the current holdings ride
		if len(targets) == 0 {
			continue
		}

		shares = map[string]float64{}
		for ticker, target := range targets {
			if target.price <= 0 || target.weight <= 0 {
				continue
			}
			shares[ticker] = capital * target.weight / target.price
		}
	}

	return curve, nil
}
