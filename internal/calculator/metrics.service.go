package calculator

import (
	"fmt"
	"math"
	"time"

	"quantlab/internal/domain"

	"github.com/montanaflynn/stats"
)

const tradingDaysPerYear = 252

// CalculateMetrics summarizes an equity curve. Curves shorter than two points
// yield all-zero metrics rather than failing, so degenerate horizons stay
// reportable. Non-finite or non-positive equity values are rejected here
// instead of being allowed to poison every downstream number.
func CalculateMetrics(curve []domain.EquityPoint, initialCapital float64) (*domain.BacktestMetrics, error) {
	if len(curve) < 2 {
		return &domain.BacktestMetrics{}, nil
	}

	for _, point := range curve {
		if math.IsNaN(point.Equity) || math.IsInf(point.Equity, 0) {
			return nil, fmt.Errorf("equity curve holds a non-finite value on %s", point.Date.Format(time.DateOnly))
		}
	}

	first := curve[0]
	last := curve[len(curve)-1]

	totalReturn := last.Equity/math.Max(initialCapital, 1e-9) - 1

	days := last.Date.Sub(first.Date).Hours() / 24
	if days < 1 {
		days = 1
	}
	years := days / 365.25
	cagr := 0.0
	if years > 0 {
		cagr = math.Pow(1+totalReturn, 1/years) - 1
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		previous := curve[i-1].Equity
		if previous <= 0 {
			return nil, fmt.Errorf("cannot compute daily returns: non-positive equity on %s", curve[i-1].Date.Format(time.DateOnly))
		}
		returns = append(returns, (curve[i].Equity-previous)/previous)
	}

	stdev, err := stats.StandardDeviationPopulation(returns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute return stddev: %w", err)
	}
	volatility := stdev * math.Sqrt(tradingDaysPerYear)

	sharpe := 0.0
	if volatility > 0 {
		mean, err := stats.Mean(returns)
		if err != nil {
			return nil, fmt.Errorf("failed to compute mean return: %w", err)
		}
		sharpe = mean * tradingDaysPerYear / volatility
	}

	maxDrawdown := 0.0
	runningMax := math.Inf(-1)
	for _, point := range curve {
		if point.Equity > runningMax {
			runningMax = point.Equity
		}
		if runningMax > 0 {
			if drawdown := point.Equity/runningMax - 1; drawdown < maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return &domain.BacktestMetrics{
		TotalReturn: totalReturn,
		Cagr:        cagr,
		Volatility:  volatility,
		Sharpe:      sharpe,
		MaxDrawdown: maxDrawdown,
	}, nil
}
