package calculator

import (
	"math"
	"testing"
	"time"

	"quantlab/internal/domain"

	"github.com/stretchr/testify/require"
)

func mustMatrix(t *testing.T, rows []domain.UniverseRow) *PriceMatrix {
	t.Helper()
	matrix, err := BuildPriceMatrix(rows)
	require.NoError(t, err)
	return matrix
}

func equities(curve []domain.EquityPoint) []float64 {
	out := make([]float64, len(curve))
	for i, point := range curve {
		out[i] = point.Equity
	}
	return out
}

func TestSimulateEquityCurve(t *testing.T) {
	t.Run("targets take effect one pricing date after the decision", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-05", "AAA", 110),
			priceRow("2021-01-06", "AAA", 121),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-04"), Weights: map[string]float64{"AAA": 1}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)
		require.Len(t, curve, 3)

		// entry happens at the 01-05 close, so only the 05 to 06 move counts
		require.InDelta(t, 1000, curve[0].Equity, 1e-9)
		require.InDelta(t, 1000, curve[1].Equity, 1e-9)
		require.InDelta(t, 1100, curve[2].Equity, 1e-9)
	})

	t.Run("decision on the last pricing date never executes", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-05", "AAA", 200),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-05"), Weights: map[string]float64{"AAA": 1}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)
		require.Equal(t, []float64{1000, 1000}, equities(curve))
	})

	t.Run("decisions mapping to the same day resolve to the later one", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-04", "BBB", 100),
			priceRow("2021-01-07", "AAA", 100),
			priceRow("2021-01-07", "BBB", 100),
			priceRow("2021-01-08", "AAA", 100),
			priceRow("2021-01-08", "BBB", 200),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-05"), Weights: map[string]float64{"AAA": 1}},
			{Date: day("2021-01-06"), Weights: map[string]float64{"BBB": 1}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)
		require.InDelta(t, 2000, curve[2].Equity, 1e-9)
	})

	t.Run("rebalances are full turnover at the close", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-04", "BBB", 50),
			priceRow("2021-01-05", "AAA", 100),
			priceRow("2021-01-05", "BBB", 50),
			priceRow("2021-01-06", "AAA", 120),
			priceRow("2021-01-06", "BBB", 50),
			priceRow("2021-01-07", "AAA", 120),
			priceRow("2021-01-07", "BBB", 60),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-04"), Weights: map[string]float64{"AAA": 1}},
			{Date: day("2021-01-05"), Weights: map[string]float64{"BBB": 1}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)

		// 10 AAA shares entered at 100 mark to 1200 on 01-06, where the
		// whole book flips into 24 BBB shares at 50
		require.Equal(t, []float64{1000, 1000, 1200, 1440}, equities(curve))
	})

	t.Run("unallocated weight is not carried as cash", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-05", "AAA", 100),
			priceRow("2021-01-06", "AAA", 110),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-04"), Weights: map[string]float64{"AAA": 0.5}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)

		// half the book buys 5 shares at 100; the other half is gone from
		// the mark, so the curve re-bases to 500
		require.InDelta(t, 1000, curve[1].Equity, 1e-9)
		require.InDelta(t, 550, curve[2].Equity, 1e-9)
	})

	t.Run("fully unpriced targets leave holdings in place", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-05", "AAA", 100),
			priceRow("2021-01-06", "AAA", 120),
			universeRow("2021-01-04", "BBB", nil),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-04"), Weights: map[string]float64{"AAA": 1}},
			{Date: day("2021-01-05"), Weights: map[string]float64{"BBB": 1}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)

		// the BBB flip cannot execute on 01-06 because BBB never prices,
		// so the AAA position rides through the move
		require.Equal(t, []float64{1000, 1000, 1200}, equities(curve))
	})

	t.Run("priced targets with no positive weight liquidate the book", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-04", "BBB", 10),
			priceRow("2021-01-05", "AAA", 110),
			priceRow("2021-01-05", "BBB", 10),
			priceRow("2021-01-06", "AAA", 110),
			priceRow("2021-01-06", "BBB", 10),
			priceRow("2021-01-07", "AAA", 500),
			priceRow("2021-01-07", "BBB", 10),
		})
		allocations := []domain.Allocation{
			{Date: day("2021-01-04"), Weights: map[string]float64{"AAA": 1}},
			{Date: day("2021-01-05"), Weights: map[string]float64{"BBB": 0}},
		}

		curve, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.NoError(t, err)

		// AAA entered at 110, marked at 110 on 01-06 where the zero-weight
		// target empties the book; the later AAA rally is missed
		require.InDelta(t, 1000, curve[2].Equity, 1e-9)
		require.InDelta(t, 1000, curve[3].Equity, 1e-9)
	})

	t.Run("no allocations yields a flat curve", func(t *testing.T) {
		matrix := mustMatrix(t, []domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 100),
			priceRow("2021-01-05", "AAA", 200),
		})

		curve, err := SimulateEquityCurve(matrix, nil, 2500)
		require.NoError(t, err)
		require.Equal(t, []float64{2500, 2500}, equities(curve))
	})

	t.Run("held ticker losing its price fails the run", func(t *testing.T) {
		matrix := &PriceMatrix{
			Dates:       []time.Time{day("2021-01-04"), day("2021-01-05"), day("2021-01-06")},
			Tickers:     []string{"AAA"},
			prices:      [][]float64{{100}, {100}, {math.NaN()}},
			tickerIndex: map[string]int{"AAA": 0},
		}
		allocations := []domain.Allocation{
			{Date: day("2021-01-04"), Weights: map[string]float64{"AAA": 1}},
		}

		_, err := SimulateEquityCurve(matrix, allocations, 1000)
		require.ErrorIs(t, err, domain.ErrStaleOrMissingPrice)
	})
}
