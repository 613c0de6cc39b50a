package calculator

import (
	"testing"
	"time"

	"quantlab/internal/domain"

	"github.com/stretchr/testify/require"
)

func priceRow(date, ticker string, close float64) domain.UniverseRow {
	return universeRow(date, ticker, map[string]float64{"close_price": close})
}

func TestBuildPriceMatrix(t *testing.T) {
	t.Run("pivots rows into a sorted grid", func(t *testing.T) {
		matrix, err := BuildPriceMatrix([]domain.UniverseRow{
			priceRow("2021-01-05", "BBB", 20),
			priceRow("2021-01-04", "AAA", 10),
			priceRow("2021-01-04", "BBB", 19),
			priceRow("2021-01-05", "AAA", 11),
		})
		require.NoError(t, err)
		require.Equal(t, []time.Time{day("2021-01-04"), day("2021-01-05")}, matrix.Dates)
		require.Equal(t, []string{"AAA", "BBB"}, matrix.Tickers)

		price, ok := matrix.Price(0, "AAA")
		require.True(t, ok)
		require.Equal(t, 10.0, price)
		price, ok = matrix.Price(1, "BBB")
		require.True(t, ok)
		require.Equal(t, 20.0, price)
	})

	t.Run("gaps are forward filled per ticker", func(t *testing.T) {
		matrix, err := BuildPriceMatrix([]domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 10),
			priceRow("2021-01-05", "BBB", 5),
			priceRow("2021-01-04", "BBB", 4),
			priceRow("2021-01-06", "AAA", 12),
		})
		require.NoError(t, err)

		price, ok := matrix.Price(1, "AAA")
		require.True(t, ok)
		require.Equal(t, 10.0, price)
		price, ok = matrix.Price(2, "BBB")
		require.True(t, ok)
		require.Equal(t, 5.0, price)
	})

	t.Run("cells before first observation stay unpriced", func(t *testing.T) {
		matrix, err := BuildPriceMatrix([]domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 10),
			priceRow("2021-01-05", "AAA", 11),
			priceRow("2021-01-05", "BBB", 5),
		})
		require.NoError(t, err)

		_, ok := matrix.Price(0, "BBB")
		require.False(t, ok)
		price, ok := matrix.Price(1, "BBB")
		require.True(t, ok)
		require.Equal(t, 5.0, price)
	})

	t.Run("leading dates with no prices are dropped", func(t *testing.T) {
		unpriced := universeRow("2021-01-04", "AAA", nil)
		matrix, err := BuildPriceMatrix([]domain.UniverseRow{
			unpriced,
			priceRow("2021-01-05", "AAA", 10),
		})
		require.NoError(t, err)
		require.Equal(t, []time.Time{day("2021-01-05")}, matrix.Dates)
	})

	t.Run("later duplicate observations win", func(t *testing.T) {
		matrix, err := BuildPriceMatrix([]domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 10),
			priceRow("2021-01-04", "AAA", 12),
		})
		require.NoError(t, err)
		price, ok := matrix.Price(0, "AAA")
		require.True(t, ok)
		require.Equal(t, 12.0, price)
	})

	t.Run("unknown tickers and out of range dates are unpriced", func(t *testing.T) {
		matrix, err := BuildPriceMatrix([]domain.UniverseRow{
			priceRow("2021-01-04", "AAA", 10),
		})
		require.NoError(t, err)
		_, ok := matrix.Price(0, "ZZZ")
		require.False(t, ok)
		_, ok = matrix.Price(5, "AAA")
		require.False(t, ok)
	})

	t.Run("empty input is a data failure", func(t *testing.T) {
		_, err := BuildPriceMatrix(nil)
		require.ErrorIs(t, err, domain.ErrNoPriceData)
	})

	t.Run("rows without any close price are a data failure", func(t *testing.T) {
		_, err := BuildPriceMatrix([]domain.UniverseRow{
			universeRow("2021-01-04", "AAA", nil),
			universeRow("2021-01-05", "AAA", nil),
		})
		require.ErrorIs(t, err, domain.ErrNoPriceData)
	})
}

func TestFirstDateAfter(t *testing.T) {
	matrix, err := BuildPriceMatrix([]domain.UniverseRow{
		priceRow("2021-01-04", "AAA", 10),
		priceRow("2021-01-06", "AAA", 11),
		priceRow("2021-01-08", "AAA", 12),
	})
	require.NoError(t, err)

	t.Run("strictly after, not on", func(t *testing.T) {
		idx, ok := matrix.FirstDateAfter(day("2021-01-04"))
		require.True(t, ok)
		require.Equal(t, 1, idx)
	})

	t.Run("between pricing dates lands on the next one", func(t *testing.T) {
		idx, ok := matrix.FirstDateAfter(day("2021-01-05"))
		require.True(t, ok)
		require.Equal(t, 1, idx)
	})

	t.Run("before the grid lands on the first date", func(t *testing.T) {
		idx, ok := matrix.FirstDateAfter(day("2020-12-31"))
		require.True(t, ok)
		require.Equal(t, 0, idx)
	})

	t.Run("after the last date there is nothing", func(t *testing.T) {
		_, ok := matrix.FirstDateAfter(day("2021-01-08"))
		require.False(t, ok)
	})
}
