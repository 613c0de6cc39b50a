package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func day(value string) time.Time {
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestBuildUniverseQuery(t *testing.T) {
	start := day("2021-01-01")
	end := day("2021-03-31")

	t.Run("splits columns by backing table", func(t *testing.T) {
		spec := StrategySpec{
			Universe: UniverseSpec{Market: MarketAll},
			Factors: []FactorSpec{
				{Name: "MOMENTUM_3M", Direction: DirectionDescending, Weight: 0.6},
				{Name: "PER", Direction: DirectionAscending, Weight: 0.4},
				{Name: "ROE", Direction: DirectionDescending, Weight: 0.2},
			},
		}

		query := BuildUniverseQuery(spec, start, end)

		require.Equal(t, start, query.Start)
		require.Equal(t, end, query.End)
		require.Nil(t, query.Market)
		require.Equal(t, []string{"momentum_3m"}, query.DailyColumns)
		require.Equal(t, []string{"per"}, query.FundamentalColumns)
		require.True(t, query.NeedsFundamentals())

		wantRatios := []RatioSpec{
			{Column: "roe", Numerator: "Net Income", Denominator: "Stockholders Equity"},
		}
		require.Empty(t, cmp.Diff(wantRatios, query.Ratios))
	})

	t.Run("zero weight factors request nothing", func(t *testing.T) {
		spec := StrategySpec{
			Factors: []FactorSpec{
				{Name: "RSI_14", Weight: 0},
			},
		}

		query := BuildUniverseQuery(spec, start, end)
		require.Empty(t, query.DailyColumns)
		require.Empty(t, query.FundamentalColumns)
		require.Empty(t, query.Ratios)
	})

	t.Run("negative weight factors still request their column", func(t *testing.T) {
		spec := StrategySpec{
			Factors: []FactorSpec{
				{Name: "RSI_14", Weight: -1},
			},
		}

		query := BuildUniverseQuery(spec, start, end)
		require.Equal(t, []string{"rsi_14"}, query.DailyColumns)
	})

	t.Run("market cap factor rides the identity columns", func(t *testing.T) {
		spec := StrategySpec{
			Factors: []FactorSpec{
				{Name: "MARKETCAP", Weight: 1},
			},
		}

		query := BuildUniverseQuery(spec, start, end)
		require.Empty(t, query.DailyColumns)
		require.Empty(t, query.FundamentalColumns)
	})

	t.Run("excluded columns are dropped", func(t *testing.T) {
		spec := StrategySpec{
			Universe: UniverseSpec{Excludes: []string{"momentum_3m"}},
			Factors: []FactorSpec{
				{Name: "MOMENTUM_3M", Weight: 0.5},
				{Name: "RSI_14", Weight: 0.5},
			},
		}

		query := BuildUniverseQuery(spec, start, end)
		require.Equal(t, []string{"rsi_14"}, query.DailyColumns)
	})

	t.Run("carries filters", func(t *testing.T) {
		minCap := 1e10
		spec := StrategySpec{
			Universe: UniverseSpec{
				Market:         MarketKospi,
				MinMarketCap:   &minCap,
				ExcludeTickers: []string{"005930", "000660"},
			},
			Factors: []FactorSpec{{Name: "EPS", Weight: 1}},
		}

		query := BuildUniverseQuery(spec, start, end)
		require.NotNil(t, query.Market)
		require.Equal(t, MarketKospi, *query.Market)
		require.Equal(t, &minCap, query.MinMarketCap)
		require.Equal(t, []string{"005930", "000660"}, query.ExcludeTickers)
	})

	t.Run("line items are deduped and sorted", func(t *testing.T) {
		spec := StrategySpec{
			Factors: []FactorSpec{
				{Name: "ROE", Weight: 0.5},
				{Name: "DEBTTOEQUITY", Weight: 0.5},
			},
		}

		query := BuildUniverseQuery(spec, start, end)
		require.Equal(t, []string{"Net Income", "Stockholders Equity", "Total Debt"}, query.LineItems())
		require.Equal(t, []string{"debt_to_equity", "roe"}, query.FactorColumnNames())
	})
}
