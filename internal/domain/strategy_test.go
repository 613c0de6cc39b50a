package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validDefinition() map[string]any {
	return map[string]any{
		"universe": map[string]any{
			"market":          "KOSPI",
			"min_market_cap":  1e10,
			"exclude":         []any{"volatility_20d"},
			"exclude_tickers": []any{"005930"},
		},
		"factors": []any{
			map[string]any{"name": "MOMENTUM_3M", "direction": "desc", "weight": 0.6},
			map[string]any{"name": "PER", "direction": "asc", "weight": 0.4},
		},
		"portfolio":   map[string]any{"top_n": 20, "weight_method": "market_cap"},
		"rebalancing": map[string]any{"frequency": "quarterly"},
	}
}

func TestParseStrategySpec(t *testing.T) {
	t.Run("full definition", func(t *testing.T) {
		spec, err := ParseStrategySpec(validDefinition())
		require.NoError(t, err)

		require.Equal(t, MarketKospi, spec.Universe.Market)
		require.NotNil(t, spec.Universe.MinMarketCap)
		require.Equal(t, 1e10, *spec.Universe.MinMarketCap)
		require.Equal(t, []string{"volatility_20d"}, spec.Universe.Excludes)
		require.Equal(t, []string{"005930"}, spec.Universe.ExcludeTickers)

		require.Len(t, spec.Factors, 2)
		require.Equal(t, "MOMENTUM_3M", spec.Factors[0].Name)
		require.Equal(t, DirectionDescending, spec.Factors[0].Direction)
		require.Equal(t, 0.6, spec.Factors[0].Weight)
		require.Equal(t, DirectionAscending, spec.Factors[1].Direction)

		require.Equal(t, 20, spec.Portfolio.TopN)
		require.Equal(t, WeightMethodMarketCap, spec.Portfolio.WeightMethod)
		require.Equal(t, RebalanceQuarterly, spec.Rebalancing.Frequency)
	})

	t.Run("definition wrapper key", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"definition": validDefinition(),
		})
		require.NoError(t, err)
		require.Equal(t, MarketKospi, spec.Universe.Market)
	})

	t.Run("defaults", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"factors": []any{
				map[string]any{"name": "RSI_14"},
			},
		})
		require.NoError(t, err)

		require.Equal(t, MarketAll, spec.Universe.Market)
		require.Nil(t, spec.Universe.MinMarketCap)
		require.Empty(t, spec.Universe.Excludes)
		require.Equal(t, DirectionDescending, spec.Factors[0].Direction)
		require.Equal(t, 1.0, spec.Factors[0].Weight)
		require.Equal(t, DefaultTopN, spec.Portfolio.TopN)
		require.Equal(t, WeightMethodEqual, spec.Portfolio.WeightMethod)
		require.Equal(t, RebalanceMonthly, spec.Rebalancing.Frequency)
	})

	t.Run("legacy factor keys", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"factors": []any{
				map[string]any{"type": "pbr", "order": "ascending"},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "PBR", spec.Factors[0].Name)
		require.Equal(t, DirectionAscending, spec.Factors[0].Direction)
	})

	t.Run("factor name case and space normalization", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"factors": []any{
				map[string]any{"name": "pct change"},
			},
		})
		require.NoError(t, err)
		require.Equal(t, "PCTCHANGE", spec.Factors[0].Name)
	})

	t.Run("market is case insensitive", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"market": "kosdaq"},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.NoError(t, err)
		require.Equal(t, MarketKosdaq, spec.Universe.Market)
	})

	t.Run("unsupported market", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"market": "NASDAQ"},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.ErrorIs(t, err, ErrInvalidMarket)
		require.ErrorIs(t, err, ErrInvalidStrategy)
	})

	t.Run("min market cap accepts numeric strings", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"min_market_cap": "50000000000"},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.NoError(t, err)
		require.Equal(t, 5e10, *spec.Universe.MinMarketCap)
	})

	t.Run("min market cap rejects negatives", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"min_market_cap": -1.0},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.ErrorIs(t, err, ErrInvalidNumeric)
	})

	t.Run("min market cap rejects non numbers", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"min_market_cap": "big"},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.ErrorIs(t, err, ErrInvalidNumeric)
	})

	t.Run("exclude must be a list", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"exclude": "per"},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.ErrorIs(t, err, ErrInvalidListField)
	})

	t.Run("exclude tickers must be a list", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"universe": map[string]any{"exclude_tickers": "005930"},
			"factors":  []any{map[string]any{"name": "EPS"}},
		})
		require.ErrorIs(t, err, ErrInvalidListField)
	})

	t.Run("empty factor set", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{})
		require.ErrorIs(t, err, ErrEmptyFactorSet)
	})

	t.Run("unsupported factor", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "ALPHA_SIGNAL"}},
		})
		require.ErrorIs(t, err, ErrUnsupportedFactor)
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "EPS", "direction": "sideways"}},
		})
		require.ErrorIs(t, err, ErrInvalidDirection)
	})

	t.Run("non numeric weight", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "EPS", "weight": "heavy"}},
		})
		require.ErrorIs(t, err, ErrInvalidWeight)
	})

	t.Run("negative weight accepted at parse time", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "EPS", "weight": -0.5}},
		})
		require.NoError(t, err)
		require.Equal(t, -0.5, spec.Factors[0].Weight)
	})

	t.Run("ml model requires model id", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "ML_MODEL", "weight": 0.5}},
		})
		require.ErrorIs(t, err, ErrMissingModelReference)
	})

	t.Run("ml model rejects malformed id", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "ML_MODEL", "model_id": "not-a-uuid"}},
		})
		require.ErrorIs(t, err, ErrInvalidModelReference)
	})

	t.Run("ml model parses id", func(t *testing.T) {
		id := uuid.New()
		spec, err := ParseStrategySpec(map[string]any{
			"factors": []any{map[string]any{"name": "ML_MODEL", "model_id": id.String(), "weight": 0.3}},
		})
		require.NoError(t, err)
		require.NotNil(t, spec.Factors[0].ModelID)
		require.Equal(t, id, *spec.Factors[0].ModelID)
		require.NotNil(t, spec.MLFactor())
	})

	t.Run("top n must be positive", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors":   []any{map[string]any{"name": "EPS"}},
			"portfolio": map[string]any{"top_n": 0},
		})
		require.ErrorIs(t, err, ErrInvalidTopN)
	})

	t.Run("top n must be an integer", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors":   []any{map[string]any{"name": "EPS"}},
			"portfolio": map[string]any{"top_n": 10.5},
		})
		require.ErrorIs(t, err, ErrInvalidTopN)
	})

	t.Run("top n accepts json numbers", func(t *testing.T) {
		spec, err := ParseStrategySpec(map[string]any{
			"factors":   []any{map[string]any{"name": "EPS"}},
			"portfolio": map[string]any{"top_n": float64(15)},
		})
		require.NoError(t, err)
		require.Equal(t, 15, spec.Portfolio.TopN)
	})

	t.Run("unsupported weight method", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors":   []any{map[string]any{"name": "EPS"}},
			"portfolio": map[string]any{"weight_method": "volatility"},
		})
		require.ErrorIs(t, err, ErrUnsupportedWeightMethod)
	})

	t.Run("unsupported frequency", func(t *testing.T) {
		_, err := ParseStrategySpec(map[string]any{
			"factors":     []any{map[string]any{"name": "EPS"}},
			"rebalancing": map[string]any{"frequency": "weekly"},
		})
		require.ErrorIs(t, err, ErrUnsupportedFrequency)
	})
}

func TestStrategySpec_ActiveFactors(t *testing.T) {
	id := uuid.New()
	spec := StrategySpec{
		Factors: []FactorSpec{
			{Name: "MOMENTUM_3M", Weight: 0.5},
			{Name: "PER", Weight: 0},
			{Name: "PBR", Weight: -1},
			{Name: MLModelFactorName, Weight: 0.2, ModelID: &id},
		},
	}

	active := spec.ActiveFactors()
	require.Len(t, active, 2)
	require.Equal(t, "MOMENTUM_3M", active[0].Name)
	require.Equal(t, "PBR", active[1].Name)
}
