package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type Market string

const (
	MarketAll    Market = "ALL"
	MarketKospi  Market = "KOSPI"
	MarketKosdaq Market = "KOSDAQ"
)

type FactorDirection string

const (
	DirectionAscending  FactorDirection = "asc"
	DirectionDescending FactorDirection = "desc"
)

type WeightMethod string

const (
	WeightMethodEqual     WeightMethod = "equal"
	WeightMethodMarketCap WeightMethod = "market_cap"
)

type RebalanceFrequency string

const (
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
)

// MLModelFactorName is the sentinel factor name that routes scoring through an
// external model instead of a stored column.
const MLModelFactorName = "ML_MODEL"

const DefaultTopN = 30

// FactorColumns maps every supported factor name to the column that holds its
// raw value. Anything outside this map (other than the ML sentinel) is
// rejected at parse time.
var FactorColumns = map[string]string{
	"PCTCHANGE":        "pct_change",
	"RSI_14":           "rsi_14",
	"MA_20D":           "ma_20d",
	"MOMENTUM_3M":      "momentum_3m",
	"MOMENTUM_12M":     "momentum_12m",
	"VOLATILITY_20D":   "volatility_20d",
	"MARKETCAP":        "market_cap",
	"PER":              "per",
	"PBR":              "pbr",
	"EPS":              "eps",
	"BPS":              "bps",
	"DIVIDENDYIELD":    "dividend_yield",
	"ROE":              "roe",
	"ROA":              "roa",
	"OPM":              "opm",
	"GPM":              "gpm",
	"DEBTTOEQUITY":     "debt_to_equity",
	"CURRENTRATIO":     "current_ratio",
	"ASSETTURNOVER":    "asset_turnover",
	"INTERESTCOVERAGE": "interest_coverage",
}

// FundamentalColumns are served by the daily fundamentals table rather than
// the price table.
var FundamentalColumns = map[string]bool{
	"per":            true,
	"pbr":            true,
	"eps":            true,
	"bps":            true,
	"dividend_yield": true,
}

// RatioLineItems maps each statement-derived ratio column to the two line
// items it divides, numerator first.
var RatioLineItems = map[string][2]string{
	"roe":               {"Net Income", "Stockholders Equity"},
	"roa":               {"Net Income", "Total Assets"},
	"opm":               {"Operating Income", "Total Revenue"},
	"gpm":               {"Gross Profit", "Total Revenue"},
	"debt_to_equity":    {"Total Debt", "Stockholders Equity"},
	"current_ratio":     {"Current Assets", "Current Liabilities"},
	"asset_turnover":    {"Total Revenue", "Total Assets"},
	"interest_coverage": {"EBIT", "Interest Expense"},
}

type UniverseSpec struct {
	Market         Market
	MinMarketCap   *float64
	Excludes       []string
	ExcludeTickers []string
}

type FactorSpec struct {
	Name      string
	Direction FactorDirection
	Weight    float64
	ModelID   *uuid.UUID
}

// IsMLModel reports whether the factor routes through the external scorer.
func (f FactorSpec) IsMLModel() bool {
	return f.Name == MLModelFactorName
}

// Column returns the stored column for a non-sentinel factor.
func (f FactorSpec) Column() (string, bool) {
	col, ok := FactorColumns[f.Name]
	return col, ok
}

type PortfolioSpec struct {
	TopN         int
	WeightMethod WeightMethod
}

type RebalancingSpec struct {
	Frequency RebalanceFrequency
}

// StrategySpec is the validated form of a strategy definition. It is built
// once per execution and treated as immutable afterwards.
type StrategySpec struct {
	Universe    UniverseSpec
	Factors     []FactorSpec
	Portfolio   PortfolioSpec
	Rebalancing RebalancingSpec
}

// ActiveFactors returns the non-sentinel factors that will contribute to
// scoring, i.e. those with a non-zero weight.
func (s StrategySpec) ActiveFactors() []FactorSpec {
	out := []FactorSpec{}
	for _, f := range s.Factors {
		if !f.IsMLModel() && f.Weight != 0 {
			out = append(out, f)
		}
	}
	return out
}

// MLFactor returns the first ML sentinel factor carrying a model reference,
// or nil if the strategy is purely rule based.
func (s StrategySpec) MLFactor() *FactorSpec {
	for i, f := range s.Factors {
		if f.IsMLModel() && f.ModelID != nil {
			return &s.Factors[i]
		}
	}
	return nil
}

// ParseStrategySpec validates and normalizes a raw strategy definition. The
// input is the decoded JSON body, optionally nested under a "definition" key.
// It performs no I/O; model references are resolved later by the caller.
func ParseStrategySpec(raw map[string]any) (*StrategySpec, error) {
	definition := raw
	if wrapped, ok := raw["definition"].(map[string]any); ok {
		definition = wrapped
	}

	universe, err := parseUniverse(definition)
	if err != nil {
		return nil, err
	}

	factors, err := parseFactors(definition)
	if err != nil {
		return nil, err
	}

	portfolio, err := parsePortfolio(definition)
	if err != nil {
		return nil, err
	}

	rebalancing, err := parseRebalancing(definition)
	if err != nil {
		return nil, err
	}

	return &StrategySpec{
		Universe:    *universe,
		Factors:     factors,
		Portfolio:   *portfolio,
		Rebalancing: *rebalancing,
	}, nil
}

func parseUniverse(definition map[string]any) (*UniverseSpec, error) {
	uni := subObject(definition, "universe")

	market := MarketAll
	if rawMarket, ok := uni["market"]; ok && rawMarket != nil {
		market = Market(strings.ToUpper(fmt.Sprintf("%v", rawMarket)))
		switch market {
		case MarketAll, MarketKospi, MarketKosdaq:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidMarket, market)
		}
	}

	var minMarketCap *float64
	if rawCap, ok := uni["min_market_cap"]; ok && rawCap != nil {
		capValue, ok := coerceFloat(rawCap)
		if !ok || capValue < 0 {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidNumeric, rawCap)
		}
		minMarketCap = &capValue
	}

	excludes, err := coerceStringList(uni["exclude"])
	if err != nil {
		return nil, fmt.Errorf("%w: universe.exclude", ErrInvalidListField)
	}
	excludeTickers, err := coerceStringList(uni["exclude_tickers"])
	if err != nil {
		return nil, fmt.Errorf("%w: universe.exclude_tickers", ErrInvalidListField)
	}

	return &UniverseSpec{
		Market:         market,
		MinMarketCap:   minMarketCap,
		Excludes:       excludes,
		ExcludeTickers: excludeTickers,
	}, nil
}

func parseFactors(definition map[string]any) ([]FactorSpec, error) {
	rawFactors, _ := definition["factors"].([]any)
	if len(rawFactors) == 0 {
		return nil, ErrEmptyFactorSet
	}

	factors := make([]FactorSpec, 0, len(rawFactors))
	for _, rawFactor := range rawFactors {
		factorMap, _ := rawFactor.(map[string]any)

		// legacy payloads used "type" for the factor name and "order"
		// for the direction
		name := firstString(factorMap, "name", "type")
		name = strings.ToUpper(strings.ReplaceAll(name, " ", ""))
		if name != MLModelFactorName {
			if _, ok := FactorColumns[name]; !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnsupportedFactor, name)
			}
		}

		direction, err := parseDirection(factorMap)
		if err != nil {
			return nil, err
		}

		weight := 1.0
		if rawWeight, ok := factorMap["weight"]; ok {
			weight, ok = coerceFloat(rawWeight)
			if !ok {
				return nil, fmt.Errorf("%w: got %v", ErrInvalidWeight, rawWeight)
			}
		}

		var modelID *uuid.UUID
		if name == MLModelFactorName {
			rawModelID, ok := factorMap["model_id"]
			if !ok || rawModelID == nil {
				return nil, ErrMissingModelReference
			}
			parsed, err := uuid.Parse(fmt.Sprintf("%v", rawModelID))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidModelReference, rawModelID)
			}
			modelID = &parsed
		}

		factors = append(factors, FactorSpec{
			Name:      name,
			Direction: direction,
			Weight:    weight,
			ModelID:   modelID,
		})
	}

	return factors, nil
}

func parseDirection(factorMap map[string]any) (FactorDirection, error) {
	raw := firstString(factorMap, "direction", "order")
	if raw == "" {
		return DirectionDescending, nil
	}
	switch strings.ToLower(raw) {
	case "asc", "ascending":
		return DirectionAscending, nil
	case "desc", "descending":
		return DirectionDescending, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, raw)
}

func parsePortfolio(definition map[string]any) (*PortfolioSpec, error) {
	port := subObject(definition, "portfolio")

	topN := DefaultTopN
	if rawTopN, ok := port["top_n"]; ok && rawTopN != nil {
		parsed, ok := coerceFloat(rawTopN)
		if !ok || parsed != float64(int(parsed)) || int(parsed) <= 0 {
			return nil, fmt.Errorf("%w: got %v", ErrInvalidTopN, rawTopN)
		}
		topN = int(parsed)
	}

	weightMethod := WeightMethodEqual
	if rawMethod, ok := port["weight_method"]; ok && rawMethod != nil {
		weightMethod = WeightMethod(strings.ToLower(fmt.Sprintf("%v", rawMethod)))
		switch weightMethod {
		case WeightMethodEqual, WeightMethodMarketCap:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedWeightMethod, weightMethod)
		}
	}

	return &PortfolioSpec{TopN: topN, WeightMethod: weightMethod}, nil
}

func parseRebalancing(definition map[string]any) (*RebalancingSpec, error) {
	reb := subObject(definition, "rebalancing")

	frequency := RebalanceMonthly
	if rawFrequency, ok := reb["frequency"]; ok && rawFrequency != nil {
		frequency = RebalanceFrequency(strings.ToLower(fmt.Sprintf("%v", rawFrequency)))
		switch frequency {
		case RebalanceMonthly, RebalanceQuarterly:
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, frequency)
		}
	}

	return &RebalancingSpec{Frequency: frequency}, nil
}

func subObject(m map[string]any, key string) map[string]any {
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	return map[string]any{}
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

func coerceFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int32:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func coerceStringList(v any) ([]string, error) {
	if v == nil {
		return []string{}, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected a list, got %T", v)
}
