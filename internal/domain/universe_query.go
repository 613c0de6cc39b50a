package domain

import (
	"sort"
	"time"
)

// RatioSpec names one statement-derived ratio column and the two line items
// divided to produce it.
type RatioSpec struct {
	Column      string
	Numerator   string
	Denominator string
}

// UniverseQuery is the declarative retrieval request handed to the data
// provider. It carries no executable text; the provider compiles it into
// whatever its store understands. Identity and price columns (event_date,
// ticker, market, market_cap, close_price) are always fetched and therefore
// not listed.
type UniverseQuery struct {
	// Start and End bound event_date inclusively on both sides.
	Start time.Time
	End   time.Time

	Market         *Market // nil matches every market
	MinMarketCap   *float64
	ExcludeTickers []string

	DailyColumns       []string
	FundamentalColumns []string
	Ratios             []RatioSpec
}

// NeedsFundamentals reports whether the daily fundamentals table has to be
// joined at all.
func (q UniverseQuery) NeedsFundamentals() bool {
	return len(q.FundamentalColumns) > 0
}

// LineItems returns the distinct statement line items the requested ratios
// divide, sorted for deterministic query text.
func (q UniverseQuery) LineItems() []string {
	seen := map[string]bool{}
	for _, ratio := range q.Ratios {
		seen[ratio.Numerator] = true
		seen[ratio.Denominator] = true
	}
	items := make([]string, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// FactorColumnNames returns every requested factor column, daily and
// fundamental and ratio alike, sorted.
func (q UniverseQuery) FactorColumnNames() []string {
	out := []string{}
	out = append(out, q.DailyColumns...)
	out = append(out, q.FundamentalColumns...)
	for _, ratio := range q.Ratios {
		out = append(out, ratio.Column)
	}
	sort.Strings(out)
	return out
}

// BuildUniverseQuery derives the minimal retrieval request for one strategy
// over an inclusive date range. Only columns touched by active factors are
// requested; columns named in universe.exclude are dropped even when a factor
// references them, which leaves that factor contributing nothing. Pure, no
// I/O.
func BuildUniverseQuery(spec StrategySpec, start, end time.Time) UniverseQuery {
	excluded := map[string]bool{}
	for _, column := range spec.Universe.Excludes {
		excluded[column] = true
	}

	daily := map[string]bool{}
	fundamental := map[string]bool{}
	ratios := map[string]RatioSpec{}

	for _, factor := range spec.ActiveFactors() {
		column, ok := factor.Column()
		if !ok || excluded[column] {
			continue
		}
		if items, isRatio := RatioLineItems[column]; isRatio {
			ratios[column] = RatioSpec{
				Column:      column,
				Numerator:   items[0],
				Denominator: items[1],
			}
		} else if FundamentalColumns[column] {
			fundamental[column] = true
		} else if column != "market_cap" {
			// market_cap is part of the identity column set
			daily[column] = true
		}
	}

	query := UniverseQuery{
		Start:              start,
		End:                end,
		MinMarketCap:       spec.Universe.MinMarketCap,
		ExcludeTickers:     append([]string{}, spec.Universe.ExcludeTickers...),
		DailyColumns:       sortedKeys(daily),
		FundamentalColumns: sortedKeys(fundamental),
		Ratios:             sortedRatios(ratios),
	}
	if spec.Universe.Market != MarketAll {
		market := spec.Universe.Market
		query.Market = &market
	}
	return query
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedRatios(set map[string]RatioSpec) []RatioSpec {
	columns := make([]string, 0, len(set))
	for column := range set {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	ratios := make([]RatioSpec, 0, len(columns))
	for _, column := range columns {
		ratios = append(ratios, set[column])
	}
	return ratios
}
