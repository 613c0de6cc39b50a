package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	. "quantlab/internal/db/models/postgres/public/table"
	"quantlab/internal/domain"
	"quantlab/internal/util"

	"github.com/go-jet/jet/v2/qrm"

	. "github.com/go-jet/jet/v2/postgres"
)

// UniverseRepository compiles declarative universe queries into SQL and
// returns the raw rows the scoring engine works on. Identity columns are
// always fetched; factor columns only when the query names them.
type UniverseRepository interface {
	List(query domain.UniverseQuery) ([]domain.UniverseRow, error)
	RenderSQL(query domain.UniverseQuery) ([]RenderedQuery, error)
}

// RenderedQuery is one executable statement with its bind parameters, the
// unit stored inside synthetic workloads.
type RenderedQuery struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

type universeRepositoryHandler struct {
	Db *sql.DB
}

func NewUniverseRepository(db *sql.DB) UniverseRepository {
	return universeRepositoryHandler{Db: db}
}

var stocksDailyFactorColumns = map[string]ColumnFloat{
	"pct_change":     StocksDailyInfo.PctChange,
	"rsi_14":         StocksDailyInfo.Rsi14,
	"ma_20d":         StocksDailyInfo.Ma20d,
	"momentum_3m":    StocksDailyInfo.Momentum3m,
	"momentum_12m":   StocksDailyInfo.Momentum12m,
	"volatility_20d": StocksDailyInfo.Volatility20d,
}

var fundamentalFactorColumns = map[string]ColumnFloat{
	"per":            FundamentalsDaily.Per,
	"pbr":            FundamentalsDaily.Pbr,
	"eps":            FundamentalsDaily.Eps,
	"bps":            FundamentalsDaily.Bps,
	"dividend_yield": FundamentalsDaily.DividendYield,
}

func compileUniverseQuery(q domain.UniverseQuery) (SelectStatement, error) {
	projections := []Projection{
		StocksDailyInfo.EventDate,
		StocksDailyInfo.Ticker,
		StocksDailyInfo.Market,
		StocksDailyInfo.MarketCap,
		StocksDailyInfo.ClosePrice,
	}
	for _, name := range q.DailyColumns {
		column, ok := stocksDailyFactorColumns[name]
		if !ok {
			return nil, fmt.Errorf("no stored daily column for factor %q", name)
		}
		projections = append(projections, column)
	}
	for _, name := range q.FundamentalColumns {
		column, ok := fundamentalFactorColumns[name]
		if !ok {
			return nil, fmt.Errorf("no stored fundamental column for factor %q", name)
		}
		projections = append(projections, column)
	}

	conditions := []BoolExpression{
		StocksDailyInfo.EventDate.BETWEEN(DateT(q.Start), DateT(q.End)),
	}
	if q.Market != nil {
		conditions = append(conditions, StocksDailyInfo.Market.EQ(String(string(*q.Market))))
	}
	if q.MinMarketCap != nil && *q.MinMarketCap > 0 {
		conditions = append(conditions, StocksDailyInfo.MarketCap.GT_EQ(Float(*q.MinMarketCap)))
	}
	if len(q.ExcludeTickers) > 0 {
		excluded := make([]Expression, 0, len(q.ExcludeTickers))
		for _, ticker := range q.ExcludeTickers {
			excluded = append(excluded, String(ticker))
		}
		conditions = append(conditions, StocksDailyInfo.Ticker.NOT_IN(excluded...))
	}

	var from ReadableTable = StocksDailyInfo
	if q.NeedsFundamentals() {
		from = StocksDailyInfo.LEFT_JOIN(
			FundamentalsDaily,
			StocksDailyInfo.EventDate.EQ(FundamentalsDaily.EventDate).
				AND(StocksDailyInfo.Ticker.EQ(FundamentalsDaily.Ticker)),
		)
	}

	stmt := SELECT(projections[0], projections[1:]...).
		FROM(from).
		WHERE(AND(conditions...)).
		ORDER_BY(StocksDailyInfo.EventDate.ASC(), StocksDailyInfo.Ticker.ASC())

	return stmt, nil
}

// List runs the compiled query and pivots the result into universe rows.
// Requested columns always appear in each row's value map, nil when the
// store holds NULL, so downstream feature tables keep a stable shape.
func (h universeRepositoryHandler) List(q domain.UniverseQuery) ([]domain.UniverseRow, error) {
	stmt, err := compileUniverseQuery(q)
	if err != nil {
		return nil, err
	}

	sqlText, args := stmt.Sql()
	rows, err := h.Db.Query(sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query universe rows: %w", err)
	}
	defer rows.Close()

	factorColumns := append(append([]string{}, q.DailyColumns...), q.FundamentalColumns...)

	out := []domain.UniverseRow{}
	for rows.Next() {
		var (
			eventDate  time.Time
			ticker     string
			market     string
			marketCap  sql.NullFloat64
			closePrice sql.NullFloat64
		)
		values := make([]sql.NullFloat64, len(factorColumns))
		dest := []interface{}{&eventDate, &ticker, &market, &marketCap, &closePrice}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan universe row: %w", err)
		}

		row := domain.UniverseRow{
			EventDate: eventDate,
			Ticker:    ticker,
			Market:    market,
			Values:    map[string]*float64{},
		}
		if marketCap.Valid {
			v := marketCap.Float64
			row.MarketCap = &v
		}
		if closePrice.Valid {
			v := closePrice.Float64
			row.ClosePrice = &v
		}
		for i, column := range factorColumns {
			if values[i].Valid {
				v := values[i].Float64
				row.Values[column] = &v
			} else {
				row.Values[column] = nil
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read universe rows: %w", err)
	}

	if len(q.Ratios) > 0 {
		if err := h.mergeRatios(out, q); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// RenderSQL compiles the query without running it: the base fetch, plus the
// statement line item fetch when ratios are requested. The pairs it returns
// are what gets written into stored workloads.
func (h universeRepositoryHandler) RenderSQL(q domain.UniverseQuery) ([]RenderedQuery, error) {
	stmt, err := compileUniverseQuery(q)
	if err != nil {
		return nil, err
	}
	sqlText, args := stmt.Sql()
	out := []RenderedQuery{{SQL: sqlText, Params: args}}

	if len(q.Ratios) > 0 {
		sqlText, args := compileStatementQuery(q).Sql()
		out = append(out, RenderedQuery{SQL: sqlText, Params: args})
	}
	return out, nil
}

func compileStatementQuery(q domain.UniverseQuery) SelectStatement {
	items := q.LineItems()
	itemExprs := make([]Expression, 0, len(items))
	for _, item := range items {
		itemExprs = append(itemExprs, String(item))
	}

	return FinancialsQuarterly.
		SELECT(
			FinancialsQuarterly.Ticker,
			FinancialsQuarterly.PeriodEnd,
			FinancialsQuarterly.ItemName,
			FinancialsQuarterly.Value,
		).
		WHERE(
			AND(
				FinancialsQuarterly.ItemName.IN(itemExprs...),
				FinancialsQuarterly.PeriodEnd.LT_EQ(DateT(q.End)),
			),
		).
		ORDER_BY(FinancialsQuarterly.Ticker.ASC(), FinancialsQuarterly.PeriodEnd.ASC())
}

// mergeRatios attaches statement-derived ratio columns to each row. The
// quarterly values are fetched once and joined as-of in memory: a row sees
// the latest period ending on or before its event date, and both legs of a
// ratio come from that single period. A zero denominator or a missing leg
// leaves the ratio NULL.
func (h universeRepositoryHandler) mergeRatios(rows []domain.UniverseRow, q domain.UniverseQuery) error {
	financials := []model.FinancialsQuarterly{}
	err := compileStatementQuery(q).Query(h.Db, &financials)
	if errors.Is(err, qrm.ErrNoRows) {
		financials = nil
	} else if err != nil {
		return fmt.Errorf("failed to query statement line items: %w", err)
	}

	ledger := newStatementLedger(financials)
	for i := range rows {
		for _, ratio := range q.Ratios {
			rows[i].Values[ratio.Column] = ledger.ratioAsOf(rows[i].Ticker, rows[i].EventDate, ratio)
		}
	}
	return nil
}

type statementPeriod struct {
	periodEnd time.Time
	values    map[string]*float64
}

// statementLedger indexes quarterly line items by ticker and reporting
// period for as-of lookups. Periods are kept sorted by period end.
type statementLedger struct {
	periods map[string][]statementPeriod
}

func newStatementLedger(financials []model.FinancialsQuarterly) *statementLedger {
	grouped := map[string]map[time.Time]statementPeriod{}
	for _, row := range financials {
		byEnd, ok := grouped[row.Ticker]
		if !ok {
			byEnd = map[time.Time]statementPeriod{}
			grouped[row.Ticker] = byEnd
		}
		period, ok := byEnd[row.PeriodEnd]
		if !ok {
			period = statementPeriod{periodEnd: row.PeriodEnd, values: map[string]*float64{}}
		}
		period.values[row.ItemName] = row.Value
		byEnd[row.PeriodEnd] = period
	}

	ledger := &statementLedger{periods: map[string][]statementPeriod{}}
	for ticker, byEnd := range grouped {
		periods := make([]statementPeriod, 0, len(byEnd))
		for _, period := range byEnd {
			periods = append(periods, period)
		}
		sort.Slice(periods, func(i, j int) bool {
			return periods[i].periodEnd.Before(periods[j].periodEnd)
		})
		ledger.periods[ticker] = periods
	}
	return ledger
}

// periodAsOf returns the latest period ending on or before asOf, or nil when
// nothing has been reported yet.
func (l *statementLedger) periodAsOf(ticker string, asOf time.Time) *statementPeriod {
	periods := l.periods[ticker]
	idx := sort.Search(len(periods), func(i int) bool {
		return !util.DateLte(periods[i].periodEnd, asOf)
	})
	if idx == 0 {
		return nil
	}
	return &periods[idx-1]
}

func (l *statementLedger) valueAsOf(ticker, item string, asOf time.Time) *float64 {
	period := l.periodAsOf(ticker, asOf)
	if period == nil {
		return nil
	}
	return period.values[item]
}

// ratioAsOf reads both legs from the single latest period, so a numerator
// from a fresh quarter never pairs with a denominator from a stale one. A
// period missing either leg, or a zero denominator, leaves the ratio NULL.
func (l *statementLedger) ratioAsOf(ticker string, asOf time.Time, ratio domain.RatioSpec) *float64 {
	period := l.periodAsOf(ticker, asOf)
	if period == nil {
		return nil
	}
	numerator := period.values[ratio.Numerator]
	denominator := period.values[ratio.Denominator]
	if numerator == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	v := *numerator / *denominator
	return &v
}
