package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/domain"
	"quantlab/internal/logger"
	"quantlab/internal/repository"
	"quantlab/pkg/marketdata"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
)

// IngestService fills the data store the query builder reads from: raw daily
// bars with derived factor columns, quarterly statement line items, the
// security master, and the per-day fundamental ratios.
type IngestService interface {
	IngestDailyBars(ctx context.Context, tickers []string, start time.Time) error
	IngestFinancialsCSV(ctx context.Context, r io.Reader) (int, error)
	IngestSecuritiesCSV(ctx context.Context, r io.Reader) (int, error)
	IngestFundamentals(ctx context.Context, date time.Time) (int, error)
	IngestFundamentalsRange(ctx context.Context, start, end time.Time) (int, error)
}

func NewIngestService(
	barSource marketdata.BarSource,
	universeRepository repository.UniverseRepository,
	securityRepository repository.SecurityRepository,
	stocksDailyRepository repository.StocksDailyRepository,
	financialsRepository repository.FinancialsRepository,
	fundamentalsRepository repository.FundamentalsRepository,
) IngestService {
	return ingestServiceHandler{
		BarSource:              barSource,
		UniverseRepository:     universeRepository,
		SecurityRepository:     securityRepository,
		StocksDailyRepository:  stocksDailyRepository,
		FinancialsRepository:   financialsRepository,
		FundamentalsRepository: fundamentalsRepository,
	}
}

type ingestServiceHandler struct {
	BarSource              marketdata.BarSource
	UniverseRepository     repository.UniverseRepository
	SecurityRepository     repository.SecurityRepository
	StocksDailyRepository  repository.StocksDailyRepository
	FinancialsRepository   repository.FinancialsRepository
	FundamentalsRepository repository.FundamentalsRepository
}

// IngestDailyBars pulls bars for the given tickers (every listed security
// when none are named) and upserts one row per trading day with the derived
// factor columns. Each ticker is stored as its own batch so one bad symbol
// does not block the rest.
func (h ingestServiceHandler) IngestDailyBars(ctx context.Context, tickers []string, start time.Time) error {
	securities, err := h.SecurityRepository.List(nil)
	if err != nil {
		return fmt.Errorf("failed to list securities: %w", err)
	}
	byTicker := map[string]model.Security{}
	for _, s := range securities {
		byTicker[s.Ticker] = s
	}

	if len(tickers) == 0 {
		for _, s := range securities {
			tickers = append(tickers, s.Ticker)
		}
	}

	end := time.Now().UTC()
	ingestErrors := []error{}
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return err
		}

		security, ok := byTicker[ticker]
		if !ok {
			ingestErrors = append(ingestErrors, fmt.Errorf("ticker %s is not in the security master", ticker))
			continue
		}

		bars, err := h.BarSource.DailyBars(ctx, yahooSymbol(security), start, end)
		if err != nil {
			ingestErrors = append(ingestErrors, fmt.Errorf("failed to fetch bars for %s: %w", ticker, err))
			continue
		}
		rows := buildDailyRows(security, bars)
		if len(rows) == 0 {
			continue
		}
		if err := h.StocksDailyRepository.Add(rows); err != nil {
			ingestErrors = append(ingestErrors, fmt.Errorf("failed to store daily rows for %s: %w", ticker, err))
			continue
		}
		logger.FromContext(ctx).Infof("ingested %d daily rows for %s", len(rows), ticker)
	}

	if len(ingestErrors) > 0 {
		return fmt.Errorf("failed to ingest %d/%d tickers. first err: %w", len(ingestErrors), len(tickers), ingestErrors[0])
	}
	return nil
}

type financialsCsvRow struct {
	Ticker    string  `csv:"ticker"`
	PeriodEnd string  `csv:"period_end"`
	ItemName  string  `csv:"item_name"`
	Value     float64 `csv:"value"`
}

func (h ingestServiceHandler) IngestFinancialsCSV(ctx context.Context, r io.Reader) (int, error) {
	rows := []financialsCsvRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("failed to parse financials csv: %w", err)
	}

	models := make([]model.FinancialsQuarterly, 0, len(rows))
	for _, row := range rows {
		periodEnd, err := time.Parse(time.DateOnly, row.PeriodEnd)
		if err != nil {
			return 0, fmt.Errorf("bad period_end %q for %s: %w", row.PeriodEnd, row.Ticker, err)
		}
		value := row.Value
		models = append(models, model.FinancialsQuarterly{
			Ticker:    row.Ticker,
			PeriodEnd: periodEnd,
			ItemName:  row.ItemName,
			Value:     &value,
		})
	}
	if len(models) == 0 {
		return 0, nil
	}

	if err := h.FinancialsRepository.Add(models); err != nil {
		return 0, err
	}
	return len(models), nil
}

type securityCsvRow struct {
	Ticker       string `csv:"ticker"`
	CompanyName  string `csv:"company_name"`
	Market       string `csv:"market"`
	ListedShares int64  `csv:"listed_shares"`
}

func (h ingestServiceHandler) IngestSecuritiesCSV(ctx context.Context, r io.Reader) (int, error) {
	rows := []securityCsvRow{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return 0, fmt.Errorf("failed to parse security master csv: %w", err)
	}

	models := make([]model.Security, 0, len(rows))
	for _, row := range rows {
		shares := row.ListedShares
		models = append(models, model.Security{
			Ticker:       row.Ticker,
			CompanyName:  row.CompanyName,
			Market:       strings.ToUpper(row.Market),
			ListedShares: &shares,
		})
	}
	if len(models) == 0 {
		return 0, nil
	}

	if err := h.SecurityRepository.Add(models); err != nil {
		return 0, err
	}
	return len(models), nil
}

// fundamentalLineItems are the statement values the daily ratio derivation
// reads.
var fundamentalLineItems = []string{"Net Income", "Stockholders Equity", "Dividends Per Share"}

// IngestFundamentals derives one fundamentals row per priced ticker for the
// given date: eps and bps from the latest reported statements over listed
// shares, per and pbr from the day's close over those, dividend yield from
// dividends per share. Missing inputs leave the column NULL.
func (h ingestServiceHandler) IngestFundamentals(ctx context.Context, date time.Time) (int, error) {
	rows, err := h.UniverseRepository.List(domain.UniverseQuery{Start: date, End: date})
	if err != nil {
		return 0, fmt.Errorf("failed to load closes for %s: %w", date.Format(time.DateOnly), err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	securities, err := h.SecurityRepository.List(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list securities: %w", err)
	}
	sharesByTicker := map[string]int64{}
	for _, s := range securities {
		if s.ListedShares != nil {
			sharesByTicker[s.Ticker] = *s.ListedShares
		}
	}

	statements, err := h.FinancialsRepository.ListAsOf(fundamentalLineItems, date)
	if err != nil {
		return 0, fmt.Errorf("failed to load statements as of %s: %w", date.Format(time.DateOnly), err)
	}
	latest := latestByTickerItem(statements)

	out := []model.FundamentalsDaily{}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if row.ClosePrice == nil || *row.ClosePrice <= 0 {
			continue
		}
		out = append(out, deriveFundamentals(row, sharesByTicker[row.Ticker], latest[row.Ticker]))
	}
	if len(out) == 0 {
		return 0, nil
	}

	if err := h.FundamentalsRepository.Add(out); err != nil {
		return 0, err
	}
	return len(out), nil
}

// IngestFundamentalsRange backfills the derived ratios over every trading day
// in the range, both ends inclusive.
func (h ingestServiceHandler) IngestFundamentalsRange(ctx context.Context, start, end time.Time) (int, error) {
	days, err := h.StocksDailyRepository.ListTradingDays(start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to list trading days: %w", err)
	}

	total := 0
	for _, day := range days {
		count, err := h.IngestFundamentals(ctx, day)
		if err != nil {
			return total, fmt.Errorf("backfill stopped at %s: %w", day.Format(time.DateOnly), err)
		}
		total += count
		logger.FromContext(ctx).Infof("derived fundamentals for %d tickers on %s", count, day.Format(time.DateOnly))
	}
	return total, nil
}

func deriveFundamentals(row domain.UniverseRow, shares int64, items map[string]float64) model.FundamentalsDaily {
	closePrice := *row.ClosePrice
	out := model.FundamentalsDaily{
		EventDate: row.EventDate,
		Ticker:    row.Ticker,
	}

	if shares > 0 {
		if netIncome, ok := items["Net Income"]; ok {
			eps := netIncome / float64(shares)
			out.Eps = &eps
			if eps != 0 {
				per := closePrice / eps
				out.Per = &per
			}
		}
		if equity, ok := items["Stockholders Equity"]; ok {
			bps := equity / float64(shares)
			out.Bps = &bps
			if bps != 0 {
				pbr := closePrice / bps
				out.Pbr = &pbr
			}
		}
	}
	if dps, ok := items["Dividends Per Share"]; ok {
		dividendYield := dps / closePrice * 100
		out.DividendYield = &dividendYield
	}
	return out
}

// latestByTickerItem folds as-of-ordered observations into the newest value
// per ticker and item.
func latestByTickerItem(statements []model.FinancialsQuarterly) map[string]map[string]float64 {
	latest := map[string]map[string]float64{}
	for _, s := range statements {
		if s.Value == nil {
			continue
		}
		byItem, ok := latest[s.Ticker]
		if !ok {
			byItem = map[string]float64{}
			latest[s.Ticker] = byItem
		}
		byItem[s.ItemName] = *s.Value
	}
	return latest
}

// yahooSymbol appends the exchange suffix Yahoo expects for the security's
// market.
func yahooSymbol(s model.Security) string {
	if s.Market == string(domain.MarketKosdaq) {
		return s.Ticker + ".KQ"
	}
	return s.Ticker + ".KS"
}

// buildDailyRows derives the stored factor columns from raw bars. Indicators
// that need more history than the slice carries stay NULL for those days.
func buildDailyRows(security model.Security, bars []marketdata.Bar) []model.StocksDailyInfo {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	changes := dailyChanges(closes)
	rsi := rsiSeries(closes, 14)

	rows := make([]model.StocksDailyInfo, 0, len(bars))
	for i, bar := range bars {
		open, high, low := bar.Open, bar.High, bar.Low
		closePrice, volume := bar.Close, bar.Volume
		rows = append(rows, model.StocksDailyInfo{
			EventDate:     bar.Date,
			Ticker:        security.Ticker,
			CompanyName:   &security.CompanyName,
			Market:        security.Market,
			MarketCap:     listedMarketCap(security, bar.Close),
			OpenPrice:     &open,
			HighPrice:     &high,
			LowPrice:      &low,
			ClosePrice:    &closePrice,
			Volume:        &volume,
			PctChange:     pctChangeAt(changes, i),
			Rsi14:         rsi[i],
			Ma20d:         movingAverage(closes, i, 20),
			Momentum3m:    momentum(closes, i, 63),
			Momentum12m:   momentum(closes, i, 252),
			Volatility20d: annualizedVolatility(changes, i, 20),
		})
	}
	return rows
}

func listedMarketCap(security model.Security, closePrice float64) *float64 {
	if security.ListedShares == nil {
		return nil
	}
	v := closePrice * float64(*security.ListedShares)
	return &v
}

// dailyChanges returns the percent move into each day; the first entry has
// no predecessor and stays zero, callers must skip it.
func dailyChanges(closes []float64) []float64 {
	changes := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			changes[i] = (closes[i] - closes[i-1]) / closes[i-1] * 100
		}
	}
	return changes
}

func pctChangeAt(changes []float64, i int) *float64 {
	if i == 0 {
		return nil
	}
	v := changes[i]
	return &v
}

func movingAverage(closes []float64, i, window int) *float64 {
	if i+1 < window {
		return nil
	}
	mean, err := stats.Mean(closes[i+1-window : i+1])
	if err != nil {
		return nil
	}
	return &mean
}

func momentum(closes []float64, i, lookback int) *float64 {
	if i < lookback || closes[i-lookback] == 0 {
		return nil
	}
	v := (closes[i] - closes[i-lookback]) / closes[i-lookback] * 100
	return &v
}

// annualizedVolatility is the sample stddev of the trailing window of daily
// percent moves, scaled by sqrt(252).
func annualizedVolatility(changes []float64, i, window int) *float64 {
	if i < window {
		return nil
	}
	stdev, err := stats.StandardDeviationSample(changes[i-window+1 : i+1])
	if err != nil {
		return nil
	}
	v := stdev * math.Sqrt(252)
	return &v
}

// rsiSeries follows Wilder's smoothing: a simple average over the first
// period seeds the value, every later day blends period-1 parts of the prior
// average with the newest move.
func rsiSeries(closes []float64, period int) []*float64 {
	out := make([]*float64, len(closes))
	if len(closes) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) *float64 {
	v := 100.0
	if avgLoss > 0 {
		rs := avgGain / avgLoss
		v = 100 - 100/(1+rs)
	}
	return &v
}
