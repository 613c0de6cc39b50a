package calculator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"quantlab/internal/domain"
	"quantlab/internal/logger"

	"github.com/montanaflynn/stats"
)

// DateScorer produces one model score per row for a single date slice. The
// inference client satisfies this; a nil scorer contributes nothing.
type DateScorer interface {
	Score(ctx context.Context, columns []string, rows [][]float64) ([]float64, error)
}

type ScoringService interface {
	ScoreAndRank(ctx context.Context, rows []domain.UniverseRow, spec domain.StrategySpec, scorer DateScorer) ([]domain.UniverseRow, error)
}

type scoringServiceHandler struct{}

func NewScoringService() ScoringService {
	return scoringServiceHandler{}
}

type scoreWorkInput struct {
	date time.Time
	rows []domain.UniverseRow
}

type scoreWorkResult struct {
	date time.Time
	rows []domain.UniverseRow
}

// ScoreAndRank computes each row's final score from the cross-section of its
// own date. Dates are independent, so they are scored on a small worker pool
// and stitched back together in date order. Within a date the rows come back
// sorted by descending score, ties broken by ticker.
func (h scoringServiceHandler) ScoreAndRank(ctx context.Context, rows []domain.UniverseRow, spec domain.StrategySpec, scorer DateScorer) ([]domain.UniverseRow, error) {
	profile, endProfile := domain.GetProfile(ctx)
	defer endProfile()
	_, endSpan := profile.StartNewSpan("score cross sections")
	defer endSpan()

	groups := groupByDate(rows)
	if len(groups) == 0 {
		return []domain.UniverseRow{}, nil
	}

	active := spec.ActiveFactors()
	mlWeight := 0.0
	if ml := spec.MLFactor(); ml != nil && ml.Weight > 0 {
		mlWeight = ml.Weight
	}

	inputCh := make(chan scoreWorkInput, len(groups))
	resultCh := make(chan scoreWorkResult, len(groups))
	numGoroutines := 10
	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		inputCh <- g
	}
	close(inputCh)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for input := range inputCh {
				// cancelled runs drain the queue without scoring
				if ctx.Err() != nil {
					resultCh <- scoreWorkResult{date: input.date}
					wg.Done()
					continue
				}
				scored := scoreCrossSection(ctx, input.rows, active, mlWeight, scorer)
				resultCh <- scoreWorkResult{date: input.date, rows: scored}
				wg.Done()
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	byDate := map[time.Time][]domain.UniverseRow{}
	for res := range resultCh {
		byDate[res.date] = res.rows
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring interrupted: %w", err)
	}

	out := make([]domain.UniverseRow, 0, len(rows))
	for _, g := range groups {
		out = append(out, byDate[g.date]...)
	}
	return out, nil
}

// groupByDate splits rows into per-date slices, dates ascending. Input order
// within a date is preserved.
func groupByDate(rows []domain.UniverseRow) []scoreWorkInput {
	byDate := map[time.Time][]domain.UniverseRow{}
	for _, row := range rows {
		byDate[row.EventDate] = append(byDate[row.EventDate], row)
	}

	dates := make([]time.Time, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	groups := make([]scoreWorkInput, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, scoreWorkInput{date: date, rows: byDate[date]})
	}
	return groups
}

func scoreCrossSection(ctx context.Context, rows []domain.UniverseRow, active []domain.FactorSpec, mlWeight float64, scorer DateScorer) []domain.UniverseRow {
	scored := make([]domain.UniverseRow, len(rows))
	copy(scored, rows)

	for i := range scored {
		scored[i].FinalScore = 0
	}

	for _, factor := range active {
		column, ok := factor.Column()
		if !ok {
			continue
		}
		zs := standardizeColumn(scored, column, sampleStddev)
		weight := math.Max(factor.Weight, 0)
		for i := range scored {
			z := zs[i]
			if factor.Direction == domain.DirectionAscending {
				z = -z
			}
			scored[i].FinalScore += weight * z
		}
	}

	if mlWeight > 0 && scorer != nil {
		mlScores, err := scoreWithModel(ctx, scored, scorer)
		if err != nil {
			// a degraded scorer must never sink the whole run
			logger.FromContext(ctx).Warnf("model scorer failed, contributing zero: %v", err)
		} else {
			zs := standardizeValues(mlScores, populationStddev)
			for i := range scored {
				scored[i].FinalScore += mlWeight * zs[i]
			}
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].Ticker < scored[j].Ticker
	})
	return scored
}

type stddevFunc func([]float64) float64

func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	stddev, err := stats.StandardDeviationSample(values)
	if err != nil {
		return 0
	}
	return stddev
}

func populationStddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	stddev, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return 0
	}
	return stddev
}

// standardizeColumn z-scores one raw column across the cross section. Rows
// with no stored value land on the mean and contribute zero. Zero-variance
// cross sections yield exactly zero for every row.
func standardizeColumn(rows []domain.UniverseRow, column string, stddev stddevFunc) []float64 {
	usable := []float64{}
	for _, row := range rows {
		if v := row.Value(column); v != nil && !math.IsNaN(*v) {
			usable = append(usable, *v)
		}
	}

	out := make([]float64, len(rows))
	if len(usable) == 0 {
		return out
	}
	mean, err := stats.Mean(usable)
	if err != nil {
		return out
	}
	sigma := stddev(usable)
	if sigma <= 1e-12 || math.IsNaN(sigma) {
		return out
	}
	for i, row := range rows {
		if v := row.Value(column); v != nil && !math.IsNaN(*v) {
			out[i] = (*v - mean) / sigma
		}
	}
	return out
}

func standardizeValues(values []float64, stddev stddevFunc) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return out
	}
	sigma := stddev(values)
	if sigma <= 1e-12 || math.IsNaN(sigma) {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / sigma
	}
	return out
}

// scoreWithModel builds the numeric feature table for one date slice and asks
// the model for a score per row. Feature columns are every factor column the
// rows carry plus the identity numerics, sorted for a stable wire shape.
func scoreWithModel(ctx context.Context, rows []domain.UniverseRow, scorer DateScorer) ([]float64, error) {
	columnSet := map[string]bool{"market_cap": true, "close_price": true}
	for _, row := range rows {
		for column := range row.Values {
			columnSet[column] = true
		}
	}
	columns := make([]string, 0, len(columnSet))
	for column := range columnSet {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	features := make([][]float64, len(rows))
	for i, row := range rows {
		features[i] = make([]float64, len(columns))
		for j, column := range columns {
			if v := row.Value(column); v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
				features[i][j] = *v
			}
		}
	}

	scores, err := scorer.Score(ctx, columns, features)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(rows) {
		return nil, fmt.Errorf("model returned %d scores for %d rows", len(scores), len(rows))
	}
	return scores, nil
}
