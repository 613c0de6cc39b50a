package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quantlab/internal/calculator"
	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/domain"
	"quantlab/internal/repository"
	"quantlab/pkg/inference"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BacktestService interface {
	Run(ctx context.Context, in RunBacktestInput) (*RunBacktestResult, error)
	GetResult(id uuid.UUID) (*RunBacktestResult, error)
}

type RunBacktestInput struct {
	StrategyID     uuid.UUID
	Definition     map[string]any
	Start          time.Time
	End            time.Time
	InitialCapital decimal.Decimal
	SkipPersist    bool
}

type RunBacktestResult struct {
	BacktestID  uuid.UUID
	EquityCurve []domain.EquityPoint
	Metrics     domain.BacktestMetrics
}

func NewBacktestService(
	universeRepository repository.UniverseRepository,
	mlModelRepository repository.MlModelRepository,
	backtestResultRepository repository.BacktestResultRepository,
	scoringService calculator.ScoringService,
	inferenceClient *inference.Client,
) BacktestService {
	return backtestServiceHandler{
		UniverseRepository:       universeRepository,
		MlModelRepository:        mlModelRepository,
		BacktestResultRepository: backtestResultRepository,
		ScoringService:           scoringService,
		InferenceClient:          inferenceClient,
	}
}

type backtestServiceHandler struct {
	UniverseRepository       repository.UniverseRepository
	MlModelRepository        repository.MlModelRepository
	BacktestResultRepository repository.BacktestResultRepository
	ScoringService           calculator.ScoringService
	InferenceClient          *inference.Client
}

// Run executes one strategy over the requested horizon: parse and validate,
// resolve the model reference, fetch the universe, score, allocate, simulate,
// summarize, persist. Stages are strictly sequential and nothing is written
// until the whole simulation succeeded.
func (h backtestServiceHandler) Run(ctx context.Context, in RunBacktestInput) (*RunBacktestResult, error) {
	profile, endProfile := domain.GetProfile(ctx)
	defer endProfile()

	if in.Start.IsZero() || in.End.IsZero() || !in.End.After(in.Start) {
		return nil, fmt.Errorf("%w: start %s end %s",
			domain.ErrInvalidDateRange,
			in.Start.Format(time.DateOnly),
			in.End.Format(time.DateOnly),
		)
	}
	if !in.InitialCapital.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidCapital, in.InitialCapital)
	}

	spec, err := domain.ParseStrategySpec(in.Definition)
	if err != nil {
		return nil, err
	}

	// resolve the model before touching any data so a bad reference fails
	// as fast as a bad definition; a sentinel without positive weight never
	// scores, so its reference stays untouched
	var scorer calculator.DateScorer
	var modelID *uuid.UUID
	if ml := spec.MLFactor(); ml != nil && ml.Weight > 0 {
		mlModel, err := h.MlModelRepository.Get(*ml.ModelID)
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, ml.ModelID)
		} else if err != nil {
			return nil, h.stageError("resolve model", in, err)
		}
		if h.InferenceClient == nil {
			return nil, fmt.Errorf("strategy references model %s but no inference endpoint is configured", mlModel.MlModelID)
		}
		scorer = h.InferenceClient.Session(mlModel.FilePath)
		modelID = &mlModel.MlModelID
	}

	query := domain.BuildUniverseQuery(*spec, in.Start, in.End)

	_, endSpan := profile.StartNewSpan("fetch universe rows")
	rows, err := h.UniverseRepository.List(query)
	endSpan()
	if err != nil {
		return nil, h.stageError("fetch universe", in, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows between %s and %s",
			domain.ErrEmptyUniverse,
			in.Start.Format(time.DateOnly),
			in.End.Format(time.DateOnly),
		)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked, err := h.ScoringService.ScoreAndRank(ctx, rows, *spec, scorer)
	if err != nil {
		return nil, h.stageError("score universe", in, err)
	}

	allocations, err := calculator.BuildAllocations(ranked, spec.Portfolio, spec.Rebalancing.Frequency)
	if err != nil {
		return nil, h.stageError("build allocations", in, err)
	}

	_, endSpan = profile.StartNewSpan("simulate equity curve")
	matrix, err := calculator.BuildPriceMatrix(rows)
	if err != nil {
		endSpan()
		return nil, h.stageError("build price matrix", in, err)
	}
	capital := in.InitialCapital.InexactFloat64()
	curve, err := calculator.SimulateEquityCurve(matrix, allocations, capital)
	endSpan()
	if err != nil {
		return nil, h.stageError("simulate", in, err)
	}

	metrics, err := calculator.CalculateMetrics(curve, capital)
	if err != nil {
		return nil, h.stageError("calculate metrics", in, err)
	}

	backtestID := uuid.New()
	if !in.SkipPersist {
		persisted, err := h.persistResult(in, modelID, curve, metrics)
		if err != nil {
			return nil, h.stageError("persist result", in, err)
		}
		backtestID = persisted.BacktestResultID
	}

	return &RunBacktestResult{
		BacktestID:  backtestID,
		EquityCurve: curve,
		Metrics:     *metrics,
	}, nil
}

// GetResult loads a persisted backtest and rehydrates the stored curve and
// metrics payloads.
func (h backtestServiceHandler) GetResult(id uuid.UUID) (*RunBacktestResult, error) {
	stored, err := h.BacktestResultRepository.Get(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load backtest %s: %w", id, err)
	}

	curve := []domain.EquityPoint{}
	if err := json.Unmarshal([]byte(stored.EquityCurve), &curve); err != nil {
		return nil, fmt.Errorf("failed to decode stored equity curve for %s: %w", id, err)
	}
	metrics := domain.BacktestMetrics{}
	if err := json.Unmarshal([]byte(stored.Metrics), &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode stored metrics for %s: %w", id, err)
	}

	return &RunBacktestResult{
		BacktestID:  stored.BacktestResultID,
		EquityCurve: curve,
		Metrics:     metrics,
	}, nil
}

func (h backtestServiceHandler) persistResult(
	in RunBacktestInput,
	modelID *uuid.UUID,
	curve []domain.EquityPoint,
	metrics *domain.BacktestMetrics,
) (*model.BacktestResult, error) {
	curveJson, err := json.Marshal(curve)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize equity curve: %w", err)
	}
	metricsJson, err := json.Marshal(metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metrics: %w", err)
	}

	return h.BacktestResultRepository.Add(model.BacktestResult{
		StrategyID:     in.StrategyID,
		StartDate:      in.Start,
		EndDate:        in.End,
		InitialCapital: in.InitialCapital,
		MlModelID:      modelID,
		EquityCurve:    string(curveJson),
		Metrics:        string(metricsJson),
	})
}

func (h backtestServiceHandler) stageError(stage string, in RunBacktestInput, err error) error {
	return fmt.Errorf("failed to %s for strategy %s [%s, %s]: %w",
		stage,
		in.StrategyID,
		in.Start.Format(time.DateOnly),
		in.End.Format(time.DateOnly),
		err,
	)
}
