package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/domain"
	"quantlab/internal/repository"
)

// WorkloadService generates synthetic benchmark workloads. Every generated
// strategy runs through the same normalization and query compilation as live
// backtests, so the stored statements keep representative shapes.
type WorkloadService interface {
	Generate(ctx context.Context, name string, description string, count int) (*model.Workload, error)
}

func NewWorkloadService(
	universeRepository repository.UniverseRepository,
	workloadRepository repository.WorkloadRepository,
	rng *rand.Rand,
) WorkloadService {
	return &workloadServiceHandler{
		UniverseRepository: universeRepository,
		WorkloadRepository: workloadRepository,
		rng:                rng,
	}
}

type workloadServiceHandler struct {
	UniverseRepository repository.UniverseRepository
	WorkloadRepository repository.WorkloadRepository

	// the generator is shared across requests, draws go through mu
	mu  sync.Mutex
	rng *rand.Rand
}

var workloadBaseDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	workloadMarkets = []string{"KOSPI", "KOSDAQ", "ALL"}
	workloadMinCaps = []float64{0, 1e10, 5e10}
)

func (h *workloadServiceHandler) Generate(ctx context.Context, name string, description string, count int) (*model.Workload, error) {
	if count <= 0 {
		return nil, fmt.Errorf("workload query count must be positive, got %d", count)
	}

	queries := []repository.RenderedQuery{}
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		definition, start, end := h.randomDefinition()
		spec, err := domain.ParseStrategySpec(definition)
		if err != nil {
			return nil, fmt.Errorf("generated definition failed validation: %w", err)
		}

		rendered, err := h.UniverseRepository.RenderSQL(domain.BuildUniverseQuery(*spec, start, end))
		if err != nil {
			return nil, fmt.Errorf("failed to render workload query: %w", err)
		}
		queries = append(queries, rendered...)
	}

	payload, err := json.Marshal(queries)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workload queries: %w", err)
	}

	workload, err := h.WorkloadRepository.Add(model.Workload{
		WorkloadName: name,
		Description:  &description,
		Queries:      string(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist workload: %w", err)
	}
	return workload, nil
}

// randomDefinition draws one strategy shaped like real traffic: one to five
// distinct factors over a 30-365 day horizon starting within two years of the
// base date.
func (h *workloadServiceHandler) randomDefinition() (map[string]any, time.Time, time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	market := workloadMarkets[h.rng.Intn(len(workloadMarkets))]
	minCap := workloadMinCaps[h.rng.Intn(len(workloadMinCaps))]
	start := workloadBaseDate.AddDate(0, 0, h.rng.Intn(365*2))
	end := start.AddDate(0, 0, 30+h.rng.Intn(336))

	names := rankableFactorNames()
	h.rng.Shuffle(len(names), func(i, j int) { names[i], names[j] = names[j], names[i] })

	factors := []any{}
	for _, factorName := range names[:1+h.rng.Intn(5)] {
		direction := "desc"
		if h.rng.Intn(2) == 0 {
			direction = "asc"
		}
		factors = append(factors, map[string]any{
			"name":      factorName,
			"direction": direction,
			"weight":    math.Round(h.rng.Float64()*100) / 100,
		})
	}

	definition := map[string]any{
		"universe": map[string]any{
			"market":         market,
			"min_market_cap": minCap,
		},
		"factors":     factors,
		"portfolio":   map[string]any{"top_n": 20, "weight_method": "equal"},
		"rebalancing": map[string]any{"frequency": "monthly"},
	}
	return definition, start, end
}

// rankableFactorNames returns the stored factor names sorted, so a seeded
// generator draws the same sequence every run.
func rankableFactorNames() []string {
	names := make([]string, 0, len(domain.FactorColumns))
	for name := range domain.FactorColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
