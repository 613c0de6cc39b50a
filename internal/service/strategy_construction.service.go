package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"quantlab/internal/domain"
	"quantlab/internal/repository"
)

// StrategyConstructionService turns an English strategy description into a
// strategy definition. The model reply is never trusted as-is: it has to
// survive ParseStrategySpec before callers see it.
type StrategyConstructionService interface {
	Construct(ctx context.Context, description string) (map[string]any, error)
}

type strategyConstructionServiceHandler struct {
	GptRepository repository.GptRepository
	systemPrompt  string
}

func NewStrategyConstructionService(gptRepository repository.GptRepository) StrategyConstructionService {
	return strategyConstructionServiceHandler{
		GptRepository: gptRepository,
		systemPrompt:  buildConstructPrompt(),
	}
}

const constructPromptTemplate = `You are helping a user construct a strategy definition for a factor-based stock backtest. They will describe in English which stocks the strategy should hold. You must output a single JSON object with this shape:

{
  "universe": {"market": "KOSPI" | "KOSDAQ" | "ALL", "min_market_cap": number, "exclude_tickers": [string]},
  "factors": [{"name": string, "direction": "asc" | "desc", "weight": number}],
  "portfolio": {"top_n": integer, "weight_method": "equal" | "market_cap"},
  "rebalancing": {"frequency": "monthly" | "quarterly"}
}

valid factor names:
%s

direction "desc" favors the highest values of a factor, "asc" the lowest. Weights express relative importance and do not need to sum to 1. min_market_cap is in KRW and may be omitted, as may exclude_tickers. Output only the JSON object, no commentary.

here's an example:
"cheap large caps with strong recent momentum, hold the top 10, rebalance quarterly"

expected output:
{
  "universe": {"market": "ALL", "min_market_cap": 1000000000000},
  "factors": [
    {"name": "PER", "direction": "asc", "weight": 0.5},
    {"name": "MOMENTUM_3M", "direction": "desc", "weight": 0.5}
  ],
  "portfolio": {"top_n": 10, "weight_method": "equal"},
  "rebalancing": {"frequency": "quarterly"}
}
`

func buildConstructPrompt() string {
	return fmt.Sprintf(constructPromptTemplate, strings.Join(rankableFactorNames(), ", "))
}

func (h strategyConstructionServiceHandler) Construct(ctx context.Context, description string) (map[string]any, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: empty strategy description", domain.ErrInvalidStrategy)
	}

	reply, err := h.GptRepository.SendMessage(ctx, h.systemPrompt, description)
	if err != nil {
		return nil, fmt.Errorf("failed to construct strategy: %w", err)
	}

	definition, err := extractJSONObject(reply)
	if err != nil {
		return nil, err
	}

	if _, err := domain.ParseStrategySpec(definition); err != nil {
		return nil, fmt.Errorf("model produced an invalid definition: %w", err)
	}

	return definition, nil
}

// extractJSONObject pulls the definition out of a reply that may be wrapped
// in markdown fences or prose.
func extractJSONObject(reply string) (map[string]any, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	definition := map[string]any{}
	if err := json.Unmarshal([]byte(reply[start:end+1]), &definition); err != nil {
		return nil, fmt.Errorf("failed to decode model reply: %w", err)
	}

	return definition, nil
}
