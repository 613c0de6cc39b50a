package service

import (
	"context"
	"errors"
	"testing"

	"quantlab/internal/domain"
	mock_repository "quantlab/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestStrategyConstructionService_Construct(t *testing.T) {
	validReply := "Here is the strategy:\n```json\n" +
		`{
  "universe": {"market": "KOSPI"},
  "factors": [{"name": "DIVIDENDYIELD", "direction": "desc", "weight": 1}],
  "portfolio": {"top_n": 10, "weight_method": "equal"},
  "rebalancing": {"frequency": "monthly"}
}` + "\n```"

	t.Run("returns the validated definition", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gpt := mock_repository.NewMockGptRepository(ctrl)

		var systemPrompt string
		gpt.EXPECT().
			SendMessage(gomock.Any(), gomock.Any(), "high dividend kospi names").
			DoAndReturn(func(_ context.Context, prompt string, _ string) (string, error) {
				systemPrompt = prompt
				return validReply, nil
			})

		svc := NewStrategyConstructionService(gpt)
		definition, err := svc.Construct(context.Background(), "high dividend kospi names")
		require.NoError(t, err)

		assert.Contains(t, systemPrompt, "DIVIDENDYIELD")
		assert.Contains(t, systemPrompt, "MOMENTUM_3M")
		assert.Contains(t, systemPrompt, "rebalancing")

		universe, ok := definition["universe"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "KOSPI", universe["market"])
		factors, ok := definition["factors"].([]any)
		require.True(t, ok)
		require.Len(t, factors, 1)
	})

	t.Run("rejects replies without a JSON object", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gpt := mock_repository.NewMockGptRepository(ctrl)
		gpt.EXPECT().
			SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("sorry, I cannot help with that", nil)

		svc := NewStrategyConstructionService(gpt)
		_, err := svc.Construct(context.Background(), "momentum strategy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no JSON object")
	})

	t.Run("rejects definitions that fail validation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gpt := mock_repository.NewMockGptRepository(ctrl)
		gpt.EXPECT().
			SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(`{"factors": [{"name": "alpha_decay", "direction": "desc"}]}`, nil)

		svc := NewStrategyConstructionService(gpt)
		_, err := svc.Construct(context.Background(), "exotic factor")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnsupportedFactor)
	})

	t.Run("propagates gpt failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gpt := mock_repository.NewMockGptRepository(ctrl)
		gpt.EXPECT().
			SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("rate limited"))

		svc := NewStrategyConstructionService(gpt)
		_, err := svc.Construct(context.Background(), "momentum strategy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("rejects empty descriptions without calling the model", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		gpt := mock_repository.NewMockGptRepository(ctrl)

		svc := NewStrategyConstructionService(gpt)
		_, err := svc.Construct(context.Background(), "   ")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidStrategy)
	})
}
